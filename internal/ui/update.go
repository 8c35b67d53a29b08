package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"vistree/internal/debug"
	"vistree/internal/tree"
	"vistree/internal/visibility"
)

var writeClipboard = clipboard.WriteAll

// Update implements tea.Model.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcVisibleRows()
		return m, m.refreshStatuses()

	case treeLoadedMsg:
		st := m.trees[msg.mode]
		if msg.err != nil {
			m.lastErr = msg.err
			debug.Errorf(msg.err, "ui: load %s tree", msg.mode)
			return m, nil
		}
		st.roots = msg.roots
		st.filtered = nil
		st.loaded = true
		if msg.mode == tree.ModelsTree && m.cfg.Models != nil {
			m.cfg.Models.SetFilteredTree(nil)
		}
		if msg.mode != m.active {
			return m, nil
		}
		m.recalcVisibleRows()
		return m, m.refreshStatuses()

	case statusMsg:
		if msg.generation != m.generation || msg.mode != m.active {
			return m, nil
		}
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.trees[msg.mode].statuses[msg.key] = msg.status
		return m, nil

	case changeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.lastErr = msg.err
			debug.Errorf(msg.err, "ui: %s", msg.action)
		} else {
			m.toast = msg.action
		}
		return m, m.refreshStatuses()

	case sourceChangedMsg:
		m.toast = "Source changed, reloading"
		return m, tea.Batch(m.reload(), waitForSourceChange(m.cfg.Changes))

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *App) reload() tea.Cmd {
	if m.cfg.Cache != nil {
		m.cfg.Cache.Clear()
	}
	for _, st := range m.trees {
		st.loaded = false
	}
	return tea.Batch(m.loadTreeCmd(tree.ModelsTree), m.loadTreeCmd(tree.CategoriesTree))
}

func (m *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.toast = ""
	m.lastErr = nil
	st := m.state()

	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		st.cursor--
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.Down):
		st.cursor++
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.Home):
		st.cursor = 0
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.End):
		st.cursor = len(m.rows) - 1
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.PageUp):
		st.cursor -= m.listHeight()
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.PageDown):
		st.cursor += m.listHeight()
		m.recalcVisibleRows()
	case key.Matches(msg, m.keys.Right):
		return m, m.expandSelected()
	case key.Matches(msg, m.keys.Left):
		m.collapseSelected()
	case key.Matches(msg, m.keys.Enter):
		if n := m.selected(); n != nil && n.Expanded {
			m.collapseSelected()
			return m, nil
		}
		return m, m.expandSelected()
	case key.Matches(msg, m.keys.Tab):
		m.active = 1 - m.active
		m.recalcVisibleRows()
		return m, m.refreshStatuses()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(currentQuery(st))
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		if st.filtered != nil {
			m.applyFilter("")
			return m, m.refreshStatuses()
		}
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keys.ShowAll):
		return m, m.bulk(true)
	case key.Matches(msg, m.keys.HideAll):
		return m, m.bulk(false)
	case key.Matches(msg, m.keys.Invert):
		if m.active == tree.ModelsTree && m.cfg.Models != nil {
			return m, m.changeCmd("Inverted models", m.cfg.Models.InvertAllModels)
		}
	case key.Matches(msg, m.keys.ClearEls):
		if m.active == tree.ModelsTree && m.cfg.Models != nil {
			return m, m.changeCmd("Cleared element overrides", m.cfg.Models.ClearElementOverrides)
		}
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Refresh):
		m.toast = "Reloading"
		return m, m.reload()
	}
	return m, nil
}

func (m *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.searching = false
		m.search.Blur()
		m.applyFilter(m.search.Value())
		return m, m.refreshStatuses()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func currentQuery(st *treeState) string {
	if st.filtered == nil {
		return ""
	}
	return st.filtered.Query
}

// applyFilter loads the whole active tree and filters it by label. The
// models handler follows the filter so parents aggregate only matches.
func (m *App) applyFilter(query string) {
	st := m.state()
	if query != "" {
		if err := m.cfg.Builder.LoadAll(m.ctx, st.roots, 0); err != nil {
			m.lastErr = err
			return
		}
	}
	st.filtered = tree.Filter(st.roots, query)
	st.cursor = 0
	st.offset = 0
	if m.active == tree.ModelsTree && m.cfg.Models != nil {
		if st.filtered != nil {
			m.cfg.Models.SetFilteredTree(st.filtered)
		} else {
			m.cfg.Models.SetFilteredTree(nil)
		}
	}
	if st.filtered != nil {
		m.toast = fmt.Sprintf("%d rows match %q", st.filtered.Matches(), st.filtered.Query)
	}
	m.recalcVisibleRows()
}

func (m *App) expandSelected() tea.Cmd {
	n := m.selected()
	if n == nil || !n.Expandable() {
		return nil
	}
	if err := m.cfg.Builder.Expand(m.ctx, n); err != nil {
		m.lastErr = err
		return nil
	}
	m.recalcVisibleRows()
	return m.refreshStatuses()
}

func (m *App) collapseSelected() {
	n := m.selected()
	if n == nil {
		return
	}
	if !n.Expanded && n.Parent != nil {
		n = n.Parent
	}
	n.Expanded = false
	m.recalcVisibleRows()
	for i, row := range m.rows {
		if row == n {
			m.state().cursor = i
			break
		}
	}
	m.recalcVisibleRows()
}

// toggleSelected shows a hidden or partial row and hides a visible one.
// Disabled rows and rows whose status is unknown are left alone.
func (m *App) toggleSelected() tea.Cmd {
	n := m.selected()
	if n == nil || m.busy {
		return nil
	}
	status, ok := m.state().statuses[n.Key()]
	if !ok {
		return nil
	}
	if status.Disabled {
		m.toast = status.Reason.Tooltip()
		return nil
	}
	on := status.State != visibility.StateVisible
	src := m.source(m.active)
	item := n.Item
	verb := "Hid"
	if on {
		verb = "Showed"
	}
	return m.changeCmd(fmt.Sprintf("%s %s", verb, n.Label()), func(ctx context.Context) error {
		return src.ChangeVisibility(ctx, item, on)
	})
}

func (m *App) bulk(on bool) tea.Cmd {
	if m.busy {
		return nil
	}
	switch {
	case m.active == tree.CategoriesTree && m.cfg.Categories != nil:
		if on {
			return m.changeCmd("Showed all categories", m.cfg.Categories.ShowAllCategories)
		}
		return m.changeCmd("Hid all categories", m.cfg.Categories.HideAllCategories)
	case m.cfg.Models != nil:
		if on {
			return m.changeCmd("Showed all models", m.cfg.Models.ShowAllModels)
		}
		return m.changeCmd("Hid all models", m.cfg.Models.HideAllModels)
	}
	return nil
}

func (m *App) copySelected() {
	n := m.selected()
	if n == nil {
		return
	}
	id := n.Item.ID()
	if id == "" {
		id = n.Key()
	}
	if err := writeClipboard(id); err != nil {
		m.lastErr = err
		return
	}
	m.toast = fmt.Sprintf("Copied '%s' to clipboard.", id)
}
