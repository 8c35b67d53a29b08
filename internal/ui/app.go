// Package ui is an interactive terminal browser for the models and
// categories trees with per-row visibility checkboxes.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vistree/internal/hierarchy"
	"vistree/internal/tree"
	"vistree/internal/visibility"
)

const (
	minListHeight = 3
	chromeLines   = 5
)

// Config wires the App to its data sources.
type Config struct {
	Builder    *tree.Builder
	Cache      *hierarchy.Cache
	Models     *visibility.Handler
	Categories *visibility.CategoriesHandler
	// Changes receives when the iModel source changes on disk.
	Changes      <-chan struct{}
	OutputFormat string
	Title        string
}

// statusSource is the part of a visibility handler the browser drives.
type statusSource interface {
	StatusAsync(ctx context.Context, n visibility.Node) <-chan visibility.StatusResult
	ChangeVisibility(ctx context.Context, n visibility.Node, on bool) error
}

type treeState struct {
	roots    []*tree.Node
	filtered *tree.Filtered
	statuses map[string]visibility.Status
	cursor   int
	offset   int
	loaded   bool
}

func newTreeState() *treeState {
	return &treeState{statuses: make(map[string]visibility.Status)}
}

// App is the root bubbletea model.
type App struct {
	cfg    Config
	keys   KeyMap
	ctx    context.Context
	cancel context.CancelFunc

	trees  map[tree.Mode]*treeState
	active tree.Mode
	rows   []*tree.Node

	// generation increases whenever statuses must be recomputed; results
	// from older generations are dropped and their work is cancelled.
	generation  int
	statusCtx   context.Context
	cancelStale context.CancelFunc

	search    textinput.Model
	searching bool
	showHelp  bool

	busy    bool
	toast   string
	lastErr error

	width  int
	height int
}

// NewApp creates the browser. Trees load asynchronously from Init.
func NewApp(cfg Config) *App {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by label"
	ti.CharLimit = 120
	ti.Cursor.SetMode(cursor.CursorStatic)

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Title == "" {
		cfg.Title = "vistree"
	}
	return &App{
		cfg:    cfg,
		keys:   DefaultKeyMap(),
		ctx:    ctx,
		cancel: cancel,
		trees: map[tree.Mode]*treeState{
			tree.ModelsTree:     newTreeState(),
			tree.CategoriesTree: newTreeState(),
		},
		active: tree.ModelsTree,
		search: ti,
		width:  100,
		height: 30,
	}
}

// Init loads both trees and subscribes to source changes.
func (m *App) Init() tea.Cmd {
	return tea.Batch(
		m.loadTreeCmd(tree.ModelsTree),
		m.loadTreeCmd(tree.CategoriesTree),
		waitForSourceChange(m.cfg.Changes),
	)
}

// Close cancels in-flight status computations.
func (m *App) Close() {
	m.cancel()
}

func (m *App) state() *treeState {
	return m.trees[m.active]
}

func (m *App) source(mode tree.Mode) statusSource {
	if mode == tree.CategoriesTree {
		return m.cfg.Categories
	}
	return m.cfg.Models
}

func (m *App) listHeight() int {
	return max(m.height-chromeLines, minListHeight)
}

// recalcVisibleRows rebuilds the flattened rows and keeps the cursor in range.
func (m *App) recalcVisibleRows() {
	st := m.state()
	if st.filtered != nil {
		m.rows = tree.Flatten(st.filtered.Roots)
	} else {
		m.rows = tree.Flatten(st.roots)
	}
	if st.cursor >= len(m.rows) {
		st.cursor = len(m.rows) - 1
	}
	if st.cursor < 0 {
		st.cursor = 0
	}
	h := m.listHeight()
	if st.cursor < st.offset {
		st.offset = st.cursor
	}
	if st.cursor >= st.offset+h {
		st.offset = st.cursor - h + 1
	}
	if st.offset > max(len(m.rows)-h, 0) {
		st.offset = max(len(m.rows)-h, 0)
	}
}

func (m *App) selected() *tree.Node {
	st := m.state()
	if st.cursor < 0 || st.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[st.cursor]
}

func (m *App) loadTreeCmd(mode tree.Mode) tea.Cmd {
	ctx := m.ctx
	builder := m.cfg.Builder
	return func() tea.Msg {
		roots, err := builder.Roots(ctx, mode)
		return treeLoadedMsg{mode: mode, roots: roots, err: err}
	}
}

// refreshStatuses requests the status of every visible row of the active
// tree under a new generation.
func (m *App) refreshStatuses() tea.Cmd {
	m.generation++
	gen := m.generation
	if m.cancelStale != nil {
		m.cancelStale()
	}
	m.statusCtx, m.cancelStale = context.WithCancel(m.ctx)
	mode := m.active
	src := m.source(mode)
	if src == nil {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.rows))
	for _, n := range m.rows {
		ch := src.StatusAsync(m.statusCtx, n.Item)
		key := n.Key()
		cmds = append(cmds, func() tea.Msg {
			res, ok := <-ch
			if !ok {
				return nil
			}
			return statusMsg{generation: gen, mode: mode, key: key, status: res.Status, err: res.Err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *App) changeCmd(action string, fn func(context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return changeDoneMsg{action: action, err: fn(ctx)}
	}
}
