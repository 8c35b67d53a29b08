package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"vistree/internal/tree"
	"vistree/internal/visibility"
)

// View implements tea.Model.
func (m *App) View() string {
	if m.showHelp {
		return renderHelp(m.keys, m.cfg.OutputFormat, m.width)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTree())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *App) renderHeader() string {
	title := styleAppHeader.Render(m.cfg.Title)
	tabs := make([]string, 0, 2)
	for _, mode := range []tree.Mode{tree.ModelsTree, tree.CategoriesTree} {
		label := strings.ToUpper(mode.String()[:1]) + mode.String()[1:]
		if mode == m.active {
			tabs = append(tabs, styleTabActive.Render(label))
		} else {
			tabs = append(tabs, styleTabInactive.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title, " "}, tabs...)...)
	if st := m.state(); st.filtered != nil {
		header += " " + styleFilterInfo.Render(fmt.Sprintf(" filter: %s ", st.filtered.Query))
	}
	return header
}

func (m *App) renderTree() string {
	st := m.state()
	h := m.listHeight()
	lines := make([]string, 0, h)
	switch {
	case !st.loaded:
		lines = append(lines, styleDim.Render("  Loading..."))
	case len(m.rows) == 0:
		lines = append(lines, styleDim.Render("  Nothing to show"))
	}

	end := min(st.offset+h, len(m.rows))
	for i := st.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == st.cursor))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *App) renderRow(n *tree.Node, selected bool) string {
	indent := strings.Repeat("  ", n.Depth)
	marker := " "
	if n.Expandable() {
		marker = "▶"
		if n.Expanded {
			marker = "▼"
		}
	}
	status, known := m.state().statuses[n.Key()]
	label := n.Label()
	if selected {
		label = styleSelected.Render(" " + label + " ")
	} else if known && status.Disabled {
		label = styleDim.Render(label)
	} else {
		label = styleNormalText.Render(label)
	}
	line := fmt.Sprintf(" %s%s %s %s", indent, marker, checkbox(status, known), label)
	if n.Item.Kind == visibility.KindClassGrouping || n.Item.Kind == visibility.KindDefinitionContainer {
		line += " " + styleKind.Render(n.Item.Kind.String())
	}
	return line
}

func (m *App) renderFooter() string {
	var lines []string
	switch {
	case m.searching:
		lines = append(lines, m.search.View())
	case m.lastErr != nil:
		lines = append(lines, styleError.Render("Error: "+m.lastErr.Error()))
	case m.toast != "":
		lines = append(lines, styleToast.Render(m.toast))
	default:
		lines = append(lines, m.reasonLine())
	}
	lines = append(lines, styleDim.Render("space toggle · ←/→ expand · / filter · tab switch · a/A show/hide all · ? help · q quit"))
	return strings.Join(lines, "\n")
}

func (m *App) reasonLine() string {
	n := m.selected()
	if n == nil {
		return ""
	}
	status, ok := m.state().statuses[n.Key()]
	if !ok {
		return styleDim.Render("Computing visibility...")
	}
	text := fmt.Sprintf("%s: %s", status.State, status.Reason.Tooltip())
	return styleDim.Render(wordwrap.String(text, max(m.width-2, 20)))
}
