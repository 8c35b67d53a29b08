package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func getHelpSections(keys KeyMap) []helpSection {
	return []helpSection{
		{title: "Navigation", bindings: []key.Binding{keys.Up, keys.Left, keys.Enter, keys.Home, keys.End, keys.PageUp, keys.PageDown}},
		{title: "Visibility", bindings: []key.Binding{keys.Toggle, keys.ShowAll, keys.HideAll, keys.Invert, keys.ClearEls}},
		{title: "Actions", bindings: []key.Binding{keys.Tab, keys.Search, keys.Escape, keys.Copy, keys.Refresh, keys.Help, keys.Quit}},
	}
}

// helpMarkdown lists the bindings as markdown tables, one per section.
func helpMarkdown(keys KeyMap) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	for _, section := range getHelpSections(keys) {
		fmt.Fprintf(&b, "## %s\n\n| Key | Action |\n| --- | --- |\n", section.title)
		for _, binding := range section.bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("Checkboxes: `[x]` visible, `[ ]` hidden, `[~]` partially visible, `[-]` disabled.\n")
	return b.String()
}

func renderHelp(keys KeyMap, format string, width int) string {
	if width <= 0 {
		width = 80
	}
	inner := max(width-6, 20)
	render := buildMarkdownRenderer(format, inner)
	return styleHelp.Render(render(helpMarkdown(keys)))
}
