package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"vistree/internal/visibility"
)

var (
	cPurple     = lipgloss.Color("99")
	cCyan       = lipgloss.Color("39")
	cNeonGreen  = lipgloss.Color("118")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cGray       = lipgloss.Color("240")
	cBrightGray = lipgloss.Color("246")
	cLightGray  = lipgloss.Color("250")
	cWhite      = lipgloss.Color("255")
	cHighlight  = lipgloss.Color("57")

	styleNormalText = lipgloss.NewStyle().Foreground(cWhite)
	styleDim        = lipgloss.NewStyle().Foreground(cBrightGray)
	styleError      = lipgloss.NewStyle().Foreground(cRed).Bold(true)
	styleToast      = lipgloss.NewStyle().Foreground(cGold)
	styleKind       = lipgloss.NewStyle().Foreground(cCyan)

	styleCheckVisible  = lipgloss.NewStyle().Foreground(cNeonGreen).Bold(true)
	styleCheckHidden   = lipgloss.NewStyle().Foreground(cLightGray)
	styleCheckPartial  = lipgloss.NewStyle().Foreground(cGold).Bold(true)
	styleCheckDisabled = lipgloss.NewStyle().Foreground(cGray)

	styleSelected = lipgloss.NewStyle().
			Background(cHighlight).
			Foreground(cWhite).
			Bold(true)

	styleAppHeader = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cPurple).
			Bold(true).
			Padding(0, 1)

	styleTabActive = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cHighlight).
			Bold(true).
			Padding(0, 1)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(cBrightGray).
				Padding(0, 1)

	styleFilterInfo = lipgloss.NewStyle().
			Foreground(cLightGray).
			Background(cPurple)

	styleHelp = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cPurple).
			Padding(0, 1)
)

// checkbox renders the tri-state glyph for a status. Unknown rows render a
// placeholder until their status arrives.
func checkbox(s visibility.Status, known bool) string {
	if !known {
		return styleCheckDisabled.Render("[·]")
	}
	if s.Disabled {
		return styleCheckDisabled.Render("[-]")
	}
	switch s.State {
	case visibility.StateVisible:
		return styleCheckVisible.Render("[x]")
	case visibility.StatePartial:
		return styleCheckPartial.Render("[~]")
	default:
		return styleCheckHidden.Render("[ ]")
	}
}

func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" || style == "dark" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
