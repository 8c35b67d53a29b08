package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vistree/internal/visibility"
)

// ModelCounts tallies model visibility states.
type ModelCounts struct {
	Visible, Hidden, Partial int
}

// ExitSummary is printed after the TUI leaves the alt screen.
type ExitSummary struct {
	Version string
	Start   ModelCounts
	End     ModelCounts
}

func summarizeModels(ctx context.Context, s *session) (ModelCounts, error) {
	var counts ModelCounts
	ids, err := s.cache.ModelIDs(ctx)
	if err != nil {
		return counts, err
	}
	for _, id := range ids {
		status, err := s.models.GetVisibilityStatus(ctx, visibility.Node{Kind: visibility.KindModel, IDs: []string{id}})
		if err != nil {
			return counts, err
		}
		switch status.State {
		case visibility.StateVisible:
			counts.Visible++
		case visibility.StatePartial:
			counts.Partial++
		default:
			counts.Hidden++
		}
	}
	return counts, nil
}

func printExitSummary(w io.Writer, summary ExitSummary) {
	appStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	changeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	versionStr := ""
	if summary.Version != "" {
		versionStr = dimStyle.Render(" " + summary.Version)
	}

	part := func(n, delta int, label string) string {
		s := fmt.Sprintf("%d %s", n, label)
		if delta != 0 {
			s += " " + changeStyle.Render(formatDelta(delta))
		}
		return s
	}
	parts := []string{
		part(summary.End.Visible, summary.End.Visible-summary.Start.Visible, "visible"),
		part(summary.End.Partial, summary.End.Partial-summary.Start.Partial, "partial"),
		part(summary.End.Hidden, summary.End.Hidden-summary.Start.Hidden, "hidden"),
	}
	total := summary.End.Visible + summary.End.Partial + summary.End.Hidden

	_, _ = fmt.Fprintln(w, appStyle.Render("vistree")+versionStr)
	_, _ = fmt.Fprintf(w, "%d models: %s\n", total, strings.Join(parts, ", "))
}

// formatDelta formats a numeric delta with +/- prefix.
func formatDelta(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("(+%d)", delta)
	}
	return fmt.Sprintf("(%d)", delta)
}
