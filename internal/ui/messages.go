package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"vistree/internal/tree"
	"vistree/internal/visibility"
)

type treeLoadedMsg struct {
	mode  tree.Mode
	roots []*tree.Node
	err   error
}

type statusMsg struct {
	generation int
	mode       tree.Mode
	key        string
	status     visibility.Status
	err        error
}

type changeDoneMsg struct {
	action string
	err    error
}

type sourceChangedMsg struct{}

// waitForSourceChange resolves once the watched source reports a change.
func waitForSourceChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}
