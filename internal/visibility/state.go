// Package visibility resolves and changes the tri-state visibility of models
// tree and categories tree nodes against a viewport.
package visibility

// State is the display state of a node.
type State string

const (
	StateVisible State = "visible"
	StateHidden  State = "hidden"
	StatePartial State = "partial"
)

func (s State) String() string { return string(s) }

// Aggregate folds child states: visible when every child is visible, hidden
// when every child is hidden, partial otherwise. No children is visible.
func Aggregate(states ...State) State {
	allVisible, allHidden := true, true
	for _, s := range states {
		switch s {
		case StateVisible:
			allHidden = false
		case StateHidden:
			allVisible = false
		default:
			return StatePartial
		}
		if !allVisible && !allHidden {
			return StatePartial
		}
	}
	if allVisible {
		return StateVisible
	}
	return StateHidden
}
