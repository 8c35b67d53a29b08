package visibility

// Status is the resolved visibility of a node. Disabled statuses are hidden
// and cannot be toggled.
type Status struct {
	State    State  `json:"state"`
	Disabled bool   `json:"disabled,omitempty"`
	Reason   Reason `json:"reason"`
}

func Visible(r Reason) Status { return Status{State: StateVisible, Reason: r} }
func Hidden(r Reason) Status  { return Status{State: StateHidden, Reason: r} }
func Partial(r Reason) Status { return Status{State: StatePartial, Reason: r} }

// Disabled returns a hidden status that cannot be toggled.
func Disabled(r Reason) Status {
	return Status{State: StateHidden, Disabled: true, Reason: r}
}

// aggregateReasons names the reason used for each folded outcome.
type aggregateReasons struct {
	visible, hidden, partial Reason
}

var (
	modelReasons    = aggregateReasons{ReasonAllModelsVisible, ReasonAllModelsHidden, ReasonSomeModelsHidden}
	categoryReasons = aggregateReasons{ReasonAllCategoriesVisible, ReasonAllCategoriesHidden, ReasonSomeCategoriesHidden}
	elementReasons  = aggregateReasons{ReasonAllElementsVisible, ReasonAllElementsHidden, ReasonSomeElementsHidden}
	childReasons    = aggregateReasons{ReasonAllChildrenVisible, ReasonAllChildrenHidden, ReasonSomeChildrenHidden}
)

func (r aggregateReasons) status(s State) Status {
	switch s {
	case StateVisible:
		return Visible(r.visible)
	case StateHidden:
		return Hidden(r.hidden)
	default:
		return Partial(r.partial)
	}
}

// fold aggregates child statuses. A single child keeps its own reason.
func fold(children []Status, reasons aggregateReasons) Status {
	if len(children) == 1 {
		s := children[0]
		s.Disabled = false
		return s
	}
	states := make([]State, len(children))
	for i, c := range children {
		states[i] = c.State
	}
	return reasons.status(Aggregate(states...))
}
