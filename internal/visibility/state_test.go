package visibility

import (
	"slices"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAggregate(t *testing.T) {
	assert.Equal(t, StateVisible, Aggregate())
	assert.Equal(t, StateVisible, Aggregate(StateVisible, StateVisible))
	assert.Equal(t, StateHidden, Aggregate(StateHidden))
	assert.Equal(t, StatePartial, Aggregate(StateVisible, StateHidden))
	assert.Equal(t, StatePartial, Aggregate(StateHidden, StatePartial))
}

func genState() *rapid.Generator[State] {
	return rapid.SampledFrom([]State{StateVisible, StateHidden, StatePartial})
}

func TestAggregateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		states := rapid.SliceOf(genState()).Draw(t, "states")
		got := Aggregate(states...)

		allVisible := !slices.ContainsFunc(states, func(s State) bool { return s != StateVisible })
		allHidden := len(states) > 0 && !slices.ContainsFunc(states, func(s State) bool { return s != StateHidden })
		switch {
		case allVisible:
			if got != StateVisible {
				t.Fatalf("all visible %v folded to %s", states, got)
			}
		case allHidden:
			if got != StateHidden {
				t.Fatalf("all hidden %v folded to %s", states, got)
			}
		default:
			if got != StatePartial {
				t.Fatalf("mixed %v folded to %s", states, got)
			}
		}

		shuffled := slices.Clone(states)
		slices.Reverse(shuffled)
		if Aggregate(shuffled...) != got {
			t.Fatalf("aggregation depends on order for %v", states)
		}
		if Aggregate(append(states, StatePartial)...) != StatePartial {
			t.Fatalf("adding a partial child must give partial")
		}
	})
}

func TestReasonsAreClosed(t *testing.T) {
	for _, r := range Reasons.Members() {
		parsed, ok := ParseReason(r.Value)
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
		assert.NotEqual(t, r.Value, r.Tooltip(), "every reason has a tooltip")
	}
	_, ok := ParseReason("made-up")
	assert.False(t, ok)
}

func TestDefaultClassifier(t *testing.T) {
	assert.Equal(t, KindUnknown, DefaultClassifier(Node{}))
	assert.Equal(t, KindUnknown, DefaultClassifier(Node{Kind: KindModel}))
	assert.Equal(t, KindUnknown, DefaultClassifier(Node{Kind: KindClassGrouping}))
	assert.Equal(t, KindModel, DefaultClassifier(modelNode("M1")))
}

func TestStatusJSONUsesReasonValues(t *testing.T) {
	data, err := json.Marshal(Partial(ReasonSomeElementsOverridden))
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"partial","reason":"some-elements-overridden"}`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, ReasonSomeElementsOverridden, s.Reason)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"hidden","reason":"bogus"}`), &s))
}
