// Package viewport describes the display state the visibility engine reads
// and mutates: viewed models, category and sub-category selectors, per-model
// category overrides, and the always/never-drawn element sets.
package viewport

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// Override is a per-model category override. OverrideNone defers to the
// category selector.
type Override int

const (
	OverrideNone Override = iota
	OverrideShow
	OverrideHide
)

func (o Override) String() string {
	switch o {
	case OverrideShow:
		return "show"
	case OverrideHide:
		return "hide"
	default:
		return "none"
	}
}

// ParseOverride is the inverse of String. Unknown values map to OverrideNone.
func ParseOverride(s string) Override {
	switch s {
	case "show":
		return OverrideShow
	case "hide":
		return OverrideHide
	default:
		return OverrideNone
	}
}

// IDSet is a set of element ids. Sets returned by a Viewport are snapshots
// and must not be mutated by callers.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set has no members.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s IDSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the members in sorted order.
func (s IDSet) IDs() []string {
	ids := lo.Keys(s)
	slices.Sort(ids)
	return ids
}

// With returns a copy of s with ids added.
func (s IDSet) With(ids ...string) IDSet {
	out := s.Clone()
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Without returns a copy of s with ids removed.
func (s IDSet) Without(ids ...string) IDSet {
	out := s.Clone()
	for _, id := range ids {
		delete(out, id)
	}
	return out
}

// Viewport is the display state consumed by the visibility handlers.
//
// Mutations are applied synchronously; Settle returns once the display has
// caught up with every mutation issued before it.
type Viewport interface {
	IsSpatialView() bool
	ViewsModel(modelID string) bool
	ViewsCategory(categoryID string) bool
	ViewsSubCategory(subCategoryID string) bool
	CategoryOverride(modelID, categoryID string) Override
	// CategoryOverrides returns every per-model override for a category, keyed by model id.
	CategoryOverrides(categoryID string) map[string]Override
	AlwaysDrawn() IDSet
	NeverDrawn() IDSet
	IsAlwaysDrawnExclusive() bool

	AddViewedModels(modelIDs []string)
	ChangeModelDisplay(modelIDs []string, on bool)
	// ChangeCategoryDisplay flips the category selector. When
	// propagateToModelOverrides is set, per-model overrides of those
	// categories are removed.
	ChangeCategoryDisplay(categoryIDs []string, on bool, propagateToModelOverrides bool)
	ChangeSubCategoryDisplay(subCategoryID string, on bool)
	SetCategoryOverride(modelID, categoryID string, o Override)
	ClearCategoryOverrides(modelIDs []string)
	SetAlwaysDrawn(ids IDSet, exclusive bool)
	ClearAlwaysDrawn()
	SetNeverDrawn(ids IDSet)
	ClearNeverDrawn()

	Settle(ctx context.Context) error
}
