package visibility

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/orsinium-labs/enum"
)

// Reason explains a Status. The set is closed; see Reasons.
type Reason enum.Member[string]

var (
	ReasonNotInstance       = Reason{"not-instance"}
	ReasonNonSpatialView    = Reason{"non-spatial-view"}
	ReasonModelNotDisplayed = Reason{"model-not-displayed"}

	ReasonAllModelsVisible = Reason{"all-models-visible"}
	ReasonAllModelsHidden  = Reason{"all-models-hidden"}
	ReasonSomeModelsHidden = Reason{"some-models-hidden"}

	ReasonAllCategoriesVisible = Reason{"all-categories-visible"}
	ReasonAllCategoriesHidden  = Reason{"all-categories-hidden"}
	ReasonSomeCategoriesHidden = Reason{"some-categories-hidden"}

	ReasonCategoryDisplayed       = Reason{"category-displayed"}
	ReasonCategoryHidden          = Reason{"category-hidden"}
	ReasonCategoryOverrideShow    = Reason{"category-override-show"}
	ReasonCategoryOverrideHide    = Reason{"category-override-hide"}
	ReasonCategoryOverridesDiffer = Reason{"category-overrides-differ"}

	ReasonSubCategoryDisplayed    = Reason{"sub-category-displayed"}
	ReasonSubCategoryHidden       = Reason{"sub-category-hidden"}
	ReasonSomeSubCategoriesHidden = Reason{"some-sub-categories-hidden"}

	ReasonAllElementsVisible      = Reason{"all-elements-visible"}
	ReasonAllElementsHidden       = Reason{"all-elements-hidden"}
	ReasonSomeElementsHidden      = Reason{"some-elements-hidden"}
	ReasonSomeElementsOverridden  = Reason{"some-elements-overridden"}
	ReasonSomeElementsAlwaysDrawn = Reason{"some-elements-always-drawn"}
	ReasonElementAlwaysDrawn      = Reason{"element-always-drawn"}
	ReasonElementNeverDrawn       = Reason{"element-never-drawn"}
	ReasonOtherElementsExclusive  = Reason{"other-elements-exclusive"}

	ReasonAllChildrenVisible = Reason{"all-children-visible"}
	ReasonAllChildrenHidden  = Reason{"all-children-hidden"}
	ReasonSomeChildrenHidden = Reason{"some-children-hidden"}

	Reasons = enum.New(
		ReasonNotInstance, ReasonNonSpatialView, ReasonModelNotDisplayed,
		ReasonAllModelsVisible, ReasonAllModelsHidden, ReasonSomeModelsHidden,
		ReasonAllCategoriesVisible, ReasonAllCategoriesHidden, ReasonSomeCategoriesHidden,
		ReasonCategoryDisplayed, ReasonCategoryHidden, ReasonCategoryOverrideShow,
		ReasonCategoryOverrideHide, ReasonCategoryOverridesDiffer,
		ReasonSubCategoryDisplayed, ReasonSubCategoryHidden, ReasonSomeSubCategoriesHidden,
		ReasonAllElementsVisible, ReasonAllElementsHidden, ReasonSomeElementsHidden,
		ReasonSomeElementsOverridden, ReasonSomeElementsAlwaysDrawn,
		ReasonElementAlwaysDrawn, ReasonElementNeverDrawn, ReasonOtherElementsExclusive,
		ReasonAllChildrenVisible, ReasonAllChildrenHidden, ReasonSomeChildrenHidden,
	)
)

var tooltips = map[Reason]string{
	ReasonNotInstance:             "This node cannot be displayed.",
	ReasonNonSpatialView:          "Visibility can only be changed in a spatial view.",
	ReasonModelNotDisplayed:       "The model is not displayed.",
	ReasonAllModelsVisible:        "All models are visible.",
	ReasonAllModelsHidden:         "All models are hidden.",
	ReasonSomeModelsHidden:        "Some models are hidden.",
	ReasonAllCategoriesVisible:    "All categories are visible.",
	ReasonAllCategoriesHidden:     "All categories are hidden.",
	ReasonSomeCategoriesHidden:    "Some categories are hidden.",
	ReasonCategoryDisplayed:       "The category is displayed.",
	ReasonCategoryHidden:          "The category is hidden.",
	ReasonCategoryOverrideShow:    "The category is shown for this model.",
	ReasonCategoryOverrideHide:    "The category is hidden for this model.",
	ReasonCategoryOverridesDiffer: "The category is hidden in some models.",
	ReasonSubCategoryDisplayed:    "The sub-category is displayed.",
	ReasonSubCategoryHidden:       "The sub-category is hidden.",
	ReasonSomeSubCategoriesHidden: "Some sub-categories are hidden.",
	ReasonAllElementsVisible:      "All elements are visible.",
	ReasonAllElementsHidden:       "All elements are hidden.",
	ReasonSomeElementsHidden:      "Some elements are hidden.",
	ReasonSomeElementsOverridden:  "Some elements are shown or hidden individually.",
	ReasonSomeElementsAlwaysDrawn: "The model is hidden but some of its elements are always drawn.",
	ReasonElementAlwaysDrawn:      "The element is always drawn.",
	ReasonElementNeverDrawn:       "The element is never drawn.",
	ReasonOtherElementsExclusive:  "Only always-drawn elements are displayed.",
	ReasonAllChildrenVisible:      "All child nodes are visible.",
	ReasonAllChildrenHidden:       "All child nodes are hidden.",
	ReasonSomeChildrenHidden:      "Some child nodes are hidden.",
}

// Tooltip returns a user-facing sentence for r.
func (r Reason) Tooltip() string {
	if t, ok := tooltips[r]; ok {
		return t
	}
	return r.Value
}

func (r Reason) String() string { return r.Value }

func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

func (r *Reason) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseReason(s)
	if !ok {
		return fmt.Errorf("unknown visibility reason %q", s)
	}
	*r = parsed
	return nil
}

// ParseReason returns the member of Reasons with the given value.
func ParseReason(s string) (Reason, bool) {
	r := Reasons.Parse(s)
	if r == nil {
		return Reason{}, false
	}
	return *r, true
}
