package visibility

import (
	"context"

	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/viewport"
)

func (h *Handler) subjectStatus(ctx context.Context, n Node) (Status, error) {
	if children, ok := h.filteredChildren(n); ok {
		statuses, err := fanOut(ctx, h.limit, children, h.GetVisibilityStatus)
		if err != nil {
			return Status{}, err
		}
		return fold(statuses, childReasons), nil
	}

	modelIDs, err := h.cache.SubjectsModelIDs(ctx, n.IDs)
	if err != nil {
		return Status{}, err
	}
	statuses, err := fanOut(ctx, h.limit, modelIDs, h.modelStatus)
	if err != nil {
		return Status{}, err
	}
	return modelReasons.status(states(statuses)), nil
}

func (h *Handler) modelNodeStatus(ctx context.Context, n Node) (Status, error) {
	statuses, err := fanOut(ctx, h.limit, n.IDs, h.modelStatus)
	if err != nil {
		return Status{}, err
	}
	return fold(statuses, modelReasons), nil
}

// modelStatus aggregates the categories of a viewed model. A hidden model is
// partial when any of its elements is always drawn.
func (h *Handler) modelStatus(ctx context.Context, modelID string) (Status, error) {
	if !h.vp.ViewsModel(modelID) {
		sets := readElementSets(h.vp)
		if sets.always.Len() == 0 {
			return Hidden(ReasonModelNotDisplayed), nil
		}
		categories, err := h.cache.ModelCategories(ctx, modelID)
		if err != nil {
			return Status{}, err
		}
		for _, cat := range categories {
			ids, err := h.cache.CategoryElements(ctx, modelID, cat.ID)
			if err != nil {
				return Status{}, err
			}
			if anyIn(ids, sets.always) {
				return Partial(ReasonSomeElementsAlwaysDrawn), nil
			}
		}
		return Hidden(ReasonModelNotDisplayed), nil
	}

	categories, err := h.cache.ModelCategories(ctx, modelID)
	if err != nil {
		return Status{}, err
	}
	statuses, err := fanOut(ctx, h.limit, categories, func(ctx context.Context, cat imodel.CategoryRow) (Status, error) {
		return h.categoryStatus(ctx, modelID, cat.ID)
	})
	if err != nil {
		return Status{}, err
	}
	return categoryReasons.status(states(statuses)), nil
}

func (h *Handler) categoryNodeStatus(ctx context.Context, n Node) (Status, error) {
	statuses, err := fanOut(ctx, h.limit, n.IDs, func(ctx context.Context, categoryID string) (Status, error) {
		if n.ModelID == "" {
			return categorySelectorStatus(ctx, h.vp, h.cache, categoryID)
		}
		return h.categoryStatus(ctx, n.ModelID, categoryID)
	})
	if err != nil {
		return Status{}, err
	}
	return fold(statuses, categoryReasons), nil
}

// categoryStatus resolves a category under a model. Element exceptions
// refine the category's own state; a category without elements reports it
// unchanged.
func (h *Handler) categoryStatus(ctx context.Context, modelID, categoryID string) (Status, error) {
	sets := readElementSets(h.vp)

	if !h.vp.ViewsModel(modelID) {
		if sets.always.Len() == 0 {
			return Hidden(ReasonModelNotDisplayed), nil
		}
		ids, err := h.cache.CategoryElements(ctx, modelID, categoryID)
		if err != nil {
			return Status{}, err
		}
		if anyIn(ids, sets.always) {
			return Partial(ReasonSomeElementsAlwaysDrawn), nil
		}
		return Hidden(ReasonModelNotDisplayed), nil
	}

	base := categoryBase(h.vp, modelID, categoryID)
	if sets.empty() {
		return base, nil
	}
	ids, err := h.cache.CategoryElements(ctx, modelID, categoryID)
	if err != nil {
		return Status{}, err
	}
	return refine(base, ids, sets, ReasonSomeElementsOverridden), nil
}

// categoryBase is the category's state in a model before element
// exceptions: the per-model override if set, else the category selector.
func categoryBase(vp viewport.Viewport, modelID, categoryID string) Status {
	if !vp.ViewsModel(modelID) {
		return Hidden(ReasonModelNotDisplayed)
	}
	switch vp.CategoryOverride(modelID, categoryID) {
	case viewport.OverrideShow:
		return Visible(ReasonCategoryOverrideShow)
	case viewport.OverrideHide:
		return Hidden(ReasonCategoryOverrideHide)
	}
	if vp.ViewsCategory(categoryID) {
		return Visible(ReasonCategoryDisplayed)
	}
	return Hidden(ReasonCategoryHidden)
}

// categorySelectorStatus resolves a category independently of any model.
func categorySelectorStatus(ctx context.Context, vp viewport.Viewport, cache *hierarchy.Cache, categoryID string) (Status, error) {
	if !vp.ViewsCategory(categoryID) {
		return Hidden(ReasonCategoryHidden), nil
	}
	subs, err := cache.SubCategories(ctx, categoryID)
	if err != nil {
		return Status{}, err
	}
	for _, sub := range subs {
		if !vp.ViewsSubCategory(sub.ID) {
			return Partial(ReasonSomeSubCategoriesHidden), nil
		}
	}
	for _, o := range vp.CategoryOverrides(categoryID) {
		if o == viewport.OverrideHide {
			return Partial(ReasonCategoryOverridesDiffer), nil
		}
	}
	return Visible(ReasonCategoryDisplayed), nil
}

func (h *Handler) groupingStatus(ctx context.Context, n Node) (Status, error) {
	info, err := h.cache.GroupedElements(ctx, *n.GroupingKey)
	if err != nil {
		return Status{}, err
	}
	base := categoryBase(h.vp, info.ModelID, info.CategoryID)
	sets := readElementSets(h.vp)
	if sets.empty() {
		return base, nil
	}
	members := make([]State, len(info.ElementIDs))
	for i, id := range info.ElementIDs {
		members[i] = sets.state(id, base).State
	}
	return elementReasons.status(Aggregate(members...)), nil
}

func (h *Handler) elementNodeStatus(ctx context.Context, n Node) (Status, error) {
	statuses, err := fanOut(ctx, h.limit, n.IDs, func(ctx context.Context, id string) (Status, error) {
		return h.elementStatus(ctx, id, n.ModelID, n.CategoryID, n.HasChildren)
	})
	if err != nil {
		return Status{}, err
	}
	return fold(statuses, elementReasons), nil
}

// elementStatus applies the element rule, folding in assembly descendants
// when the element has children. Descendants share the parent's base.
func (h *Handler) elementStatus(ctx context.Context, id, modelID, categoryID string, hasChildren bool) (Status, error) {
	if modelID == "" || categoryID == "" {
		row, ok, err := h.cache.ElementInfo(ctx, id)
		if err != nil {
			return Status{}, err
		}
		if !ok {
			return Disabled(ReasonNotInstance), nil
		}
		modelID, categoryID = row.ModelID, row.CategoryID
	}

	base := categoryBase(h.vp, modelID, categoryID)
	sets := readElementSets(h.vp)
	own := sets.state(id, base)
	if !hasChildren {
		return own, nil
	}

	descendants, err := h.cache.AssemblyElementIDs(ctx, id)
	if err != nil {
		return Status{}, err
	}
	all := []State{own.State}
	for child := range descendants {
		all = append(all, sets.state(child, base).State)
	}
	if s := Aggregate(all...); s != own.State {
		return Partial(ReasonSomeElementsHidden), nil
	}
	return own, nil
}

// refine evaluates ids against base with the element rule. Agreement keeps
// base; otherwise the aggregate is reported with the given partial reason.
func refine(base Status, ids []string, sets elementSets, partial Reason) Status {
	if len(ids) == 0 {
		return base
	}
	members := make([]State, len(ids))
	for i, id := range ids {
		members[i] = sets.state(id, base).State
	}
	switch s := Aggregate(members...); s {
	case base.State:
		return base
	case StatePartial:
		return Partial(partial)
	case StateHidden:
		return Hidden(ReasonAllElementsHidden)
	default:
		return Visible(ReasonAllElementsVisible)
	}
}

func states(statuses []Status) State {
	out := make([]State, len(statuses))
	for i, s := range statuses {
		out[i] = s.State
	}
	return Aggregate(out...)
}

func anyIn(ids []string, set viewport.IDSet) bool {
	for _, id := range ids {
		if set.Has(id) {
			return true
		}
	}
	return false
}

func allIn(ids []string, set viewport.IDSet) bool {
	for _, id := range ids {
		if !set.Has(id) {
			return false
		}
	}
	return true
}
