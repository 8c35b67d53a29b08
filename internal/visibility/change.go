package visibility

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vistree/internal/debug"
	"vistree/internal/viewport"
)

// ChangeVisibility turns n on or off. It returns once every viewport
// mutation has been applied and the viewport has settled. Mutations applied
// before an error stay applied.
func (h *Handler) ChangeVisibility(ctx context.Context, n Node, on bool) error {
	kind := h.classify(n)
	return traceChange(ctx, "visibility.Handler.ChangeVisibility", kind, n, on, func(ctx context.Context) error {
		if err := h.change(ctx, kind, n, on); err != nil {
			return err
		}
		return settle(ctx, h.vp)
	})
}

func (h *Handler) change(ctx context.Context, kind NodeKind, n Node, on bool) error {
	switch kind {
	case KindSubject:
		return h.changeSubject(ctx, n, on)
	case KindModel:
		return h.changeModels(ctx, n.IDs, on)
	case KindCategory:
		if n.ModelID == "" {
			h.vp.ChangeCategoryDisplay(n.IDs, on, true)
			return nil
		}
		for _, id := range n.IDs {
			if err := h.changeCategory(ctx, n.ModelID, id, on); err != nil {
				return err
			}
		}
		return nil
	case KindElement:
		return h.changeElementNode(ctx, n, on)
	case KindClassGrouping:
		info, err := h.cache.GroupedElements(ctx, *n.GroupingKey)
		if err != nil {
			return err
		}
		h.changeElements(info.ElementIDs, info.ModelID, info.CategoryID, on)
		return nil
	default:
		return unsupportedNodeError(n)
	}
}

func traceChange(ctx context.Context, name string, kind NodeKind, n Node, on bool, fn func(context.Context) error) error {
	ctx, span := getTracer().Start(ctx, name,
		trace.WithAttributes(
			attribute.String("kind", kind.String()),
			attribute.String("node", n.Key()),
			attribute.Bool("on", on),
		),
	)
	defer span.End()

	visibilityChanges.WithLabelValues(kind.String(), targetLabel(on)).Inc()
	debug.Logf("visibility: change %s %s -> %s", kind, n.Key(), targetLabel(on))
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "change failed")
		debug.Errorf(err, "visibility: change %s %s", kind, n.Key())
		return err
	}
	return nil
}

func settle(ctx context.Context, vp viewport.Viewport) error {
	if err := vp.Settle(ctx); err != nil {
		return viewportError("settle viewport", err)
	}
	return nil
}

func (h *Handler) changeSubject(ctx context.Context, n Node, on bool) error {
	if children, ok := h.filteredChildren(n); ok {
		for _, child := range children {
			if err := h.change(ctx, h.classify(child), child, on); err != nil {
				return err
			}
		}
		return nil
	}
	modelIDs, err := h.cache.SubjectsModelIDs(ctx, n.IDs)
	if err != nil {
		return err
	}
	return h.changeModels(ctx, modelIDs, on)
}

// changeModels views or hides models and brings their categories along.
// Showing adds every model in a single call.
func (h *Handler) changeModels(ctx context.Context, modelIDs []string, on bool) error {
	if len(modelIDs) == 0 {
		return nil
	}
	if on {
		h.vp.AddViewedModels(modelIDs)
	} else {
		h.vp.ChangeModelDisplay(modelIDs, false)
	}
	for _, modelID := range modelIDs {
		categories, err := h.cache.ModelCategories(ctx, modelID)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			if err := h.changeCategory(ctx, modelID, cat.ID, on); err != nil {
				return err
			}
		}
	}
	return nil
}

// changeCategory changes a category within one model. Showing a category of
// a hidden model views the model with only that category visible.
func (h *Handler) changeCategory(ctx context.Context, modelID, categoryID string, on bool) error {
	if on && !h.vp.ViewsModel(modelID) {
		h.vp.ChangeModelDisplay([]string{modelID}, true)
		categories, err := h.cache.ModelCategories(ctx, modelID)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			if cat.ID != categoryID {
				h.setCategoryOverride(modelID, cat.ID, false)
			}
		}
	}
	h.setCategoryOverride(modelID, categoryID, on)

	sets := readElementSets(h.vp)
	if sets.empty() {
		return nil
	}
	ids, err := h.cache.CategoryElements(ctx, modelID, categoryID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if on {
		if anyIn(ids, sets.never) {
			h.vp.SetNeverDrawn(sets.never.Without(ids...))
		}
		if sets.exclusive && sets.always.Len() > 0 {
			h.vp.SetAlwaysDrawn(sets.always.With(ids...), true)
		}
		return nil
	}
	if anyIn(ids, sets.always) {
		h.vp.SetAlwaysDrawn(sets.always.Without(ids...), sets.exclusive)
	}
	return nil
}

// setCategoryOverride records an override only when the selector does not
// already give the target state.
func (h *Handler) setCategoryOverride(modelID, categoryID string, on bool) {
	o := viewport.OverrideNone
	if h.vp.ViewsCategory(categoryID) != on {
		o = viewport.OverrideHide
		if on {
			o = viewport.OverrideShow
		}
	}
	if h.vp.CategoryOverride(modelID, categoryID) == o {
		return
	}
	h.vp.SetCategoryOverride(modelID, categoryID, o)
}

func (h *Handler) changeElementNode(ctx context.Context, n Node, on bool) error {
	for _, id := range n.IDs {
		modelID, categoryID := n.ModelID, n.CategoryID
		if modelID == "" || categoryID == "" {
			row, ok, err := h.cache.ElementInfo(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return unsupportedNodeError(n)
			}
			modelID, categoryID = row.ModelID, row.CategoryID
		}
		targets := []string{id}
		if n.HasChildren {
			descendants, err := h.cache.AssemblyElementIDs(ctx, id)
			if err != nil {
				return err
			}
			targets = slices.AppendSeq(targets, descendants)
		}
		h.changeElements(targets, modelID, categoryID, on)
	}
	return nil
}

// changeElements adjusts the always/never-drawn sets for ids. While an
// exclusive always-drawn set is active, turning off only shrinks that set;
// emptying it ends exclusive mode and the ids fall back to never-drawn.
func (h *Handler) changeElements(ids []string, modelID, categoryID string, on bool) {
	sets := readElementSets(h.vp)
	exclusive := sets.exclusive && sets.always.Len() > 0
	baseVisible := categoryBase(h.vp, modelID, categoryID).State == StateVisible

	if on {
		if anyIn(ids, sets.never) {
			h.vp.SetNeverDrawn(sets.never.Without(ids...))
		}
		if !baseVisible || exclusive {
			h.vp.SetAlwaysDrawn(sets.always.With(ids...), exclusive)
		}
		return
	}

	if anyIn(ids, sets.always) {
		remaining := sets.always.Without(ids...)
		h.vp.SetAlwaysDrawn(remaining, exclusive && remaining.Len() > 0)
		if exclusive && remaining.Len() > 0 {
			return
		}
	} else if exclusive {
		return
	}
	if baseVisible && !allIn(ids, sets.never) {
		h.vp.SetNeverDrawn(sets.never.With(ids...))
	}
}
