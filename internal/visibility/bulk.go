package visibility

import (
	"context"

	"github.com/samber/lo"
)

// ShowAllModels views every model with all categories on and no element
// exceptions.
func (h *Handler) ShowAllModels(ctx context.Context) error {
	modelIDs, err := h.cache.ModelIDs(ctx)
	if err != nil {
		return err
	}
	categories, err := h.cache.AllCategories(ctx)
	if err != nil {
		return err
	}
	if len(modelIDs) > 0 {
		h.vp.AddViewedModels(modelIDs)
		h.vp.ClearCategoryOverrides(modelIDs)
	}
	if len(categories) > 0 {
		h.vp.ChangeCategoryDisplay(categoryIDs(categories), true, false)
	}
	h.vp.ClearNeverDrawn()
	h.vp.ClearAlwaysDrawn()
	return settle(ctx, h.vp)
}

// HideAllModels removes every model from the view.
func (h *Handler) HideAllModels(ctx context.Context) error {
	modelIDs, err := h.cache.ModelIDs(ctx)
	if err != nil {
		return err
	}
	if len(modelIDs) > 0 {
		h.vp.ChangeModelDisplay(modelIDs, false)
	}
	return settle(ctx, h.vp)
}

// InvertAllModels hides viewed models and views hidden ones.
func (h *Handler) InvertAllModels(ctx context.Context) error {
	modelIDs, err := h.cache.ModelIDs(ctx)
	if err != nil {
		return err
	}
	viewed := lo.Filter(modelIDs, func(id string, _ int) bool { return h.vp.ViewsModel(id) })
	hidden := lo.Reject(modelIDs, func(id string, _ int) bool { return h.vp.ViewsModel(id) })
	if len(viewed) > 0 {
		h.vp.ChangeModelDisplay(viewed, false)
	}
	if len(hidden) > 0 {
		h.vp.AddViewedModels(hidden)
	}
	return settle(ctx, h.vp)
}

// ClearElementOverrides empties the always-drawn and never-drawn sets.
func (h *Handler) ClearElementOverrides(ctx context.Context) error {
	h.vp.ClearAlwaysDrawn()
	h.vp.ClearNeverDrawn()
	return settle(ctx, h.vp)
}
