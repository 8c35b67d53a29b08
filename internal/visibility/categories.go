package visibility

import (
	"context"

	"github.com/samber/lo"

	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/viewport"
)

// CategoriesHandler resolves and changes categories tree visibility:
// definition containers, categories and sub-categories, independent of models.
type CategoriesHandler struct {
	vp       viewport.Viewport
	cache    *hierarchy.Cache
	classify Classifier
	limit    int
}

// NewCategoriesHandler returns a categories tree handler.
func NewCategoriesHandler(vp viewport.Viewport, cache *hierarchy.Cache, opts ...Option) *CategoriesHandler {
	s := newSettings(opts)
	return &CategoriesHandler{
		vp:       vp,
		cache:    cache,
		classify: s.classify,
		limit:    s.maxConcurrency,
	}
}

// StatusAsync is the asynchronous form of GetVisibilityStatus.
func (h *CategoriesHandler) StatusAsync(ctx context.Context, n Node) <-chan StatusResult {
	return statusAsync(ctx, n, h.GetVisibilityStatus)
}

// GetVisibilityStatus resolves the status of a categories tree node.
func (h *CategoriesHandler) GetVisibilityStatus(ctx context.Context, n Node) (Status, error) {
	kind := h.classify(n)
	return traceStatus(ctx, "visibility.CategoriesHandler.GetVisibilityStatus", kind, n, func(ctx context.Context) (Status, error) {
		if !h.vp.IsSpatialView() && kind != KindUnknown {
			return Disabled(ReasonNonSpatialView), nil
		}
		switch kind {
		case KindCategory:
			statuses, err := fanOut(ctx, h.limit, n.IDs, h.categoryStatus)
			if err != nil {
				return Status{}, err
			}
			return fold(statuses, categoryReasons), nil
		case KindSubCategory:
			return h.subCategoryStatus(n), nil
		case KindDefinitionContainer:
			categories, err := h.containerCategories(ctx, n.IDs)
			if err != nil {
				return Status{}, err
			}
			statuses, err := fanOut(ctx, h.limit, categories, h.categoryStatus)
			if err != nil {
				return Status{}, err
			}
			return categoryReasons.status(states(statuses)), nil
		default:
			return Disabled(ReasonNotInstance), nil
		}
	})
}

func (h *CategoriesHandler) categoryStatus(ctx context.Context, categoryID string) (Status, error) {
	return categorySelectorStatus(ctx, h.vp, h.cache, categoryID)
}

func (h *CategoriesHandler) subCategoryStatus(n Node) Status {
	if n.CategoryID != "" && !h.vp.ViewsCategory(n.CategoryID) {
		return Hidden(ReasonCategoryHidden)
	}
	visible := lo.EveryBy(n.IDs, h.vp.ViewsSubCategory)
	if visible {
		return Visible(ReasonSubCategoryDisplayed)
	}
	return Hidden(ReasonSubCategoryHidden)
}

func (h *CategoriesHandler) containerCategories(ctx context.Context, containerIDs []string) ([]string, error) {
	var out []string
	for _, id := range containerIDs {
		rows, err := h.cache.DefinitionContainerCategories(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, categoryIDs(rows)...)
	}
	return lo.Uniq(out), nil
}

// ChangeVisibility turns a categories tree node on or off.
func (h *CategoriesHandler) ChangeVisibility(ctx context.Context, n Node, on bool) error {
	kind := h.classify(n)
	return traceChange(ctx, "visibility.CategoriesHandler.ChangeVisibility", kind, n, on, func(ctx context.Context) error {
		switch kind {
		case KindCategory:
			if err := h.changeCategories(ctx, n.IDs, on); err != nil {
				return err
			}
		case KindSubCategory:
			if err := h.changeSubCategories(ctx, n, on); err != nil {
				return err
			}
		case KindDefinitionContainer:
			categories, err := h.containerCategories(ctx, n.IDs)
			if err != nil {
				return err
			}
			if err := h.changeCategories(ctx, categories, on); err != nil {
				return err
			}
		default:
			return unsupportedNodeError(n)
		}
		return settle(ctx, h.vp)
	})
}

// changeCategories flips the selector and clears per-model overrides.
// Showing a category also shows all of its sub-categories.
func (h *CategoriesHandler) changeCategories(ctx context.Context, categoryIDs []string, on bool) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	h.vp.ChangeCategoryDisplay(categoryIDs, on, true)
	if !on {
		return nil
	}
	for _, id := range categoryIDs {
		subs, err := h.cache.SubCategories(ctx, id)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if !h.vp.ViewsSubCategory(sub.ID) {
				h.vp.ChangeSubCategoryDisplay(sub.ID, true)
			}
		}
	}
	return nil
}

// changeSubCategories shows or hides sub-categories. Showing one under a
// hidden category enables the category with only that sub-category on.
func (h *CategoriesHandler) changeSubCategories(ctx context.Context, n Node, on bool) error {
	if on && n.CategoryID != "" && !h.vp.ViewsCategory(n.CategoryID) {
		h.vp.ChangeCategoryDisplay([]string{n.CategoryID}, true, true)
		siblings, err := h.cache.SubCategories(ctx, n.CategoryID)
		if err != nil {
			return err
		}
		for _, sub := range siblings {
			if !lo.Contains(n.IDs, sub.ID) {
				h.vp.ChangeSubCategoryDisplay(sub.ID, false)
			}
		}
	}
	for _, id := range n.IDs {
		h.vp.ChangeSubCategoryDisplay(id, on)
	}
	return nil
}

// ShowAllCategories turns every category and sub-category on.
func (h *CategoriesHandler) ShowAllCategories(ctx context.Context) error {
	return h.changeAll(ctx, true)
}

// HideAllCategories turns every category off.
func (h *CategoriesHandler) HideAllCategories(ctx context.Context) error {
	return h.changeAll(ctx, false)
}

func (h *CategoriesHandler) changeAll(ctx context.Context, on bool) error {
	categories, err := h.cache.AllCategories(ctx)
	if err != nil {
		return err
	}
	if err := h.changeCategories(ctx, categoryIDs(categories), on); err != nil {
		return err
	}
	return settle(ctx, h.vp)
}

func categoryIDs(rows []imodel.CategoryRow) []string {
	return lo.Map(rows, func(c imodel.CategoryRow, _ int) string { return c.ID })
}
