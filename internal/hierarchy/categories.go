package hierarchy

import (
	"context"

	"vistree/internal/imodel"
)

type categoryIndex struct {
	containers      map[string]imodel.DefinitionContainerRow
	rootContainers  []string
	childContainers map[string][]string
	categories      []imodel.CategoryRow
	byContainer     map[string][]imodel.CategoryRow
	rootCategories  []imodel.CategoryRow
}

func buildCategoryIndex(ctx context.Context, p imodel.QueryProvider) (*categoryIndex, error) {
	query("QueryDefinitionContainers")
	containers, err := p.QueryDefinitionContainers(ctx)
	if err != nil {
		return nil, err
	}
	query("QueryAllCategories")
	categories, err := p.QueryAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	idx := &categoryIndex{
		containers:      make(map[string]imodel.DefinitionContainerRow, len(containers)),
		childContainers: make(map[string][]string),
		categories:      categories,
		byContainer:     make(map[string][]imodel.CategoryRow),
	}
	for _, dc := range containers {
		idx.containers[dc.ID] = dc
	}
	for _, dc := range containers {
		if _, ok := idx.containers[dc.ParentID]; dc.ParentID == "" || !ok {
			idx.rootContainers = append(idx.rootContainers, dc.ID)
			continue
		}
		idx.childContainers[dc.ParentID] = append(idx.childContainers[dc.ParentID], dc.ID)
	}
	for _, cat := range categories {
		if _, ok := idx.containers[cat.DefinitionContainerID]; cat.DefinitionContainerID == "" || !ok {
			idx.rootCategories = append(idx.rootCategories, cat)
			continue
		}
		idx.byContainer[cat.DefinitionContainerID] = append(idx.byContainer[cat.DefinitionContainerID], cat)
	}
	return idx, nil
}

func (c *Cache) categoryIndex(ctx context.Context) (*categoryIndex, error) {
	return memoize(ctx, c, "categories", "",
		func() (*categoryIndex, bool) { return c.categories, c.categories != nil },
		func(ctx context.Context) (*categoryIndex, error) { return buildCategoryIndex(ctx, c.provider) },
		func(idx *categoryIndex) { c.categories = idx },
	)
}

// AllCategories returns every category in provider order.
func (c *Cache) AllCategories(ctx context.Context) ([]imodel.CategoryRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return append([]imodel.CategoryRow(nil), idx.categories...), nil
}

// RootCategories returns categories outside any known definition container.
func (c *Cache) RootCategories(ctx context.Context) ([]imodel.CategoryRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return append([]imodel.CategoryRow(nil), idx.rootCategories...), nil
}

// RootDefinitionContainers returns containers without a known parent.
func (c *Cache) RootDefinitionContainers(ctx context.Context) ([]imodel.DefinitionContainerRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.containerRows(idx.rootContainers), nil
}

// ChildDefinitionContainers returns the containers nested directly in containerID.
func (c *Cache) ChildDefinitionContainers(ctx context.Context, containerID string) ([]imodel.DefinitionContainerRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.containerRows(idx.childContainers[containerID]), nil
}

// ContainerCategories returns the categories placed directly in containerID.
func (c *Cache) ContainerCategories(ctx context.Context, containerID string) ([]imodel.CategoryRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return append([]imodel.CategoryRow(nil), idx.byContainer[containerID]...), nil
}

// DefinitionContainerCategories returns the categories of containerID and
// of every container nested below it.
func (c *Cache) DefinitionContainerCategories(ctx context.Context, containerID string) ([]imodel.CategoryRow, error) {
	idx, err := c.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := []imodel.CategoryRow{}
	visited := make(map[string]struct{})
	stack := []string{containerID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		out = append(out, idx.byContainer[id]...)
		children := idx.childContainers[id]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out, nil
}

// SubCategories returns the sub-categories of categoryID.
func (c *Cache) SubCategories(ctx context.Context, categoryID string) ([]imodel.SubCategoryRow, error) {
	return memoize(ctx, c, "sub_categories", categoryID,
		func() ([]imodel.SubCategoryRow, bool) {
			rows, ok := c.subCategories[categoryID]
			return rows, ok
		},
		func(ctx context.Context) ([]imodel.SubCategoryRow, error) {
			query("QuerySubCategories")
			return c.provider.QuerySubCategories(ctx, categoryID)
		},
		func(rows []imodel.SubCategoryRow) { c.subCategories[categoryID] = rows },
	)
}

func (idx *categoryIndex) containerRows(ids []string) []imodel.DefinitionContainerRow {
	out := make([]imodel.DefinitionContainerRow, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.containers[id])
	}
	return out
}
