package hierarchy

import (
	"context"
	"iter"
	"slices"

	gocache "github.com/patrickmn/go-cache"

	"vistree/internal/imodel"
)

// GroupInfo is a resolved class-grouping node.
type GroupInfo struct {
	ModelID    string
	CategoryID string
	ElementIDs []string
}

// AssemblyElementIDs returns every descendant of an assembly element. The
// sequence is backed by a memoized slice and can be ranged over repeatedly.
func (c *Cache) AssemblyElementIDs(ctx context.Context, elementID string) (iter.Seq[string], error) {
	ids, err := memoize(ctx, c, "assemblies", elementID,
		func() ([]string, bool) {
			ids, ok := c.assemblies[elementID]
			return ids, ok
		},
		func(ctx context.Context) ([]string, error) { return c.loadAssembly(ctx, elementID) },
		func(ids []string) { c.assemblies[elementID] = ids },
	)
	if err != nil {
		return nil, err
	}
	return slices.Values(ids), nil
}

func (c *Cache) loadAssembly(ctx context.Context, rootID string) ([]string, error) {
	out := []string{}
	visited := map[string]struct{}{rootID: {}}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		query("QueryElementChildren")
		children, err := c.provider.QueryElementChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, ok := visited[child.ID]; ok {
				continue
			}
			visited[child.ID] = struct{}{}
			out = append(out, child.ID)
			if child.HasChildren {
				queue = append(queue, child.ID)
			}
		}
	}
	return out, nil
}

// GroupedElements resolves a class-grouping node to its members and the
// model and category they belong to. Invalid or empty groups fail with
// CodeInvalidGroupingNode; failures are not cached.
func (c *Cache) GroupedElements(ctx context.Context, key imodel.GroupingKey) (GroupInfo, error) {
	if err := key.Validate(); err != nil {
		return GroupInfo{}, err
	}
	cacheKey := key.Serialize()
	return memoize(ctx, c, "groups", cacheKey,
		func() (GroupInfo, bool) {
			v, ok := c.groups.Get(cacheKey)
			if !ok {
				return GroupInfo{}, false
			}
			return v.(GroupInfo), true
		},
		func(ctx context.Context) (GroupInfo, error) { return c.loadGroup(ctx, key) },
		func(info GroupInfo) { c.groups.Set(cacheKey, info, gocache.NoExpiration) },
	)
}

func (c *Cache) loadGroup(ctx context.Context, key imodel.GroupingKey) (GroupInfo, error) {
	query("QueryGroupedElements")
	ids, err := c.provider.QueryGroupedElements(ctx, key)
	if err != nil {
		return GroupInfo{}, err
	}
	if len(ids) == 0 {
		return GroupInfo{}, emptyGroupError(key)
	}
	info := GroupInfo{ModelID: key.ModelID, CategoryID: key.CategoryID, ElementIDs: ids}
	if info.ModelID != "" && info.CategoryID != "" {
		return info, nil
	}

	query("QueryElementInfo")
	rows, err := c.provider.QueryElementInfo(ctx, ids[:1])
	if err != nil {
		return GroupInfo{}, err
	}
	if len(rows) == 0 {
		return GroupInfo{}, unresolvedGroupError(key, ids[0])
	}
	info.ModelID = rows[0].ModelID
	info.CategoryID = rows[0].CategoryID
	return info, nil
}

// ElementInfo resolves model and category for a single element.
func (c *Cache) ElementInfo(ctx context.Context, elementID string) (imodel.ElementRow, bool, error) {
	query("QueryElementInfo")
	rows, err := c.provider.QueryElementInfo(ctx, []string{elementID})
	if err != nil {
		return imodel.ElementRow{}, false, err
	}
	if len(rows) == 0 {
		return imodel.ElementRow{}, false, nil
	}
	return rows[0], true, nil
}

// ModelCategories returns the categories that have elements in modelID.
func (c *Cache) ModelCategories(ctx context.Context, modelID string) ([]imodel.CategoryRow, error) {
	return memoize(ctx, c, "model_categories", modelID,
		func() ([]imodel.CategoryRow, bool) {
			rows, ok := c.modelCategories[modelID]
			return rows, ok
		},
		func(ctx context.Context) ([]imodel.CategoryRow, error) {
			query("QueryModelCategories")
			return c.provider.QueryModelCategories(ctx, modelID)
		},
		func(rows []imodel.CategoryRow) { c.modelCategories[modelID] = rows },
	)
}

// CategoryElements returns every element of categoryID in modelID, assembly
// descendants included. An empty modelID spans all models.
func (c *Cache) CategoryElements(ctx context.Context, modelID, categoryID string) ([]string, error) {
	key := modelID + "\x00" + categoryID
	return memoize(ctx, c, "category_elements", key,
		func() ([]string, bool) {
			ids, ok := c.categoryElements[key]
			return ids, ok
		},
		func(ctx context.Context) ([]string, error) { return c.loadCategoryElements(ctx, modelID, categoryID) },
		func(ids []string) { c.categoryElements[key] = ids },
	)
}

func (c *Cache) loadCategoryElements(ctx context.Context, modelID, categoryID string) ([]string, error) {
	query("QueryCategoryElements")
	rows, err := c.provider.QueryCategoryElements(ctx, categoryID, modelID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, row := range rows {
		add(row.ID)
		if !row.HasChildren {
			continue
		}
		descendants, err := c.AssemblyElementIDs(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		for id := range descendants {
			add(id)
		}
	}
	return out, nil
}
