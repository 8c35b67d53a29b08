// Package tree builds browsable models and categories trees over a
// hierarchy cache and filters them by label.
package tree

import (
	"context"
	"fmt"

	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/visibility"
)

// Mode selects which tree a Builder produces.
type Mode int

const (
	ModelsTree Mode = iota
	CategoriesTree
)

func (m Mode) String() string {
	if m == CategoriesTree {
		return "categories"
	}
	return "models"
}

// Builder loads tree levels on demand.
type Builder struct {
	cache *hierarchy.Cache
}

// NewBuilder creates a Builder reading through cache.
func NewBuilder(cache *hierarchy.Cache) *Builder {
	return &Builder{cache: cache}
}

// Roots returns the top level of the tree for mode.
func (b *Builder) Roots(ctx context.Context, mode Mode) ([]*Node, error) {
	if mode == CategoriesTree {
		return b.categoryRoots(ctx)
	}
	subjects, err := b.cache.RootSubjects(ctx)
	if err != nil {
		return nil, err
	}
	roots := make([]*Node, 0, len(subjects))
	for _, s := range subjects {
		roots = append(roots, subjectNode(s))
	}
	return roots, nil
}

// Expand loads the children of n if needed and marks it expanded.
func (b *Builder) Expand(ctx context.Context, n *Node) error {
	if err := b.Load(ctx, n); err != nil {
		return err
	}
	n.Expanded = len(n.Children) > 0
	return nil
}

// Load fetches the children of n once.
func (b *Builder) Load(ctx context.Context, n *Node) error {
	if n.Loaded {
		return nil
	}
	children, err := b.children(ctx, n.Item)
	if err != nil {
		return err
	}
	n.setChildren(children)
	return nil
}

// LoadAll loads every level below roots up to maxDepth (0 means unbounded).
func (b *Builder) LoadAll(ctx context.Context, roots []*Node, maxDepth int) error {
	stack := append([]*Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if maxDepth > 0 && n.Depth >= maxDepth {
			continue
		}
		if err := b.Load(ctx, n); err != nil {
			return err
		}
		stack = append(stack, n.Children...)
	}
	return nil
}

func (b *Builder) children(ctx context.Context, item visibility.Node) ([]*Node, error) {
	switch item.Kind {
	case visibility.KindSubject:
		return b.subjectChildren(ctx, item.ID())
	case visibility.KindModel:
		return b.modelChildren(ctx, item.ID())
	case visibility.KindCategory:
		if item.ModelID == "" {
			return b.subCategoryChildren(ctx, item.ID())
		}
		return b.categoryChildren(ctx, item.ModelID, item.ID())
	case visibility.KindClassGrouping:
		return b.groupChildren(ctx, *item.GroupingKey)
	case visibility.KindElement:
		return b.elementChildren(ctx, item)
	case visibility.KindDefinitionContainer:
		return b.containerChildren(ctx, item.ID())
	default:
		return nil, nil
	}
}

// subjectChildren lists child subjects and models. Subjects hidden in the
// hierarchy are replaced by their own children.
func (b *Builder) subjectChildren(ctx context.Context, subjectID string) ([]*Node, error) {
	var subjects []*Node
	var models []*Node
	visited := map[string]struct{}{}
	queue := []string{subjectID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}

		rows, err := b.cache.SubjectModels(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, m := range rows {
			models = append(models, modelNode(m))
		}
		children, err := b.cache.ChildSubjects(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, s := range children {
			if s.HideInHierarchy {
				queue = append(queue, s.ID)
				continue
			}
			subjects = append(subjects, subjectNode(s))
		}
	}
	return append(subjects, models...), nil
}

func (b *Builder) modelChildren(ctx context.Context, modelID string) ([]*Node, error) {
	categories, err := b.cache.ModelCategories(ctx, modelID)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(categories))
	for _, c := range categories {
		out = append(out, &Node{Item: visibility.Node{
			Kind:        visibility.KindCategory,
			IDs:         []string{c.ID},
			ModelID:     modelID,
			Label:       c.Label,
			HasChildren: true,
		}})
	}
	return out, nil
}

func (b *Builder) categoryChildren(ctx context.Context, modelID, categoryID string) ([]*Node, error) {
	rows, err := b.cache.Provider().QueryCategoryElements(ctx, categoryID, modelID)
	if err != nil {
		return nil, err
	}
	return groupByClass(rows, func(className string) imodel.GroupingKey {
		return imodel.GroupingKey{ClassName: className, ModelID: modelID, CategoryID: categoryID}
	}), nil
}

func (b *Builder) elementChildren(ctx context.Context, item visibility.Node) ([]*Node, error) {
	rows, err := b.cache.Provider().QueryElementChildren(ctx, item.ID())
	if err != nil {
		return nil, err
	}
	return groupByClass(rows, func(className string) imodel.GroupingKey {
		return imodel.GroupingKey{ClassName: className, ModelID: item.ModelID, ParentElementID: item.ID()}
	}), nil
}

func (b *Builder) groupChildren(ctx context.Context, key imodel.GroupingKey) ([]*Node, error) {
	var (
		rows []imodel.ElementRow
		err  error
	)
	provider := b.cache.Provider()
	if key.ParentElementID != "" {
		rows, err = provider.QueryElementChildren(ctx, key.ParentElementID)
	} else {
		rows, err = provider.QueryCategoryElements(ctx, key.CategoryID, key.ModelID)
	}
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, row := range rows {
		if row.ClassName != key.ClassName {
			continue
		}
		out = append(out, &Node{Item: visibility.Node{
			Kind:        visibility.KindElement,
			IDs:         []string{row.ID},
			ModelID:     row.ModelID,
			CategoryID:  row.CategoryID,
			HasChildren: row.HasChildren,
			Label:       row.Label,
		}})
	}
	return out, nil
}

// groupByClass returns one grouping node per class, in first-seen order.
func groupByClass(rows []imodel.ElementRow, key func(className string) imodel.GroupingKey) []*Node {
	counts := map[string]int{}
	var order []string
	for _, row := range rows {
		if _, ok := counts[row.ClassName]; !ok {
			order = append(order, row.ClassName)
		}
		counts[row.ClassName]++
	}
	out := make([]*Node, 0, len(order))
	for _, className := range order {
		k := key(className)
		out = append(out, &Node{Item: visibility.Node{
			Kind:        visibility.KindClassGrouping,
			GroupingKey: &k,
			HasChildren: true,
			Label:       fmt.Sprintf("%s (%d)", className, counts[className]),
		}})
	}
	return out
}

func (b *Builder) categoryRoots(ctx context.Context) ([]*Node, error) {
	containers, err := b.cache.RootDefinitionContainers(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := b.cache.RootCategories(ctx)
	if err != nil {
		return nil, err
	}
	return append(containerNodes(containers), treeCategoryNodes(categories)...), nil
}

func (b *Builder) containerChildren(ctx context.Context, containerID string) ([]*Node, error) {
	containers, err := b.cache.ChildDefinitionContainers(ctx, containerID)
	if err != nil {
		return nil, err
	}
	categories, err := b.cache.ContainerCategories(ctx, containerID)
	if err != nil {
		return nil, err
	}
	return append(containerNodes(containers), treeCategoryNodes(categories)...), nil
}

func (b *Builder) subCategoryChildren(ctx context.Context, categoryID string) ([]*Node, error) {
	subs, err := b.cache.SubCategories(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(subs))
	for _, s := range subs {
		out = append(out, &Node{Item: visibility.Node{
			Kind:       visibility.KindSubCategory,
			IDs:        []string{s.ID},
			CategoryID: categoryID,
			Label:      s.Label,
		}})
	}
	return out, nil
}

func subjectNode(s imodel.SubjectRow) *Node {
	return &Node{Item: visibility.Node{
		Kind:        visibility.KindSubject,
		IDs:         []string{s.ID},
		Label:       s.Label,
		HasChildren: true,
	}}
}

func modelNode(m imodel.ModelRow) *Node {
	return &Node{Item: visibility.Node{
		Kind:        visibility.KindModel,
		IDs:         []string{m.ID},
		Label:       m.Label,
		HasChildren: true,
	}}
}

func containerNodes(rows []imodel.DefinitionContainerRow) []*Node {
	out := make([]*Node, 0, len(rows))
	for _, dc := range rows {
		out = append(out, &Node{Item: visibility.Node{
			Kind:        visibility.KindDefinitionContainer,
			IDs:         []string{dc.ID},
			Label:       dc.Label,
			HasChildren: true,
		}})
	}
	return out
}

func treeCategoryNodes(rows []imodel.CategoryRow) []*Node {
	out := make([]*Node, 0, len(rows))
	for _, c := range rows {
		out = append(out, &Node{Item: visibility.Node{
			Kind:        visibility.KindCategory,
			IDs:         []string{c.ID},
			Label:       c.Label,
			HasChildren: true,
		}})
	}
	return out
}
