package hierarchy

import (
	"context"
	"slices"

	"vistree/internal/debug"
	"vistree/internal/imodel"
)

type subjectIndex struct {
	rows     map[string]imodel.SubjectRow
	roots    []string
	children map[string][]string
	// models maps a subject to the models it owns directly.
	models    map[string][]string
	modelRows map[string]imodel.ModelRow
	modelIDs  []string
}

// buildSubjectIndex makes exactly two provider calls. A model is owned by the
// subject whose target partition names it, falling back to its parent.
func buildSubjectIndex(ctx context.Context, p imodel.QueryProvider) (*subjectIndex, error) {
	query("QueryAllSubjects")
	subjects, err := p.QueryAllSubjects(ctx)
	if err != nil {
		return nil, err
	}
	query("QueryAllModels")
	models, err := p.QueryAllModels(ctx)
	if err != nil {
		return nil, err
	}

	idx := &subjectIndex{
		rows:      make(map[string]imodel.SubjectRow, len(subjects)),
		children:  make(map[string][]string),
		models:    make(map[string][]string),
		modelRows: make(map[string]imodel.ModelRow, len(models)),
	}
	redirect := make(map[string]string)
	for _, s := range subjects {
		idx.rows[s.ID] = s
		if s.TargetPartitionID != "" {
			if _, taken := redirect[s.TargetPartitionID]; !taken {
				redirect[s.TargetPartitionID] = s.ID
			}
		}
	}
	for _, s := range subjects {
		if _, ok := idx.rows[s.ParentID]; s.ParentID == "" || !ok {
			idx.roots = append(idx.roots, s.ID)
			continue
		}
		idx.children[s.ParentID] = append(idx.children[s.ParentID], s.ID)
	}
	for _, m := range models {
		if m.IsPrivate {
			continue
		}
		idx.modelRows[m.ID] = m
		idx.modelIDs = append(idx.modelIDs, m.ID)
		owner := m.ParentID
		if s, ok := redirect[m.ID]; ok {
			owner = s
		}
		idx.models[owner] = append(idx.models[owner], m.ID)
	}
	return idx, nil
}

func (c *Cache) subjectIndex(ctx context.Context) (*subjectIndex, error) {
	return memoize(ctx, c, "subjects", "",
		func() (*subjectIndex, bool) { return c.subjects, c.subjects != nil },
		func(ctx context.Context) (*subjectIndex, error) { return buildSubjectIndex(ctx, c.provider) },
		func(idx *subjectIndex) { c.subjects = idx },
	)
}

// SubjectModelIDs returns the models of a subject and of all its descendant
// subjects, de-duplicated in discovery order. Unknown subjects have no models.
func (c *Cache) SubjectModelIDs(ctx context.Context, subjectID string) ([]string, error) {
	return c.SubjectsModelIDs(ctx, []string{subjectID})
}

// SubjectsModelIDs is SubjectModelIDs over the union of several subjects.
func (c *Cache) SubjectsModelIDs(ctx context.Context, subjectIDs []string) ([]string, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := []string{}
	seenModels := make(map[string]struct{})
	visited := make(map[string]struct{})
	stack := make([]string, 0, len(subjectIDs))
	for i := len(subjectIDs) - 1; i >= 0; i-- {
		stack = append(stack, subjectIDs[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[id]; ok {
			debug.Logf("hierarchy: subject %s reached twice, skipping", id)
			continue
		}
		visited[id] = struct{}{}

		for _, m := range idx.models[id] {
			if _, ok := seenModels[m]; ok {
				continue
			}
			seenModels[m] = struct{}{}
			out = append(out, m)
		}
		children := idx.children[id]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out, nil
}

// Subject returns a subject row by id.
func (c *Cache) Subject(ctx context.Context, subjectID string) (imodel.SubjectRow, bool, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return imodel.SubjectRow{}, false, err
	}
	row, ok := idx.rows[subjectID]
	return row, ok, nil
}

// RootSubjects returns subjects without a known parent.
func (c *Cache) RootSubjects(ctx context.Context) ([]imodel.SubjectRow, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.subjectRows(idx.roots), nil
}

// ChildSubjects returns the direct child subjects of subjectID.
func (c *Cache) ChildSubjects(ctx context.Context, subjectID string) ([]imodel.SubjectRow, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.subjectRows(idx.children[subjectID]), nil
}

// SubjectModels returns the models owned directly by subjectID.
func (c *Cache) SubjectModels(ctx context.Context, subjectID string) ([]imodel.ModelRow, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}
	ids := idx.models[subjectID]
	out := make([]imodel.ModelRow, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.modelRows[id])
	}
	return out, nil
}

// ModelIDs returns every non-private model id.
func (c *Cache) ModelIDs(ctx context.Context) ([]string, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(idx.modelIDs), nil
}

// Model returns a model row by id.
func (c *Cache) Model(ctx context.Context, modelID string) (imodel.ModelRow, bool, error) {
	idx, err := c.subjectIndex(ctx)
	if err != nil {
		return imodel.ModelRow{}, false, err
	}
	row, ok := idx.modelRows[modelID]
	return row, ok, nil
}

func (idx *subjectIndex) subjectRows(ids []string) []imodel.SubjectRow {
	out := make([]imodel.SubjectRow, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.rows[id])
	}
	return out
}
