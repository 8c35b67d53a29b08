package imodel

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a complete hierarchy held in memory. It is the YAML document
// format accepted by LoadFixture and the seed format for SeedSQLite.
type Fixture struct {
	Subjects             []SubjectRow             `yaml:"subjects"`
	Models               []ModelRow               `yaml:"models"`
	DefinitionContainers []DefinitionContainerRow `yaml:"definitionContainers,omitempty"`
	Categories           []CategoryRow            `yaml:"categories"`
	SubCategories        []SubCategoryRow         `yaml:"subCategories,omitempty"`
	Elements             []ElementRow             `yaml:"elements"`
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (Fixture, error) {
	//nolint:gosec // G304: fixture path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture document.
func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, parseError("parse fixture", err)
	}
	return f, nil
}

// FixtureProvider serves a Fixture from memory. Row order follows declaration
// order in the fixture.
type FixtureProvider struct {
	fixture    Fixture
	categories map[string]CategoryRow
	elements   map[string]ElementRow
	children   map[string][]string
}

var _ QueryProvider = (*FixtureProvider)(nil)

// NewFixtureProvider indexes f. The fixture must not be mutated afterwards.
func NewFixtureProvider(f Fixture) *FixtureProvider {
	p := &FixtureProvider{
		fixture:    f,
		categories: make(map[string]CategoryRow, len(f.Categories)),
		elements:   make(map[string]ElementRow, len(f.Elements)),
		children:   make(map[string][]string),
	}
	for _, c := range f.Categories {
		p.categories[c.ID] = c
	}
	for _, e := range f.Elements {
		if e.ParentID != "" {
			p.children[e.ParentID] = append(p.children[e.ParentID], e.ID)
		}
	}
	for _, e := range f.Elements {
		e.HasChildren = len(p.children[e.ID]) > 0
		p.elements[e.ID] = e
	}
	return p
}

func (p *FixtureProvider) QueryAllSubjects(ctx context.Context) ([]SubjectRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]SubjectRow(nil), p.fixture.Subjects...), nil
}

func (p *FixtureProvider) QueryAllModels(ctx context.Context) ([]ModelRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ModelRow, 0, len(p.fixture.Models))
	for _, m := range p.fixture.Models {
		if !m.IsPrivate {
			out = append(out, m)
		}
	}
	return out, nil
}

func (p *FixtureProvider) QueryModelCategories(ctx context.Context, modelID string) ([]CategoryRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []CategoryRow
	for _, e := range p.fixture.Elements {
		if e.ModelID != modelID || e.ParentID != "" {
			continue
		}
		if _, ok := seen[e.CategoryID]; ok {
			continue
		}
		seen[e.CategoryID] = struct{}{}
		c, ok := p.categories[e.CategoryID]
		if !ok {
			c = CategoryRow{ID: e.CategoryID}
		}
		out = append(out, c)
	}
	return out, nil
}

func (p *FixtureProvider) QueryCategoryElements(ctx context.Context, categoryID, modelID string) ([]ElementRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []ElementRow
	for _, e := range p.fixture.Elements {
		if e.CategoryID != categoryID || e.ParentID != "" {
			continue
		}
		if modelID != "" && e.ModelID != modelID {
			continue
		}
		out = append(out, p.elements[e.ID])
	}
	return out, nil
}

func (p *FixtureProvider) QueryElementChildren(ctx context.Context, elementID string) ([]ElementRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := p.children[elementID]
	out := make([]ElementRow, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.elements[id])
	}
	return out, nil
}

func (p *FixtureProvider) QueryGroupedElements(ctx context.Context, key GroupingKey) ([]string, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range p.fixture.Elements {
		if e.ClassName != key.ClassName {
			continue
		}
		if key.ParentElementID != "" {
			if e.ParentID == key.ParentElementID {
				ids = append(ids, e.ID)
			}
			continue
		}
		if e.ParentID != "" || e.CategoryID != key.CategoryID {
			continue
		}
		if key.ModelID != "" && e.ModelID != key.ModelID {
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (p *FixtureProvider) QueryElementInfo(ctx context.Context, elementIDs []string) ([]ElementRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ElementRow, 0, len(elementIDs))
	for _, id := range elementIDs {
		if e, ok := p.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *FixtureProvider) QueryAllCategories(ctx context.Context) ([]CategoryRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]CategoryRow(nil), p.fixture.Categories...), nil
}

func (p *FixtureProvider) QuerySubCategories(ctx context.Context, categoryID string) ([]SubCategoryRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []SubCategoryRow
	for _, sc := range p.fixture.SubCategories {
		if sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (p *FixtureProvider) QueryDefinitionContainers(ctx context.Context) ([]DefinitionContainerRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]DefinitionContainerRow(nil), p.fixture.DefinitionContainers...), nil
}
