package imodel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "vistree/internal/errors"
)

const fixtureYAML = `
subjects:
  - id: s1
    label: Root
  - id: s2
    parent: s1
    targetPartition: m2
models:
  - id: m1
    parent: s1
  - id: m2
    parent: s1
  - id: m3
    parent: s1
    private: true
categories:
  - id: c1
    label: Walls
subCategories:
  - id: sc1
    category: c1
elements:
  - id: e1
    model: m1
    category: c1
    class: Arch:Wall
  - id: e2
    model: m1
    category: c1
    parent: e1
    class: Arch:Panel
`

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	f, err := LoadFixture(path)
	require.NoError(t, err)

	require.Len(t, f.Subjects, 2)
	assert.Equal(t, "m2", f.Subjects[1].TargetPartitionID)
	require.Len(t, f.Models, 3)
	assert.True(t, f.Models[2].IsPrivate)
	require.Len(t, f.Elements, 2)
	assert.Equal(t, "e1", f.Elements[1].ParentID)
	assert.Equal(t, "Arch:Panel", f.Elements[1].ClassName)
}

func TestParseFixtureRejectsMalformedYAML(t *testing.T) {
	_, err := ParseFixture([]byte("subjects: [unterminated"))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeParseFailed))
}

func TestLoadFixtureMissingFile(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixtureProviderQueries(t *testing.T) {
	ctx := context.Background()
	p := NewFixtureProvider(SampleFixture())

	models, err := p.QueryAllModels(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m-arch", "m-struct", "m-mep"}, ids, "private models are excluded")

	cats, err := p.QueryModelCategories(ctx, "m-arch")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "c-walls", cats[0].ID)
	assert.Equal(t, "dc-arch", cats[0].DefinitionContainerID)

	doors, err := p.QueryCategoryElements(ctx, "c-doors", "m-arch")
	require.NoError(t, err)
	require.Len(t, doors, 1, "children are not top-level elements")
	assert.True(t, doors[0].HasChildren)

	children, err := p.QueryElementChildren(ctx, "e-door-1")
	require.NoError(t, err)
	assert.Len(t, children, 2)

	grouped, err := p.QueryGroupedElements(ctx, GroupingKey{ClassName: "Struct:Beam", ModelID: "m-struct", CategoryID: "c-beams"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e-beam-1", "e-beam-2"}, grouped)

	leaf, err := p.QueryGroupedElements(ctx, GroupingKey{ClassName: "Arch:DoorLeaf", ParentElementID: "e-door-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e-door-1-leaf"}, leaf)

	info, err := p.QueryElementInfo(ctx, []string{"e-duct-1", "unknown"})
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "m-mep", info[0].ModelID)
	assert.Equal(t, "c-ducts", info[0].CategoryID)

	subs, err := p.QuerySubCategories(ctx, "c-walls")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestFixtureProviderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewFixtureProvider(SampleFixture())

	_, err := p.QueryAllSubjects(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockProviderCountsAndFallback(t *testing.T) {
	ctx := context.Background()
	m := NewMockProvider(NewFixtureProvider(SampleFixture()))

	_, err := m.QueryAllSubjects(ctx)
	require.NoError(t, err)
	_, err = m.QueryAllSubjects(ctx)
	require.NoError(t, err)
	_, err = m.QueryElementInfo(ctx, []string{"e-wall-1"})
	require.NoError(t, err)

	counts := m.Counts()
	assert.Equal(t, 2, counts["QueryAllSubjects"])
	assert.Equal(t, 1, counts["QueryElementInfo"])
	assert.Equal(t, [][]string{{"e-wall-1"}}, m.QueryElementInfoCallArgs)

	bare := NewMockProvider(nil)
	_, err = bare.QueryAllModels(ctx)
	assert.ErrorIs(t, err, ErrMockNotImplemented)
}
