package imodel

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "vistree/internal/errors"
)

// testSiteDB creates a database seeded with SampleFixture and returns its path.
func testSiteDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "site.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := SeedSQLite(context.Background(), db, SampleFixture()); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return dbPath
}

func TestNewSQLiteProviderRequiresPath(t *testing.T) {
	_, err := NewSQLiteProvider("   ")
	require.Error(t, err)
}

func TestBuildSQLiteDSNIsReadOnly(t *testing.T) {
	dsn := buildSQLiteDSN("/tmp/site.db")
	assert.Contains(t, dsn, "mode=ro")
	assert.Contains(t, dsn, "_journal_mode=WAL")
}

func TestSQLiteProviderSubjectsAndModels(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLiteProvider(testSiteDB(t))
	require.NoError(t, err)

	subjects, err := p.QueryAllSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 4)
	byID := map[string]SubjectRow{}
	for _, s := range subjects {
		byID[s.ID] = s
	}
	assert.Equal(t, "", byID["s-root"].ParentID)
	assert.Equal(t, "s-root", byID["s-arch"].ParentID)
	assert.Equal(t, "m-mep", byID["s-mep"].TargetPartitionID)
	assert.True(t, byID["s-mep"].HideInHierarchy)

	models, err := p.QueryAllModels(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"m-arch", "m-struct", "m-mep"}, ids)
}

func TestSQLiteProviderElements(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLiteProvider(testSiteDB(t))
	require.NoError(t, err)

	cats, err := p.QueryModelCategories(ctx, "m-arch")
	require.NoError(t, err)
	catIDs := []string{}
	for _, c := range cats {
		catIDs = append(catIDs, c.ID)
	}
	assert.ElementsMatch(t, []string{"c-walls", "c-doors"}, catIDs)

	doors, err := p.QueryCategoryElements(ctx, "c-doors", "m-arch")
	require.NoError(t, err)
	require.Len(t, doors, 1)
	assert.Equal(t, "e-door-1", doors[0].ID)
	assert.True(t, doors[0].HasChildren)

	allBeams, err := p.QueryCategoryElements(ctx, "c-beams", "")
	require.NoError(t, err)
	assert.Len(t, allBeams, 3)

	children, err := p.QueryElementChildren(ctx, "e-door-1")
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, "e-door-1", c.ParentID)
		assert.False(t, c.HasChildren)
	}

	grouped, err := p.QueryGroupedElements(ctx, GroupingKey{ClassName: "Struct:Beam", ModelID: "m-struct", CategoryID: "c-beams"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e-beam-1", "e-beam-2"}, grouped)

	info, err := p.QueryElementInfo(ctx, []string{"e-duct-1", "e-wall-2"})
	require.NoError(t, err)
	assert.Len(t, info, 2)

	empty, err := p.QueryElementInfo(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteProviderCategoriesTree(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLiteProvider(testSiteDB(t))
	require.NoError(t, err)

	containers, err := p.QueryDefinitionContainers(ctx)
	require.NoError(t, err)
	require.Len(t, containers, 2)

	all, err := p.QueryAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	subs, err := p.QuerySubCategories(ctx, "c-walls")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestSQLiteProviderInvalidGroupingKey(t *testing.T) {
	p, err := NewSQLiteProvider(testSiteDB(t))
	require.NoError(t, err)

	_, err = p.QueryGroupedElements(context.Background(), GroupingKey{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidGroupingNode))
}

func TestSQLiteProviderMissingDatabase(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "missing.db"))
	require.NoError(t, err)

	_, err = p.QueryAllSubjects(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeQueryFailed))
}
