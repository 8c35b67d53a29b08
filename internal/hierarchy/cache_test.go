package hierarchy

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "vistree/internal/errors"
	"vistree/internal/imodel"
)

func newSampleCache() (*Cache, *imodel.MockProvider) {
	mock := imodel.NewMockProvider(imodel.NewFixtureProvider(imodel.SampleFixture()))
	return New(mock), mock
}

func TestSubjectModelIDsUsesTwoBatchedQueries(t *testing.T) {
	ctx := context.Background()
	c, mock := newSampleCache()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.SubjectModelIDs(ctx, "s-root")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := c.SubjectModelIDs(ctx, "s-arch")
	require.NoError(t, err)

	counts := mock.Counts()
	assert.Equal(t, 1, counts["QueryAllSubjects"])
	assert.Equal(t, 1, counts["QueryAllModels"])
}

func TestSubjectModelIDsHonorsTargetPartition(t *testing.T) {
	ctx := context.Background()
	c, _ := newSampleCache()

	root, err := c.SubjectModelIDs(ctx, "s-root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m-arch", "m-struct", "m-mep"}, root, "private models are excluded")

	mep, err := c.SubjectModelIDs(ctx, "s-mep")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-mep"}, mep, "redirect wins over the model's parent")

	direct, err := c.SubjectModels(ctx, "s-root")
	require.NoError(t, err)
	assert.Empty(t, direct)

	unknown, err := c.SubjectModelIDs(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSubjectModelIDsToleratesCycles(t *testing.T) {
	f := imodel.Fixture{
		Subjects: []imodel.SubjectRow{
			{ID: "a", ParentID: "b"},
			{ID: "b", ParentID: "a"},
		},
		Models: []imodel.ModelRow{
			{ID: "m1", ParentID: "a"},
			{ID: "m2", ParentID: "b"},
		},
	}
	c := New(imodel.NewFixtureProvider(f))

	ids, err := c.SubjectModelIDs(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	roots, err := c.RootSubjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestSubjectsModelIDsDeduplicates(t *testing.T) {
	c, _ := newSampleCache()
	ids, err := c.SubjectsModelIDs(context.Background(), []string{"s-arch", "s-root", "s-arch"})
	require.NoError(t, err)
	assert.Equal(t, "m-arch", ids[0])
	assert.Len(t, ids, 3)
}

func TestAssemblyElementIDsReplayable(t *testing.T) {
	ctx := context.Background()
	c, mock := newSampleCache()

	seq, err := c.AssemblyElementIDs(ctx, "e-door-1")
	require.NoError(t, err)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, []string{"e-door-1-frame", "e-door-1-leaf"}, first)
	assert.Equal(t, first, second)

	_, err = c.AssemblyElementIDs(ctx, "e-door-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Counts()["QueryElementChildren"])
}

func TestGroupedElementsResolvesAndMemoizes(t *testing.T) {
	ctx := context.Background()
	c, mock := newSampleCache()
	key := imodel.GroupingKey{ClassName: "Arch:DoorLeaf", ParentElementID: "e-door-1"}

	info, err := c.GroupedElements(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "m-arch", info.ModelID)
	assert.Equal(t, "c-doors", info.CategoryID)
	assert.Equal(t, []string{"e-door-1-leaf"}, info.ElementIDs)

	_, err = c.GroupedElements(ctx, key)
	require.NoError(t, err)
	counts := mock.Counts()
	assert.Equal(t, 1, counts["QueryGroupedElements"])
	assert.Equal(t, 1, counts["QueryElementInfo"])
}

func TestGroupedElementsSkipsInfoLookupWhenKeyIsComplete(t *testing.T) {
	c, mock := newSampleCache()
	info, err := c.GroupedElements(context.Background(),
		imodel.GroupingKey{ClassName: "Struct:Beam", ModelID: "m-struct", CategoryID: "c-beams"})
	require.NoError(t, err)
	assert.Equal(t, "m-struct", info.ModelID)
	assert.Equal(t, 0, mock.Counts()["QueryElementInfo"])
}

func TestGroupedElementsInvalidKey(t *testing.T) {
	ctx := context.Background()
	c, mock := newSampleCache()

	_, err := c.GroupedElements(ctx, imodel.GroupingKey{CategoryID: "c-walls"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidGroupingNode))
	assert.Equal(t, 0, mock.Counts()["QueryGroupedElements"])

	empty := imodel.GroupingKey{ClassName: "Arch:Window", ModelID: "m-arch", CategoryID: "c-walls"}
	_, err = c.GroupedElements(ctx, empty)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidGroupingNode))

	_, err = c.GroupedElements(ctx, empty)
	require.Error(t, err)
	assert.Equal(t, 2, mock.Counts()["QueryGroupedElements"], "failures are not cached")
}

func TestFailedBuildDoesNotPoisonCache(t *testing.T) {
	ctx := context.Background()
	fixture := imodel.NewFixtureProvider(imodel.SampleFixture())
	mock := imodel.NewMockProvider(fixture)
	boom := errors.New("database is locked")
	mock.QueryAllModelsFn = func(context.Context) ([]imodel.ModelRow, error) {
		return nil, boom
	}
	c := New(mock)

	_, err := c.SubjectModelIDs(ctx, "s-root")
	require.ErrorIs(t, err, boom)

	mock.QueryAllModelsFn = nil
	ids, err := c.SubjectModelIDs(ctx, "s-root")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestCategoryElementsIncludeAssemblyDescendants(t *testing.T) {
	c, _ := newSampleCache()
	ids, err := c.CategoryElements(context.Background(), "m-arch", "c-doors")
	require.NoError(t, err)
	assert.Equal(t, []string{"e-door-1", "e-door-1-frame", "e-door-1-leaf"}, ids)

	none, err := c.CategoryElements(context.Background(), "m-struct", "c-doors")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClearDropsEntries(t *testing.T) {
	ctx := context.Background()
	c, mock := newSampleCache()

	_, err := c.SubjectModelIDs(ctx, "s-root")
	require.NoError(t, err)
	_, err = c.ModelCategories(ctx, "m-arch")
	require.NoError(t, err)
	_, err = c.GroupedElements(ctx, imodel.GroupingKey{ClassName: "Arch:Wall", ModelID: "m-arch", CategoryID: "c-walls"})
	require.NoError(t, err)

	c.Clear()

	_, err = c.SubjectModelIDs(ctx, "s-root")
	require.NoError(t, err)
	_, err = c.ModelCategories(ctx, "m-arch")
	require.NoError(t, err)
	_, err = c.GroupedElements(ctx, imodel.GroupingKey{ClassName: "Arch:Wall", ModelID: "m-arch", CategoryID: "c-walls"})
	require.NoError(t, err)

	counts := mock.Counts()
	assert.Equal(t, 2, counts["QueryAllSubjects"])
	assert.Equal(t, 2, counts["QueryModelCategories"])
	assert.Equal(t, 2, counts["QueryGroupedElements"])
}

func TestDefinitionContainerCategoriesRecurse(t *testing.T) {
	ctx := context.Background()
	c, _ := newSampleCache()

	roots, err := c.RootDefinitionContainers(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "dc-arch", roots[0].ID)

	nested, err := c.ChildDefinitionContainers(ctx, "dc-arch")
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, "dc-openings", nested[0].ID)

	direct, err := c.ContainerCategories(ctx, "dc-arch")
	require.NoError(t, err)
	assert.Len(t, direct, 1)

	all, err := c.DefinitionContainerCategories(ctx, "dc-arch")
	require.NoError(t, err)
	ids := []string{}
	for _, cat := range all {
		ids = append(ids, cat.ID)
	}
	assert.Equal(t, []string{"c-walls", "c-doors"}, ids)

	loose, err := c.RootCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, loose, 2)

	subs, err := c.SubCategories(ctx, "c-walls")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestCancelledWaiterDoesNotFailSharedBuild(t *testing.T) {
	mock := imodel.NewMockProvider(imodel.NewFixtureProvider(imodel.SampleFixture()))
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	mock.QueryModelCategoriesFn = func(ctx context.Context, modelID string) ([]imodel.CategoryRow, error) {
		once.Do(func() { close(started) })
		<-release
		return []imodel.CategoryRow{{ID: "c-walls"}}, ctx.Err()
	}
	c := New(mock)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.ModelCategories(ctxA, "m-arch")
		errA <- err
	}()
	<-started

	type result struct {
		rows []imodel.CategoryRow
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		rows, err := c.ModelCategories(context.Background(), "m-arch")
		resB <- result{rows, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, []imodel.CategoryRow{{ID: "c-walls"}}, b.rows)
	assert.Equal(t, 1, mock.Counts()["QueryModelCategories"])

	rows, err := c.ModelCategories(context.Background(), "m-arch")
	require.NoError(t, err)
	assert.Equal(t, b.rows, rows, "result stays cached")
}
