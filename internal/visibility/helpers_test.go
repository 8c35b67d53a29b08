package visibility

import (
	"slices"
	"sync"
	"testing"

	"vistree/internal/hierarchy"
	"vistree/internal/imodel"
	"vistree/internal/viewport"
)

// testFixture: subject S owns M1 and M2; S2 owns nothing. C3 has no
// elements. A1 is an assembly with one child.
func testFixture() imodel.Fixture {
	return imodel.Fixture{
		Subjects: []imodel.SubjectRow{
			{ID: "S", Label: "Site"},
			{ID: "S2", Label: "Empty"},
		},
		Models: []imodel.ModelRow{
			{ID: "M1", ParentID: "S"},
			{ID: "M2", ParentID: "S"},
		},
		DefinitionContainers: []imodel.DefinitionContainerRow{
			{ID: "DC1"},
		},
		Categories: []imodel.CategoryRow{
			{ID: "C1"},
			{ID: "C2", DefinitionContainerID: "DC1"},
			{ID: "C3", DefinitionContainerID: "DC1"},
		},
		SubCategories: []imodel.SubCategoryRow{
			{ID: "SC1a", CategoryID: "C1"},
			{ID: "SC1b", CategoryID: "C1"},
		},
		Elements: []imodel.ElementRow{
			{ID: "E1", ModelID: "M1", CategoryID: "C1", ClassName: "X"},
			{ID: "E2", ModelID: "M1", CategoryID: "C1", ClassName: "X"},
			{ID: "E3", ModelID: "M1", CategoryID: "C2", ClassName: "Y"},
			{ID: "E4", ModelID: "M2", CategoryID: "C1", ClassName: "X"},
			{ID: "A1", ModelID: "M2", CategoryID: "C2", ClassName: "Asm"},
			{ID: "A1c", ModelID: "M2", CategoryID: "C2", ParentID: "A1", ClassName: "Part"},
		},
	}
}

// recordingViewport counts AddViewedModels calls.
type recordingViewport struct {
	*viewport.Memory

	mu        sync.Mutex
	addViewed [][]string
}

func (r *recordingViewport) AddViewedModels(ids []string) {
	r.mu.Lock()
	r.addViewed = append(r.addViewed, slices.Clone(ids))
	r.mu.Unlock()
	r.Memory.AddViewedModels(ids)
}

func (r *recordingViewport) addViewedCalls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.addViewed)
}

type testEnv struct {
	vp    *recordingViewport
	mock  *imodel.MockProvider
	cache *hierarchy.Cache
	h     *Handler
	cats  *CategoriesHandler
}

func newTestEnv(t *testing.T, vpOpts ...viewport.Option) *testEnv {
	t.Helper()
	if len(vpOpts) == 0 {
		vpOpts = []viewport.Option{
			viewport.WithViewedModels("M1", "M2"),
			viewport.WithEnabledCategories("C1", "C2", "C3"),
		}
	}
	vp := &recordingViewport{Memory: viewport.NewMemory(vpOpts...)}
	mock := imodel.NewMockProvider(imodel.NewFixtureProvider(testFixture()))
	cache := hierarchy.New(mock)
	return &testEnv{
		vp:    vp,
		mock:  mock,
		cache: cache,
		h:     NewHandler(vp, cache, WithMaxConcurrency(4)),
		cats:  NewCategoriesHandler(vp, cache, WithMaxConcurrency(4)),
	}
}

func subjectNode(ids ...string) Node { return Node{Kind: KindSubject, IDs: ids} }
func modelNode(id string) Node       { return Node{Kind: KindModel, IDs: []string{id}} }

func categoryNode(modelID, id string) Node {
	return Node{Kind: KindCategory, IDs: []string{id}, ModelID: modelID}
}

func elementNode(modelID, categoryID, id string) Node {
	return Node{Kind: KindElement, IDs: []string{id}, ModelID: modelID, CategoryID: categoryID}
}

func groupNode(key imodel.GroupingKey) Node {
	return Node{Kind: KindClassGrouping, GroupingKey: &key}
}
