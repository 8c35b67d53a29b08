package imodel

import (
	"context"
	"sync"
)

// MockProvider is a test double for QueryProvider. Each method runs its Fn
// override when set, otherwise delegates to Fallback, otherwise returns
// ErrMockNotImplemented. Calls are counted either way.
type MockProvider struct {
	QueryAllSubjectsFn          func(context.Context) ([]SubjectRow, error)
	QueryAllModelsFn            func(context.Context) ([]ModelRow, error)
	QueryModelCategoriesFn      func(context.Context, string) ([]CategoryRow, error)
	QueryCategoryElementsFn     func(context.Context, string, string) ([]ElementRow, error)
	QueryElementChildrenFn      func(context.Context, string) ([]ElementRow, error)
	QueryGroupedElementsFn      func(context.Context, GroupingKey) ([]string, error)
	QueryElementInfoFn          func(context.Context, []string) ([]ElementRow, error)
	QueryAllCategoriesFn        func(context.Context) ([]CategoryRow, error)
	QuerySubCategoriesFn        func(context.Context, string) ([]SubCategoryRow, error)
	QueryDefinitionContainersFn func(context.Context) ([]DefinitionContainerRow, error)

	// Fallback serves methods without an override.
	Fallback QueryProvider

	mu                             sync.Mutex
	QueryAllSubjectsCallCount      int
	QueryAllModelsCallCount        int
	QueryModelCategoriesCallCount  int
	QueryCategoryElementsCallCount int
	QueryElementChildrenCallCount  int
	QueryGroupedElementsCallCount  int
	QueryElementInfoCallCount      int
	QueryAllCategoriesCallCount    int
	QuerySubCategoriesCallCount    int
	QueryDefinitionContainersCalls int
	QueryElementInfoCallArgs       [][]string
	QueryGroupedElementsCallArgs   []GroupingKey
	QueryCategoryElementsCallArgs  [][]string // [categoryID, modelID]
}

var _ QueryProvider = (*MockProvider)(nil)

// NewMockProvider returns a MockProvider delegating to fallback (may be nil).
func NewMockProvider(fallback QueryProvider) *MockProvider {
	return &MockProvider{Fallback: fallback}
}

// Counts returns a snapshot of per-method call counts keyed by method name.
func (m *MockProvider) Counts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"QueryAllSubjects":          m.QueryAllSubjectsCallCount,
		"QueryAllModels":            m.QueryAllModelsCallCount,
		"QueryModelCategories":      m.QueryModelCategoriesCallCount,
		"QueryCategoryElements":     m.QueryCategoryElementsCallCount,
		"QueryElementChildren":      m.QueryElementChildrenCallCount,
		"QueryGroupedElements":      m.QueryGroupedElementsCallCount,
		"QueryElementInfo":          m.QueryElementInfoCallCount,
		"QueryAllCategories":        m.QueryAllCategoriesCallCount,
		"QuerySubCategories":        m.QuerySubCategoriesCallCount,
		"QueryDefinitionContainers": m.QueryDefinitionContainersCalls,
	}
}

func (m *MockProvider) QueryAllSubjects(ctx context.Context) ([]SubjectRow, error) {
	m.mu.Lock()
	m.QueryAllSubjectsCallCount++
	m.mu.Unlock()
	switch {
	case m.QueryAllSubjectsFn != nil:
		return m.QueryAllSubjectsFn(ctx)
	case m.Fallback != nil:
		return m.Fallback.QueryAllSubjects(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryAllModels(ctx context.Context) ([]ModelRow, error) {
	m.mu.Lock()
	m.QueryAllModelsCallCount++
	m.mu.Unlock()
	switch {
	case m.QueryAllModelsFn != nil:
		return m.QueryAllModelsFn(ctx)
	case m.Fallback != nil:
		return m.Fallback.QueryAllModels(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryModelCategories(ctx context.Context, modelID string) ([]CategoryRow, error) {
	m.mu.Lock()
	m.QueryModelCategoriesCallCount++
	m.mu.Unlock()
	switch {
	case m.QueryModelCategoriesFn != nil:
		return m.QueryModelCategoriesFn(ctx, modelID)
	case m.Fallback != nil:
		return m.Fallback.QueryModelCategories(ctx, modelID)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryCategoryElements(ctx context.Context, categoryID, modelID string) ([]ElementRow, error) {
	m.mu.Lock()
	m.QueryCategoryElementsCallCount++
	m.QueryCategoryElementsCallArgs = append(m.QueryCategoryElementsCallArgs, []string{categoryID, modelID})
	m.mu.Unlock()
	switch {
	case m.QueryCategoryElementsFn != nil:
		return m.QueryCategoryElementsFn(ctx, categoryID, modelID)
	case m.Fallback != nil:
		return m.Fallback.QueryCategoryElements(ctx, categoryID, modelID)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryElementChildren(ctx context.Context, elementID string) ([]ElementRow, error) {
	m.mu.Lock()
	m.QueryElementChildrenCallCount++
	m.mu.Unlock()
	switch {
	case m.QueryElementChildrenFn != nil:
		return m.QueryElementChildrenFn(ctx, elementID)
	case m.Fallback != nil:
		return m.Fallback.QueryElementChildren(ctx, elementID)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryGroupedElements(ctx context.Context, key GroupingKey) ([]string, error) {
	m.mu.Lock()
	m.QueryGroupedElementsCallCount++
	m.QueryGroupedElementsCallArgs = append(m.QueryGroupedElementsCallArgs, key)
	m.mu.Unlock()
	switch {
	case m.QueryGroupedElementsFn != nil:
		return m.QueryGroupedElementsFn(ctx, key)
	case m.Fallback != nil:
		return m.Fallback.QueryGroupedElements(ctx, key)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryElementInfo(ctx context.Context, elementIDs []string) ([]ElementRow, error) {
	m.mu.Lock()
	m.QueryElementInfoCallCount++
	m.QueryElementInfoCallArgs = append(m.QueryElementInfoCallArgs, append([]string{}, elementIDs...))
	m.mu.Unlock()
	switch {
	case m.QueryElementInfoFn != nil:
		return m.QueryElementInfoFn(ctx, elementIDs)
	case m.Fallback != nil:
		return m.Fallback.QueryElementInfo(ctx, elementIDs)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryAllCategories(ctx context.Context) ([]CategoryRow, error) {
	m.mu.Lock()
	m.QueryAllCategoriesCallCount++
	m.mu.Unlock()
	switch {
	case m.QueryAllCategoriesFn != nil:
		return m.QueryAllCategoriesFn(ctx)
	case m.Fallback != nil:
		return m.Fallback.QueryAllCategories(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QuerySubCategories(ctx context.Context, categoryID string) ([]SubCategoryRow, error) {
	m.mu.Lock()
	m.QuerySubCategoriesCallCount++
	m.mu.Unlock()
	switch {
	case m.QuerySubCategoriesFn != nil:
		return m.QuerySubCategoriesFn(ctx, categoryID)
	case m.Fallback != nil:
		return m.Fallback.QuerySubCategories(ctx, categoryID)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockProvider) QueryDefinitionContainers(ctx context.Context) ([]DefinitionContainerRow, error) {
	m.mu.Lock()
	m.QueryDefinitionContainersCalls++
	m.mu.Unlock()
	switch {
	case m.QueryDefinitionContainersFn != nil:
		return m.QueryDefinitionContainersFn(ctx)
	case m.Fallback != nil:
		return m.Fallback.QueryDefinitionContainers(ctx)
	}
	return nil, ErrMockNotImplemented
}
