package viewport

import (
	"context"
	"sync"

	"vistree/internal/debug"
)

// Memory is an in-process Viewport. It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	nonSpatial          bool
	viewedModels        IDSet
	enabledCategories   IDSet
	hiddenSubCategories IDSet
	overrides           map[string]map[string]Override // model -> category -> override
	alwaysDrawn         IDSet
	neverDrawn          IDSet
	exclusive           bool

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

var _ Viewport = (*Memory)(nil)

// Option configures a Memory viewport.
type Option func(*Memory)

// WithSpatial marks the view as spatial (the default) or not.
func WithSpatial(spatial bool) Option {
	return func(m *Memory) {
		m.nonSpatial = !spatial
	}
}

// WithViewedModels seeds the model selector.
func WithViewedModels(ids ...string) Option {
	return func(m *Memory) {
		m.viewedModels = m.viewedModels.With(ids...)
	}
}

// WithEnabledCategories seeds the category selector.
func WithEnabledCategories(ids ...string) Option {
	return func(m *Memory) {
		m.enabledCategories = m.enabledCategories.With(ids...)
	}
}

// WithExclusiveAlwaysDrawn sets the exclusive flag used by the next
// SetAlwaysDrawn that does not specify otherwise.
func WithExclusiveAlwaysDrawn(exclusive bool) Option {
	return func(m *Memory) {
		m.exclusive = exclusive
	}
}

// NewMemory returns an empty spatial viewport.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		viewedModels:        IDSet{},
		enabledCategories:   IDSet{},
		hiddenSubCategories: IDSet{},
		overrides:           make(map[string]map[string]Override),
		alwaysDrawn:         IDSet{},
		neverDrawn:          IDSet{},
		listeners:           make(map[int]func()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to run after every mutation. The returned func
// removes the listener.
func (m *Memory) OnChange(fn func()) func() {
	m.listenerMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenerMu.Unlock()
	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}

func (m *Memory) notify() {
	m.listenerMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// mutate runs fn under the write lock and then notifies listeners.
func (m *Memory) mutate(op string, fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
	debug.Logf("viewport: %s", op)
	m.notify()
}

func (m *Memory) IsSpatialView() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.nonSpatial
}

func (m *Memory) ViewsModel(modelID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewedModels.Has(modelID)
}

func (m *Memory) ViewsCategory(categoryID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabledCategories.Has(categoryID)
}

func (m *Memory) ViewsSubCategory(subCategoryID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.hiddenSubCategories.Has(subCategoryID)
}

func (m *Memory) CategoryOverride(modelID, categoryID string) Override {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overrides[modelID][categoryID]
}

func (m *Memory) CategoryOverrides(categoryID string) map[string]Override {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Override)
	for modelID, byCategory := range m.overrides {
		if o, ok := byCategory[categoryID]; ok {
			out[modelID] = o
		}
	}
	return out
}

func (m *Memory) AlwaysDrawn() IDSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alwaysDrawn.Clone()
}

func (m *Memory) NeverDrawn() IDSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.neverDrawn.Clone()
}

func (m *Memory) IsAlwaysDrawnExclusive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exclusive
}

// ViewedModels returns the model selector in sorted order.
func (m *Memory) ViewedModels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewedModels.IDs()
}

func (m *Memory) AddViewedModels(modelIDs []string) {
	m.mutate("add viewed models", func() {
		for _, id := range modelIDs {
			m.viewedModels[id] = struct{}{}
		}
	})
}

func (m *Memory) ChangeModelDisplay(modelIDs []string, on bool) {
	m.mutate("change model display", func() {
		for _, id := range modelIDs {
			if on {
				m.viewedModels[id] = struct{}{}
			} else {
				delete(m.viewedModels, id)
			}
		}
	})
}

func (m *Memory) ChangeCategoryDisplay(categoryIDs []string, on bool, propagateToModelOverrides bool) {
	m.mutate("change category display", func() {
		for _, id := range categoryIDs {
			if on {
				m.enabledCategories[id] = struct{}{}
			} else {
				delete(m.enabledCategories, id)
			}
			if !propagateToModelOverrides {
				continue
			}
			for modelID, byCategory := range m.overrides {
				delete(byCategory, id)
				if len(byCategory) == 0 {
					delete(m.overrides, modelID)
				}
			}
		}
	})
}

func (m *Memory) ChangeSubCategoryDisplay(subCategoryID string, on bool) {
	m.mutate("change sub-category display", func() {
		if on {
			delete(m.hiddenSubCategories, subCategoryID)
		} else {
			m.hiddenSubCategories[subCategoryID] = struct{}{}
		}
	})
}

func (m *Memory) SetCategoryOverride(modelID, categoryID string, o Override) {
	m.mutate("set category override", func() {
		byCategory := m.overrides[modelID]
		if o == OverrideNone {
			if byCategory != nil {
				delete(byCategory, categoryID)
				if len(byCategory) == 0 {
					delete(m.overrides, modelID)
				}
			}
			return
		}
		if byCategory == nil {
			byCategory = make(map[string]Override)
			m.overrides[modelID] = byCategory
		}
		byCategory[categoryID] = o
	})
}

func (m *Memory) ClearCategoryOverrides(modelIDs []string) {
	m.mutate("clear category overrides", func() {
		for _, id := range modelIDs {
			delete(m.overrides, id)
		}
	})
}

func (m *Memory) SetAlwaysDrawn(ids IDSet, exclusive bool) {
	m.mutate("set always drawn", func() {
		m.alwaysDrawn = ids.Clone()
		m.exclusive = exclusive
	})
}

func (m *Memory) ClearAlwaysDrawn() {
	m.mutate("clear always drawn", func() {
		m.alwaysDrawn = IDSet{}
	})
}

func (m *Memory) SetNeverDrawn(ids IDSet) {
	m.mutate("set never drawn", func() {
		m.neverDrawn = ids.Clone()
	})
}

func (m *Memory) ClearNeverDrawn() {
	m.mutate("clear never drawn", func() {
		m.neverDrawn = IDSet{}
	})
}

// Settle returns immediately: Memory applies every mutation synchronously.
func (m *Memory) Settle(ctx context.Context) error {
	return ctx.Err()
}
