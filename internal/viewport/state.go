package viewport

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	appErrors "vistree/internal/errors"
)

// State is a serializable snapshot of a Memory viewport.
type State struct {
	NonSpatial           bool                         `yaml:"nonSpatial,omitempty"`
	ViewedModels         []string                     `yaml:"viewedModels"`
	Categories           []string                     `yaml:"categories"`
	HiddenSubCategories  []string                     `yaml:"hiddenSubCategories,omitempty"`
	Overrides            map[string]map[string]string `yaml:"overrides,omitempty"`
	AlwaysDrawn          []string                     `yaml:"alwaysDrawn,omitempty"`
	NeverDrawn           []string                     `yaml:"neverDrawn,omitempty"`
	AlwaysDrawnExclusive bool                         `yaml:"alwaysDrawnExclusive,omitempty"`
}

// Snapshot captures the current state.
func (m *Memory) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := State{
		NonSpatial:           m.nonSpatial,
		ViewedModels:         m.viewedModels.IDs(),
		Categories:           m.enabledCategories.IDs(),
		HiddenSubCategories:  m.hiddenSubCategories.IDs(),
		AlwaysDrawn:          m.alwaysDrawn.IDs(),
		NeverDrawn:           m.neverDrawn.IDs(),
		AlwaysDrawnExclusive: m.exclusive,
	}
	if len(m.overrides) > 0 {
		s.Overrides = make(map[string]map[string]string, len(m.overrides))
		for modelID, byCategory := range m.overrides {
			out := make(map[string]string, len(byCategory))
			for categoryID, o := range byCategory {
				out[categoryID] = o.String()
			}
			s.Overrides[modelID] = out
		}
	}
	return s
}

// Restore replaces the current state with s and notifies listeners.
func (m *Memory) Restore(s State) {
	m.mutate("restore", func() {
		m.nonSpatial = s.NonSpatial
		m.viewedModels = NewIDSet(s.ViewedModels...)
		m.enabledCategories = NewIDSet(s.Categories...)
		m.hiddenSubCategories = NewIDSet(s.HiddenSubCategories...)
		m.alwaysDrawn = NewIDSet(s.AlwaysDrawn...)
		m.neverDrawn = NewIDSet(s.NeverDrawn...)
		m.exclusive = s.AlwaysDrawnExclusive
		m.overrides = make(map[string]map[string]Override, len(s.Overrides))
		for modelID, byCategory := range s.Overrides {
			for categoryID, raw := range byCategory {
				o := ParseOverride(raw)
				if o == OverrideNone {
					continue
				}
				if m.overrides[modelID] == nil {
					m.overrides[modelID] = make(map[string]Override)
				}
				m.overrides[modelID][categoryID] = o
			}
		}
	})
}

// SaveState writes a YAML snapshot to path, creating parent directories.
func (m *Memory) SaveState(path string) error {
	data, err := yaml.Marshal(m.Snapshot())
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeViewportFailed, "encode viewport state")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return appErrors.Wrapf(err, appErrors.CodeViewportFailed, "create state dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return appErrors.Wrapf(err, appErrors.CodeViewportFailed, "write %s", path)
	}
	return nil
}

// LoadState restores a snapshot previously written by SaveState.
func (m *Memory) LoadState(path string) error {
	//nolint:gosec // G304: state path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return appErrors.Wrapf(err, appErrors.CodeViewportFailed, "read %s", path)
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return appErrors.Wrapf(err, appErrors.CodeParseFailed, "parse %s", path)
	}
	m.Restore(s)
	return nil
}
