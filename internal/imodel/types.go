package imodel

import (
	"strings"

	json "github.com/goccy/go-json"
)

// SubjectRow is a hierarchical grouping entity. TargetPartitionID redirects
// the subject to a model partition owned elsewhere in the hierarchy.
type SubjectRow struct {
	ID                string `json:"id" yaml:"id"`
	ParentID          string `json:"parentId,omitempty" yaml:"parent,omitempty"`
	Label             string `json:"label,omitempty" yaml:"label,omitempty"`
	TargetPartitionID string `json:"targetPartitionId,omitempty" yaml:"targetPartition,omitempty"`
	HideInHierarchy   bool   `json:"hideInHierarchy,omitempty" yaml:"hideInHierarchy,omitempty"`
}

// ModelRow is a geometric model partition owned by a subject.
type ModelRow struct {
	ID        string `json:"id" yaml:"id"`
	ParentID  string `json:"parentId,omitempty" yaml:"parent,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	IsPrivate bool   `json:"isPrivate,omitempty" yaml:"private,omitempty"`
}

// CategoryRow classifies elements. DefinitionContainerID is empty for
// categories that are not nested in a definition container.
type CategoryRow struct {
	ID                    string `json:"id" yaml:"id"`
	Label                 string `json:"label,omitempty" yaml:"label,omitempty"`
	DefinitionContainerID string `json:"definitionContainerId,omitempty" yaml:"definitionContainer,omitempty"`
}

// SubCategoryRow belongs to exactly one category.
type SubCategoryRow struct {
	ID         string `json:"id" yaml:"id"`
	CategoryID string `json:"categoryId" yaml:"category"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DefinitionContainerRow groups categories; containers nest through ParentID.
type DefinitionContainerRow struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parentId,omitempty" yaml:"parent,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ElementRow is a geometric element. HasChildren is derived by providers.
type ElementRow struct {
	ID          string `json:"id" yaml:"id"`
	ModelID     string `json:"modelId" yaml:"model"`
	CategoryID  string `json:"categoryId" yaml:"category"`
	ParentID    string `json:"parentId,omitempty" yaml:"parent,omitempty"`
	ClassName   string `json:"className" yaml:"class"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	HasChildren bool   `json:"hasChildren,omitempty" yaml:"-"`
}

// GroupingKey identifies a class-grouping node: sibling elements of one class
// under either a category (top-level elements of a model) or a parent element.
type GroupingKey struct {
	ClassName       string `json:"className"`
	ModelID         string `json:"modelId,omitempty"`
	CategoryID      string `json:"categoryId,omitempty"`
	ParentElementID string `json:"parentElementId,omitempty"`
}

// Validate reports whether the key can address a group of elements.
func (k GroupingKey) Validate() error {
	if strings.TrimSpace(k.ClassName) == "" {
		return invalidGroupingKeyError(k, "missing class name")
	}
	if k.ParentElementID == "" && k.CategoryID == "" {
		return invalidGroupingKeyError(k, "missing parent element or category")
	}
	return nil
}

// Serialize returns a stable string form suitable as a memo key.
func (k GroupingKey) Serialize() string {
	data, err := json.Marshal(k)
	if err != nil {
		return k.ClassName + "|" + k.ModelID + "|" + k.CategoryID + "|" + k.ParentElementID
	}
	return string(data)
}
