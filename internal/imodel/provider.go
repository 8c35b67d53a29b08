// Package imodel describes the hierarchy rows a visibility engine reads and
// the providers that enumerate them: a read-only SQLite store, an in-memory
// fixture, and a test double.
package imodel

import "context"

// QueryProvider enumerates the spatial hierarchy. Implementations must be safe
// for concurrent use; every call may hit the backing store.
type QueryProvider interface {
	// QueryAllSubjects returns every subject with its parent and target partition.
	QueryAllSubjects(ctx context.Context) ([]SubjectRow, error)
	// QueryAllModels returns every non-private model with its owning subject.
	QueryAllModels(ctx context.Context) ([]ModelRow, error)
	// QueryModelCategories returns the categories of the model's top-level elements.
	QueryModelCategories(ctx context.Context, modelID string) ([]CategoryRow, error)
	// QueryCategoryElements returns top-level elements of a category. An empty
	// modelID matches every model.
	QueryCategoryElements(ctx context.Context, categoryID, modelID string) ([]ElementRow, error)
	// QueryElementChildren returns direct children of an element.
	QueryElementChildren(ctx context.Context, elementID string) ([]ElementRow, error)
	// QueryGroupedElements returns the ids of the elements a grouping key addresses.
	QueryGroupedElements(ctx context.Context, key GroupingKey) ([]string, error)
	// QueryElementInfo returns rows for the given element ids; unknown ids are skipped.
	QueryElementInfo(ctx context.Context, elementIDs []string) ([]ElementRow, error)

	QueryAllCategories(ctx context.Context) ([]CategoryRow, error)
	QuerySubCategories(ctx context.Context, categoryID string) ([]SubCategoryRow, error)
	QueryDefinitionContainers(ctx context.Context) ([]DefinitionContainerRow, error)
}
