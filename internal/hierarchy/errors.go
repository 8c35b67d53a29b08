package hierarchy

import (
	appErrors "vistree/internal/errors"
	"vistree/internal/imodel"
)

func emptyGroupError(key imodel.GroupingKey) error {
	return appErrors.Newf(appErrors.CodeInvalidGroupingNode, "grouping node %q has no elements", key.ClassName)
}

func unresolvedGroupError(key imodel.GroupingKey, elementID string) error {
	return appErrors.Newf(appErrors.CodeInvalidGroupingNode, "grouping node %q: element %s not found", key.ClassName, elementID)
}
