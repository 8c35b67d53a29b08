package imodel

import (
	"errors"

	appErrors "vistree/internal/errors"
)

var (
	// ErrMockNotImplemented is returned when a MockProvider method lacks an override.
	ErrMockNotImplemented = errors.New("imodel.MockProvider: method not implemented")

	// ErrElementNotFound indicates an element id is unknown to the provider.
	ErrElementNotFound = errors.New("imodel: element not found")
)

func queryError(op string, err error) error {
	return appErrors.Wrapf(err, appErrors.CodeQueryFailed, "query %s", op)
}

func invalidGroupingKeyError(key GroupingKey, reason string) error {
	return appErrors.Newf(appErrors.CodeInvalidGroupingNode, "invalid grouping node %q: %s", key.ClassName, reason)
}

func parseError(reason string, err error) error {
	return appErrors.Wrap(err, appErrors.CodeParseFailed, reason)
}
