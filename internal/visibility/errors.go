package visibility

import appErrors "vistree/internal/errors"

func unsupportedNodeError(n Node) error {
	return appErrors.Newf(appErrors.CodeUnsupportedNode, "cannot change visibility of %s node %q", n.Kind, n.Label)
}

func viewportError(op string, err error) error {
	return appErrors.Wrap(err, appErrors.CodeViewportFailed, op)
}
