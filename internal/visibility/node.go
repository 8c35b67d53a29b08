package visibility

import (
	"strings"

	"vistree/internal/imodel"
)

// NodeKind classifies tree nodes.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindSubject
	KindModel
	KindCategory
	KindElement
	KindClassGrouping
	KindDefinitionContainer
	KindSubCategory
)

var kindNames = map[NodeKind]string{
	KindUnknown:             "unknown",
	KindSubject:             "subject",
	KindModel:               "model",
	KindCategory:            "category",
	KindElement:             "element",
	KindClassGrouping:       "class-grouping",
	KindDefinitionContainer: "definition-container",
	KindSubCategory:         "sub-category",
}

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Node is a tree node as seen by the visibility handlers.
//
// Subjects may merge several instance ids. Category nodes in the models tree
// carry their parent ModelID; sub-category nodes carry their CategoryID.
// Element nodes may omit ModelID and CategoryID, in which case they are
// looked up.
type Node struct {
	Kind        NodeKind
	IDs         []string
	ModelID     string
	CategoryID  string
	GroupingKey *imodel.GroupingKey
	HasChildren bool
	Label       string
}

// ID returns the first instance id, or "" for grouping nodes.
func (n Node) ID() string {
	if len(n.IDs) == 0 {
		return ""
	}
	return n.IDs[0]
}

// Key identifies the node within a tree.
func (n Node) Key() string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	b.WriteByte(':')
	if n.GroupingKey != nil {
		b.WriteString(n.GroupingKey.Serialize())
		return b.String()
	}
	if n.ModelID != "" {
		b.WriteString(n.ModelID)
		b.WriteByte('/')
	}
	b.WriteString(strings.Join(n.IDs, ","))
	return b.String()
}

// Classifier decides how a node is handled. Nodes classified as KindUnknown
// resolve to a disabled status.
type Classifier func(Node) NodeKind

// DefaultClassifier trusts Node.Kind for nodes that carry what their kind needs.
func DefaultClassifier(n Node) NodeKind {
	switch n.Kind {
	case KindClassGrouping:
		if n.GroupingKey == nil {
			return KindUnknown
		}
	case KindSubject, KindModel, KindCategory, KindElement, KindDefinitionContainer, KindSubCategory:
		if len(n.IDs) == 0 {
			return KindUnknown
		}
	default:
		return KindUnknown
	}
	return n.Kind
}

// FilteredTree exposes the children a node keeps under an active filter.
// ok is false when no filter applies to the node.
type FilteredTree interface {
	FilteredChildren(n Node) (children []Node, ok bool)
}
