package tree

import "vistree/internal/visibility"

// Node is a browsable tree node. Children are loaded lazily by a Builder.
type Node struct {
	Item     visibility.Node
	Children []*Node
	Parent   *Node

	Depth    int
	Expanded bool
	Loaded   bool
}

// Key identifies the node within its tree.
func (n *Node) Key() string {
	return n.Item.Key()
}

// Label returns the display label, falling back to the node key.
func (n *Node) Label() string {
	if n.Item.Label != "" {
		return n.Item.Label
	}
	if id := n.Item.ID(); id != "" {
		return id
	}
	return n.Key()
}

// Expandable reports whether the node has or may have children.
func (n *Node) Expandable() bool {
	if n.Loaded {
		return len(n.Children) > 0
	}
	return n.Item.HasChildren
}

func (n *Node) setChildren(children []*Node) {
	for _, c := range children {
		c.Parent = n
		c.Depth = n.Depth + 1
	}
	n.Children = children
	n.Loaded = true
}

// Flatten returns the rows a tree view shows: roots and the descendants of
// expanded nodes, in display order.
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			if n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(roots)
	return out
}

// Walk visits every loaded node depth-first. Returning false from fn skips
// the node's children.
func Walk(roots []*Node, fn func(*Node) bool) {
	for _, n := range roots {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Find returns the loaded node with the given key.
func Find(roots []*Node, key string) *Node {
	var found *Node
	Walk(roots, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Key() == key {
			found = n
			return false
		}
		return true
	})
	return found
}
