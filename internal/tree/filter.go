package tree

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"vistree/internal/visibility"
)

// Filtered is a label-filtered copy of a loaded tree. It implements
// visibility.FilteredTree so parent statuses follow the matches.
type Filtered struct {
	Query string
	Roots []*Node

	children map[string][]visibility.Node
}

var _ visibility.FilteredTree = (*Filtered)(nil)

// Filter keeps loaded nodes whose label fuzzy-matches query, plus their
// ancestors. A matched node keeps its whole subtree. An empty query returns
// nil.
func Filter(roots []*Node, query string) *Filtered {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	var all []*Node
	Walk(roots, func(n *Node) bool {
		all = append(all, n)
		return true
	})
	labels := make([]string, len(all))
	for i, n := range all {
		labels[i] = strings.ToLower(n.Label())
	}
	matched := make(map[*Node]bool)
	for _, m := range fuzzy.Find(query, labels) {
		matched[all[m.Index]] = true
	}

	f := &Filtered{Query: query, children: make(map[string][]visibility.Node)}
	f.Roots = f.prune(roots, nil, matched)
	return f
}

func (f *Filtered) prune(nodes []*Node, parent *Node, matched map[*Node]bool) []*Node {
	var out []*Node
	for _, n := range nodes {
		if matched[n] {
			cp := *n
			cp.Parent = parent
			out = append(out, &cp)
			continue
		}
		cp := &Node{Item: n.Item, Parent: parent, Depth: n.Depth, Loaded: true}
		kept := f.prune(n.Children, cp, matched)
		if len(kept) == 0 {
			continue
		}
		cp.Children = kept
		cp.Expanded = true
		items := make([]visibility.Node, len(kept))
		for i, c := range kept {
			items[i] = c.Item
		}
		f.children[cp.Key()] = items
		out = append(out, cp)
	}
	return out
}

// FilteredChildren returns the surviving children of an ancestor of a match.
func (f *Filtered) FilteredChildren(n visibility.Node) ([]visibility.Node, bool) {
	if f == nil {
		return nil, false
	}
	children, ok := f.children[n.Key()]
	return children, ok
}

// Matches reports how many nodes survived the filter.
func (f *Filtered) Matches() int {
	if f == nil {
		return 0
	}
	count := 0
	Walk(f.Roots, func(*Node) bool {
		count++
		return true
	})
	return count
}
