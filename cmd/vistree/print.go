package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"vistree/internal/tree"
	"vistree/internal/visibility"
)

type reportRow struct {
	Key      string            `json:"key"`
	Kind     string            `json:"kind"`
	Label    string            `json:"label"`
	Depth    int               `json:"depth"`
	State    visibility.State  `json:"state"`
	Disabled bool              `json:"disabled,omitempty"`
	Reason   visibility.Reason `json:"reason"`
	Tooltip  string            `json:"tooltip,omitempty"`
}

type report struct {
	Models     []reportRow `json:"models"`
	Categories []reportRow `json:"categories"`
}

type statusGetter interface {
	GetVisibilityStatus(ctx context.Context, n visibility.Node) (visibility.Status, error)
}

func collectRows(ctx context.Context, b *tree.Builder, mode tree.Mode, src statusGetter, depth int) ([]reportRow, error) {
	roots, err := b.Roots(ctx, mode)
	if err != nil {
		return nil, err
	}
	if err := b.LoadAll(ctx, roots, depth); err != nil {
		return nil, err
	}
	var rows []reportRow
	var walkErr error
	tree.Walk(roots, func(n *tree.Node) bool {
		if walkErr != nil {
			return false
		}
		status, err := src.GetVisibilityStatus(ctx, n.Item)
		if err != nil {
			walkErr = fmt.Errorf("%s: %w", n.Key(), err)
			return false
		}
		rows = append(rows, reportRow{
			Key:      n.Key(),
			Kind:     n.Item.Kind.String(),
			Label:    n.Label(),
			Depth:    n.Depth,
			State:    status.State,
			Disabled: status.Disabled,
			Reason:   status.Reason,
			Tooltip:  status.Reason.Tooltip(),
		})
		return true
	})
	return rows, walkErr
}

func printTrees(ctx context.Context, w io.Writer, s *session, opts runtimeOptions) error {
	models, err := collectRows(ctx, s.builder, tree.ModelsTree, s.models, opts.depth)
	if err != nil {
		return err
	}
	categories, err := collectRows(ctx, s.builder, tree.CategoriesTree, s.categories, opts.depth)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report{Models: models, Categories: categories})
	}

	writeSection(w, "Models", models)
	_, _ = fmt.Fprintln(w)
	writeSection(w, "Categories", categories)
	return nil
}

func writeSection(w io.Writer, title string, rows []reportRow) {
	_, _ = fmt.Fprintln(w, title)
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s%s %s  (%s)\n", strings.Repeat("  ", r.Depth+1), glyph(r), r.Label, r.Reason)
	}
}

func glyph(r reportRow) string {
	if r.Disabled {
		return "[-]"
	}
	switch r.State {
	case visibility.StateVisible:
		return "[x]"
	case visibility.StatePartial:
		return "[~]"
	default:
		return "[ ]"
	}
}
