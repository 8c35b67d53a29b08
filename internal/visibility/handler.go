package visibility

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vistree/internal/config"
	"vistree/internal/hierarchy"
	"vistree/internal/viewport"
)

type settings struct {
	maxConcurrency int
	filtered       FilteredTree
	classify       Classifier
}

// Option configures a Handler or CategoriesHandler.
type Option func(*settings)

// WithMaxConcurrency bounds how many child statuses are computed at once.
func WithMaxConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithFilteredTree makes subject statuses follow the filtered children.
func WithFilteredTree(ft FilteredTree) Option {
	return func(s *settings) {
		s.filtered = ft
	}
}

// WithClassifier replaces DefaultClassifier.
func WithClassifier(c Classifier) Option {
	return func(s *settings) {
		if c != nil {
			s.classify = c
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{classify: DefaultClassifier}
	for _, opt := range opts {
		opt(&s)
	}
	if s.maxConcurrency == 0 {
		s.maxConcurrency = config.MaxConcurrency()
	}
	return s
}

// Handler resolves and changes models tree visibility.
//
// Thread Safety: safe for concurrent use. Status calls share nothing but the
// hierarchy cache.
type Handler struct {
	vp       viewport.Viewport
	cache    *hierarchy.Cache
	classify Classifier
	limit    int

	filterMu sync.RWMutex
	filtered FilteredTree
}

// NewHandler returns a models tree handler over vp and cache.
func NewHandler(vp viewport.Viewport, cache *hierarchy.Cache, opts ...Option) *Handler {
	s := newSettings(opts)
	return &Handler{
		vp:       vp,
		cache:    cache,
		classify: s.classify,
		limit:    s.maxConcurrency,
		filtered: s.filtered,
	}
}

// SetFilteredTree swaps the active filter. nil disables filtering.
func (h *Handler) SetFilteredTree(ft FilteredTree) {
	h.filterMu.Lock()
	h.filtered = ft
	h.filterMu.Unlock()
}

func (h *Handler) filteredChildren(n Node) ([]Node, bool) {
	h.filterMu.RLock()
	ft := h.filtered
	h.filterMu.RUnlock()
	if ft == nil {
		return nil, false
	}
	children, ok := ft.FilteredChildren(n)
	if !ok || len(children) == 0 {
		return nil, false
	}
	return children, true
}

// StatusResult is delivered by StatusAsync.
type StatusResult struct {
	Status Status
	Err    error
}

// StatusAsync computes the status of n in the background. The channel
// receives exactly one result, or is closed without one if ctx is cancelled
// first.
func (h *Handler) StatusAsync(ctx context.Context, n Node) <-chan StatusResult {
	return statusAsync(ctx, n, h.GetVisibilityStatus)
}

func statusAsync(ctx context.Context, n Node, get func(context.Context, Node) (Status, error)) <-chan StatusResult {
	out := make(chan StatusResult, 1)
	go func() {
		defer close(out)
		s, err := get(ctx, n)
		if ctx.Err() != nil {
			return
		}
		out <- StatusResult{Status: s, Err: err}
	}()
	return out
}

// GetVisibilityStatus resolves the status of n. Nodes that cannot be
// classified resolve to a disabled status rather than an error.
func (h *Handler) GetVisibilityStatus(ctx context.Context, n Node) (Status, error) {
	kind := h.classify(n)
	return traceStatus(ctx, "visibility.Handler.GetVisibilityStatus", kind, n, func(ctx context.Context) (Status, error) {
		if kind == KindUnknown {
			return Disabled(ReasonNotInstance), nil
		}
		if !h.vp.IsSpatialView() {
			return Disabled(ReasonNonSpatialView), nil
		}
		switch kind {
		case KindSubject:
			return h.subjectStatus(ctx, n)
		case KindModel:
			return h.modelNodeStatus(ctx, n)
		case KindCategory:
			return h.categoryNodeStatus(ctx, n)
		case KindClassGrouping:
			return h.groupingStatus(ctx, n)
		case KindElement:
			return h.elementNodeStatus(ctx, n)
		default:
			return Disabled(ReasonNotInstance), nil
		}
	})
}

func traceStatus(ctx context.Context, name string, kind NodeKind, n Node, fn func(context.Context) (Status, error)) (Status, error) {
	start := time.Now()
	ctx, span := getTracer().Start(ctx, name,
		trace.WithAttributes(
			attribute.String("kind", kind.String()),
			attribute.String("node", n.Key()),
		),
	)
	defer span.End()

	s, err := fn(ctx)
	statusDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status failed")
		return Status{}, err
	}
	span.SetAttributes(attribute.String("state", s.State.String()))
	return s, nil
}

// fanOut evaluates fn for every item with at most limit in flight. Each
// child writes its own slot; the first error cancels the rest.
func fanOut[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (Status, error)) ([]Status, error) {
	out := make([]Status, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			s, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// elementSets is a point-in-time read of the viewport's element exceptions.
type elementSets struct {
	always    viewport.IDSet
	never     viewport.IDSet
	exclusive bool
}

func readElementSets(vp viewport.Viewport) elementSets {
	return elementSets{
		always:    vp.AlwaysDrawn(),
		never:     vp.NeverDrawn(),
		exclusive: vp.IsAlwaysDrawnExclusive(),
	}
}

func (e elementSets) empty() bool {
	return e.always.Len() == 0 && e.never.Len() == 0
}

// rule applies the element rule for id. ok is false when the element
// follows its category.
func (e elementSets) rule(id string) (Status, bool) {
	switch {
	case e.never.Has(id):
		return Hidden(ReasonElementNeverDrawn), true
	case e.always.Has(id):
		return Visible(ReasonElementAlwaysDrawn), true
	case e.exclusive && e.always.Len() > 0:
		return Hidden(ReasonOtherElementsExclusive), true
	default:
		return Status{}, false
	}
}

// state is rule with base as the fallback.
func (e elementSets) state(id string, base Status) Status {
	if s, ok := e.rule(id); ok {
		return s
	}
	return base
}
