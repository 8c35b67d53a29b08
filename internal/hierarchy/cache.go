// Package hierarchy caches the structural queries the visibility engine
// depends on: which models belong to a subject, which elements make up an
// assembly or a class grouping, and how categories nest.
//
// A Cache is bound to one provider session. Entries are built at most once
// per key (concurrent callers share the build) and never expire until Clear.
package hierarchy

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"vistree/internal/debug"
	"vistree/internal/imodel"
)

// Cache memoizes hierarchy lookups against a QueryProvider.
//
// Thread Safety: safe for concurrent use. Builds run under a singleflight
// group keyed per entry; results are inserted only if absent.
type Cache struct {
	provider imodel.QueryProvider
	flight   singleflight.Group

	mu sync.RWMutex
	// generation increments on Clear so builds started before the clear do
	// not repopulate the cache with stale data.
	generation       uint64
	subjects         *subjectIndex
	categories       *categoryIndex
	assemblies       map[string][]string
	modelCategories  map[string][]imodel.CategoryRow
	categoryElements map[string][]string
	subCategories    map[string][]imodel.SubCategoryRow

	groups *gocache.Cache
}

// New returns an empty cache over provider.
func New(provider imodel.QueryProvider) *Cache {
	c := &Cache{
		provider: provider,
		groups:   gocache.New(gocache.NoExpiration, 0),
	}
	c.resetLocked()
	return c
}

// Provider returns the provider the cache reads from.
func (c *Cache) Provider() imodel.QueryProvider {
	return c.provider
}

// Clear drops every cached entry. In-flight builds finish but their results
// are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.generation++
	c.resetLocked()
	c.mu.Unlock()
	c.groups.Flush()
	debug.Log("hierarchy: cache cleared")
}

func (c *Cache) resetLocked() {
	c.subjects = nil
	c.categories = nil
	c.assemblies = make(map[string][]string)
	c.modelCategories = make(map[string][]imodel.CategoryRow)
	c.categoryElements = make(map[string][]string)
	c.subCategories = make(map[string][]imodel.SubCategoryRow)
}

// memoize returns the cached value for (name, key) or builds it once.
// lookup and store run with c.mu held. The shared build is detached from
// each caller's cancellation; a caller whose ctx ends stops waiting without
// failing the others.
func memoize[T any](
	ctx context.Context,
	c *Cache,
	name, key string,
	lookup func() (T, bool),
	build func(context.Context) (T, error),
	store func(T),
) (T, error) {
	c.mu.RLock()
	v, ok := lookup()
	gen := c.generation
	c.mu.RUnlock()
	if ok {
		cacheRequests.WithLabelValues(name, "hit").Inc()
		return v, nil
	}
	cacheRequests.WithLabelValues(name, "miss").Inc()
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(name+"\x00"+key, func() (any, error) {
		c.mu.RLock()
		v, ok := lookup()
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		ctx, span := getTracer().Start(buildCtx, "hierarchy.Cache."+name,
			trace.WithAttributes(attribute.String("key", key)),
		)
		defer span.End()

		built, err := build(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "build failed")
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := lookup(); ok {
			return existing, nil
		}
		if c.generation == gen {
			store(built)
		}
		return built, nil
	})

	select {
	case <-ctx.Done():
		cacheRequests.WithLabelValues(name, "abandoned").Inc()
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			cacheRequests.WithLabelValues(name, "error").Inc()
			debug.Errorf(res.Err, "hierarchy: build %s %q", name, key)
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// query counts a provider call.
func query(name string) {
	providerQueries.WithLabelValues(name).Inc()
}
