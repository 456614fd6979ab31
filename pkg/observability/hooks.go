// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the hooks registered here; nothing in the
// build path imports a metrics backend. Every category defaults to a no-op
// implementation, so emitting is always safe.
//
// # Categories
//
//   - [PipelineHooks]: feed loading, order reconciliation, graph building
//   - [BuildHooks]: fixpoint passes, merges and deadlocks inside the driver
//   - [StoreHooks]: commits and branch moves written to the version store
//   - [CacheHooks]: feed cache hits, misses and writes
//   - [HTTPHooks]: feed downloads
//
// # Usage
//
// Register hooks once at startup, before any run:
//
//	func main() {
//	    observability.SetBuildHooks(&mergeCounter{})
//	    // ... run application
//	}
//
// Libraries emit events through the accessors:
//
//	observability.Build().OnMerge(ctx, stopID, len(routes), len(parents))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the stages of a pipeline run.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, location string)
	OnLoadComplete(ctx context.Context, location string, routeCount int, duration time.Duration, err error)

	// OnReconcileComplete fires once stop orders are unified. flipped counts
	// routes whose stop order was reversed.
	OnReconcileComplete(ctx context.Context, routeCount, flipped int, duration time.Duration, err error)

	OnBuildStart(ctx context.Context, routeCount, conflictCount int)
	OnBuildComplete(ctx context.Context, commits, merges int, duration time.Duration, err error)
}

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from the dependency fixpoint driver.
type BuildHooks interface {
	// OnPass fires at the start of every fixpoint pass with the number of
	// shared stops ready to merge. ready is 0 on the pass that deadlocks.
	OnPass(ctx context.Context, pass, ready int)

	// OnMerge fires after the commit of a shared stop was created.
	OnMerge(ctx context.Context, stopID string, routes, parents int)

	// OnDeadlock fires when unbuilt routes remain but nothing can merge.
	OnDeadlock(ctx context.Context, waiting int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events for every write to the version store.
type StoreHooks interface {
	// OnCommit records a created commit. parents is 0 for a root commit and
	// greater than 1 for a merge.
	OnCommit(ctx context.Context, branch string, parents int)

	// OnBranchMove records a branch fast-forwarded to an existing commit.
	OnBranchMove(ctx context.Context, branch string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType names the kind
// of entry, "feed" for downloaded feeds.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events for feed downloads.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure; HTTP error statuses go to
	// OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnReconcileComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int, int)                              {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)     {}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnPass(context.Context, int, int)          {}
func (NoopBuildHooks) OnMerge(context.Context, string, int, int) {}
func (NoopBuildHooks) OnDeadlock(context.Context, int)           {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCommit(context.Context, string, int) {}
func (NoopStoreHooks) OnBranchMove(context.Context, string)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	build    BuildHooks
	store    StoreHooks
	cache    CacheHooks
	http     HTTPHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	r := &registry{}
	r.reset()
	return r
}

func (r *registry) reset() {
	r.pipeline = NoopPipelineHooks{}
	r.build = NoopBuildHooks{}
	r.store = NoopStoreHooks{}
	r.cache = NoopCacheHooks{}
	r.http = NoopHTTPHooks{}
}

// set replaces *slot with h under the registry lock. A nil h is ignored so
// the no-op default stays in place.
func set[T comparable](slot *T, h T) {
	var zero T
	if h == zero {
		return
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	*slot = h
}

func get[T any](slot *T) T {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return *slot
}

// SetPipelineHooks registers custom pipeline hooks.
func SetPipelineHooks(h PipelineHooks) { set(&hooks.pipeline, h) }

// SetBuildHooks registers custom driver hooks.
func SetBuildHooks(h BuildHooks) { set(&hooks.build, h) }

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) { set(&hooks.store, h) }

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) { set(&hooks.cache, h) }

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { set(&hooks.http, h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return get(&hooks.pipeline) }

// Build returns the registered driver hooks.
func Build() BuildHooks { return get(&hooks.build) }

// Store returns the registered store hooks.
func Store() StoreHooks { return get(&hooks.store) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get(&hooks.cache) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get(&hooks.http) }

// Reset restores all hooks to their no-op defaults. Tests use it to undo
// registrations.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.reset()
}
