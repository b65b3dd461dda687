// Package observability provides hooks for metrics and tracing.
//
// The store, the SVG renderer and the HTTP server report events through the
// hooks registered here. The defaults do nothing, so a metrics backend is
// only wired in when a program registers one at startup:
//
//	func main() {
//	    observability.SetStoreHooks(&promStoreHooks{})
//	    observability.SetHTTPHooks(&promHTTPHooks{})
//	    // ... run application
//	}
//
// Packages emit events with the accessor for their category:
//
//	start := time.Now()
//	p, err := load(path)
//	observability.Store().OnLoad(path, len(p.People), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives project file events.
type StoreHooks interface {
	// OnLoad records a project read. people is zero when err is set.
	OnLoad(path string, people int, duration time.Duration, err error)

	// OnSave records a project write and how many photos ended up in the
	// assets directory.
	OnSave(path string, people, assets int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events for requests served by the API.
type HTTPHooks interface {
	// OnRequest records a completed request. route is the matched route
	// pattern, e.g. "/v1/people/{id}", or the raw path when nothing matched.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(string, int, time.Duration, error)      {}
func (NoopStoreHooks) OnSave(string, int, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu    sync.RWMutex
	storeHooks StoreHooks = NoopStoreHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
)

// SetStoreHooks registers store hooks. A nil h is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
