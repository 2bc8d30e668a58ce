package assistant

import (
	"context"
	"sync"
	"time"

	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/state"

	"github.com/patrickmn/go-cache"
)

const (
	registryTTL     = 2 * time.Hour
	registryCleanup = 10 * time.Minute
)

type registryEntry struct {
	orchestrator *Orchestrator
	cancel       context.CancelFunc
}

// Registry keeps one Orchestrator per user in memory. Idle orchestrators expire
// and their live channels are closed.
type Registry struct {
	ctx        context.Context
	backend    state.Backend
	deps       Dependencies
	newChannel func() live.Channel
	opts       []Option

	mu    sync.Mutex
	cache *cache.Cache
}

// NewRegistry builds orchestrators from deps. Store and Channel in deps are
// ignored: each user gets its own store view and channel.
func NewRegistry(ctx context.Context, backend state.Backend, deps Dependencies, newChannel func() live.Channel, opts ...Option) *Registry {
	return newRegistry(ctx, backend, deps, newChannel, registryTTL, registryCleanup, opts...)
}

func newRegistry(ctx context.Context, backend state.Backend, deps Dependencies, newChannel func() live.Channel, ttl, cleanup time.Duration, opts ...Option) *Registry {
	r := &Registry{
		ctx:        ctx,
		backend:    backend,
		deps:       deps,
		newChannel: newChannel,
		opts:       opts,
		cache:      cache.New(ttl, cleanup),
	}
	r.cache.OnEvicted(func(userId string, v interface{}) {
		entry := v.(*registryEntry)
		entry.cancel()
		if err := entry.orchestrator.Close(); err != nil {
			deps.Logger.Warn(module, "Failed to close expired live channel", map[string]interface{}{
				"user_id": userId,
				"error":   err.Error(),
			})
		}
	})
	return r
}

// Get returns the user's orchestrator, creating and starting it when needed.
func (r *Registry) Get(userId string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.cache.Get(userId); found {
		r.cache.SetDefault(userId, v)
		return v.(*registryEntry).orchestrator
	}
	// An expired entry stays in the cache until the next sweep. Evict it now so
	// its Run goroutine and channel are stopped before the replacement starts.
	r.cache.Delete(userId)

	deps := r.deps
	deps.Store = state.ForUser(r.backend, userId)
	deps.Channel = r.newChannel()
	o := New(userId, deps, r.opts...)

	runCtx, cancel := context.WithCancel(r.ctx)
	go o.Run(runCtx)

	r.cache.SetDefault(userId, &registryEntry{orchestrator: o, cancel: cancel})
	return o
}

// Close stops every orchestrator.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Items skips expired entries; DeleteExpired evicts those
	r.cache.DeleteExpired()
	for userId := range r.cache.Items() {
		r.cache.Delete(userId)
	}
}
