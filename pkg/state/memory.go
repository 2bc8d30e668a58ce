package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-assistant-be/internal/entity"
)

// MemoryBackend keeps state in process. Used in tests and single-node setups
// without a database.
type MemoryBackend struct {
	mu     sync.Mutex
	states map[string]*entity.AppState
	now    func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		states: make(map[string]*entity.AppState),
		now:    time.Now,
	}
}

func (b *MemoryBackend) Load(ctx context.Context, userId string) (*entity.AppState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.states[userId]; ok {
		return s.Clone(), nil
	}
	return NewAppState(userId), nil
}

func (b *MemoryBackend) Update(ctx context.Context, userId string, fn Mutator) (*entity.AppState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.states[userId]
	if !ok {
		current = NewAppState(userId)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UserId = userId
	next.UpdatedAt = b.now()
	b.states[userId] = next
	return next.Clone(), nil
}

func (b *MemoryBackend) UserIds(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.states))
	for id := range b.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
