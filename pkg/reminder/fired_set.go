package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FiredSet remembers which reminders went out. MarkFired reports true only for
// the first caller of a key, which is what makes delivery at-most-once.
type FiredSet interface {
	MarkFired(ctx context.Context, userId, key string) (bool, error)
	// Prune forgets the keys of events that are not in live. Event ids are never
	// reused, so a pruned key cannot fire again.
	Prune(ctx context.Context, userId string, live map[string]struct{}) error
}

// eventIdOf strips the bucket label. Labels hold no dash, event ids may.
func eventIdOf(key string) string {
	if i := strings.LastIndex(key, "-"); i >= 0 {
		return key[:i]
	}
	return key
}

type MemoryFiredSet struct {
	mu    sync.Mutex
	fired map[string]map[string]struct{}
}

func NewMemoryFiredSet() *MemoryFiredSet {
	return &MemoryFiredSet{fired: make(map[string]map[string]struct{})}
}

func (s *MemoryFiredSet) MarkFired(ctx context.Context, userId, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.fired[userId]
	if !ok {
		keys = make(map[string]struct{})
		s.fired[userId] = keys
	}
	if _, ok := keys[key]; ok {
		return false, nil
	}
	keys[key] = struct{}{}
	return true, nil
}

func (s *MemoryFiredSet) Prune(ctx context.Context, userId string, live map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.fired[userId]
	for key := range keys {
		if _, ok := live[eventIdOf(key)]; !ok {
			delete(keys, key)
		}
	}
	if len(keys) == 0 {
		delete(s.fired, userId)
	}
	return nil
}

// Len counts the keys held for userId.
func (s *MemoryFiredSet) Len(userId string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fired[userId])
}

// RedisFiredSet shares the fired set between instances, one Redis set per user.
// SADD decides the first caller.
type RedisFiredSet struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisFiredSet(rdb *redis.Client) *RedisFiredSet {
	return &RedisFiredSet{rdb: rdb, prefix: "reminder:fired:"}
}

func (s *RedisFiredSet) MarkFired(ctx context.Context, userId, key string) (bool, error) {
	added, err := s.rdb.SAdd(ctx, s.prefix+userId, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis sadd: %w", err)
	}
	return added == 1, nil
}

func (s *RedisFiredSet) Prune(ctx context.Context, userId string, live map[string]struct{}) error {
	keys, err := s.rdb.SMembers(ctx, s.prefix+userId).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}

	var stale []interface{}
	for _, key := range keys {
		if _, ok := live[eventIdOf(key)]; !ok {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if err := s.rdb.SRem(ctx, s.prefix+userId, stale...).Err(); err != nil {
		return fmt.Errorf("redis srem: %w", err)
	}
	return nil
}
