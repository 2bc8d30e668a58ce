// Package state persists the per-user AppState and serializes every write to it.
package state

import (
	"context"
	"errors"

	"ai-assistant-be/internal/entity"
)

var ErrNotFound = errors.New("state: not found")

const DefaultLocale = "pt-BR"

// Mutator edits a private copy of the state. Returning an error discards the edit.
type Mutator func(s *entity.AppState) error

// Store is the view of one user's state handed to the orchestrator and the tools.
type Store interface {
	Load(ctx context.Context) (*entity.AppState, error)
	// Update applies fn under the user's write lock and persists the result. Concurrent
	// updates never lose each other's changes.
	Update(ctx context.Context, fn Mutator) (*entity.AppState, error)
}

// Backend stores the state of every user.
type Backend interface {
	Load(ctx context.Context, userId string) (*entity.AppState, error)
	Update(ctx context.Context, userId string, fn Mutator) (*entity.AppState, error)
	UserIds(ctx context.Context) ([]string, error)
}

// NewAppState is the state of a user that has never saved anything.
func NewAppState(userId string) *entity.AppState {
	return &entity.AppState{
		UserId: userId,
		Settings: entity.Settings{
			DeepSearchFormat: entity.DeepSearchCard,
			Locale:           DefaultLocale,
		},
	}
}

type userStore struct {
	backend Backend
	userId  string
}

// ForUser binds a backend to a single user.
func ForUser(backend Backend, userId string) Store {
	return &userStore{backend: backend, userId: userId}
}

func (s *userStore) Load(ctx context.Context) (*entity.AppState, error) {
	return s.backend.Load(ctx, s.userId)
}

func (s *userStore) Update(ctx context.Context, fn Mutator) (*entity.AppState, error) {
	return s.backend.Update(ctx, s.userId, fn)
}
