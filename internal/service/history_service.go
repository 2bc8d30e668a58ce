package service

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/state"
)

type IHistoryService interface {
	List(ctx context.Context, userId string) ([]entity.ChatSession, error)
	Delete(ctx context.Context, userId string, sessionId string) error
}

type historyService struct {
	backend state.Backend
}

func NewHistoryService(backend state.Backend) IHistoryService {
	return &historyService{backend: backend}
}

// List returns the archived sessions, newest first.
func (s *historyService) List(ctx context.Context, userId string) ([]entity.ChatSession, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	if appState.ChatHistory == nil {
		return []entity.ChatSession{}, nil
	}
	return appState.ChatHistory, nil
}

func (s *historyService) Delete(ctx context.Context, userId string, sessionId string) error {
	_, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		for i, cs := range a.ChatHistory {
			if cs.Id == sessionId {
				a.ChatHistory = append(a.ChatHistory[:i], a.ChatHistory[i+1:]...)
				return nil
			}
		}
		return state.ErrNotFound
	})
	return err
}
