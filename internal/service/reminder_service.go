package service

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/reminder"
	"ai-assistant-be/pkg/state"
)

type IReminderService interface {
	List(ctx context.Context, userId string) ([]entity.Reminder, error)
	Dismiss(ctx context.Context, userId string, reminderId string) error
}

type reminderService struct {
	backend state.Backend
}

func NewReminderService(backend state.Backend) IReminderService {
	return &reminderService{backend: backend}
}

func (s *reminderService) List(ctx context.Context, userId string) ([]entity.Reminder, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	if appState.ActiveReminders == nil {
		return []entity.Reminder{}, nil
	}
	return appState.ActiveReminders, nil
}

func (s *reminderService) Dismiss(ctx context.Context, userId string, reminderId string) error {
	return reminder.Dismiss(ctx, state.ForUser(s.backend, userId), reminderId)
}
