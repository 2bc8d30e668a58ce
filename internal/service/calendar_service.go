package service

import (
	"context"
	"sort"
	"strings"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/state"

	"github.com/google/uuid"
)

type ICalendarService interface {
	List(ctx context.Context, userId string, date string) ([]entity.CalendarEvent, error)
	Create(ctx context.Context, userId string, request *dto.CreateEventRequest) (*entity.CalendarEvent, error)
	Update(ctx context.Context, userId string, request *dto.UpdateEventRequest) (*entity.CalendarEvent, error)
	UpdateStatus(ctx context.Context, userId string, request *dto.UpdateEventStatusRequest) (*entity.CalendarEvent, error)
	Delete(ctx context.Context, userId string, eventId string) error
}

type calendarService struct {
	backend state.Backend
}

func NewCalendarService(backend state.Backend) ICalendarService {
	return &calendarService{backend: backend}
}

// List returns the events ordered by date and time. An empty date returns all of them.
func (s *calendarService) List(ctx context.Context, userId string, date string) ([]entity.CalendarEvent, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]entity.CalendarEvent, 0, len(appState.CalendarEvents))
	for _, ev := range appState.CalendarEvents {
		if date == "" || ev.Date == date {
			res = append(res, ev)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date+res[i].Time < res[j].Date+res[j].Time
	})
	return res, nil
}

func (s *calendarService) Create(ctx context.Context, userId string, request *dto.CreateEventRequest) (*entity.CalendarEvent, error) {
	event := entity.CalendarEvent{
		Id:             uuid.NewString(),
		Title:          strings.TrimSpace(request.Title),
		Date:           request.Date,
		Time:           request.Time,
		Description:    request.Description,
		Status:         entity.EventPending,
		Prerequisites:  request.Prerequisites,
		ExecutionSteps: request.ExecutionSteps,
	}

	if _, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		a.CalendarEvents = append(a.CalendarEvents, event)
		return nil
	}); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *calendarService) Update(ctx context.Context, userId string, request *dto.UpdateEventRequest) (*entity.CalendarEvent, error) {
	return s.mutate(ctx, userId, request.Id, func(ev *entity.CalendarEvent) {
		ev.Title = strings.TrimSpace(request.Title)
		ev.Date = request.Date
		ev.Time = request.Time
		ev.Description = request.Description
		ev.Prerequisites = request.Prerequisites
		ev.ExecutionSteps = request.ExecutionSteps
	})
}

func (s *calendarService) UpdateStatus(ctx context.Context, userId string, request *dto.UpdateEventStatusRequest) (*entity.CalendarEvent, error) {
	return s.mutate(ctx, userId, request.Id, func(ev *entity.CalendarEvent) {
		ev.Status = entity.EventStatus(request.Status)
	})
}

func (s *calendarService) Delete(ctx context.Context, userId string, eventId string) error {
	_, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		for i, ev := range a.CalendarEvents {
			if ev.Id == eventId {
				a.CalendarEvents = append(a.CalendarEvents[:i], a.CalendarEvents[i+1:]...)
				return nil
			}
		}
		return state.ErrNotFound
	})
	return err
}

func (s *calendarService) mutate(ctx context.Context, userId, eventId string, fn func(ev *entity.CalendarEvent)) (*entity.CalendarEvent, error) {
	var updated entity.CalendarEvent
	if _, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		ev, ok := a.Event(eventId)
		if !ok {
			return state.ErrNotFound
		}
		fn(ev)
		updated = *ev
		return nil
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}
