// Package reminder sweeps every user's calendar and fires lead-time reminders.
package reminder

import (
	"context"
	"fmt"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/state"
)

const module = "REMINDER"

// Scheduler runs the periodic sweep. Fired reminders are added to the user's
// active list and published as REMINDER_DUE.
type Scheduler struct {
	backend   state.Backend
	fired     FiredSet
	publisher events.Publisher
	logger    logger.ILogger
	loc       *time.Location
	interval  time.Duration
	now       func() time.Time
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Scheduler) { s.publisher = p }
}

func NewScheduler(backend state.Backend, fired FiredSet, logger logger.ILogger, loc *time.Location, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		backend:  backend,
		fired:    fired,
		logger:   logger,
		loc:      loc,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(module, "Reminder scheduler started", map[string]interface{}{"interval": s.interval.String()})
	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error(module, "Reminder sweep failed", map[string]interface{}{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			s.logger.Info(module, "Reminder scheduler stopped", nil)
			return
		case <-ticker.C:
		}
	}
}

// Sweep checks every user once and returns the reminders fired by this call.
// A failure for one user is logged and does not stop the others.
func (s *Scheduler) Sweep(ctx context.Context) ([]entity.Reminder, error) {
	userIds, err := s.backend.UserIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	now := s.now()
	var fired []entity.Reminder
	for _, userId := range userIds {
		if ctx.Err() != nil {
			return fired, ctx.Err()
		}
		out, err := s.sweepUser(ctx, userId, now)
		if err != nil {
			s.logger.Error(module, "Reminder sweep failed for user", map[string]interface{}{
				"user_id": userId,
				"error":   err.Error(),
			})
		}
		fired = append(fired, out...)
	}
	return fired, nil
}

func (s *Scheduler) sweepUser(ctx context.Context, userId string, now time.Time) ([]entity.Reminder, error) {
	st, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}

	// 1. Forget keys of deleted events
	live := make(map[string]struct{}, len(st.CalendarEvents))
	for _, ev := range st.CalendarEvents {
		live[ev.Id] = struct{}{}
	}
	if err := s.fired.Prune(ctx, userId, live); err != nil {
		s.logger.Warn(module, "Failed to prune fired reminders", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}

	// 2. Claim due keys; anything already claimed is dropped
	var fresh []entity.Reminder
	for _, r := range Due(userId, st.CalendarEvents, now, s.loc) {
		first, err := s.fired.MarkFired(ctx, userId, r.Id)
		if err != nil {
			return nil, err
		}
		if first {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	// 3. Add to the active list
	if _, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		for _, r := range fresh {
			if !hasReminder(a.ActiveReminders, r.Id) {
				a.ActiveReminders = append(a.ActiveReminders, r)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("store reminders: %w", err)
	}

	// 4. Announce
	for _, r := range fresh {
		s.logger.Info(module, "Reminder fired", map[string]interface{}{
			"user_id":     userId,
			"reminder_id": r.Id,
		})
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, ReminderEvent(r, now)); err != nil {
			s.logger.Warn(module, "Failed to publish reminder", map[string]interface{}{
				"reminder_id": r.Id,
				"error":       err.Error(),
			})
		}
	}
	return fresh, nil
}

// Dismiss removes a reminder from the user's active list.
func Dismiss(ctx context.Context, store state.Store, reminderId string) error {
	_, err := store.Update(ctx, func(a *entity.AppState) error {
		for i, r := range a.ActiveReminders {
			if r.Id == reminderId {
				a.ActiveReminders = append(a.ActiveReminders[:i], a.ActiveReminders[i+1:]...)
				return nil
			}
		}
		return state.ErrNotFound
	})
	return err
}

func hasReminder(list []entity.Reminder, id string) bool {
	for _, r := range list {
		if r.Id == id {
			return true
		}
	}
	return false
}

// ReminderEvent wraps r for the event bus.
func ReminderEvent(r entity.Reminder, now time.Time) events.Event {
	return events.BaseEvent{
		Type: events.ReminderDue,
		Data: map[string]interface{}{
			"user_id":     r.UserId,
			"reminder_id": r.Id,
			"event_id":    r.EventId,
			"event_title": r.EventTitle,
			"event_time":  r.EventTime.Format(time.RFC3339),
			"remind_at":   r.RemindAt.Format(time.RFC3339),
			"bucket":      r.Bucket,
		},
		OccurredAt: now,
	}
}

// ReminderFromPayload is the inverse of ReminderEvent.
func ReminderFromPayload(payload map[string]interface{}) entity.Reminder {
	str := func(k string) string {
		v, _ := payload[k].(string)
		return v
	}
	r := entity.Reminder{
		Id:         str("reminder_id"),
		UserId:     str("user_id"),
		EventId:    str("event_id"),
		EventTitle: str("event_title"),
		Bucket:     str("bucket"),
	}
	r.EventTime, _ = time.Parse(time.RFC3339, str("event_time"))
	r.RemindAt, _ = time.Parse(time.RFC3339, str("remind_at"))
	return r
}
