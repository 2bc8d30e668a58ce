package service

import (
	"context"
	"fmt"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/reminder"
	"ai-assistant-be/pkg/state"
	"ai-assistant-be/pkg/tools"
)

const (
	PushReminder = "reminder"
	PushHistory  = "history"

	notificationWorker = "notif-service-worker"
)

// NotificationDelivery pushes real-time updates, implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userId string, msgType string, data interface{})
}

// NotificationService turns bus events into UI pushes and reminder e-mails.
type NotificationService struct {
	backend    state.Backend
	subscriber events.Subscriber
	delivery   NotificationDelivery
	mailer     mailer.IEmailService // nil when SMTP is not configured
	logger     logger.ILogger
}

func NewNotificationService(backend state.Backend, sub events.Subscriber, delivery NotificationDelivery, mail mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		backend:    backend,
		subscriber: sub,
		delivery:   delivery,
		mailer:     mail,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() error {
	if err := s.subscriber.Subscribe(events.Subject(events.ReminderDue), notificationWorker+"-reminder", s.handleReminder); err != nil {
		return fmt.Errorf("subscribe to reminders: %w", err)
	}
	if err := s.subscriber.Subscribe(events.Subject(events.SessionArchived), notificationWorker+"-history", s.handleArchived); err != nil {
		return fmt.Errorf("subscribe to archived sessions: %w", err)
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
	return nil
}

func (s *NotificationService) handleReminder(ctx context.Context, event events.Event) error {
	r := reminder.ReminderFromPayload(event.Payload())
	if r.UserId == "" || r.Id == "" {
		s.logger.Warn("NotificationService", "Reminder event without user or id", map[string]interface{}{"payload": event.Payload()})
		return nil
	}

	// 1. Real-time delivery
	s.delivery.Send(r.UserId, PushReminder, r)

	// 2. E-mail copy for users who opted in
	if s.mailer == nil {
		return nil
	}
	appState, err := s.backend.Load(ctx, r.UserId)
	if err != nil {
		return fmt.Errorf("load settings of %s: %w", r.UserId, err)
	}
	settings := appState.Settings
	if !settings.EmailReminders || settings.Email == "" {
		return nil
	}

	mail := reminderMail(r, settings)
	if err := s.mailer.SendReminder(settings.Email, mail); err != nil {
		// Not retried: a redelivery would push the reminder to the UI again
		s.logger.Error("NotificationService", "Failed to e-mail reminder", map[string]interface{}{
			"user_id":     r.UserId,
			"reminder_id": r.Id,
			"error":       err.Error(),
		})
		return nil
	}
	s.logger.Info("NotificationService", "Reminder e-mailed", map[string]interface{}{
		"user_id":     r.UserId,
		"reminder_id": r.Id,
	})
	return nil
}

func (s *NotificationService) handleArchived(ctx context.Context, event events.Event) error {
	userId, _ := event.Payload()["user_id"].(string)
	if userId == "" {
		return nil
	}
	s.delivery.Send(userId, PushHistory, event.Payload())
	return nil
}

func reminderMail(r entity.Reminder, settings entity.Settings) mailer.ReminderMail {
	return mailer.ReminderMail{
		EventTitle: r.EventTitle,
		When:       tools.FormatDateTime(r.EventTime, settings.Locale),
		LeadTime:   r.Bucket,
	}
}
