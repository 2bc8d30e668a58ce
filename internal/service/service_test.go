package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/reminder"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func ptr[T any](v T) *T { return &v }

func TestSettingsService_CredentialsAndPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(state.NewMemoryBackend())

	res, err := svc.AddCredential(ctx, testUser, &dto.AddCredentialRequest{Label: "personal", ApiKey: "AIza-secret-1234"})
	require.NoError(t, err)
	require.Len(t, res.Credentials, 1)
	first := res.Credentials[0]
	assert.Equal(t, first.Id, res.ActiveCredentialId, "first credential becomes active")
	assert.Equal(t, "********1234", first.MaskedKey)

	res, err = svc.AddCredential(ctx, testUser, &dto.AddCredentialRequest{Label: "work", ApiKey: "xyz"})
	require.NoError(t, err)
	require.Len(t, res.Credentials, 2)
	assert.Equal(t, first.Id, res.ActiveCredentialId)
	assert.Equal(t, "***", res.Credentials[1].MaskedKey)

	res, err = svc.SetActiveCredential(ctx, testUser, &dto.SetActiveCredentialRequest{CredentialId: res.Credentials[1].Id})
	require.NoError(t, err)
	assert.Equal(t, res.Credentials[1].Id, res.ActiveCredentialId)

	_, err = svc.SetActiveCredential(ctx, testUser, &dto.SetActiveCredentialRequest{CredentialId: "missing"})
	assert.ErrorIs(t, err, state.ErrNotFound)

	res, err = svc.DeleteCredential(ctx, testUser, res.ActiveCredentialId)
	require.NoError(t, err)
	assert.Len(t, res.Credentials, 1)
	assert.Empty(t, res.ActiveCredentialId)

	res, err = svc.Update(ctx, testUser, &dto.UpdateSettingsRequest{
		SarcasticHumor: ptr(true),
		SearchContext:  ptr("deep"),
		Email:          ptr("  me@example.com "),
	})
	require.NoError(t, err)
	assert.True(t, res.SarcasticHumor)
	assert.Equal(t, "deep", res.SearchContext)
	assert.Equal(t, "me@example.com", res.Email)
	assert.Equal(t, state.DefaultLocale, res.Locale, "untouched fields keep their value")

	res, err = svc.Update(ctx, testUser, &dto.UpdateSettingsRequest{SearchContext: ptr("none")})
	require.NoError(t, err)
	assert.Empty(t, res.SearchContext)
	assert.True(t, res.SarcasticHumor)
}

func TestCalendarService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewCalendarService(state.NewMemoryBackend())

	late, err := svc.Create(ctx, testUser, &dto.CreateEventRequest{Title: " Dentist ", Date: "2024-06-01", Time: "15:00"})
	require.NoError(t, err)
	assert.Equal(t, "Dentist", late.Title)
	assert.Equal(t, entity.EventPending, late.Status)

	early, err := svc.Create(ctx, testUser, &dto.CreateEventRequest{Title: "Standup", Date: "2024-06-01", Time: "09:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUser, &dto.CreateEventRequest{Title: "Gym", Date: "2024-06-02", Time: "07:00"})
	require.NoError(t, err)

	day, err := svc.List(ctx, testUser, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, early.Id, day[0].Id)

	all, err := svc.List(ctx, testUser, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	updated, err := svc.UpdateStatus(ctx, testUser, &dto.UpdateEventStatusRequest{Id: late.Id, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, entity.EventCompleted, updated.Status)

	updated, err = svc.Update(ctx, testUser, &dto.UpdateEventRequest{Id: late.Id, Title: "Dentist", Date: "2024-06-03", Time: "10:30"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", updated.Date)
	assert.Equal(t, entity.EventCompleted, updated.Status, "status survives a full update")

	require.NoError(t, svc.Delete(ctx, testUser, early.Id))
	assert.ErrorIs(t, svc.Delete(ctx, testUser, early.Id), state.ErrNotFound)
	_, err = svc.UpdateStatus(ctx, testUser, &dto.UpdateEventStatusRequest{Id: "missing", Status: "pending"})
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestDocumentService_DeleteClearsActiveDocument(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	svc := NewDocumentService(backend)

	list, err := svc.List(ctx, testUser)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	doc, err := svc.Create(ctx, testUser, &dto.CreateDocumentRequest{Title: "Essay", Content: "Draft"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testUser, &dto.UpdateDocumentRequest{Id: doc.Id, Content: ptr("Second draft")})
	require.NoError(t, err)
	assert.Equal(t, "Essay", updated.Title)
	assert.Equal(t, "Second draft", updated.Content)

	shown, err := svc.Show(ctx, testUser, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "Second draft", shown.Content)

	_, err = backend.Update(ctx, testUser, func(a *entity.AppState) error {
		a.ActiveDocumentId = doc.Id
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testUser, doc.Id))
	s, err := backend.Load(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, s.ActiveDocumentId)
	assert.Empty(t, s.Documents)

	_, err = svc.Show(ctx, testUser, doc.Id)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestHistoryAndReminderServices(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	_, err := backend.Update(ctx, testUser, func(a *entity.AppState) error {
		a.ChatHistory = []entity.ChatSession{{Id: "s2", Title: "newer"}, {Id: "s1", Title: "older"}}
		a.ActiveReminders = []entity.Reminder{{Id: "ev-1h", UserId: testUser, EventId: "ev", Bucket: "1h"}}
		return nil
	})
	require.NoError(t, err)

	history := NewHistoryService(backend)
	require.NoError(t, history.Delete(ctx, testUser, "s2"))
	sessions, err := history.List(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].Id)
	assert.ErrorIs(t, history.Delete(ctx, testUser, "s2"), state.ErrNotFound)

	reminders := NewReminderService(backend)
	list, err := reminders.List(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, reminders.Dismiss(ctx, testUser, "ev-1h"))
	list, err = reminders.List(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type stubProvider struct{}

func (stubProvider) Search(ctx context.Context, engine search.Engine, query string) ([]search.Result, error) {
	return []search.Result{{Title: string(engine), Url: "https://" + string(engine) + ".example.com"}}, nil
}

type stubClient struct{ text string }

func (c stubClient) GenerateContent(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	return &llm.Response{Text: c.text}, nil
}

type stubClients struct{ client llm.GenerativeClient }

func (c stubClients) Get(ctx context.Context, apiKey string) (llm.GenerativeClient, error) {
	return c.client, nil
}

func TestSearchService_DeepSearch(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	clients := stubClients{client: stubClient{text: `{"title":"Tides","summary":"The moon.","resources":[{"title":"a","url":"https://google.example.com"}]}`}}
	searcher := search.NewService(stubProvider{}, logger.NewNopLogger())

	_, err := NewSearchService(backend, nil, clients, "fast").DeepSearch(ctx, testUser, &dto.DeepSearchRequest{Query: "tides"})
	assert.ErrorIs(t, err, assistant.ErrSearchDisabled)

	svc := NewSearchService(backend, searcher, clients, "fast")
	_, err = svc.DeepSearch(ctx, testUser, &dto.DeepSearchRequest{Query: "tides"})
	assert.ErrorIs(t, err, assistant.ErrCredentialRequired)

	_, err = NewSettingsService(backend).AddCredential(ctx, testUser, &dto.AddCredentialRequest{Label: "k", ApiKey: "key-1"})
	require.NoError(t, err)

	res, err := svc.DeepSearch(ctx, testUser, &dto.DeepSearchRequest{Query: " tides "})
	require.NoError(t, err)
	assert.Equal(t, "tides", res.Query)
	assert.Equal(t, "card", res.Format)
	assert.Equal(t, "The moon.", res.Summary)
	require.NotNil(t, res.Card)
	assert.Len(t, res.ResourceLinks, 1)
	assert.Empty(t, res.FailedEngines)

	s, err := backend.Load(ctx, testUser)
	require.NoError(t, err)
	assert.EqualValues(t, len(search.DefaultEngines), s.Settings.SearchRequestCount)
}

type recordingDelivery struct {
	mu     sync.Mutex
	pushes []string
	data   []interface{}
}

func (d *recordingDelivery) Send(userId string, msgType string, data interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, userId+":"+msgType)
	d.data = append(d.data, data)
}

func (d *recordingDelivery) sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.pushes...)
}

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	mail []mailer.ReminderMail
	err  error
}

func (m *recordingMailer) SendReminder(toEmail string, reminder mailer.ReminderMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, toEmail)
	m.mail = append(m.mail, reminder)
	return m.err
}

func TestNotificationService_ReminderPushAndMail(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	_, err := backend.Update(ctx, testUser, func(a *entity.AppState) error {
		a.Settings.EmailReminders = true
		a.Settings.Email = "me@example.com"
		return nil
	})
	require.NoError(t, err)

	brt := time.FixedZone("BRT", -3*60*60)
	r := entity.Reminder{
		Id: "ev-1h", UserId: testUser, EventId: "ev", EventTitle: "Dentist", Bucket: "1h",
		EventTime: time.Date(2024, 6, 1, 10, 0, 0, 0, brt),
		RemindAt:  time.Date(2024, 6, 1, 9, 0, 0, 0, brt),
	}

	delivery := &recordingDelivery{}
	mail := &recordingMailer{}
	svc := NewNotificationService(backend, nil, delivery, mail, logger.NewNopLogger())

	require.NoError(t, svc.handleReminder(ctx, reminder.ReminderEvent(r, r.RemindAt)))
	assert.Equal(t, []string{testUser + ":" + PushReminder}, delivery.sent())
	require.Len(t, mail.mail, 1)
	assert.Equal(t, "me@example.com", mail.to[0])
	assert.Equal(t, "Dentist", mail.mail[0].EventTitle)
	assert.Equal(t, "01/06/2024 às 10:00", mail.mail[0].When)

	mail.err = errors.New("smtp down")
	assert.NoError(t, svc.handleReminder(ctx, reminder.ReminderEvent(r, r.RemindAt)), "mail failures are not redelivered")
}

func TestNotificationService_SkipsMailWhenOptedOut(t *testing.T) {
	delivery := &recordingDelivery{}
	mail := &recordingMailer{}
	svc := NewNotificationService(state.NewMemoryBackend(), nil, delivery, mail, logger.NewNopLogger())

	r := entity.Reminder{Id: "ev-1d", UserId: testUser, EventTitle: "Trip", Bucket: "1d", EventTime: time.Now()}
	require.NoError(t, svc.handleReminder(context.Background(), reminder.ReminderEvent(r, time.Now())))

	assert.Len(t, delivery.sent(), 1)
	assert.Empty(t, mail.mail)
}

func TestNotificationService_StartRoutesBusEvents(t *testing.T) {
	bus := events.NewLocalBus(nil)
	defer bus.Close()

	delivery := &recordingDelivery{}
	svc := NewNotificationService(state.NewMemoryBackend(), bus, delivery, nil, logger.NewNopLogger())
	require.NoError(t, svc.Start())

	err := bus.Publish(context.Background(), events.BaseEvent{
		Type:       events.SessionArchived,
		Data:       map[string]interface{}{"user_id": testUser, "session_id": "s1"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		sent := delivery.sent()
		return len(sent) == 1 && sent[0] == testUser+":"+PushHistory
	}, 2*time.Second, 10*time.Millisecond)
}
