package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/state"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func token(t *testing.T, userId string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newApp(t *testing.T, register func(r fiber.Router)) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path, userId, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userId != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userId))
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestCalendarController_Flow(t *testing.T) {
	backend := state.NewMemoryBackend()
	app := newApp(t, NewCalendarController(service.NewCalendarService(backend)).RegisterRoutes)

	code, _ := do(t, app, "GET", "/api/calendar/v1/events", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, env := do(t, app, "POST", "/api/calendar/v1/events", "u1", `{"title":"Dentist","date":"2024-06-01","time":"10:00"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var created entity.CalendarEvent
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, entity.EventPending, created.Status)

	code, env = do(t, app, "POST", "/api/calendar/v1/events", "u1", `{"title":"Bad","date":"tomorrow","time":"10:00"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, env = do(t, app, "PATCH", "/api/calendar/v1/events/"+created.Id+"/status", "u1", `{"status":"completed"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, env = do(t, app, "GET", "/api/calendar/v1/events?date=2024-06-01", "u1", "")
	require.Equal(t, fiber.StatusOK, code)
	var list []entity.CalendarEvent
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, entity.EventCompleted, list[0].Status)

	// Another user never sees u1's events
	code, env = do(t, app, "GET", "/api/calendar/v1/events", "u2", "")
	require.Equal(t, fiber.StatusOK, code)
	var other []entity.CalendarEvent
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &other))
	}
	assert.Empty(t, other)

	code, _ = do(t, app, "DELETE", "/api/calendar/v1/events/missing", "u1", "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestSettingsController_MasksKeys(t *testing.T) {
	app := newApp(t, NewSettingsController(service.NewSettingsService(state.NewMemoryBackend())).RegisterRoutes)

	code, env := do(t, app, "POST", "/api/settings/v1/credentials", "u1", `{"label":"main","api_key":"AIza-very-secret-9876"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	assert.NotContains(t, string(env.Data), "very-secret")
	assert.Contains(t, string(env.Data), "9876")

	code, _ = do(t, app, "PUT", "/api/settings/v1", "u1", `{"search_context":"everything"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = do(t, app, "PUT", "/api/settings/v1", "u1", `{"sarcastic_humor":true}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var res dto.SettingsResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.SarcasticHumor)
	assert.Len(t, res.Credentials, 1)
}

type stubAssistantService struct {
	service.IAssistantService
	err error
}

func (s *stubAssistantService) SendMessage(ctx context.Context, userId string, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SendMessageResponse{Transcription: &entity.Transcription{Speaker: entity.SpeakerAssistant, Text: "echo " + request.Text}}, nil
}

func TestAssistantController_SendMessage(t *testing.T) {
	svc := &stubAssistantService{}
	app := newApp(t, NewAssistantController(svc).RegisterRoutes)

	code, env := do(t, app, "POST", "/api/assistant/v1/messages", "u1", `{"text":"hi"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "echo hi")

	code, _ = do(t, app, "POST", "/api/assistant/v1/messages", "u1", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code, "text or image is required")

	svc.err = assistant.ErrCredentialRequired
	code, env = do(t, app, "POST", "/api/assistant/v1/messages", "u1", `{"text":"hi"}`)
	assert.Equal(t, fiber.StatusPreconditionFailed, code)
	assert.Contains(t, env.Message, "API key")

	svc.err = assistant.ErrBusy
	code, _ = do(t, app, "POST", "/api/assistant/v1/messages", "u1", `{"text":"hi"}`)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestDocumentController_NotFound(t *testing.T) {
	app := newApp(t, NewDocumentController(service.NewDocumentService(state.NewMemoryBackend())).RegisterRoutes)

	code, env := do(t, app, "POST", "/api/document/v1", "u1", `{"title":"Essay","content":"Draft"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var doc entity.LiveDocument
	require.NoError(t, json.Unmarshal(env.Data, &doc))

	code, env = do(t, app, "PUT", "/api/document/v1/"+doc.Id, "u1", `{"content":"Final"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "Final")

	code, _ = do(t, app, "GET", "/api/document/v1/nope", "u1", "")
	assert.Equal(t, fiber.StatusNotFound, code)
}
