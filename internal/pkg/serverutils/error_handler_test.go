package serverutils

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/state"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
}

func TestErrorHandlerMiddleware_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", state.ErrNotFound), fiber.StatusNotFound},
		{assistant.ErrBusy, fiber.StatusConflict},
		{assistant.ErrCredentialRequired, fiber.StatusPreconditionFailed},
		{assistant.ErrInvalidMode, fiber.StatusBadRequest},
		{fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot},
		{ValidateRequest(createRequest{Date: "tomorrow"}), fiber.StatusBadRequest},
		{fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		app := fiber.New()
		app.Use(ErrorHandlerMiddleware())
		app.Get("/", func(c *fiber.Ctx) error { return tt.err })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tt.want, resp.StatusCode, "%v: %s", tt.err, body)
		assert.Contains(t, string(body), `"success":false`)
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(createRequest{Title: "x", Date: "2024-01-02"}))

	err := ValidateRequest(createRequest{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Fields["Title"])
	assert.Equal(t, "required", ve.Fields["Date"])
}
