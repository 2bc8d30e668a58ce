package serverutils

import (
	"errors"

	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"

	"github.com/gofiber/fiber/v2"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, state.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, assistant.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, assistant.ErrCredentialRequired):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, assistant.ErrInvalidMode),
		errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, assistant.ErrNotLiveMode):
		return fiber.StatusBadRequest
	case errors.Is(err, live.ErrNotConnected):
		return fiber.StatusConflict
	case errors.Is(err, assistant.ErrSearchDisabled):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, search.ErrAllEnginesFailed), errors.Is(err, search.ErrInvalidSynthesis):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns errors returned by handlers into the response
// envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := statusOf(err)
	message := err.Error()
	if code == fiber.StatusPreconditionFailed {
		message = "Add an API key in settings and select it before chatting"
	}
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
