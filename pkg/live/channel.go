// Package live is the duplex channel to a continuous conversational model.
package live

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/llm"
)

type EventKind string

const (
	EventStateChanged EventKind = "state"
	EventTranscript   EventKind = "transcript"
	EventTurnComplete EventKind = "turn_complete"
	EventFunctionCall EventKind = "function_call"
	EventError        EventKind = "error"
)

// Event is one item of the channel's ordered event stream. Only the fields of
// its Kind are set.
type Event struct {
	Kind EventKind

	// EventStateChanged
	State entity.ConnectionState

	// EventTranscript partial fragments
	UserText      string
	AssistantText string

	// EventTurnComplete
	Speaker entity.Speaker
	Text    string

	// EventFunctionCall
	Call *llm.FunctionCall

	// EventError
	Message string
}

type Config struct {
	ApiKey            string
	Voice             string
	SystemInstruction string
	Transcription     bool
	Tools             []llm.FunctionDeclaration
}

// Channel is a live session. Events keeps the same stream across reconnects and
// is never closed; a connection that ends reports a disconnected or error state.
type Channel interface {
	Open(ctx context.Context, cfg Config) error
	Close() error
	SendText(text string) error
	SendToolResult(id string, payload map[string]any) error
	Events() <-chan Event
}
