// Package assistant drives one user's conversation: interaction modes, chat
// turns and their response strategies, two-phase tool calls, live sessions and
// archival into the history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"
	"ai-assistant-be/pkg/tools"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const module = "ASSISTANT"

var (
	ErrCredentialRequired = errors.New("assistant: an active API credential is required")
	ErrBusy               = errors.New("assistant: another request is still in progress")
	ErrInvalidMode        = errors.New("assistant: unknown interaction mode")
	ErrEmptyMessage       = errors.New("assistant: message is empty")
	ErrNotLiveMode        = errors.New("assistant: live sessions need live or co-creator mode")
	ErrSearchDisabled     = errors.New("assistant: deep search is not configured")
)

// Push message types sent through the Notifier.
const (
	PushTranscript      = "transcript"
	PushConnectionState = "connection_state"
	PushMode            = "mode"
)

// ClientSource hands out a generative client for an API key.
type ClientSource interface {
	Get(ctx context.Context, apiKey string) (llm.GenerativeClient, error)
}

// Notifier pushes updates to the user's open UI connections.
type Notifier interface {
	Send(userId string, msgType string, data interface{})
}

type Dependencies struct {
	Store        state.Store
	Clients      ClientSource
	Channel      live.Channel
	Search       *search.Service // nil disables deep search
	Notifier     Notifier
	Publisher    events.Publisher // optional, receives SESSION_ARCHIVED
	Logger       logger.ILogger
	Location     *time.Location
	FastModel    string
	StrongModel  string
	DefaultVoice string
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIdGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newId = fn }
}

// Orchestrator is the single authority over one user's conversation.
type Orchestrator struct {
	userId       string
	store        state.Store
	clients      ClientSource
	channel      live.Channel
	search       *search.Service
	notifier     Notifier
	publisher    events.Publisher
	logger       logger.ILogger
	loc          *time.Location
	tools        *tools.Executor
	tracer       trace.Tracer
	fastModel    string
	strongModel  string
	defaultVoice string
	now          func() time.Time
	newId        func() string

	mu      sync.Mutex
	session session
	// lifecycle serializes Open and Close on the channel
	lifecycle sync.Mutex
}

// TranscriptPush is the payload of a transcript push.
type TranscriptPush struct {
	Mode          entity.InteractionMode `json:"mode"`
	Transcription entity.Transcription   `json:"transcription"`
}

// Snapshot is what the UI needs to render the conversation.
type Snapshot struct {
	Mode            entity.InteractionMode `json:"mode"`
	ConnectionState entity.ConnectionState `json:"connection_state"`
	Transcriptions  []entity.Transcription `json:"transcriptions"`
}

func New(userId string, deps Dependencies, opts ...Option) *Orchestrator {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	o := &Orchestrator{
		userId:       userId,
		store:        deps.Store,
		clients:      deps.Clients,
		channel:      deps.Channel,
		search:       deps.Search,
		notifier:     deps.Notifier,
		publisher:    deps.Publisher,
		logger:       deps.Logger,
		loc:          loc,
		tracer:       otel.Tracer("ai-assistant-be/assistant"),
		fastModel:    deps.FastModel,
		strongModel:  deps.StrongModel,
		defaultVoice: deps.DefaultVoice,
		now:          time.Now,
		newId:        uuid.NewString,
		session:      newSession(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.tools = tools.NewExecutor(deps.Store, deps.Logger, loc,
		tools.WithClock(func() time.Time { return o.now().In(o.loc) }),
		tools.WithIdGenerator(o.newId),
	)
	return o
}

func (o *Orchestrator) UserId() string {
	return o.userId
}

// Snapshot returns a copy of the current conversation view.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Mode:            o.session.mode,
		ConnectionState: o.session.connectionState(),
		Transcriptions:  append([]entity.Transcription{}, o.session.transcript()...),
	}
}

// SetInteractionMode switches modes. Leaving live or co-creator with an open
// channel closes it before the mode changes. The chat transcript is never
// touched.
func (o *Orchestrator) SetInteractionMode(next entity.InteractionMode) error {
	if !next.IsValid() {
		return ErrInvalidMode
	}

	o.mu.Lock()
	before := o.session.connectionState()
	s, fx := o.session.withMode(next)
	o.session = s
	after := s.connectionState()
	o.mu.Unlock()

	if fx.closeChannel {
		o.closeChannel()
	}

	o.logger.Info(module, "Interaction mode changed", map[string]interface{}{
		"user_id": o.userId,
		"mode":    string(next),
	})
	o.push(PushMode, next)
	if before != after {
		o.push(PushConnectionState, after)
	}
	return nil
}

// SetActiveDocument selects the document the co-creator tools edit.
func (o *Orchestrator) SetActiveDocument(ctx context.Context, documentId string) error {
	_, err := o.store.Update(ctx, func(s *entity.AppState) error {
		if documentId != "" {
			if _, ok := s.Document(documentId); !ok {
				return state.ErrNotFound
			}
		}
		s.ActiveDocumentId = documentId
		return nil
	})
	return err
}

// Close ends the live channel, if any.
func (o *Orchestrator) Close() error {
	return o.channel.Close()
}

func (o *Orchestrator) closeChannel() {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	if err := o.channel.Close(); err != nil {
		o.logger.Warn(module, "Failed to close live channel", map[string]interface{}{
			"user_id": o.userId,
			"error":   err.Error(),
		})
	}
}

// setLocal changes the orchestrator owned state and pushes the projection when
// it moved.
func (o *Orchestrator) setLocal(cs entity.ConnectionState) {
	o.mu.Lock()
	before := o.session.connectionState()
	o.session.local = cs
	after := o.session.connectionState()
	o.mu.Unlock()

	if before != after {
		o.push(PushConnectionState, after)
	}
}

// appendTranscription adds t to the buffer of mode and pushes it.
func (o *Orchestrator) appendTranscription(mode entity.InteractionMode, t entity.Transcription) entity.Transcription {
	o.mu.Lock()
	o.session = o.session.appendTranscript(mode, t)
	o.mu.Unlock()

	o.push(PushTranscript, TranscriptPush{Mode: mode, Transcription: t})
	return t
}

func (o *Orchestrator) newTranscription(speaker entity.Speaker, text string) entity.Transcription {
	return entity.Transcription{
		Id:        o.newId(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: o.now(),
	}
}

func (o *Orchestrator) systemMessage(mode entity.InteractionMode, format string, args ...interface{}) entity.Transcription {
	return o.appendTranscription(mode, o.newTranscription(entity.SpeakerSystem, fmt.Sprintf(format, args...)))
}

func (o *Orchestrator) push(msgType string, data interface{}) {
	if o.notifier == nil {
		return
	}
	o.notifier.Send(o.userId, msgType, data)
}

// client resolves the generative client of the active credential.
func (o *Orchestrator) client(ctx context.Context, settings entity.Settings) (llm.GenerativeClient, error) {
	cred, ok := settings.ActiveCredential()
	if !ok {
		return nil, ErrCredentialRequired
	}
	c, err := o.clients.Get(ctx, cred.ApiKey)
	if err != nil {
		return nil, fmt.Errorf("create generative client: %w", err)
	}
	return c, nil
}
