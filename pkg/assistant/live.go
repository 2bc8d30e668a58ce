package assistant

import (
	"context"
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/tools"
)

// StartLiveSession opens the channel for the current live or co-creator mode.
// A mode switch while dialing closes the new connection once the dial returns.
func (o *Orchestrator) StartLiveSession(ctx context.Context) error {
	o.mu.Lock()
	mode := o.session.mode
	o.mu.Unlock()
	if !mode.UsesChannel() {
		return ErrNotLiveMode
	}

	appState, err := o.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	cred, ok := appState.Settings.ActiveCredential()
	if !ok {
		return ErrCredentialRequired
	}

	voice := appState.Settings.VoiceName
	if voice == "" {
		voice = o.defaultVoice
	}

	cfg := live.Config{
		ApiKey:            cred.ApiKey,
		Voice:             voice,
		SystemInstruction: liveSystemInstruction(mode, appState.Settings, o.now().In(o.loc)),
		Transcription:     true,
		Tools:             tools.ForMode(mode, false),
	}

	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	o.mu.Lock()
	if o.session.mode != mode {
		o.mu.Unlock()
		return ErrNotLiveMode
	}
	epoch := o.session.epoch
	before := o.session.connectionState()
	o.session = o.session.withOpening()
	after := o.session.connectionState()
	o.mu.Unlock()
	if before != after {
		o.push(PushConnectionState, after)
	}

	if err := o.channel.Open(ctx, cfg); err != nil {
		o.mu.Lock()
		if o.session.epoch == epoch && o.session.channel == entity.ConnectionConnecting {
			o.session.channel = entity.ConnectionError
		}
		failed := o.session.connectionState()
		o.mu.Unlock()
		if failed != after {
			o.push(PushConnectionState, failed)
		}
		return fmt.Errorf("open live session: %w", err)
	}

	o.mu.Lock()
	overtaken := o.session.epoch != epoch
	o.mu.Unlock()
	if overtaken {
		if err := o.channel.Close(); err != nil {
			o.logger.Warn(module, "Failed to close live channel", map[string]interface{}{
				"user_id": o.userId,
				"error":   err.Error(),
			})
		}
		return ErrNotLiveMode
	}

	o.logger.Info(module, "Live session started", map[string]interface{}{
		"user_id": o.userId,
		"mode":    string(mode),
		"voice":   voice,
	})
	return nil
}

// StopLiveSession closes the channel. The resulting disconnected state arrives
// through the event stream.
func (o *Orchestrator) StopLiveSession() error {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	return o.channel.Close()
}

// Run consumes the channel's events in order until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	events := o.channel.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			o.handleLiveEvent(ctx, ev)
		}
	}
}

func (o *Orchestrator) handleLiveEvent(ctx context.Context, ev live.Event) {
	switch ev.Kind {
	case live.EventStateChanged:
		o.onChannelState(ctx, ev.State)

	case live.EventTranscript:
		o.mu.Lock()
		o.session.pendingUser += ev.UserText
		o.session.pendingAssistant += ev.AssistantText
		o.mu.Unlock()

	case live.EventTurnComplete:
		o.onTurnComplete(ev)

	case live.EventFunctionCall:
		if ev.Call == nil {
			return
		}
		res := o.tools.Execute(ctx, *ev.Call)
		if err := o.channel.SendToolResult(ev.Call.Id, res.ToResponse()); err != nil {
			o.logger.Warn(module, "Failed to answer live tool call", map[string]interface{}{
				"user_id": o.userId,
				"tool":    ev.Call.Name,
				"error":   err.Error(),
			})
		}

	case live.EventError:
		o.logger.Warn(module, "Live session error", map[string]interface{}{
			"user_id": o.userId,
			"message": ev.Message,
		})
		o.mu.Lock()
		mode := o.session.mode
		o.mu.Unlock()
		if mode.UsesChannel() {
			o.systemMessage(mode, "Live session error: %s", ev.Message)
		}
	}
}

func (o *Orchestrator) onChannelState(ctx context.Context, cs entity.ConnectionState) {
	o.mu.Lock()
	before := o.session.connectionState()
	s, fx := o.session.withChannelState(cs)
	o.session = s
	after := s.connectionState()
	o.mu.Unlock()

	if before != after {
		o.push(PushConnectionState, after)
	}
	if fx.sendHandshake {
		o.sendHandshake(ctx)
	}
}

func (o *Orchestrator) sendHandshake(ctx context.Context) {
	var doc *entity.LiveDocument
	appState, err := o.store.Load(ctx)
	if err != nil {
		o.logger.Warn(module, "Failed to load active document for handshake", map[string]interface{}{
			"user_id": o.userId,
			"error":   err.Error(),
		})
	} else if d, ok := appState.Document(appState.ActiveDocumentId); ok {
		doc = d
	}

	if err := o.channel.SendText(handshakeMessage(doc)); err != nil {
		o.logger.Warn(module, "Failed to send co-creator handshake", map[string]interface{}{
			"user_id": o.userId,
			"error":   err.Error(),
		})
	}
}

// onTurnComplete appends the finished utterance to the live transcript. Turns
// that arrive after leaving the channel modes are dropped.
func (o *Orchestrator) onTurnComplete(ev live.Event) {
	o.mu.Lock()
	mode := o.session.mode
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		if ev.Speaker == entity.SpeakerUser {
			text = strings.TrimSpace(o.session.pendingUser)
		} else {
			text = strings.TrimSpace(o.session.pendingAssistant)
		}
	}
	if ev.Speaker == entity.SpeakerUser {
		o.session.pendingUser = ""
	} else {
		o.session.pendingAssistant = ""
	}
	o.mu.Unlock()

	if !mode.UsesChannel() || text == "" {
		return
	}
	speaker := ev.Speaker
	if speaker == "" {
		speaker = entity.SpeakerAssistant
	}
	o.appendTranscription(mode, o.newTranscription(speaker, text))
}
