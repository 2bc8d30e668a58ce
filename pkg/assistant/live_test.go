package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveTurn(speaker entity.Speaker, text string) live.Event {
	return live.Event{Kind: live.EventTurnComplete, Speaker: speaker, Text: text}
}

func stateEvent(cs entity.ConnectionState) live.Event {
	return live.Event{Kind: live.EventStateChanged, State: cs}
}

func withDocument(s *entity.AppState) {
	withCredential(s)
	s.Documents = []entity.LiveDocument{{Id: "doc-1", Title: "Essay", Content: "The quick brown fox."}}
	s.ActiveDocumentId = "doc-1"
}

func TestStartLiveSession_ConfiguresChannelForMode(t *testing.T) {
	f := newFixture(t, withDocument, nil)
	ctx := context.Background()

	assert.ErrorIs(t, f.o.StartLiveSession(ctx), ErrNotLiveMode)

	require.NoError(t, f.o.SetInteractionMode(entity.ModeCoCreator))
	require.NoError(t, f.o.StartLiveSession(ctx))

	require.Len(t, f.channel.opened, 1)
	cfg := f.channel.opened[0]
	assert.Equal(t, "key-1", cfg.ApiKey)
	assert.Equal(t, "Zephyr", cfg.Voice)
	assert.True(t, cfg.Transcription)
	assert.Contains(t, cfg.SystemInstruction, coCreatorInstruction)
	assert.Equal(t, []string{tools.ReplaceText, tools.ApplyFormat}, toolNames(cfg.Tools))
}

func TestStartLiveSession_RequiresCredential(t *testing.T) {
	f := newFixture(t, nil, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	assert.ErrorIs(t, f.o.StartLiveSession(context.Background()), ErrCredentialRequired)
	assert.Empty(t, f.channel.opened)
}

func toolNames(decls []llm.FunctionDeclaration) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.Name)
	}
	return out
}

func TestCoCreatorHandshake_OncePerConnection(t *testing.T) {
	f := newFixture(t, withDocument, nil)
	ctx := context.Background()
	require.NoError(t, f.o.SetInteractionMode(entity.ModeCoCreator))

	for _, cs := range []entity.ConnectionState{
		entity.ConnectionConnecting,
		entity.ConnectionConnected,
		entity.ConnectionSpeaking,
		entity.ConnectionConnected,
		entity.ConnectionThinking,
		entity.ConnectionConnected,
	} {
		f.o.handleLiveEvent(ctx, stateEvent(cs))
	}

	texts := f.channel.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "The quick brown fox.")
	assert.Contains(t, texts[0], "Essay")

	// A new connection re-arms it
	f.o.handleLiveEvent(ctx, stateEvent(entity.ConnectionDisconnected))
	f.o.handleLiveEvent(ctx, stateEvent(entity.ConnectionConnected))
	assert.Len(t, f.channel.sentTexts(), 2)
}

func TestCoCreatorHandshake_NotInLiveMode(t *testing.T) {
	f := newFixture(t, withDocument, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	f.o.handleLiveEvent(context.Background(), stateEvent(entity.ConnectionConnected))

	assert.Empty(t, f.channel.sentTexts())
}

func TestLiveFunctionCall_EditsDocumentAndAnswers(t *testing.T) {
	f := newFixture(t, withDocument, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeCoCreator))

	f.o.handleLiveEvent(context.Background(), live.Event{Kind: live.EventFunctionCall, Call: &llm.FunctionCall{
		Id:   "fc-1",
		Name: tools.ApplyFormat,
		Args: map[string]any{"text_to_format": "quick", "format_type": tools.FormatBold},
	}})

	assert.Equal(t, true, f.channel.toolResults["fc-1"]["success"])
	assert.Equal(t, "The **quick** brown fox.", f.state(t).Documents[0].Content)
}

func TestLiveFunctionCall_MissReportsFailure(t *testing.T) {
	f := newFixture(t, withDocument, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeCoCreator))

	f.o.handleLiveEvent(context.Background(), live.Event{Kind: live.EventFunctionCall, Call: &llm.FunctionCall{
		Id:   "fc-2",
		Name: tools.ReplaceText,
		Args: map[string]any{"text_to_replace": "lazy dog", "new_text": "cat"},
	}})

	assert.Equal(t, false, f.channel.toolResults["fc-2"]["success"])
	assert.Equal(t, "The quick brown fox.", f.state(t).Documents[0].Content)
}

func TestLiveTurns_FragmentsAndDrops(t *testing.T) {
	f := newFixture(t, withCredential, nil)
	ctx := context.Background()
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	f.o.handleLiveEvent(ctx, live.Event{Kind: live.EventTranscript, UserText: "what time "})
	f.o.handleLiveEvent(ctx, live.Event{Kind: live.EventTranscript, UserText: "is it"})
	f.o.handleLiveEvent(ctx, liveTurn(entity.SpeakerUser, ""))
	f.o.handleLiveEvent(ctx, liveTurn(entity.SpeakerAssistant, "Eight o'clock."))

	snap := f.o.Snapshot()
	require.Len(t, snap.Transcriptions, 2)
	assert.Equal(t, "what time is it", snap.Transcriptions[0].Text)
	assert.Equal(t, entity.SpeakerAssistant, snap.Transcriptions[1].Speaker)

	require.NoError(t, f.o.SetInteractionMode(entity.ModeChat))
	f.o.handleLiveEvent(ctx, liveTurn(entity.SpeakerAssistant, "late"))
	assert.Empty(t, f.o.Snapshot().Transcriptions)
}

func TestLiveError_AppendsSystemMessage(t *testing.T) {
	f := newFixture(t, withCredential, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	f.o.handleLiveEvent(context.Background(), live.Event{Kind: live.EventError, Message: "quota"})

	snap := f.o.Snapshot()
	require.Len(t, snap.Transcriptions, 1)
	assert.True(t, strings.HasSuffix(snap.Transcriptions[0].Text, "quota"))
}

func TestRun_ConsumesEventsUntilCancelled(t *testing.T) {
	f := newFixture(t, withCredential, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		f.o.Run(ctx)
		close(stopped)
	}()

	f.channel.events <- stateEvent(entity.ConnectionConnected)
	require.Eventually(t, func() bool {
		return f.o.Snapshot().ConnectionState == entity.ConnectionConnected
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestStartLiveSession_LeavingBeforeConnectingEventCloses(t *testing.T) {
	f := newFixture(t, withCredential, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))
	require.NoError(t, f.o.StartLiveSession(context.Background()))
	assert.Equal(t, entity.ConnectionConnecting, f.o.Snapshot().ConnectionState)

	// The channel has not reported connecting yet when the user leaves
	require.NoError(t, f.o.SetInteractionMode(entity.ModeChat))

	assert.Len(t, f.channel.opened, 1)
	assert.Equal(t, 1, f.channel.closeCount())
	assert.Equal(t, entity.ConnectionIdle, f.o.Snapshot().ConnectionState)
}

func TestStartLiveSession_SwitchDuringDialClosesNewConnection(t *testing.T) {
	f := newFixture(t, withCredential, nil)
	require.NoError(t, f.o.SetInteractionMode(entity.ModeLive))

	switched := make(chan struct{})
	f.channel.onOpen = func() {
		go func() {
			assert.NoError(t, f.o.SetInteractionMode(entity.ModeChat))
			close(switched)
		}()
		require.Eventually(t, func() bool {
			return f.o.Snapshot().Mode == entity.ModeChat
		}, time.Second, 5*time.Millisecond)
	}

	assert.ErrorIs(t, f.o.StartLiveSession(context.Background()), ErrNotLiveMode)
	<-switched

	assert.Len(t, f.channel.opened, 1)
	assert.GreaterOrEqual(t, f.channel.closeCount(), 1)
	assert.Equal(t, entity.ConnectionIdle, f.o.Snapshot().ConnectionState)
}
