package assistant

import (
	"testing"

	"ai-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestSession_ConnectionStateProjection(t *testing.T) {
	s := newSession()
	assert.Equal(t, entity.ConnectionIdle, s.connectionState())

	s, _ = s.withChannelState(entity.ConnectionSpeaking)
	assert.Equal(t, entity.ConnectionIdle, s.connectionState(), "chat never mirrors the channel")

	s.local = entity.ConnectionThinking
	assert.Equal(t, entity.ConnectionThinking, s.connectionState())

	s.local = ""
	s, _ = s.withMode(entity.ModeLive)
	assert.Equal(t, entity.ConnectionSpeaking, s.connectionState())
}

func TestSession_ProjectionNeverSilent(t *testing.T) {
	s := newSession()
	for _, cs := range []entity.ConnectionState{entity.ConnectionSilent, entity.ConnectionPaused, entity.ConnectionError} {
		s, _ = s.withChannelState(cs)
		assert.Equal(t, entity.ConnectionIdle, s.connectionState())
	}
}

func TestSession_WithModeEffects(t *testing.T) {
	s := newSession()
	s, fx := s.withMode(entity.ModeLive)
	assert.False(t, fx.closeChannel)

	s, _ = s.withChannelState(entity.ConnectionConnected)
	s, fx = s.withMode(entity.ModeLive)
	assert.False(t, fx.closeChannel, "same mode is a no-op")

	s, fx = s.withMode(entity.ModeChat)
	assert.True(t, fx.closeChannel)
	assert.Equal(t, entity.ConnectionDisconnected, s.channel)

	_, fx = s.withMode(entity.ModeLive)
	assert.False(t, fx.closeChannel)
}

func TestSession_HandshakeRearmsWhenLeavingCoCreator(t *testing.T) {
	s := newSession()
	s, _ = s.withMode(entity.ModeCoCreator)

	s, fx := s.withChannelState(entity.ConnectionConnected)
	assert.True(t, fx.sendHandshake)
	assert.True(t, s.handshakeSent)

	s, _ = s.withMode(entity.ModeChat)
	assert.False(t, s.handshakeSent)
}
