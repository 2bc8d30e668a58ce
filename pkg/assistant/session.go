package assistant

import (
	"ai-assistant-be/internal/entity"
)

// session is the in-memory conversation state of one user. It is only changed
// through the transition functions below, which return the effects the caller
// must perform once the new value is in place.
type session struct {
	mode entity.InteractionMode
	// local is set while a chat turn or an archival is in flight (thinking or
	// saving). It wins over the channel state.
	local entity.ConnectionState
	// channel is the last state reported by the live channel, kept even while in
	// chat mode.
	channel entity.ConnectionState
	// epoch counts mode changes so a dial can tell it was overtaken
	epoch         int
	chat          []entity.Transcription
	live          []entity.Transcription
	handshakeSent bool
	// partial turn fragments received from the channel
	pendingUser      string
	pendingAssistant string
}

func newSession() session {
	return session{mode: entity.ModeChat, channel: entity.ConnectionIdle}
}

// connectionState is the externally observed state.
func (s session) connectionState() entity.ConnectionState {
	if s.local != "" {
		return s.local
	}
	if !s.mode.UsesChannel() || s.channel == "" {
		return entity.ConnectionIdle
	}
	return s.channel
}

func (s session) busy() bool {
	return s.local == entity.ConnectionThinking || s.local == entity.ConnectionSaving
}

// transcript is the buffer of the active mode.
func (s session) transcript() []entity.Transcription {
	if s.mode.UsesChannel() {
		return s.live
	}
	return s.chat
}

// appendTranscript adds t to the buffer of mode, which may differ from the
// current mode when a chat turn finishes after a switch.
func (s session) appendTranscript(mode entity.InteractionMode, t entity.Transcription) session {
	if mode.UsesChannel() {
		s.live = append(append([]entity.Transcription(nil), s.live...), t)
	} else {
		s.chat = append(append([]entity.Transcription(nil), s.chat...), t)
	}
	return s
}

type modeEffects struct {
	closeChannel bool
}

// withMode switches the interaction mode. Leaving a channel mode while the
// channel is open asks for exactly one close; the channel is then considered
// disconnected so a second switch does not close it again.
func (s session) withMode(next entity.InteractionMode) (session, modeEffects) {
	var fx modeEffects
	if next == s.mode {
		return s, fx
	}

	if s.mode.UsesChannel() && s.channel.IsActive() {
		fx.closeChannel = true
		s.channel = entity.ConnectionDisconnected
	}
	if next == entity.ModeLive {
		s.live = nil
		s.pendingUser, s.pendingAssistant = "", ""
	}
	if s.mode == entity.ModeCoCreator {
		s.handshakeSent = false
	}
	s.mode = next
	s.epoch++
	return s, fx
}

// withOpening marks the channel as connecting before the dial starts, so a mode
// switch during the dial sees an active channel.
func (s session) withOpening() session {
	s.channel = entity.ConnectionConnecting
	return s
}

type channelEffects struct {
	sendHandshake bool
}

// withChannelState records a state reported by the channel. The co-creator
// handshake fires on the edge into connected while in co-creator mode, once per
// connection.
func (s session) withChannelState(cs entity.ConnectionState) (session, channelEffects) {
	var fx channelEffects
	prev := s.channel
	s.channel = cs

	if cs != entity.ConnectionConnected {
		// Speaking and thinking are still the same connection
		if !cs.IsActive() {
			s.handshakeSent = false
		}
		return s, fx
	}
	if s.mode == entity.ModeCoCreator && prev != entity.ConnectionConnected && !s.handshakeSent {
		s.handshakeSent = true
		fx.sendHandshake = true
	}
	return s, fx
}

// clearTranscripts empties every conversation buffer.
func (s session) clearTranscripts() session {
	s.chat = nil
	s.live = nil
	s.pendingUser, s.pendingAssistant = "", ""
	return s
}
