package entity

import (
	"time"
)

// InteractionMode selects which conversational substrate drives the session.
type InteractionMode string

const (
	ModeChat      InteractionMode = "chat"
	ModeLive      InteractionMode = "live"
	ModeCoCreator InteractionMode = "cocreator"
)

// IsValid reports whether m is one of the known modes.
func (m InteractionMode) IsValid() bool {
	switch m {
	case ModeChat, ModeLive, ModeCoCreator:
		return true
	}
	return false
}

// UsesChannel reports whether the mode is backed by a live session channel.
func (m InteractionMode) UsesChannel() bool {
	return m == ModeLive || m == ModeCoCreator
}

type ConnectionState string

const (
	ConnectionIdle         ConnectionState = "idle"
	ConnectionLoadingFile  ConnectionState = "loading_file"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionThinking     ConnectionState = "thinking"
	ConnectionSpeaking     ConnectionState = "speaking"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionPaused       ConnectionState = "paused"
	ConnectionSaving       ConnectionState = "saving"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionError        ConnectionState = "error"
	ConnectionSilent       ConnectionState = "silent"
)

// IsActive reports whether a channel in this state still holds an open connection.
func (s ConnectionState) IsActive() bool {
	switch s {
	case "", ConnectionIdle, ConnectionDisconnected, ConnectionError:
		return false
	}
	return true
}

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
	SpeakerSystem    Speaker = "system"
)

type ImageAttachment struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type ResourceLink struct {
	Title string `json:"title"`
	Uri   string `json:"uri"`
}

type ToolCallInfo struct {
	Names []string `json:"names"`
}

// Transcription is one utterance in a conversation. It is never mutated after it
// has been appended to a transcript.
type Transcription struct {
	Id            string           `json:"id"`
	Speaker       Speaker          `json:"speaker"`
	Text          string           `json:"text"`
	Timestamp     time.Time        `json:"timestamp"`
	Image         *ImageAttachment `json:"image,omitempty"`
	ReportContent *ReportContent   `json:"report_content,omitempty"`
	ResourceLinks []ResourceLink   `json:"resource_links,omitempty"`
	ToolCall      *ToolCallInfo    `json:"tool_call,omitempty"`
}

type ReportSection struct {
	Heading    string `json:"heading"`
	Content    string `json:"content"`
	VideoUrl   string `json:"video_url,omitempty"`
	PodcastUrl string `json:"podcast_url,omitempty"`
	ImageUrl   string `json:"image_url,omitempty"`
}

type ReportContent struct {
	Title    string          `json:"title"`
	ImageUrl string          `json:"image_url,omitempty"`
	Summary  string          `json:"summary"`
	Sections []ReportSection `json:"sections"`
	Tags     []string        `json:"tags,omitempty"`
}
