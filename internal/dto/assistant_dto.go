package dto

import (
	"ai-assistant-be/internal/entity"
)

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=chat live cocreator"`
}

type ImageAttachmentRequest struct {
	MimeType string `json:"mime_type" validate:"required,startswith=image/"`
	Data     string `json:"data" validate:"required,base64"`
}

type SendMessageRequest struct {
	Text  string                  `json:"text" validate:"required_without=Image"`
	Image *ImageAttachmentRequest `json:"image" validate:"omitempty"`
}

type SendMessageResponse struct {
	Transcription *entity.Transcription `json:"transcription"`
}

type SetActiveDocumentRequest struct {
	DocumentId string `json:"document_id"`
}

type AssistantStateResponse struct {
	Mode             entity.InteractionMode `json:"mode"`
	ConnectionState  entity.ConnectionState `json:"connection_state"`
	Transcriptions   []entity.Transcription `json:"transcriptions"`
	ActiveDocumentId string                 `json:"active_document_id"`
	HasCredential    bool                   `json:"has_credential"`
}

type NewConversationResponse struct {
	// Nil when the transcript was empty
	Session *entity.ChatSession `json:"session"`
}
