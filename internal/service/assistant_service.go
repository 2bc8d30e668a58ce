package service

import (
	"context"
	"encoding/base64"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/state"
)

type IAssistantService interface {
	GetState(ctx context.Context, userId string) (*dto.AssistantStateResponse, error)
	SetMode(ctx context.Context, userId string, request *dto.SetModeRequest) (*dto.AssistantStateResponse, error)
	SendMessage(ctx context.Context, userId string, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	NewConversation(ctx context.Context, userId string) (*dto.NewConversationResponse, error)
	StartLive(ctx context.Context, userId string) error
	StopLive(ctx context.Context, userId string) error
	SetActiveDocument(ctx context.Context, userId string, request *dto.SetActiveDocumentRequest) error
}

type assistantService struct {
	registry *assistant.Registry
	backend  state.Backend
}

func NewAssistantService(registry *assistant.Registry, backend state.Backend) IAssistantService {
	return &assistantService{registry: registry, backend: backend}
}

func (s *assistantService) GetState(ctx context.Context, userId string) (*dto.AssistantStateResponse, error) {
	snap := s.registry.Get(userId).Snapshot()

	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	_, hasCredential := appState.Settings.ActiveCredential()

	return &dto.AssistantStateResponse{
		Mode:             snap.Mode,
		ConnectionState:  snap.ConnectionState,
		Transcriptions:   snap.Transcriptions,
		ActiveDocumentId: appState.ActiveDocumentId,
		HasCredential:    hasCredential,
	}, nil
}

func (s *assistantService) SetMode(ctx context.Context, userId string, request *dto.SetModeRequest) (*dto.AssistantStateResponse, error) {
	if err := s.registry.Get(userId).SetInteractionMode(entity.InteractionMode(request.Mode)); err != nil {
		return nil, err
	}
	return s.GetState(ctx, userId)
}

func (s *assistantService) SendMessage(ctx context.Context, userId string, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	msg := assistant.Message{Text: request.Text}
	if request.Image != nil {
		// Normalized so the transcript always carries standard base64
		raw, err := base64.StdEncoding.DecodeString(request.Image.Data)
		if err != nil {
			return nil, err
		}
		msg.Image = &entity.ImageAttachment{
			MimeType: request.Image.MimeType,
			Data:     base64.StdEncoding.EncodeToString(raw),
		}
	}

	t, err := s.registry.Get(userId).SendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &dto.SendMessageResponse{Transcription: t}, nil
}

func (s *assistantService) NewConversation(ctx context.Context, userId string) (*dto.NewConversationResponse, error) {
	session, err := s.registry.Get(userId).StartNewConversation(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.NewConversationResponse{Session: session}, nil
}

func (s *assistantService) StartLive(ctx context.Context, userId string) error {
	return s.registry.Get(userId).StartLiveSession(ctx)
}

func (s *assistantService) StopLive(ctx context.Context, userId string) error {
	return s.registry.Get(userId).StopLiveSession()
}

func (s *assistantService) SetActiveDocument(ctx context.Context, userId string, request *dto.SetActiveDocumentRequest) error {
	return s.registry.Get(userId).SetActiveDocument(ctx, request.DocumentId)
}
