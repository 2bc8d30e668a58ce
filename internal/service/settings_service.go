package service

import (
	"context"
	"strings"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/state"

	"github.com/google/uuid"
)

type ISettingsService interface {
	Get(ctx context.Context, userId string) (*dto.SettingsResponse, error)
	Update(ctx context.Context, userId string, request *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	AddCredential(ctx context.Context, userId string, request *dto.AddCredentialRequest) (*dto.SettingsResponse, error)
	DeleteCredential(ctx context.Context, userId string, credentialId string) (*dto.SettingsResponse, error)
	SetActiveCredential(ctx context.Context, userId string, request *dto.SetActiveCredentialRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	backend state.Backend
}

func NewSettingsService(backend state.Backend) ISettingsService {
	return &settingsService{backend: backend}
}

func (s *settingsService) Get(ctx context.Context, userId string) (*dto.SettingsResponse, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(appState.Settings), nil
}

func (s *settingsService) Update(ctx context.Context, userId string, request *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	return s.update(ctx, userId, func(st *entity.Settings) error {
		if request.ForceWebSearch != nil {
			st.ForceWebSearch = *request.ForceWebSearch
		}
		if request.SearchContext != nil {
			st.SearchContext = entity.SearchContext(*request.SearchContext)
			if *request.SearchContext == "none" {
				st.SearchContext = entity.SearchContextNone
			}
		}
		if request.DeepSearchFormat != nil {
			st.DeepSearchFormat = entity.DeepSearchFormat(*request.DeepSearchFormat)
		}
		if request.SarcasticHumor != nil {
			st.SarcasticHumor = *request.SarcasticHumor
		}
		if request.VoiceName != nil {
			st.VoiceName = strings.TrimSpace(*request.VoiceName)
		}
		if request.Locale != nil {
			st.Locale = *request.Locale
		}
		if request.EmailReminders != nil {
			st.EmailReminders = *request.EmailReminders
		}
		if request.Email != nil {
			st.Email = strings.TrimSpace(*request.Email)
		}
		return nil
	})
}

// AddCredential stores a new API key. The first key becomes the active one.
func (s *settingsService) AddCredential(ctx context.Context, userId string, request *dto.AddCredentialRequest) (*dto.SettingsResponse, error) {
	return s.update(ctx, userId, func(st *entity.Settings) error {
		cred := entity.Credential{
			Id:     uuid.NewString(),
			Label:  strings.TrimSpace(request.Label),
			ApiKey: strings.TrimSpace(request.ApiKey),
		}
		st.Credentials = append(st.Credentials, cred)
		if st.ActiveCredentialId == "" {
			st.ActiveCredentialId = cred.Id
		}
		return nil
	})
}

func (s *settingsService) DeleteCredential(ctx context.Context, userId string, credentialId string) (*dto.SettingsResponse, error) {
	return s.update(ctx, userId, func(st *entity.Settings) error {
		for i, c := range st.Credentials {
			if c.Id != credentialId {
				continue
			}
			st.Credentials = append(st.Credentials[:i], st.Credentials[i+1:]...)
			if st.ActiveCredentialId == credentialId {
				st.ActiveCredentialId = ""
			}
			return nil
		}
		return state.ErrNotFound
	})
}

func (s *settingsService) SetActiveCredential(ctx context.Context, userId string, request *dto.SetActiveCredentialRequest) (*dto.SettingsResponse, error) {
	return s.update(ctx, userId, func(st *entity.Settings) error {
		for _, c := range st.Credentials {
			if c.Id == request.CredentialId {
				st.ActiveCredentialId = c.Id
				return nil
			}
		}
		return state.ErrNotFound
	})
}

func (s *settingsService) update(ctx context.Context, userId string, fn func(st *entity.Settings) error) (*dto.SettingsResponse, error) {
	appState, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		return fn(&a.Settings)
	})
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(appState.Settings), nil
}

func toSettingsResponse(st entity.Settings) *dto.SettingsResponse {
	res := &dto.SettingsResponse{
		Credentials:        make([]dto.CredentialResponse, 0, len(st.Credentials)),
		ActiveCredentialId: st.ActiveCredentialId,
		ForceWebSearch:     st.ForceWebSearch,
		SearchContext:      string(st.SearchContext),
		DeepSearchFormat:   string(st.DeepSearchFormat),
		SarcasticHumor:     st.SarcasticHumor,
		VoiceName:          st.VoiceName,
		Locale:             st.Locale,
		EmailReminders:     st.EmailReminders,
		Email:              st.Email,
		SearchRequestCount: st.SearchRequestCount,
	}
	for _, c := range st.Credentials {
		res.Credentials = append(res.Credentials, dto.CredentialResponse{
			Id:        c.Id,
			Label:     c.Label,
			MaskedKey: maskKey(c.ApiKey),
		})
	}
	return res
}

// maskKey keeps the last four characters so users can tell keys apart.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
