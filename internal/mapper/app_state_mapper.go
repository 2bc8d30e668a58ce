package mapper

import (
	"encoding/json"
	"fmt"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type AppStateMapper struct{}

func NewAppStateMapper() *AppStateMapper {
	return &AppStateMapper{}
}

func (m *AppStateMapper) AppStateToEntity(s *model.AppState) (*entity.AppState, error) {
	if s == nil {
		return nil, nil
	}

	out := &entity.AppState{
		UserId:           s.UserId,
		ActiveDocumentId: s.ActiveDocumentId,
		UpdatedAt:        s.UpdatedAt,
	}
	if err := decode(s.Settings, &out.Settings); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := decode(s.Documents, &out.Documents); err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	if err := decode(s.CalendarEvents, &out.CalendarEvents); err != nil {
		return nil, fmt.Errorf("calendar events: %w", err)
	}
	if err := decode(s.ChatHistory, &out.ChatHistory); err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	if err := decode(s.ActiveReminders, &out.ActiveReminders); err != nil {
		return nil, fmt.Errorf("active reminders: %w", err)
	}
	return out, nil
}

func (m *AppStateMapper) AppStateToModel(s *entity.AppState) (*model.AppState, error) {
	if s == nil {
		return nil, nil
	}

	out := &model.AppState{
		UserId:           s.UserId,
		ActiveDocumentId: s.ActiveDocumentId,
		UpdatedAt:        s.UpdatedAt,
	}
	var err error
	if out.Settings, err = encode(s.Settings); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if out.Documents, err = encodeList(s.Documents); err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	if out.CalendarEvents, err = encodeList(s.CalendarEvents); err != nil {
		return nil, fmt.Errorf("calendar events: %w", err)
	}
	if out.ChatHistory, err = encodeList(s.ChatHistory); err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	if out.ActiveReminders, err = encodeList(s.ActiveReminders); err != nil {
		return nil, fmt.Errorf("active reminders: %w", err)
	}
	return out, nil
}

func decode(raw datatypes.JSON, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func encode(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// nil slices are stored as [] to satisfy the NOT NULL columns.
func encodeList[T any](items []T) (datatypes.JSON, error) {
	if items == nil {
		items = []T{}
	}
	return encode(items)
}
