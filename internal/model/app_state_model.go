package model

import (
	"time"

	"gorm.io/datatypes"
)

// AppState keeps every collection of a user's assistant state in its own JSONB
// column so updates only rewrite the collections that changed.
type AppState struct {
	UserId           string         `gorm:"type:text;primaryKey"`
	Settings         datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	Documents        datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ActiveDocumentId string         `gorm:"type:text"`
	CalendarEvents   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ChatHistory      datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ActiveReminders  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (AppState) TableName() string {
	return "assistant_states"
}
