package dto

import (
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/search"
)

type DeepSearchRequest struct {
	Query  string `json:"query" validate:"required,max=500"`
	Format string `json:"format" validate:"omitempty,oneof=card magazine"`
}

type DeepSearchResponse struct {
	Query         string                `json:"query"`
	Format        string                `json:"format"`
	Summary       string                `json:"summary"`
	Card          *search.Card          `json:"card,omitempty"`
	Magazine      *search.Magazine      `json:"magazine,omitempty"`
	Report        *entity.ReportContent `json:"report"`
	ResourceLinks []entity.ResourceLink `json:"resource_links"`
	FailedEngines []string              `json:"failed_engines"`
}
