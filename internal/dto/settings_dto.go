package dto

type CredentialResponse struct {
	Id        string `json:"id"`
	Label     string `json:"label"`
	MaskedKey string `json:"masked_key"`
}

type SettingsResponse struct {
	Credentials        []CredentialResponse `json:"credentials"`
	ActiveCredentialId string               `json:"active_credential_id"`
	ForceWebSearch     bool                 `json:"force_web_search"`
	SearchContext      string               `json:"search_context"`
	DeepSearchFormat   string               `json:"deep_search_format"`
	SarcasticHumor     bool                 `json:"sarcastic_humor"`
	VoiceName          string               `json:"voice_name"`
	Locale             string               `json:"locale"`
	EmailReminders     bool                 `json:"email_reminders"`
	Email              string               `json:"email"`
	SearchRequestCount int64                `json:"search_request_count"`
}

// UpdateSettingsRequest is a partial update: nil fields are left untouched.
type UpdateSettingsRequest struct {
	ForceWebSearch   *bool   `json:"force_web_search"`
	SearchContext    *string `json:"search_context" validate:"omitempty,oneof=web deep none"`
	DeepSearchFormat *string `json:"deep_search_format" validate:"omitempty,oneof=card magazine"`
	SarcasticHumor   *bool   `json:"sarcastic_humor"`
	VoiceName        *string `json:"voice_name" validate:"omitempty,max=64"`
	Locale           *string `json:"locale" validate:"omitempty,bcp47_language_tag"`
	EmailReminders   *bool   `json:"email_reminders"`
	Email            *string `json:"email" validate:"omitempty,email"`
}

type AddCredentialRequest struct {
	Label  string `json:"label" validate:"required,max=64"`
	ApiKey string `json:"api_key" validate:"required"`
}

type SetActiveCredentialRequest struct {
	CredentialId string `json:"credential_id" validate:"required"`
}
