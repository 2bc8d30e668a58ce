package entity

import (
	"strings"
	"time"
)

type SearchContext string

const (
	SearchContextNone SearchContext = ""
	SearchContextWeb  SearchContext = "web"
	SearchContextDeep SearchContext = "deep"
)

type DeepSearchFormat string

const (
	DeepSearchCard     DeepSearchFormat = "card"
	DeepSearchMagazine DeepSearchFormat = "magazine"
)

type Credential struct {
	Id     string `json:"id"`
	Label  string `json:"label"`
	ApiKey string `json:"api_key"`
}

type Settings struct {
	Credentials        []Credential     `json:"credentials"`
	ActiveCredentialId string           `json:"active_credential_id"`
	ForceWebSearch     bool             `json:"force_web_search"`
	SearchContext      SearchContext    `json:"search_context"`
	DeepSearchFormat   DeepSearchFormat `json:"deep_search_format"`
	SarcasticHumor     bool             `json:"sarcastic_humor"`
	VoiceName          string           `json:"voice_name"`
	Locale             string           `json:"locale"`
	EmailReminders     bool             `json:"email_reminders"`
	Email              string           `json:"email"`
	SearchRequestCount int64            `json:"search_request_count"`
}

// ActiveCredential returns the credential selected by ActiveCredentialId.
func (s Settings) ActiveCredential() (Credential, bool) {
	if s.ActiveCredentialId == "" {
		return Credential{}, false
	}
	for _, c := range s.Credentials {
		if c.Id == s.ActiveCredentialId && strings.TrimSpace(c.ApiKey) != "" {
			return c, true
		}
	}
	return Credential{}, false
}

// AppState is the durable per-user state shared by the orchestrator, the tools and
// the reminder sweep.
type AppState struct {
	UserId           string          `json:"user_id"`
	Settings         Settings        `json:"settings"`
	Documents        []LiveDocument  `json:"documents"`
	ActiveDocumentId string          `json:"active_document_id"`
	CalendarEvents   []CalendarEvent `json:"calendar_events"`
	ChatHistory      []ChatSession   `json:"chat_history"`
	ActiveReminders  []Reminder      `json:"active_reminders"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	out := *s
	out.Settings.Credentials = append([]Credential(nil), s.Settings.Credentials...)
	out.Documents = append([]LiveDocument(nil), s.Documents...)
	out.CalendarEvents = make([]CalendarEvent, len(s.CalendarEvents))
	for i, e := range s.CalendarEvents {
		e.Prerequisites = append([]string(nil), e.Prerequisites...)
		e.ExecutionSteps = append([]string(nil), e.ExecutionSteps...)
		out.CalendarEvents[i] = e
	}
	out.ChatHistory = make([]ChatSession, len(s.ChatHistory))
	for i, cs := range s.ChatHistory {
		cs.Tags = append([]string(nil), cs.Tags...)
		cs.Transcriptions = append([]Transcription(nil), cs.Transcriptions...)
		out.ChatHistory[i] = cs
	}
	out.ActiveReminders = append([]Reminder(nil), s.ActiveReminders...)
	return &out
}

func (s *AppState) Document(id string) (*LiveDocument, bool) {
	for i := range s.Documents {
		if s.Documents[i].Id == id {
			return &s.Documents[i], true
		}
	}
	return nil, false
}

// SetDocumentContent is the single mutator for document text.
func (s *AppState) SetDocumentContent(id, content string, now time.Time) bool {
	doc, ok := s.Document(id)
	if !ok {
		return false
	}
	doc.Content = content
	doc.LastModified = now
	return true
}

func (s *AppState) Event(id string) (*CalendarEvent, bool) {
	for i := range s.CalendarEvents {
		if s.CalendarEvents[i].Id == id {
			return &s.CalendarEvents[i], true
		}
	}
	return nil, false
}
