package tools

import (
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/llm"
)

const (
	ScheduleEvent         = "schedule_event"
	MarkEventAsCompleted  = "mark_event_as_completed"
	ListEvents            = "list_events"
	ReplaceText           = "replace_text"
	ApplyFormat           = "apply_format"
	FormatBold            = "bold"
	FormatItalic          = "italic"
	noActiveDocumentError = "no active document"
)

// CalendarDeclarations are advertised in chat and live turns.
func CalendarDeclarations() []llm.FunctionDeclaration {
	return []llm.FunctionDeclaration{
		{
			Name:        ScheduleEvent,
			Description: "Schedules a new event in the user's calendar.",
			Parameters: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"title":       {Type: llm.TypeString, Description: "Short title of the event."},
					"date":        {Type: llm.TypeString, Description: "Event date in YYYY-MM-DD format."},
					"time":        {Type: llm.TypeString, Description: "Event time in 24h HH:MM format."},
					"description": {Type: llm.TypeString, Description: "Optional details about the event."},
				},
				Required: []string{"title", "date", "time"},
			},
		},
		{
			Name:        MarkEventAsCompleted,
			Description: "Marks an existing calendar event as completed, matched by title.",
			Parameters: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"title": {Type: llm.TypeString, Description: "Title of the event to complete."},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        ListEvents,
			Description: "Lists the calendar events of a day. Defaults to today.",
			Parameters: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"date": {Type: llm.TypeString, Description: "Day to list in YYYY-MM-DD format."},
				},
			},
		},
	}
}

// DocumentDeclarations are advertised in co-creator sessions.
func DocumentDeclarations() []llm.FunctionDeclaration {
	return []llm.FunctionDeclaration{
		{
			Name:        ReplaceText,
			Description: "Replaces the first exact occurrence of a passage in the active document.",
			Parameters: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"text_to_replace": {Type: llm.TypeString, Description: "Exact text currently in the document."},
					"new_text":        {Type: llm.TypeString, Description: "Replacement text."},
				},
				Required: []string{"text_to_replace", "new_text"},
			},
		},
		{
			Name:        ApplyFormat,
			Description: "Applies bold or italic formatting to the first exact occurrence of a passage.",
			Parameters: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"text_to_format": {Type: llm.TypeString, Description: "Exact text currently in the document."},
					"format_type":    {Type: llm.TypeString, Enum: []string{FormatBold, FormatItalic}},
				},
				Required: []string{"text_to_format", "format_type"},
			},
		},
	}
}

// ForMode picks the tool surface of a turn. Web search turns get none because
// grounding and function calling are never combined.
func ForMode(mode entity.InteractionMode, webSearch bool) []llm.FunctionDeclaration {
	if webSearch {
		return nil
	}
	switch mode {
	case entity.ModeCoCreator:
		return DocumentDeclarations()
	case entity.ModeChat, entity.ModeLive:
		return CalendarDeclarations()
	}
	return nil
}
