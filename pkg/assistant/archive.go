package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/tools"
)

const (
	maxSummaryTags = 5
	noSummaryTag   = "no summary available"
)

type sessionSummary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

func summarySchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"title":   {Type: llm.TypeString, Description: "Short title of the conversation."},
			"summary": {Type: llm.TypeString, Description: "One paragraph summary."},
			"tags":    {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}, Description: "Up to 5 tags."},
		},
		Required: []string{"title", "summary", "tags"},
	}
}

// StartNewConversation archives the active transcript into the history and
// starts over. A failed summary still archives the transcript under a fallback
// title. Returns nil when there was nothing to archive.
func (o *Orchestrator) StartNewConversation(ctx context.Context) (*entity.ChatSession, error) {
	o.mu.Lock()
	if o.session.busy() {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	transcript := append([]entity.Transcription(nil), o.session.transcript()...)
	if len(transcript) == 0 {
		o.session = o.session.clearTranscripts()
		o.mu.Unlock()
		return nil, nil
	}
	o.session.local = entity.ConnectionSaving
	o.mu.Unlock()
	o.push(PushConnectionState, entity.ConnectionSaving)

	defer func() {
		o.mu.Lock()
		o.session = o.session.clearTranscripts()
		o.mu.Unlock()
		o.setLocal("")
	}()

	appState, err := o.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	now := o.now()
	archived := entity.ChatSession{
		Id:             o.newId(),
		Timestamp:      now,
		Transcriptions: transcript,
	}

	summary, err := o.summarize(ctx, appState.Settings, transcript)
	if err != nil {
		o.logger.Warn(module, "Conversation summary failed, archiving with fallback", map[string]interface{}{
			"user_id": o.userId,
			"error":   err.Error(),
		})
		archived.Title = "Conversation " + tools.FormatDateTime(now.In(o.loc), appState.Settings.Locale)
		archived.Tags = []string{noSummaryTag}
	} else {
		archived.Title = summary.Title
		archived.Summary = summary.Summary
		archived.Tags = summary.Tags
	}

	if _, err := o.store.Update(ctx, func(s *entity.AppState) error {
		s.ChatHistory = append([]entity.ChatSession{archived}, s.ChatHistory...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	o.logger.Info(module, "Conversation archived", map[string]interface{}{
		"user_id":    o.userId,
		"session_id": archived.Id,
		"messages":   len(transcript),
	})

	if o.publisher != nil {
		ev := events.BaseEvent{
			Type: events.SessionArchived,
			Data: map[string]interface{}{
				"user_id":    o.userId,
				"session_id": archived.Id,
				"title":      archived.Title,
			},
			OccurredAt: now,
		}
		if err := o.publisher.Publish(ctx, ev); err != nil {
			o.logger.Warn(module, "Failed to publish archived session", map[string]interface{}{
				"user_id": o.userId,
				"error":   err.Error(),
			})
		}
	}
	return &archived, nil
}

func (o *Orchestrator) summarize(ctx context.Context, settings entity.Settings, transcript []entity.Transcription) (*sessionSummary, error) {
	client, err := o.client(ctx, settings)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "assistant.summarize")
	defer span.End()

	res, err := client.GenerateContent(ctx, &llm.Request{
		Model:            o.fastModel,
		Contents:         []llm.Content{llm.UserText(fmt.Sprintf(summaryPrompt, transcriptText(transcript)))},
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema(),
	})
	if err != nil {
		return nil, err
	}

	var out sessionSummary
	if err := json.Unmarshal([]byte(llm.StripCodeFence(res.Text)), &out); err != nil {
		return nil, fmt.Errorf("summary is not valid JSON: %w", err)
	}
	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		return nil, fmt.Errorf("summary has no title")
	}

	tags := make([]string, 0, maxSummaryTags)
	for _, tag := range out.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == maxSummaryTags {
			break
		}
	}
	out.Tags = tags
	return &out, nil
}
