package assistant

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/report"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/tools"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// historyTurns bounds how much of the chat transcript is replayed to the model.
const historyTurns = 20

type Strategy string

const (
	StrategyDeepSearch Strategy = "deep_search"
	StrategyWebReport  Strategy = "web_report"
	StrategyPlain      Strategy = "plain"
)

// Message is one user submission.
type Message struct {
	Text  string
	Image *entity.ImageAttachment
}

// SelectStrategy picks the response strategy of a chat turn. Deep search wins
// over web search, which wins over the plain answer.
func SelectStrategy(settings entity.Settings) Strategy {
	switch {
	case settings.SearchContext == entity.SearchContextDeep:
		return StrategyDeepSearch
	case settings.ForceWebSearch || settings.SearchContext == entity.SearchContextWeb:
		return StrategyWebReport
	}
	return StrategyPlain
}

// SendMessage submits a user message and returns the transcription that ended
// the turn: the assistant answer, or a system message describing the failure.
// Only precondition failures are returned as errors; nothing is appended then.
func (o *Orchestrator) SendMessage(ctx context.Context, msg Message) (*entity.Transcription, error) {
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" && msg.Image == nil {
		return nil, ErrEmptyMessage
	}

	o.mu.Lock()
	mode := o.session.mode
	channelOpen := o.session.channel.IsActive()
	o.mu.Unlock()

	if mode.UsesChannel() {
		if !channelOpen {
			return nil, live.ErrNotConnected
		}
		return o.forwardToChannel(mode, msg)
	}

	// 1. Precondition
	appState, err := o.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if _, ok := appState.Settings.ActiveCredential(); !ok {
		return nil, ErrCredentialRequired
	}

	// 2. Gate and optimistic user transcription
	user := o.newTranscription(entity.SpeakerUser, msg.Text)
	user.Image = msg.Image

	o.mu.Lock()
	if o.session.busy() {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	history := append([]entity.Transcription(nil), o.session.chat...)
	o.session.local = entity.ConnectionThinking
	o.session = o.session.appendTranscript(entity.ModeChat, user)
	o.mu.Unlock()

	o.push(PushTranscript, TranscriptPush{Mode: entity.ModeChat, Transcription: user})
	o.push(PushConnectionState, entity.ConnectionThinking)

	// 3. Exactly one terminal state update
	defer o.setLocal("")

	// 4. Strategy
	strategy := SelectStrategy(appState.Settings)
	ctx, span := o.tracer.Start(ctx, "assistant.SendMessage")
	span.SetAttributes(attribute.String("strategy", string(strategy)), attribute.String("user_id", o.userId))
	defer span.End()

	var answer entity.Transcription
	switch strategy {
	case StrategyDeepSearch:
		answer, err = o.deepSearch(ctx, appState.Settings, msg.Text)
	case StrategyWebReport:
		answer, err = o.webReport(ctx, appState.Settings, msg.Text)
	default:
		answer, err = o.plainTurn(ctx, appState.Settings, history, msg)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error(module, "Chat turn failed", map[string]interface{}{
			"user_id":  o.userId,
			"strategy": string(strategy),
			"error":    err.Error(),
		})
		t := o.systemMessage(entity.ModeChat, "Error: %v", err)
		return &t, nil
	}

	answer = o.appendTranscription(entity.ModeChat, answer)
	return &answer, nil
}

// forwardToChannel sends typed text into the open live session.
func (o *Orchestrator) forwardToChannel(mode entity.InteractionMode, msg Message) (*entity.Transcription, error) {
	if msg.Text == "" {
		return nil, ErrEmptyMessage
	}
	if err := o.channel.SendText(msg.Text); err != nil {
		return nil, fmt.Errorf("send to live session: %w", err)
	}
	t := o.appendTranscription(mode, o.newTranscription(entity.SpeakerUser, msg.Text))
	return &t, nil
}

func (o *Orchestrator) deepSearch(ctx context.Context, settings entity.Settings, query string) (entity.Transcription, error) {
	if o.search == nil {
		return entity.Transcription{}, ErrSearchDisabled
	}
	client, err := o.client(ctx, settings)
	if err != nil {
		return entity.Transcription{}, err
	}

	outcome, err := o.search.Run(ctx, search.Request{
		Query:  query,
		Format: settings.DeepSearchFormat,
		Model:  o.fastModel,
		Client: client,
		Store:  o.store,
	})
	if err != nil {
		return entity.Transcription{}, err
	}

	t := o.newTranscription(entity.SpeakerAssistant, outcome.Summary())
	t.ReportContent = outcome.Report()
	t.ResourceLinks = outcome.Links()
	return t, nil
}

func (o *Orchestrator) webReport(ctx context.Context, settings entity.Settings, query string) (entity.Transcription, error) {
	client, err := o.client(ctx, settings)
	if err != nil {
		return entity.Transcription{}, err
	}

	res, err := client.GenerateContent(ctx, &llm.Request{
		Model:             o.strongModel,
		Contents:          []llm.Content{llm.UserText(fmt.Sprintf(reportTemplate, query))},
		SystemInstruction: reportInstruction + "\n\n" + clockLine(settings, o.now().In(o.loc)),
		WebSearch:         true,
	})
	if err != nil {
		return entity.Transcription{}, fmt.Errorf("grounded report failed: %w", err)
	}

	// Falls back to the raw text when the report structure is missing
	text, content := report.DisplayText(res.Text)
	t := o.newTranscription(entity.SpeakerAssistant, text)
	t.ReportContent = content
	for _, l := range res.GroundingLinks {
		t.ResourceLinks = append(t.ResourceLinks, entity.ResourceLink{Title: l.Title, Uri: l.Uri})
	}
	return t, nil
}

func (o *Orchestrator) plainTurn(ctx context.Context, settings entity.Settings, history []entity.Transcription, msg Message) (entity.Transcription, error) {
	client, err := o.client(ctx, settings)
	if err != nil {
		return entity.Transcription{}, err
	}

	userContent, err := userContent(msg)
	if err != nil {
		return entity.Transcription{}, err
	}

	req := &llm.Request{
		Model:             o.fastModel,
		Contents:          append(historyContents(history), userContent),
		SystemInstruction: systemInstruction(settings, o.now().In(o.loc)),
		Functions:         tools.ForMode(entity.ModeChat, false),
	}

	first, err := client.GenerateContent(ctx, req)
	if err != nil {
		return entity.Transcription{}, fmt.Errorf("generation failed: %w", err)
	}
	if !first.HasFunctionCalls() {
		return o.newTranscription(entity.SpeakerAssistant, first.Text), nil
	}

	// Two-phase tool flow
	names := make([]string, 0, len(first.FunctionCalls))
	for _, call := range first.FunctionCalls {
		names = append(names, call.Name)
	}
	progress := o.newTranscription(entity.SpeakerSystem, "Using tool: "+strings.Join(names, ", "))
	progress.ToolCall = &entity.ToolCallInfo{Names: names}
	o.appendTranscription(entity.ModeChat, progress)

	results := o.tools.ExecuteAll(ctx, first.FunctionCalls)

	callParts := make([]llm.Part, 0, len(first.FunctionCalls))
	for i := range first.FunctionCalls {
		callParts = append(callParts, llm.Part{FunctionCall: &first.FunctionCalls[i]})
	}
	resultParts := make([]llm.Part, 0, len(results))
	for _, r := range results {
		resultParts = append(resultParts, llm.Part{FunctionResponse: &llm.FunctionResponse{
			Id:       r.Id,
			Name:     r.Name,
			Response: r.ToResponse(),
		}})
	}
	req.Contents = append(req.Contents,
		llm.Content{Role: llm.RoleModel, Parts: callParts},
		llm.Content{Role: llm.RoleUser, Parts: resultParts},
	)

	second, err := client.GenerateContent(ctx, req)
	if err != nil {
		return entity.Transcription{}, fmt.Errorf("generation after tool calls failed: %w", err)
	}

	text := strings.TrimSpace(second.Text)
	if text == "" {
		lines := make([]string, 0, len(results))
		for _, r := range results {
			lines = append(lines, r.Text())
		}
		text = strings.Join(lines, "\n")
	}
	return o.newTranscription(entity.SpeakerAssistant, text), nil
}

func userContent(msg Message) (llm.Content, error) {
	c := llm.Content{Role: llm.RoleUser}
	if msg.Image != nil {
		data, err := base64.StdEncoding.DecodeString(msg.Image.Data)
		if err != nil {
			return c, fmt.Errorf("image attachment is not valid base64: %w", err)
		}
		c.Parts = append(c.Parts, llm.Part{InlineData: &llm.InlineData{MimeType: msg.Image.MimeType, Data: data}})
	}
	if msg.Text != "" {
		c.Parts = append(c.Parts, llm.Part{Text: msg.Text})
	}
	return c, nil
}

// historyContents replays the recent user and assistant turns. System lines are
// local progress and error notes and are not sent.
func historyContents(history []entity.Transcription) []llm.Content {
	var out []llm.Content
	for _, t := range history {
		if t.Text == "" {
			continue
		}
		switch t.Speaker {
		case entity.SpeakerUser:
			out = append(out, llm.UserText(t.Text))
		case entity.SpeakerAssistant:
			out = append(out, llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{Text: t.Text}}})
		}
	}
	if len(out) > historyTurns {
		out = out[len(out)-historyTurns:]
	}
	return out
}
