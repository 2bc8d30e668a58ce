package ollama

import (
	"ai-assistant-be/pkg/llm"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements GenerativeClient
var _ llm.GenerativeClient = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Format   any             `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Images    []string         `json:"images,omitempty"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
}

type ollamaTool struct {
	Type     string             `json:"type"`
	Function ollamaToolFunction `json:"function"`
}

type ollamaToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) GenerateContent(ctx context.Context, r *llm.Request) (*llm.Response, error) {
	// Local models have no search grounding
	if r.WebSearch {
		return nil, fmt.Errorf("ollama web search: %w", llm.ErrUnsupported)
	}

	// 1. Map generic contents to Ollama messages
	var messages []ollamaMessage
	if r.SystemInstruction != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: r.SystemInstruction})
	}
	for _, c := range r.Contents {
		messages = append(messages, toMessages(c)...)
	}

	// 2. Prepare Payload
	model := o.ModelName
	if r.Model != "" {
		model = r.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}
	if r.Temperature != nil {
		reqPayload.Options = &ollamaOptions{Temperature: *r.Temperature}
	}
	for _, fn := range r.Functions {
		reqPayload.Tools = append(reqPayload.Tools, ollamaTool{
			Type: "function",
			Function: ollamaToolFunction{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters.JSONSchema(),
			},
		})
	}
	if r.ResponseSchema != nil {
		reqPayload.Format = r.ResponseSchema.JSONSchema()
	} else if r.ResponseMIMEType == "application/json" {
		reqPayload.Format = "json"
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// 3. Send Request
	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// 4. Parse Response
	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	out := &llm.Response{Text: ollamaResp.Message.Content}
	for _, tc := range ollamaResp.Message.ToolCalls {
		// Ollama does not assign call ids
		out.FunctionCalls = append(out.FunctionCalls, llm.FunctionCall{
			Id:   uuid.NewString(),
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toMessages(c llm.Content) []ollamaMessage {
	role := c.Role
	if role == llm.RoleModel {
		role = "assistant"
	}

	msg := ollamaMessage{Role: role}
	var out []ollamaMessage
	for _, part := range c.Parts {
		switch {
		case part.FunctionCall != nil:
			var tc ollamaToolCall
			tc.Function.Name = part.FunctionCall.Name
			tc.Function.Arguments = part.FunctionCall.Args
			msg.ToolCalls = append(msg.ToolCalls, tc)
		case part.FunctionResponse != nil:
			body, _ := json.Marshal(part.FunctionResponse.Response)
			out = append(out, ollamaMessage{
				Role:     "tool",
				Content:  string(body),
				ToolName: part.FunctionResponse.Name,
			})
		case part.InlineData != nil:
			msg.Images = append(msg.Images, base64.StdEncoding.EncodeToString(part.InlineData.Data))
		default:
			msg.Content += part.Text
		}
	}
	if msg.Content != "" || len(msg.Images) > 0 || len(msg.ToolCalls) > 0 {
		out = append([]ollamaMessage{msg}, out...)
	}
	return out
}
