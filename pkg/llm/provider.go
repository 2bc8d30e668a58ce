package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupported is returned when a backend cannot honour part of a request
// (for example web grounding on a local model).
var ErrUnsupported = errors.New("llm: feature not supported by provider")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type FunctionCall struct {
	Id   string
	Name string
	Args map[string]any
}

type FunctionResponse struct {
	Id       string
	Name     string
	Response map[string]any
}

type InlineData struct {
	MimeType string
	Data     []byte
}

// Part is one piece of a message. Exactly one field is expected to be set.
type Part struct {
	Text             string
	InlineData       *InlineData
	FunctionCall     *FunctionCall
	FunctionResponse *FunctionResponse
}

type Content struct {
	Role  string
	Parts []Part
}

func UserText(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// Schema type names follow JSON Schema and are mapped per backend.
const (
	TypeObject  = "object"
	TypeString  = "string"
	TypeArray   = "array"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}

// JSONSchema renders s as a plain JSON Schema object for backends that take raw
// schemas over the wire.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
	}
	return out
}

type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  *Schema
}

type Request struct {
	Model             string
	Contents          []Content
	SystemInstruction string
	Functions         []FunctionDeclaration
	WebSearch         bool
	ResponseMIMEType  string
	ResponseSchema    *Schema
	Temperature       *float64
}

type GroundingLink struct {
	Title string
	Uri   string
}

type Response struct {
	Text           string
	FunctionCalls  []FunctionCall
	GroundingLinks []GroundingLink
}

// HasFunctionCalls reports whether the model asked for tool execution.
func (r *Response) HasFunctionCalls() bool {
	return r != nil && len(r.FunctionCalls) > 0
}

// Option allows for optional parameters like Temperature or a model override.
type Option func(*Request)

func WithTemperature(temp float64) Option {
	return func(r *Request) {
		r.Temperature = &temp
	}
}

func WithModel(model string) Option {
	return func(r *Request) {
		r.Model = model
	}
}

// GenerativeClient is a single-shot request/response call to a generative model.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
}

// Generate sends a single prompt (convenience wrapper).
func Generate(ctx context.Context, client GenerativeClient, prompt string, opts ...Option) (string, error) {
	req := &Request{Contents: []Content{UserText(prompt)}}
	for _, opt := range opts {
		opt(req)
	}
	res, err := client.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// StripCodeFence removes a ```json fence some models wrap around JSON output.
func StripCodeFence(text string) string {
	out := strings.TrimSpace(text)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
