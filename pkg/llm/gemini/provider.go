package gemini

import (
	"context"
	"fmt"

	"ai-assistant-be/pkg/llm"

	"google.golang.org/genai"
)

// GeminiProvider implements llm.GenerativeClient on top of the Gemini API SDK.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
}

var _ llm.GenerativeClient = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, defaultModel: defaultModel}, nil
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		cfg.Temperature = &t
	}
	if req.WebSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if len(req.Functions) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Functions))
		for _, fn := range req.Functions {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  toSchema(fn.Parameters),
			})
		}
		cfg.Tools = append(cfg.Tools, &genai.Tool{FunctionDeclarations: decls})
	}
	if req.ResponseMIMEType != "" {
		cfg.ResponseMIMEType = req.ResponseMIMEType
	}
	if req.ResponseSchema != nil {
		cfg.ResponseSchema = toSchema(req.ResponseSchema)
	}

	res, err := p.client.Models.GenerateContent(ctx, model, toContents(req.Contents), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate (%s): %w", model, err)
	}

	out := &llm.Response{Text: res.Text()}
	for _, fc := range res.FunctionCalls() {
		out.FunctionCalls = append(out.FunctionCalls, llm.FunctionCall{
			Id:   fc.ID,
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	for _, cand := range res.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.GroundingLinks = append(out.GroundingLinks, llm.GroundingLink{
				Title: chunk.Web.Title,
				Uri:   chunk.Web.URI,
			})
		}
	}
	return out, nil
}

func toContents(contents []llm.Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		gc := &genai.Content{Role: c.Role}
		for _, part := range c.Parts {
			switch {
			case part.FunctionCall != nil:
				gc.Parts = append(gc.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   part.FunctionCall.Id,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				}})
			case part.FunctionResponse != nil:
				gc.Parts = append(gc.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       part.FunctionResponse.Id,
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				}})
			case part.InlineData != nil:
				gc.Parts = append(gc.Parts, &genai.Part{InlineData: &genai.Blob{
					MIMEType: part.InlineData.MimeType,
					Data:     part.InlineData.Data,
				}})
			default:
				gc.Parts = append(gc.Parts, &genai.Part{Text: part.Text})
			}
		}
		out = append(out, gc)
	}
	return out
}

func toSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func toType(t string) genai.Type {
	switch t {
	case llm.TypeObject:
		return genai.TypeObject
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeInteger:
		return genai.TypeInteger
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
