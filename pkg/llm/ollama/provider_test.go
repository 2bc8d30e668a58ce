package ollama

import (
	"ai-assistant-be/pkg/llm"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent_MapsToolsAndToolCalls(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","done":true,"message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"list_events","arguments":{"date":"2025-01-01"}}}]}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	res, err := p.GenerateContent(context.Background(), &llm.Request{
		SystemInstruction: "be helpful",
		Contents:          []llm.Content{llm.UserText("what's on today?")},
		Functions: []llm.FunctionDeclaration{{
			Name:       "list_events",
			Parameters: &llm.Schema{Type: llm.TypeObject, Properties: map[string]*llm.Schema{"date": {Type: llm.TypeString}}},
		}},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "list_events", got.Tools[0].Function.Name)

	require.True(t, res.HasFunctionCalls())
	assert.Equal(t, "list_events", res.FunctionCalls[0].Name)
	assert.Equal(t, "2025-01-01", res.FunctionCalls[0].Args["date"])
	assert.NotEmpty(t, res.FunctionCalls[0].Id)
}

func TestGenerateContent_FunctionResponseBecomesToolMessage(t *testing.T) {
	msgs := toMessages(llm.Content{
		Role: llm.RoleUser,
		Parts: []llm.Part{{FunctionResponse: &llm.FunctionResponse{
			Id:       "1",
			Name:     "list_events",
			Response: map[string]any{"success": true},
		}}},
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "tool", msgs[0].Role)
	assert.Equal(t, "list_events", msgs[0].ToolName)
	assert.JSONEq(t, `{"success":true}`, msgs[0].Content)
}

func TestGenerateContent_WebSearchUnsupported(t *testing.T) {
	p := NewOllamaProvider("http://unused", "llama3")
	_, err := p.GenerateContent(context.Background(), &llm.Request{WebSearch: true})
	assert.True(t, errors.Is(err, llm.ErrUnsupported))
}

func TestGenerateContent_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").GenerateContent(context.Background(), &llm.Request{
		Contents: []llm.Content{llm.UserText("hi")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
