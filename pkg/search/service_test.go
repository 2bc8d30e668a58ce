package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	failing map[Engine]bool
	perCall int
}

func (p *fakeProvider) Search(ctx context.Context, engine Engine, query string) ([]Result, error) {
	if p.failing[engine] {
		return nil, fmt.Errorf("%s is down", engine)
	}
	var out []Result
	for i := 0; i < p.perCall; i++ {
		out = append(out, Result{Title: fmt.Sprintf("%s-%d", engine, i), Url: fmt.Sprintf("https://%s.example.com/%d", engine, i)})
	}
	return out, nil
}

type fakeClient struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []*llm.Request
}

func (c *fakeClient) GenerateContent(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Text: c.text}, nil
}

func newStore() state.Store {
	return state.ForUser(state.NewMemoryBackend(), "u1")
}

func TestRun_PartialEngineFailureStillSynthesizes(t *testing.T) {
	provider := &fakeProvider{failing: map[Engine]bool{EngineScholar: true, EngineNews: true}, perCall: 12}
	client := &fakeClient{text: `{"title":"Heat pumps","summary":"They work.","resources":[{"title":"a","url":"https://google.example.com/0"}]}`}
	store := newStore()

	out, err := NewService(provider, logger.NewNopLogger()).Run(context.Background(), Request{
		Query: "heat pumps", Format: entity.DeepSearchCard, Client: client, Store: store,
	})

	require.NoError(t, err)
	require.NotNil(t, out.Card)
	assert.Equal(t, "They work.", out.Summary())
	assert.ElementsMatch(t, []Engine{EngineScholar, EngineNews}, out.FailedEngines)

	require.Len(t, client.requests, 1)
	prompt := client.requests[0].Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "google-9")
	assert.NotContains(t, prompt, "google-10", "web results are capped at 10")
	assert.Contains(t, prompt, "youtube-4")
	assert.NotContains(t, prompt, "youtube-5", "video results are capped at 5")
	assert.NotContains(t, prompt, "google_scholar-")

	s, _ := store.Load(context.Background())
	assert.EqualValues(t, 4, s.Settings.SearchRequestCount)
}

func TestRun_AllEnginesFail(t *testing.T) {
	provider := &fakeProvider{failing: map[Engine]bool{EngineWeb: true, EngineScholar: true, EngineVideo: true, EngineNews: true}}
	client := &fakeClient{}

	_, err := NewService(provider, logger.NewNopLogger()).Run(context.Background(), Request{
		Query: "q", Client: client, Store: newStore(),
	})

	assert.ErrorIs(t, err, ErrAllEnginesFailed)
	assert.Empty(t, client.requests)
}

func TestRun_SynthesisErrorsPropagate(t *testing.T) {
	provider := &fakeProvider{perCall: 1}

	tests := []struct {
		name   string
		client *fakeClient
		format entity.DeepSearchFormat
		want   error
	}{
		{name: "unparseable json", client: &fakeClient{text: "not json"}, format: entity.DeepSearchCard, want: ErrInvalidSynthesis},
		{name: "too few topics", client: &fakeClient{text: `{"mainSummary":"x","topics":[{"title":"t","summary":"s","resources":[]}]}`}, format: entity.DeepSearchMagazine, want: ErrInvalidSynthesis},
		{name: "model error", client: &fakeClient{err: errors.New("quota")}, format: entity.DeepSearchCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(provider, logger.NewNopLogger()).Run(context.Background(), Request{
				Query: "q", Format: tt.format, Client: tt.client, Store: newStore(),
			})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRun_MagazineUsesMagazineSchema(t *testing.T) {
	topics := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		topics = append(topics, fmt.Sprintf(`{"title":"t%d","summary":"s","resources":[{"title":"r","url":"https://x/%d"}]}`, i, i))
	}
	client := &fakeClient{text: "```json\n{\"mainSummary\":\"overview\",\"topics\":[" + strings.Join(topics, ",") + "]}\n```"}

	out, err := NewService(&fakeProvider{perCall: 1}, logger.NewNopLogger()).Run(context.Background(), Request{
		Query: "q", Format: entity.DeepSearchMagazine, Client: client, Store: newStore(),
	})

	require.NoError(t, err)
	require.NotNil(t, out.Magazine)
	assert.Len(t, out.Magazine.Topics, 5)
	assert.Len(t, out.Links(), 5)
	assert.Len(t, out.Report().Sections, 5)
	assert.Contains(t, client.requests[0].ResponseSchema.Properties, "topics")
}
