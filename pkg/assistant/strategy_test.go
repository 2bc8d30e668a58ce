package assistant

import (
	"context"
	"errors"
	"testing"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngines struct {
	down search.Engine
}

func (s stubEngines) Search(ctx context.Context, engine search.Engine, query string) ([]search.Result, error) {
	if engine == s.down {
		return nil, errors.New("engine down")
	}
	return []search.Result{{Title: string(engine), Url: "https://example.com/" + string(engine)}}, nil
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name     string
		settings entity.Settings
		want     Strategy
	}{
		{"default", entity.Settings{}, StrategyPlain},
		{"forced web", entity.Settings{ForceWebSearch: true}, StrategyWebReport},
		{"web context", entity.Settings{SearchContext: entity.SearchContextWeb}, StrategyWebReport},
		{"deep wins over forced web", entity.Settings{ForceWebSearch: true, SearchContext: entity.SearchContextDeep}, StrategyDeepSearch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.settings))
		})
	}
}

func TestSendMessage_DeepSearchStrategy(t *testing.T) {
	f := newFixture(t, func(s *entity.AppState) {
		withCredential(s)
		s.Settings.SearchContext = entity.SearchContextDeep
	}, stubEngines{down: search.EngineNews})
	f.client.responses = []*llm.Response{{
		Text: `{"title":"Heat pumps","summary":"They are efficient.","resources":[{"title":"DOE","url":"https://energy.gov"}]}`,
	}}

	got, err := f.o.SendMessage(context.Background(), Message{Text: "heat pumps"})
	require.NoError(t, err)

	assert.Equal(t, "They are efficient.", got.Text)
	require.NotNil(t, got.ReportContent)
	assert.Equal(t, "Heat pumps", got.ReportContent.Title)
	assert.Equal(t, []entity.ResourceLink{{Title: "DOE", Uri: "https://energy.gov"}}, got.ResourceLinks)

	assert.Len(t, f.client.calls(), 1, "deep search never falls through to another strategy")
	assert.EqualValues(t, len(search.DefaultEngines), f.state(t).Settings.SearchRequestCount)
}

func TestSendMessage_DeepSearchInvalidSynthesisIsVisible(t *testing.T) {
	f := newFixture(t, func(s *entity.AppState) {
		withCredential(s)
		s.Settings.SearchContext = entity.SearchContextDeep
	}, stubEngines{})
	f.client.responses = []*llm.Response{{Text: "sorry, no json"}}

	got, err := f.o.SendMessage(context.Background(), Message{Text: "heat pumps"})
	require.NoError(t, err)

	assert.Equal(t, entity.SpeakerSystem, got.Speaker)
	assert.Contains(t, got.Text, "expected format")
}

func TestSendMessage_DeepSearchDisabled(t *testing.T) {
	f := newFixture(t, func(s *entity.AppState) {
		withCredential(s)
		s.Settings.SearchContext = entity.SearchContextDeep
	}, nil)

	got, err := f.o.SendMessage(context.Background(), Message{Text: "heat pumps"})
	require.NoError(t, err)

	assert.Equal(t, entity.SpeakerSystem, got.Speaker)
	assert.Empty(t, f.client.calls())
}
