package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultSerpApiBaseURL = "https://serpapi.com"

// Option configures a SerpApi client.
type Option func(*SerpApi)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(s *SerpApi) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SerpApi) { s.client = c }
}

// SerpApi implements Provider on the SerpApi JSON search endpoint.
type SerpApi struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Provider = &SerpApi{}

func NewSerpApi(apiKey string, opts ...Option) *SerpApi {
	s := &SerpApi{
		apiKey:  apiKey,
		baseURL: defaultSerpApiBaseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type serpLink struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  any    `json:"source"` // string on web results, object on news
	PubInfo *struct {
		Summary string `json:"summary"`
	} `json:"publication_info"`
	Description string `json:"description"`
	Channel     *struct {
		Name string `json:"name"`
	} `json:"channel"`
}

type serpResponse struct {
	Error          string     `json:"error"`
	OrganicResults []serpLink `json:"organic_results"`
	VideoResults   []serpLink `json:"video_results"`
	NewsResults    []serpLink `json:"news_results"`
}

func (s *SerpApi) Search(ctx context.Context, engine Engine, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("engine", string(engine))
	params.Set("api_key", s.apiKey)
	if engine == EngineVideo {
		params.Set("search_query", query)
	} else {
		params.Set("q", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serpapi: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: %s status %d: %s", engine, resp.StatusCode, string(body))
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("serpapi: unmarshal response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("serpapi: %s: %s", engine, parsed.Error)
	}

	var links []serpLink
	switch engine {
	case EngineVideo:
		links = parsed.VideoResults
	case EngineNews:
		links = parsed.NewsResults
	default:
		links = parsed.OrganicResults
	}

	out := make([]Result, 0, len(links))
	for _, l := range links {
		if l.Link == "" {
			continue
		}
		out = append(out, Result{
			Title:   l.Title,
			Url:     l.Link,
			Snippet: firstNonEmpty(l.Snippet, l.Description, pubSummary(l)),
			Source:  source(l),
		})
	}
	return out, nil
}

func pubSummary(l serpLink) string {
	if l.PubInfo != nil {
		return l.PubInfo.Summary
	}
	return ""
}

func source(l serpLink) string {
	switch v := l.Source.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	if l.Channel != nil {
		return l.Channel.Name
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
