// Package search fans a query out to several external engines and asks a model
// to synthesize the curated results.
package search

import "context"

type Engine string

const (
	EngineWeb     Engine = "google"
	EngineScholar Engine = "google_scholar"
	EngineVideo   Engine = "youtube"
	EngineNews    Engine = "google_news"
)

// Kind is the resource kind shown to the user for results of this engine.
func (e Engine) Kind() string {
	switch e {
	case EngineScholar:
		return "paper"
	case EngineVideo:
		return "video"
	case EngineNews:
		return "news"
	default:
		return "web"
	}
}

// EngineSpec pairs an engine with the number of results kept from it.
type EngineSpec struct {
	Engine Engine
	Cap    int
}

// DefaultEngines is the fixed fan-out set.
var DefaultEngines = []EngineSpec{
	{Engine: EngineWeb, Cap: 10},
	{Engine: EngineScholar, Cap: 5},
	{Engine: EngineVideo, Cap: 5},
	{Engine: EngineNews, Cap: 5},
}

// Result is one hit from an engine.
type Result struct {
	Title   string `json:"title"`
	Url     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Provider runs a query against a single engine.
type Provider interface {
	Search(ctx context.Context, engine Engine, query string) ([]Result, error)
}
