package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/llm"
)

const (
	maxCardResources = 10
	minTopics        = 4
	maxTopics        = 5
)

var ErrInvalidSynthesis = errors.New("search: synthesis did not match the expected format")

type Resource struct {
	Title  string `json:"title"`
	Url    string `json:"url"`
	Source string `json:"source,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Card is a single ranked summary.
type Card struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Resources []Resource `json:"resources"`
}

type Topic struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Resources []Resource `json:"resources"`
}

// Magazine splits the answer into a handful of topics.
type Magazine struct {
	MainSummary string  `json:"mainSummary"`
	Topics      []Topic `json:"topics"`
}

// Outcome holds exactly one of Card or Magazine.
type Outcome struct {
	Query    string
	Format   entity.DeepSearchFormat
	Card     *Card
	Magazine *Magazine
	// Engines that failed and were left out of the synthesis.
	FailedEngines []Engine
}

// Summary is the text shown in the transcript.
func (o *Outcome) Summary() string {
	if o.Card != nil {
		return o.Card.Summary
	}
	if o.Magazine != nil {
		return o.Magazine.MainSummary
	}
	return ""
}

// Links flattens every resource into transcript links.
func (o *Outcome) Links() []entity.ResourceLink {
	var out []entity.ResourceLink
	add := func(rs []Resource) {
		for _, r := range rs {
			out = append(out, entity.ResourceLink{Title: r.Title, Uri: r.Url})
		}
	}
	if o.Card != nil {
		add(o.Card.Resources)
	}
	if o.Magazine != nil {
		for _, t := range o.Magazine.Topics {
			add(t.Resources)
		}
	}
	return out
}

// Report renders the outcome as a structured report for the transcript.
func (o *Outcome) Report() *entity.ReportContent {
	switch {
	case o.Card != nil:
		return &entity.ReportContent{Title: o.Card.Title, Summary: o.Card.Summary}
	case o.Magazine != nil:
		r := &entity.ReportContent{Title: o.Query, Summary: o.Magazine.MainSummary}
		for _, t := range o.Magazine.Topics {
			r.Sections = append(r.Sections, entity.ReportSection{Heading: t.Title, Content: t.Summary})
		}
		return r
	}
	return nil
}

func resourceSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeArray,
		Items: &llm.Schema{
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"title":  {Type: llm.TypeString},
				"url":    {Type: llm.TypeString},
				"source": {Type: llm.TypeString},
				"kind":   {Type: llm.TypeString, Enum: []string{"web", "paper", "video", "news"}},
			},
			Required: []string{"title", "url"},
		},
	}
}

func cardSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"title":     {Type: llm.TypeString},
			"summary":   {Type: llm.TypeString},
			"resources": resourceSchema(),
		},
		Required: []string{"title", "summary", "resources"},
	}
}

func magazineSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"mainSummary": {Type: llm.TypeString},
			"topics": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"title":     {Type: llm.TypeString},
						"summary":   {Type: llm.TypeString},
						"resources": resourceSchema(),
					},
					Required: []string{"title", "summary", "resources"},
				},
			},
		},
		Required: []string{"mainSummary", "topics"},
	}
}

func synthesisPrompt(query string, format entity.DeepSearchFormat, curated map[Engine][]Result) (string, error) {
	payload, err := json.Marshal(curated)
	if err != nil {
		return "", err
	}

	var task string
	if format == entity.DeepSearchMagazine {
		task = fmt.Sprintf("Write a main summary, then organize the findings into %d to %d topics. "+
			"Each topic has a title, a short summary and the resources that support it.", minTopics, maxTopics)
	} else {
		task = fmt.Sprintf("Write a title and a one-paragraph summary, then rank at most %d of the most "+
			"authoritative resources.", maxCardResources)
	}

	var b strings.Builder
	b.WriteString("You are a research assistant. Answer the user's query using only the search results below.\n")
	b.WriteString("Only cite URLs that appear in the results.\n\n")
	b.WriteString("Query: " + query + "\n\n")
	b.WriteString("Task: " + task + "\n\n")
	b.WriteString("Search results grouped by engine (JSON):\n")
	b.Write(payload)
	return b.String(), nil
}

func parseCard(text string) (*Card, error) {
	var c Card
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSynthesis, err)
	}
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Summary) == "" {
		return nil, fmt.Errorf("%w: card needs a title and a summary", ErrInvalidSynthesis)
	}
	if len(c.Resources) > maxCardResources {
		c.Resources = c.Resources[:maxCardResources]
	}
	return &c, nil
}

func parseMagazine(text string) (*Magazine, error) {
	var m Magazine
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSynthesis, err)
	}
	if strings.TrimSpace(m.MainSummary) == "" {
		return nil, fmt.Errorf("%w: magazine needs a main summary", ErrInvalidSynthesis)
	}
	if len(m.Topics) < minTopics {
		return nil, fmt.Errorf("%w: got %d topics, want %d to %d", ErrInvalidSynthesis, len(m.Topics), minTopics, maxTopics)
	}
	if len(m.Topics) > maxTopics {
		m.Topics = m.Topics[:maxTopics]
	}
	return &m, nil
}
