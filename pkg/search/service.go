package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/state"

	"golang.org/x/sync/errgroup"
)

const module = "SEARCH"

var ErrAllEnginesFailed = errors.New("search: every engine failed")

// Service runs the fan-out and the synthesis.
type Service struct {
	provider Provider
	engines  []EngineSpec
	logger   logger.ILogger
}

func NewService(provider Provider, logger logger.ILogger) *Service {
	return &Service{provider: provider, engines: DefaultEngines, logger: logger}
}

// Request is one deep search. Store receives the request counter increments.
type Request struct {
	Query  string
	Format entity.DeepSearchFormat
	Model  string
	Client llm.GenerativeClient
	Store  state.Store
}

// Run queries every engine in parallel, keeps what succeeded and synthesizes it.
// Engine failures are tolerated; a synthesis failure is returned.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	curated, failed := s.gather(ctx, req.Store, req.Query)
	if len(failed) == len(s.engines) {
		return nil, ErrAllEnginesFailed
	}

	format := req.Format
	if format != entity.DeepSearchMagazine {
		format = entity.DeepSearchCard
	}

	prompt, err := synthesisPrompt(req.Query, format, curated)
	if err != nil {
		return nil, fmt.Errorf("build synthesis prompt: %w", err)
	}

	schema := cardSchema()
	if format == entity.DeepSearchMagazine {
		schema = magazineSchema()
	}
	res, err := req.Client.GenerateContent(ctx, &llm.Request{
		Model:            req.Model,
		Contents:         []llm.Content{llm.UserText(prompt)},
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	out := &Outcome{Query: req.Query, Format: format, FailedEngines: failed}
	if format == entity.DeepSearchMagazine {
		out.Magazine, err = parseMagazine(res.Text)
	} else {
		out.Card, err = parseCard(res.Text)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) gather(ctx context.Context, store state.Store, query string) (map[Engine][]Result, []Engine) {
	var (
		mu      sync.Mutex
		curated = make(map[Engine][]Result)
		failed  []Engine
		g       errgroup.Group
	)

	for _, spec := range s.engines {
		spec := spec
		g.Go(func() error {
			// Counted when issued, whatever the outcome
			if store != nil {
				if _, err := store.Update(ctx, func(a *entity.AppState) error {
					a.Settings.SearchRequestCount++
					return nil
				}); err != nil {
					s.logger.Warn(module, "Failed to count search request", map[string]interface{}{"error": err.Error()})
				}
			}

			results, err := s.provider.Search(ctx, spec.Engine, query)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn(module, "Search engine failed", map[string]interface{}{
					"engine": string(spec.Engine),
					"error":  err.Error(),
				})
				failed = append(failed, spec.Engine)
				return nil // one engine never aborts the others
			}
			if len(results) > spec.Cap {
				results = results[:spec.Cap]
			}
			if len(results) > 0 {
				curated[spec.Engine] = results
			}
			return nil
		})
	}
	_ = g.Wait()

	return curated, failed
}
