package service

import (
	"context"
	"strings"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"
)

type ISearchService interface {
	DeepSearch(ctx context.Context, userId string, request *dto.DeepSearchRequest) (*dto.DeepSearchResponse, error)
}

type searchService struct {
	backend state.Backend
	search  *search.Service
	clients assistant.ClientSource
	model   string
}

// NewSearchService runs deep searches outside a chat turn. searcher may be nil when
// no search provider is configured.
func NewSearchService(backend state.Backend, searcher *search.Service, clients assistant.ClientSource, model string) ISearchService {
	return &searchService{backend: backend, search: searcher, clients: clients, model: model}
}

func (s *searchService) DeepSearch(ctx context.Context, userId string, request *dto.DeepSearchRequest) (*dto.DeepSearchResponse, error) {
	if s.search == nil {
		return nil, assistant.ErrSearchDisabled
	}

	store := state.ForUser(s.backend, userId)
	appState, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	cred, ok := appState.Settings.ActiveCredential()
	if !ok {
		return nil, assistant.ErrCredentialRequired
	}
	client, err := s.clients.Get(ctx, cred.ApiKey)
	if err != nil {
		return nil, err
	}

	format := entity.DeepSearchFormat(request.Format)
	if format == "" {
		format = appState.Settings.DeepSearchFormat
	}

	outcome, err := s.search.Run(ctx, search.Request{
		Query:  strings.TrimSpace(request.Query),
		Format: format,
		Model:  s.model,
		Client: client,
		Store:  store,
	})
	if err != nil {
		return nil, err
	}

	res := &dto.DeepSearchResponse{
		Query:         outcome.Query,
		Format:        string(outcome.Format),
		Summary:       outcome.Summary(),
		Card:          outcome.Card,
		Magazine:      outcome.Magazine,
		Report:        outcome.Report(),
		ResourceLinks: outcome.Links(),
		FailedEngines: make([]string, 0, len(outcome.FailedEngines)),
	}
	for _, e := range outcome.FailedEngines {
		res.FailedEngines = append(res.FailedEngines, string(e))
	}
	return res, nil
}
