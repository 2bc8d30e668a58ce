package service

import (
	"context"
	"strings"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/state"

	"github.com/google/uuid"
)

type IDocumentService interface {
	List(ctx context.Context, userId string) ([]entity.LiveDocument, error)
	Create(ctx context.Context, userId string, request *dto.CreateDocumentRequest) (*entity.LiveDocument, error)
	Show(ctx context.Context, userId string, documentId string) (*entity.LiveDocument, error)
	Update(ctx context.Context, userId string, request *dto.UpdateDocumentRequest) (*entity.LiveDocument, error)
	Delete(ctx context.Context, userId string, documentId string) error
}

type documentService struct {
	backend state.Backend
	now     func() time.Time
}

func NewDocumentService(backend state.Backend) IDocumentService {
	return &documentService{backend: backend, now: time.Now}
}

func (s *documentService) List(ctx context.Context, userId string) ([]entity.LiveDocument, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	if appState.Documents == nil {
		return []entity.LiveDocument{}, nil
	}
	return appState.Documents, nil
}

func (s *documentService) Create(ctx context.Context, userId string, request *dto.CreateDocumentRequest) (*entity.LiveDocument, error) {
	doc := entity.LiveDocument{
		Id:           uuid.NewString(),
		Title:        strings.TrimSpace(request.Title),
		Content:      request.Content,
		LastModified: s.now(),
	}

	if _, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		a.Documents = append(a.Documents, doc)
		return nil
	}); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *documentService) Show(ctx context.Context, userId string, documentId string) (*entity.LiveDocument, error) {
	appState, err := s.backend.Load(ctx, userId)
	if err != nil {
		return nil, err
	}
	doc, ok := appState.Document(documentId)
	if !ok {
		return nil, state.ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, userId string, request *dto.UpdateDocumentRequest) (*entity.LiveDocument, error) {
	var updated entity.LiveDocument
	if _, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		doc, ok := a.Document(request.Id)
		if !ok {
			return state.ErrNotFound
		}
		if request.Title != nil {
			doc.Title = strings.TrimSpace(*request.Title)
			doc.LastModified = s.now()
		}
		if request.Content != nil {
			a.SetDocumentContent(doc.Id, *request.Content, s.now())
		}
		updated = *doc
		return nil
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the document and clears it as the co-creation target if needed.
func (s *documentService) Delete(ctx context.Context, userId string, documentId string) error {
	_, err := s.backend.Update(ctx, userId, func(a *entity.AppState) error {
		for i, doc := range a.Documents {
			if doc.Id != documentId {
				continue
			}
			a.Documents = append(a.Documents[:i], a.Documents[i+1:]...)
			if a.ActiveDocumentId == documentId {
				a.ActiveDocumentId = ""
			}
			return nil
		}
		return state.ErrNotFound
	})
	return err
}
