package state

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
)

// GormBackend persists state in postgres. Writes for one user are serialized by
// an in-process lock and by a row lock, so several instances can share the table.
type GormBackend struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.AppStateMapper
	locks      sync.Map // userId -> *sync.Mutex
}

func NewGormBackend(uowFactory unitofwork.RepositoryFactory) *GormBackend {
	return &GormBackend{
		uowFactory: uowFactory,
		mapper:     mapper.NewAppStateMapper(),
	}
}

func (b *GormBackend) lock(userId string) func() {
	v, _ := b.locks.LoadOrStore(userId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (b *GormBackend) Load(ctx context.Context, userId string) (*entity.AppState, error) {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	s, err := uow.AppStateRepository().FindOne(ctx, specification.ByUserId{UserId: userId})
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if s == nil {
		return NewAppState(userId), nil
	}
	return s, nil
}

func (b *GormBackend) Update(ctx context.Context, userId string, fn Mutator) (*entity.AppState, error) {
	unlock := b.lock(userId)
	defer unlock()

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.AppStateRepository()
	current, err := repo.FindOne(ctx, specification.ByUserId{UserId: userId}, specification.ForUpdate{})
	if err != nil {
		return nil, fmt.Errorf("lock state: %w", err)
	}
	isNew := current == nil
	if isNew {
		current = NewAppState(userId)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UserId = userId

	if isNew {
		err = repo.Create(ctx, next)
	} else {
		var columns []string
		columns, err = b.changedColumns(current, next)
		if err == nil {
			err = repo.UpdateColumns(ctx, next, columns...)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return next, nil
}

func (b *GormBackend) UserIds(ctx context.Context) ([]string, error) {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	return uow.AppStateRepository().FindUserIds(ctx, specification.OrderBy{Field: "user_id"})
}

func (b *GormBackend) changedColumns(before, after *entity.AppState) ([]string, error) {
	bm, err := b.mapper.AppStateToModel(before)
	if err != nil {
		return nil, err
	}
	am, err := b.mapper.AppStateToModel(after)
	if err != nil {
		return nil, err
	}

	var columns []string
	if !bytes.Equal(bm.Settings, am.Settings) {
		columns = append(columns, "settings")
	}
	if !bytes.Equal(bm.Documents, am.Documents) {
		columns = append(columns, "documents")
	}
	if bm.ActiveDocumentId != am.ActiveDocumentId {
		columns = append(columns, "active_document_id")
	}
	if !bytes.Equal(bm.CalendarEvents, am.CalendarEvents) {
		columns = append(columns, "calendar_events")
	}
	if !bytes.Equal(bm.ChatHistory, am.ChatHistory) {
		columns = append(columns, "chat_history")
	}
	if !bytes.Equal(bm.ActiveReminders, am.ActiveReminders) {
		columns = append(columns, "active_reminders")
	}
	return columns, nil
}
