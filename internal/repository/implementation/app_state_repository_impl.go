package implementation

import (
	"context"
	"errors"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AppStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AppStateMapper
}

func NewAppStateRepository(db *gorm.DB) contract.AppStateRepository {
	return &AppStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewAppStateMapper(),
	}
}

func (r *AppStateRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AppStateRepositoryImpl) Create(ctx context.Context, state *entity.AppState) error {
	m, err := r.mapper.AppStateToModel(state)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	state.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *AppStateRepositoryImpl) UpdateColumns(ctx context.Context, state *entity.AppState, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	m, err := r.mapper.AppStateToModel(state)
	if err != nil {
		return err
	}
	selected := append([]string{"updated_at"}, columns...)
	res := r.db.WithContext(ctx).
		Model(&model.AppState{UserId: state.UserId}).
		Select(selected).
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	state.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *AppStateRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AppState, error) {
	var m model.AppState
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AppStateToEntity(&m)
}

func (r *AppStateRepositoryImpl) FindUserIds(ctx context.Context, specs ...specification.Specification) ([]string, error) {
	var ids []string
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AppState{}), specs...)
	if err := query.Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
