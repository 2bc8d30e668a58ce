package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
)

type AppStateRepository interface {
	Create(ctx context.Context, state *entity.AppState) error
	// UpdateColumns writes only the named columns of the row keyed by state.UserId.
	UpdateColumns(ctx context.Context, state *entity.AppState, columns ...string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AppState, error)
	FindUserIds(ctx context.Context, specs ...specification.Specification) ([]string, error)
}
