package repositories

import (
	"context"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/pkg/utils"
	"github.com/google/uuid"
)

// ChainRepository defines chain data operations
type ChainRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Chain, error)
	GetByChainID(ctx context.Context, chainID string) (*entities.Chain, error)
	GetByCAIP2(ctx context.Context, caip2 string) (*entities.Chain, error)
	GetAll(ctx context.Context) ([]*entities.Chain, error)
	GetActive(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Chain, int64, error)
	Create(ctx context.Context, chain *entities.Chain) error
	Update(ctx context.Context, chain *entities.Chain) error
	Delete(ctx context.Context, id uuid.UUID) error
}
