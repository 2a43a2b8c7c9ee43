package repositories

import (
	"context"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/pkg/utils"
	"github.com/google/uuid"
)

// SmartContractRepository defines smart contract data operations
type SmartContractRepository interface {
	Create(ctx context.Context, contract *entities.SmartContract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error)
	GetByChainAndAddress(ctx context.Context, chainID uuid.UUID, address string) (*entities.SmartContract, error)
	GetByChain(ctx context.Context, chainID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error)
	GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error)
	Update(ctx context.Context, contract *entities.SmartContract) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
