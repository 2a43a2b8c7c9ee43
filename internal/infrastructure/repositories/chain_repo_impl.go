package repositories

import (
	"context"
	"errors"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/infrastructure/models"
	"contract-explorer.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// chainRepo implements repositories.ChainRepository
type chainRepo struct {
	db *gorm.DB
}

// NewChainRepository creates a new chain repository
func NewChainRepository(db *gorm.DB) repositories.ChainRepository {
	return &chainRepo{db: db}
}

func preloadActiveRPCs(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("priority DESC")
}

// GetByID gets a chain by ID
func (r *chainRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Chain, error) {
	var m models.Chain
	if err := r.db.WithContext(ctx).Preload("RPCs", preloadActiveRPCs).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toChainEntity(&m), nil
}

// GetByChainID gets a chain by its network reference
func (r *chainRepo) GetByChainID(ctx context.Context, chainID string) (*entities.Chain, error) {
	var m models.Chain
	if err := r.db.WithContext(ctx).Preload("RPCs", preloadActiveRPCs).
		Where("chain_id = ?", strings.TrimSpace(chainID)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toChainEntity(&m), nil
}

// GetByCAIP2 gets a chain by CAIP-2 ID (namespace:reference)
func (r *chainRepo) GetByCAIP2(ctx context.Context, caip2 string) (*entities.Chain, error) {
	value := strings.TrimSpace(caip2)
	if value == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	// chain_id may hold the full CAIP-2 value
	chain, err := r.GetByChainID(ctx, value)
	if err == nil {
		return chain, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByChainID(ctx, parts[1])
}

// GetAll gets all chains
func (r *chainRepo) GetAll(ctx context.Context) ([]*entities.Chain, error) {
	var ms []models.Chain
	if err := r.db.WithContext(ctx).Preload("RPCs", preloadActiveRPCs).Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}

	chains := make([]*entities.Chain, 0, len(ms))
	for i := range ms {
		chains = append(chains, toChainEntity(&ms[i]))
	}
	return chains, nil
}

// GetActive gets all active chains
func (r *chainRepo) GetActive(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Chain, int64, error) {
	var ms []models.Chain
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&models.Chain{}).Where("is_active = ?", true)

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("RPCs", preloadActiveRPCs).Order("name")

	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	chains := make([]*entities.Chain, 0, len(ms))
	for i := range ms {
		chains = append(chains, toChainEntity(&ms[i]))
	}
	return chains, totalCount, nil
}

// Create creates a new chain together with its RPC endpoints
func (r *chainRepo) Create(ctx context.Context, chain *entities.Chain) error {
	if chain.ID == uuid.Nil {
		chain.ID = utils.GenerateUUIDv7()
	}
	if chain.Type == "" {
		chain.Type = entities.ChainTypeEVM
	}

	m := &models.Chain{
		ID:          chain.ID,
		ChainID:     strings.TrimSpace(chain.ChainID),
		Name:        chain.Name,
		Type:        string(chain.Type),
		RPCURL:      chain.RPCURL,
		ExplorerURL: chain.ExplorerURL.String,
		IsActive:    chain.IsActive,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainerrors.ErrAlreadyExists
			}
			return err
		}
		for i := range chain.RPCs {
			rpc := &chain.RPCs[i]
			if rpc.ID == uuid.Nil {
				rpc.ID = utils.GenerateUUIDv7()
			}
			rpc.ChainID = chain.ID
			if err := tx.Create(&models.ChainRPC{
				ID:       rpc.ID,
				ChainID:  chain.ID,
				URL:      rpc.URL,
				Priority: rpc.Priority,
				IsActive: rpc.IsActive,
			}).Error; err != nil {
				return err
			}
		}
		chain.CreatedAt = m.CreatedAt
		chain.UpdatedAt = m.UpdatedAt
		return nil
	})
}

// Update updates a chain
func (r *chainRepo) Update(ctx context.Context, chain *entities.Chain) error {
	updates := map[string]interface{}{
		"chain_id":     strings.TrimSpace(chain.ChainID),
		"name":         chain.Name,
		"type":         string(chain.Type),
		"rpc_url":      chain.RPCURL,
		"explorer_url": chain.ExplorerURL.String,
		"is_active":    chain.IsActive,
	}

	result := r.db.WithContext(ctx).Model(&models.Chain{}).Where("id = ?", chain.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete deletes a chain
func (r *chainRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Chain{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toChainEntity(m *models.Chain) *entities.Chain {
	rpcs := make([]entities.ChainRPC, 0, len(m.RPCs))
	for _, rpc := range m.RPCs {
		rpcs = append(rpcs, entities.ChainRPC{
			ID:        rpc.ID,
			ChainID:   rpc.ChainID,
			URL:       rpc.URL,
			Priority:  rpc.Priority,
			IsActive:  rpc.IsActive,
			CreatedAt: rpc.CreatedAt,
		})
	}

	explorer := null.String{}
	if m.ExplorerURL != "" {
		explorer = null.StringFrom(m.ExplorerURL)
	}

	return &entities.Chain{
		ID:          m.ID,
		ChainID:     m.ChainID,
		Name:        m.Name,
		Type:        entities.ChainType(strings.ToUpper(m.Type)),
		RPCURL:      m.RPCURL,
		ExplorerURL: explorer,
		IsActive:    m.IsActive,
		RPCs:        rpcs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
