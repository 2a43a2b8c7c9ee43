package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/infrastructure/models"
	"contract-explorer.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// SmartContractRepository implements smart contract data operations
type SmartContractRepository struct {
	db        *gorm.DB
	chainRepo repositories.ChainRepository
}

// NewSmartContractRepository creates a new smart contract repository
func NewSmartContractRepository(db *gorm.DB, chainRepo repositories.ChainRepository) *SmartContractRepository {
	return &SmartContractRepository{db: db, chainRepo: chainRepo}
}

// Create creates a new smart contract record
func (r *SmartContractRepository) Create(ctx context.Context, contract *entities.SmartContract) error {
	if contract.ID == uuid.Nil {
		contract.ID = utils.GenerateUUIDv7()
	}

	m, err := toSmartContractModel(contract)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	contract.CreatedAt = m.CreatedAt
	contract.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a smart contract by ID
func (r *SmartContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error) {
	var m models.SmartContract
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(ctx, &m)
}

// GetByChainAndAddress gets a smart contract by chain and address. Addresses compare case-insensitively.
func (r *SmartContractRepository) GetByChainAndAddress(ctx context.Context, chainID uuid.UUID, address string) (*entities.SmartContract, error) {
	var m models.SmartContract
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND LOWER(contract_address) = ?", chainID, strings.ToLower(strings.TrimSpace(address))).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(ctx, &m)
}

// GetByChain gets all smart contracts for a chain
func (r *SmartContractRepository) GetByChain(ctx context.Context, chainID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.SmartContract{}).Where("chain_id = ?", chainID), pagination)
}

// GetAll gets all smart contracts
func (r *SmartContractRepository) GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.SmartContract{}), pagination)
}

func (r *SmartContractRepository) list(ctx context.Context, query *gorm.DB, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	var ms []models.SmartContract
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	contracts := make([]*entities.SmartContract, 0, len(ms))
	for i := range ms {
		c, err := r.toEntity(ctx, &ms[i])
		if err != nil {
			return nil, 0, err
		}
		contracts = append(contracts, c)
	}
	return contracts, totalCount, nil
}

// Update updates a smart contract
func (r *SmartContractRepository) Update(ctx context.Context, contract *entities.SmartContract) error {
	abiJSON, err := json.Marshal(contract.ABI)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":      contract.Name,
		"abi":       string(abiJSON),
		"tags":      pq.StringArray(contract.Tags),
		"is_active": contract.IsActive,
	}

	result := r.db.WithContext(ctx).Model(&models.SmartContract{}).Where("id = ?", contract.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a smart contract
func (r *SmartContractRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SmartContract{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toSmartContractModel(c *entities.SmartContract) (*models.SmartContract, error) {
	abiJSON, err := json.Marshal(c.ABI)
	if err != nil {
		return nil, err
	}
	metadata := "{}"
	if c.Metadata.Valid && len(c.Metadata.JSON) > 0 {
		metadata = string(c.Metadata.JSON)
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.SmartContract{
		ID:              c.ID,
		Name:            c.Name,
		ChainID:         c.ChainUUID,
		ContractAddress: strings.TrimSpace(c.ContractAddress),
		ABI:             string(abiJSON),
		Metadata:        metadata,
		Tags:            pq.StringArray(tags),
		IsActive:        c.IsActive,
	}, nil
}

func (r *SmartContractRepository) toEntity(ctx context.Context, m *models.SmartContract) (*entities.SmartContract, error) {
	var abi interface{}
	if err := json.Unmarshal([]byte(m.ABI), &abi); err != nil {
		return nil, err
	}

	c := &entities.SmartContract{
		ID:              m.ID,
		Name:            m.Name,
		ChainUUID:       m.ChainID,
		ContractAddress: m.ContractAddress,
		ABI:             abi,
		Tags:            []string(m.Tags),
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Metadata != "" && m.Metadata != "{}" {
		c.Metadata = null.JSONFrom([]byte(m.Metadata))
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	if r.chainRepo != nil {
		chain, err := r.chainRepo.GetByID(ctx, m.ChainID)
		switch {
		case err == nil:
			c.BlockchainID = chain.GetCAIP2ID()
		case !errors.Is(err, domainerrors.ErrNotFound):
			return nil, err
		}
	}
	return c, nil
}
