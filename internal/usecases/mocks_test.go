package usecases_test

import (
	"context"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/pkg/solidity"
	"contract-explorer.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock ChainRepository
type MockChainRepository struct {
	mock.Mock
}

func (m *MockChainRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Chain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chain), args.Error(1)
}

func (m *MockChainRepository) GetByChainID(ctx context.Context, chainID string) (*entities.Chain, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chain), args.Error(1)
}

func (m *MockChainRepository) GetByCAIP2(ctx context.Context, caip2 string) (*entities.Chain, error) {
	args := m.Called(ctx, caip2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chain), args.Error(1)
}

func (m *MockChainRepository) GetAll(ctx context.Context) ([]*entities.Chain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Chain), args.Error(1)
}

func (m *MockChainRepository) GetActive(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Chain, int64, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Chain), args.Get(1).(int64), args.Error(2)
}

func (m *MockChainRepository) Create(ctx context.Context, chain *entities.Chain) error {
	return m.Called(ctx, chain).Error(0)
}

func (m *MockChainRepository) Update(ctx context.Context, chain *entities.Chain) error {
	return m.Called(ctx, chain).Error(0)
}

func (m *MockChainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock SmartContractRepository
type MockSmartContractRepository struct {
	mock.Mock
}

func (m *MockSmartContractRepository) Create(ctx context.Context, contract *entities.SmartContract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *MockSmartContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SmartContract), args.Error(1)
}

func (m *MockSmartContractRepository) GetByChainAndAddress(ctx context.Context, chainID uuid.UUID, address string) (*entities.SmartContract, error) {
	args := m.Called(ctx, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SmartContract), args.Error(1)
}

func (m *MockSmartContractRepository) GetByChain(ctx context.Context, chainID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	args := m.Called(ctx, chainID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.SmartContract), args.Get(1).(int64), args.Error(2)
}

func (m *MockSmartContractRepository) GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.SmartContract), args.Get(1).(int64), args.Error(2)
}

func (m *MockSmartContractRepository) Update(ctx context.Context, contract *entities.SmartContract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *MockSmartContractRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock ContractReadCaller
type MockContractReadCaller struct {
	mock.Mock
}

func (m *MockContractReadCaller) CallContractReadMethod(
	ctx context.Context,
	contract *entities.SmartContract,
	method entities.MethodDescriptor,
	params []solidity.Value,
	options map[string]interface{},
) ([]interface{}, error) {
	args := m.Called(ctx, contract, method, params, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interface{}), args.Error(1)
}
