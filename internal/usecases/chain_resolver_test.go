package usecases_test

import (
	"context"
	"errors"
	"testing"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/usecases"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChainResolver_ResolveFromAny(t *testing.T) {
	ctx := context.Background()
	base := &entities.Chain{ID: uuid.New(), ChainID: "8453", Name: "Base"}

	repo := new(MockChainRepository)
	repo.On("GetByID", mock.Anything, base.ID).Return(base, nil)
	repo.On("GetByCAIP2", mock.Anything, "eip155:8453").Return(base, nil)
	repo.On("GetByChainID", mock.Anything, "8453").Return(base, nil)
	resolver := usecases.NewChainResolver(repo)

	for _, input := range []string{base.ID.String(), "eip155:8453", " 8453 "} {
		chain, err := resolver.ResolveFromAny(ctx, input)
		require.NoError(t, err, input)
		assert.Same(t, base, chain, input)
	}
	repo.AssertExpectations(t)
}

func TestChainResolver_Errors(t *testing.T) {
	ctx := context.Background()
	unknownID := uuid.New()

	repo := new(MockChainRepository)
	repo.On("GetByID", mock.Anything, unknownID).Return(nil, domainerrors.ErrNotFound)
	repo.On("GetByCAIP2", mock.Anything, "eip155:999").Return(nil, domainerrors.ErrNotFound)
	repo.On("GetByCAIP2", mock.Anything, "eip155:500").Return(nil, errors.New("db down"))
	repo.On("GetByChainID", mock.Anything, "999").Return(nil, domainerrors.ErrNotFound)
	repo.On("GetByChainID", mock.Anything, "500").Return(nil, errors.New("db down"))
	resolver := usecases.NewChainResolver(repo)

	_, err := resolver.ResolveFromAny(ctx, "  ")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = resolver.ResolveFromAny(ctx, unknownID.String())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = resolver.ResolveFromAny(ctx, "eip155:999")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedChain)

	_, err = resolver.ResolveFromAny(ctx, "999")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedChain)

	_, err = resolver.ResolveFromAny(ctx, "eip155:500")
	assert.EqualError(t, err, "db down")

	_, err = resolver.ResolveFromAny(ctx, "500")
	assert.EqualError(t, err, "db down")
}
