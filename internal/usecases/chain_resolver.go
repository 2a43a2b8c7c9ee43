package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"github.com/google/uuid"
)

type ChainResolver struct {
	chainRepo repositories.ChainRepository
}

func NewChainResolver(chainRepo repositories.ChainRepository) *ChainResolver {
	return &ChainResolver{
		chainRepo: chainRepo,
	}
}

// ResolveFromAny takes a chain identifier (UUID, CAIP-2 or raw chain id)
// and returns the chain it names.
func (r *ChainResolver) ResolveFromAny(ctx context.Context, input string) (*entities.Chain, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return nil, fmt.Errorf("%w: chain identifier cannot be empty", domainerrors.ErrInvalidInput)
	}

	if id, err := uuid.Parse(value); err == nil {
		chain, err := r.chainRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain by ID %s: %w", id, err)
		}
		return chain, nil
	}

	if strings.Contains(value, ":") {
		chain, err := r.chainRepo.GetByCAIP2(ctx, value)
		if err == nil {
			return chain, nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find chain for %s: %w", value, domainerrors.ErrUnsupportedChain)
	}

	chain, err := r.chainRepo.GetByChainID(ctx, value)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to find chain for %s: %w", value, domainerrors.ErrUnsupportedChain)
		}
		return nil, err
	}
	return chain, nil
}
