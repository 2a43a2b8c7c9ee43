package repositories

import (
	"testing"
	"time"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToChainEntity(t *testing.T) {
	now := time.Now()
	chainModel := &models.Chain{
		ID:        uuid.New(),
		ChainID:   "8453",
		Name:      "Base",
		Type:      "evm",
		RPCURL:    "https://main-rpc.example",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		RPCs: []models.ChainRPC{{
			ID:        uuid.New(),
			URL:       "https://rpc-1.example",
			Priority:  100,
			IsActive:  true,
			CreatedAt: now,
		}},
	}
	chainModel.RPCs[0].ChainID = chainModel.ID

	entity := toChainEntity(chainModel)
	require.Equal(t, entities.ChainTypeEVM, entity.Type)
	require.False(t, entity.ExplorerURL.Valid)
	require.Len(t, entity.RPCs, 1)
	require.Equal(t, chainModel.ID, entity.RPCs[0].ChainID)
	require.Equal(t, "eip155:8453", entity.GetCAIP2ID())

	chainModel.ExplorerURL = "https://explorer.example"
	chainModel.RPCs = nil
	entity = toChainEntity(chainModel)
	require.Equal(t, "https://explorer.example", entity.ExplorerURL.String)
	require.NotNil(t, entity.RPCs)
	require.Empty(t, entity.RPCs)
}
