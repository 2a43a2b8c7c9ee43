package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ChainType represents blockchain type
type ChainType string

const (
	ChainTypeEVM ChainType = "EVM"
)

// Chain represents a blockchain reachable through one or more RPC endpoints
type Chain struct {
	ID          uuid.UUID   `json:"id"`
	ChainID     string      `json:"chainId"` // network reference, e.g. "8453"
	Name        string      `json:"name"`
	Type        ChainType   `json:"type"`
	RPCURL      string      `json:"rpcUrl"`
	ExplorerURL null.String `json:"explorerUrl"`
	IsActive    bool        `json:"isActive"`
	RPCs        []ChainRPC  `json:"rpcs,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ChainRPC is an additional RPC endpoint for a chain
type ChainRPC struct {
	ID        uuid.UUID `json:"id"`
	ChainID   uuid.UUID `json:"chainId"`
	URL       string    `json:"url"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetCAIP2ID returns the CAIP-2 formatted chain ID
func (c *Chain) GetCAIP2ID() string {
	id := strings.TrimSpace(c.ChainID)
	if strings.Contains(id, ":") {
		return id
	}
	return "eip155:" + id
}

// PrimaryRPCURL picks the chain URL, then the first active extra RPC, then any extra RPC
func (c *Chain) PrimaryRPCURL() string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.RPCURL) != "" {
		return c.RPCURL
	}
	for _, rpc := range c.RPCs {
		if rpc.IsActive && strings.TrimSpace(rpc.URL) != "" {
			return rpc.URL
		}
	}
	for _, rpc := range c.RPCs {
		if strings.TrimSpace(rpc.URL) != "" {
			return rpc.URL
		}
	}
	return ""
}

// CreateChainInput represents input for registering a chain
type CreateChainInput struct {
	ChainID     string   `json:"chainId" binding:"required"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	RPCURL      string   `json:"rpcUrl" binding:"required"`
	ExplorerURL string   `json:"explorerUrl"`
	RPCs        []string `json:"rpcs"`
}
