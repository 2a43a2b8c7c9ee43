package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// SmartContract represents a verified contract with a known ABI
type SmartContract struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	ChainUUID       uuid.UUID   `json:"chainUuid"`
	BlockchainID    string      `json:"chainId"` // CAIP-2, resolved from the chain
	ContractAddress string      `json:"contractAddress"`
	ABI             interface{} `json:"abi"`
	Tags            []string    `json:"tags"`
	IsActive        bool        `json:"isActive"`
	Metadata        null.JSON   `json:"metadata,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	DeletedAt       null.Time   `json:"-"`
}

// CreateSmartContractInput represents input for creating a smart contract record
type CreateSmartContractInput struct {
	Name            string      `json:"name" binding:"required,min=1,max=100"`
	ChainID         string      `json:"chainId" binding:"required"`
	ContractAddress string      `json:"contractAddress" binding:"required"`
	ABI             interface{} `json:"abi" binding:"required"`
	Tags            []string    `json:"tags"`
}

// UpdateSmartContractInput represents input for updating a smart contract
type UpdateSmartContractInput struct {
	Name     string      `json:"name,omitempty"`
	ABI      interface{} `json:"abi,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
	IsActive *bool       `json:"isActive,omitempty"`
}
