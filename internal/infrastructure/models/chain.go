package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chain struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ChainID     string    `gorm:"type:varchar(50);not null;uniqueIndex"` // network reference or full CAIP-2
	Name        string    `gorm:"type:varchar(100);not null"`
	Type        string    `gorm:"type:varchar(20);not null;default:'EVM'"`
	RPCURL      string    `gorm:"type:text;column:rpc_url"`
	ExplorerURL string    `gorm:"type:text"`
	IsActive    bool      `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	RPCs []ChainRPC `gorm:"foreignKey:ChainID"`
}

type ChainRPC struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ChainID   uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:text;not null"`
	Priority  int       `gorm:"default:0"`
	IsActive  bool      `gorm:"default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChainRPC) TableName() string {
	return "chain_rpcs"
}
