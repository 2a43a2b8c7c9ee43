package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SmartContract struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name            string         `gorm:"type:varchar(100);not null"`
	ChainID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_chain_contract"`
	ContractAddress string         `gorm:"type:varchar(66);not null;uniqueIndex:idx_chain_contract"`
	ABI             string         `gorm:"type:jsonb;not null"`
	Metadata        string         `gorm:"type:jsonb;default:'{}'"`
	Tags            pq.StringArray `gorm:"type:text[];default:'{}'"`
	IsActive        bool           `gorm:"default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (SmartContract) TableName() string {
	return "smart_contracts"
}

// All returns every model handled by AutoMigrate, in dependency order
func All() []interface{} {
	return []interface{}{&Chain{}, &ChainRPC{}, &SmartContract{}}
}
