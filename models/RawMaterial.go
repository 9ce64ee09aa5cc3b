package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RawMaterial is a priced input owned by a single tenant. Cost carries
// per-quintal semantics and must stay strictly positive.
type RawMaterial struct {
	gorm.Model
	Name    string          `gorm:"not null;uniqueIndex:idx_raw_materials_owner_name" json:"name"`
	Cost    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	OwnerID uint            `gorm:"not null;uniqueIndex:idx_raw_materials_owner_name;index" json:"owner_id"`
	Owner   *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
