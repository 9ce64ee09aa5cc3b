package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a tenant-owned blend of raw materials. TotalCost is derived
// from the ingredient percentages and the referenced materials' current
// costs plus AdditionalCost; it is refreshed whenever a contributing cost
// changes and is never set directly by clients.
type Product struct {
	gorm.Model
	Name           string          `gorm:"not null;uniqueIndex:idx_products_owner_name" json:"name"`
	AdditionalCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"additional_cost"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	OwnerID        uint            `gorm:"not null;uniqueIndex:idx_products_owner_name;index" json:"owner_id"`
	Owner          *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Ingredients    []Ingredient    `gorm:"foreignKey:ProductID" json:"ingredients"`
}
