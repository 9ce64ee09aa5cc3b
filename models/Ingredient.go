package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient links a Product to a RawMaterial with a percentage weight in
// (0,100]. A product may reference a given material at most once, and the
// link never outlives its product.
type Ingredient struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;uniqueIndex:idx_ingredients_product_material" json:"product_id"`
	RawMaterialID uint            `gorm:"not null;uniqueIndex:idx_ingredients_product_material;index" json:"raw_material_id"`
	Percentage    decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"percentage"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	RawMaterial *RawMaterial `gorm:"foreignKey:RawMaterialID" json:"raw_material,omitempty"`
}
