package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cost change reasons recorded in the audit trail.
const (
	CostChangeManual    = "manual"
	CostChangeCSVImport = "csv_import"
)

// CostChange records one raw material cost mutation. Rows are immutable;
// they are appended in the same transaction as the cost update itself.
type CostChange struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RawMaterialID uint            `gorm:"not null;index" json:"raw_material_id"`
	OwnerID       uint            `gorm:"not null;index" json:"owner_id"`
	Before        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"before"`
	After         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"after"`
	Reason        string          `gorm:"not null;default:'manual'" json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}
