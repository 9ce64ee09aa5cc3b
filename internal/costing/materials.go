package costing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "quintal/internal/log"
	"quintal/models"
)

// MaterialStore persists tenant-scoped raw materials and keeps dependent
// product costs consistent whenever a material's cost changes.
type MaterialStore struct {
	db *gorm.DB
}

// NewMaterialStore builds a MaterialStore backed by the given database handle.
func NewMaterialStore(db *gorm.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

// Create persists a new raw material for the owner. Names are unique per
// tenant and the cost must be strictly positive.
func (s *MaterialStore) Create(ctx context.Context, ownerID uint, name string, cost decimal.Decimal) (*models.RawMaterial, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("name", "name must not be empty")
	}
	if !cost.IsPositive() {
		return nil, validationf("cost", "cost must be greater than zero")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.RawMaterial{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("a raw material named %q already exists", name)
	}

	material := &models.RawMaterial{Name: name, Cost: cost, OwnerID: ownerID}
	if err := s.db.WithContext(ctx).Create(material).Error; err != nil {
		return nil, err
	}

	applog.Info(ctx, "raw material created", "id", material.ID, "owner", ownerID, "name", name)
	return material, nil
}

// List returns the owner's raw materials ordered by name.
func (s *MaterialStore) List(ctx context.Context, ownerID uint) ([]models.RawMaterial, error) {
	var materials []models.RawMaterial
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name asc").
		Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

// Get loads a single raw material scoped to the owner.
func (s *MaterialStore) Get(ctx context.Context, ownerID, id uint) (*models.RawMaterial, error) {
	var material models.RawMaterial
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// UpdateCost persists a new cost for the material and synchronously
// recalculates every product of the owner that references it. The cost
// update, the audit row, and all product updates share one transaction, so
// a reader observing the new cost also observes the refreshed totals.
// It returns the updated material and the number of products recalculated.
func (s *MaterialStore) UpdateCost(ctx context.Context, ownerID, id uint, cost decimal.Decimal) (*models.RawMaterial, int, error) {
	if !cost.IsPositive() {
		return nil, 0, validationf("cost", "cost must be greater than zero")
	}

	var material models.RawMaterial
	var recalculated int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&material).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		previous := material.Cost
		if err := tx.Model(&material).Update("cost", cost).Error; err != nil {
			return err
		}

		change := models.CostChange{
			RawMaterialID: material.ID,
			OwnerID:       ownerID,
			Before:        previous,
			After:         cost,
			Reason:        models.CostChangeManual,
		}
		if err := tx.Create(&change).Error; err != nil {
			return err
		}

		count, err := Recalculate(ctx, tx, ownerID, material.ID)
		if err != nil {
			return err
		}
		recalculated = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	applog.Info(ctx, "raw material cost updated",
		"id", id, "owner", ownerID, "cost", cost.String(), "recalculated", recalculated)
	return &material, recalculated, nil
}

// Delete removes a raw material. Deletion is rejected with a conflict while
// any product ingredient still references the material, so dependent totals
// can never silently lose a contribution.
func (s *MaterialStore) Delete(ctx context.Context, ownerID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var material models.RawMaterial
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&material).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var references int64
		if err := tx.Model(&models.Ingredient{}).
			Where("raw_material_id = ?", id).
			Count(&references).Error; err != nil {
			return err
		}
		if references > 0 {
			return conflictf("raw material %q is referenced by %d product ingredient(s)", material.Name, references)
		}

		return tx.Unscoped().Delete(&material).Error
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "raw material deleted", "id", id, "owner", ownerID)
	return nil
}

// History returns the material's cost change audit trail, newest first.
func (s *MaterialStore) History(ctx context.Context, ownerID, id uint) ([]models.CostChange, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	var changes []models.CostChange
	err := s.db.WithContext(ctx).
		Where("raw_material_id = ? AND owner_id = ?", id, ownerID).
		Order("id desc").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}
