package costing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "quintal/internal/log"
	"quintal/models"
)

// ProductInput describes a product creation request after transport decoding.
type ProductInput struct {
	Name           string
	AdditionalCost decimal.Decimal
	Ingredients    []IngredientInput
}

// IngredientInput references one raw material and its percentage share.
type IngredientInput struct {
	RawMaterialID uint
	Percentage    decimal.Decimal
}

// ProductStore persists tenant-scoped products and their ingredient links.
type ProductStore struct {
	db *gorm.DB
}

// NewProductStore builds a ProductStore backed by the given database handle.
func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// Create validates the input, derives the total cost from each referenced
// material's current cost, and persists the product together with its
// ingredient links in one transaction. Referenced materials must exist and
// belong to the owner; a missing or foreign id fails with a not-found error
// naming the offending id.
func (s *ProductStore) Create(ctx context.Context, ownerID uint, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("name", "name must not be empty")
	}
	if input.AdditionalCost.IsNegative() {
		return nil, validationf("additional_cost", "additional cost must not be negative")
	}

	shares := make([]decimal.Decimal, 0, len(input.Ingredients))
	seen := make(map[uint]bool, len(input.Ingredients))
	materialIDs := make([]uint, 0, len(input.Ingredients))
	for _, ingredient := range input.Ingredients {
		if ingredient.RawMaterialID == 0 {
			return nil, validationf("raw_material_id", "raw material id is required")
		}
		if seen[ingredient.RawMaterialID] {
			return nil, validationf("raw_material_id", "raw material %d is referenced more than once", ingredient.RawMaterialID)
		}
		seen[ingredient.RawMaterialID] = true
		materialIDs = append(materialIDs, ingredient.RawMaterialID)
		shares = append(shares, ingredient.Percentage)
	}
	if err := ValidateShares(shares); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var materials []models.RawMaterial
		if err := tx.Where("owner_id = ? AND id IN ?", ownerID, materialIDs).Find(&materials).Error; err != nil {
			return err
		}
		costs := make(map[uint]decimal.Decimal, len(materials))
		for _, material := range materials {
			costs[material.ID] = material.Cost
		}

		parts := make([]Component, 0, len(input.Ingredients))
		for _, ingredient := range input.Ingredients {
			cost, ok := costs[ingredient.RawMaterialID]
			if !ok {
				return fmt.Errorf("raw material %d: %w", ingredient.RawMaterialID, ErrNotFound)
			}
			parts = append(parts, Component{Cost: cost, Percentage: ingredient.Percentage})
		}

		var count int64
		if err := tx.Model(&models.Product{}).
			Where("owner_id = ? AND name = ?", ownerID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflictf("a product named %q already exists", name)
		}

		created := models.Product{
			Name:           name,
			AdditionalCost: input.AdditionalCost,
			TotalCost:      TotalCost(input.AdditionalCost, parts),
			OwnerID:        ownerID,
		}
		for _, ingredient := range input.Ingredients {
			created.Ingredients = append(created.Ingredients, models.Ingredient{
				RawMaterialID: ingredient.RawMaterialID,
				Percentage:    ingredient.Percentage,
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		var reloaded models.Product
		if err := tx.Preload("Ingredients.RawMaterial").First(&reloaded, created.ID).Error; err != nil {
			return err
		}
		product = &reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Info(ctx, "product created",
		"id", product.ID, "owner", ownerID, "name", name, "totalCost", product.TotalCost.String())
	return product, nil
}

// List returns the owner's products ordered by name, with ingredients and
// their raw materials expanded. TotalCost comes from the stored column that
// the recalculation trigger keeps current.
func (s *ProductStore) List(ctx context.Context, ownerID uint) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Ingredients.RawMaterial").
		Where("owner_id = ?", ownerID).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Get loads a single product scoped to the owner, fully expanded.
func (s *ProductStore) Get(ctx context.Context, ownerID, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Ingredients.RawMaterial").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Delete removes the product and its ingredient links in one transaction.
// Raw materials are untouched.
func (s *ProductStore) Delete(ctx context.Context, ownerID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&product).Error
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "product deleted", "id", id, "owner", ownerID)
	return nil
}
