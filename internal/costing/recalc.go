package costing

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	applog "quintal/internal/log"
	"quintal/models"
)

// Recalculate re-derives TotalCost for every product of the owner that
// references the given raw material, using each ingredient's live cost. It
// must run inside the caller's transaction so the material mutation and all
// dependent product updates commit together or not at all. A material no
// product references is a successful no-op.
func Recalculate(ctx context.Context, tx *gorm.DB, ownerID, materialID uint) (int, error) {
	var productIDs []uint
	err := tx.WithContext(ctx).
		Model(&models.Ingredient{}).
		Distinct("ingredients.product_id").
		Joins("JOIN products ON products.id = ingredients.product_id").
		Where("ingredients.raw_material_id = ? AND products.owner_id = ?", materialID, ownerID).
		Pluck("ingredients.product_id", &productIDs).Error
	if err != nil {
		return 0, fmt.Errorf("find dependent products: %w", err)
	}

	if len(productIDs) == 0 {
		applog.Debug(ctx, "no products depend on raw material", "material", materialID, "owner", ownerID)
		return 0, nil
	}

	for _, productID := range productIDs {
		var product models.Product
		if err := tx.WithContext(ctx).
			Preload("Ingredients.RawMaterial").
			First(&product, productID).Error; err != nil {
			return 0, fmt.Errorf("reload product %d: %w", productID, err)
		}

		parts := make([]Component, 0, len(product.Ingredients))
		for _, ingredient := range product.Ingredients {
			if ingredient.RawMaterial == nil {
				return 0, fmt.Errorf("product %d: ingredient %d references missing raw material %d",
					productID, ingredient.ID, ingredient.RawMaterialID)
			}
			parts = append(parts, Component{
				Cost:       ingredient.RawMaterial.Cost,
				Percentage: ingredient.Percentage,
			})
		}

		total := TotalCost(product.AdditionalCost, parts)
		if err := tx.WithContext(ctx).Model(&product).Update("total_cost", total).Error; err != nil {
			return 0, fmt.Errorf("persist total cost for product %d: %w", productID, err)
		}
	}

	applog.Debug(ctx, "recalculated dependent products",
		"material", materialID, "owner", ownerID, "count", len(productIDs))
	return len(productIDs), nil
}
