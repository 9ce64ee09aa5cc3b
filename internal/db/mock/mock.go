package mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quintal/internal/costing"
	applog "quintal/internal/log"
	"quintal/models"
)

// New returns an in-memory sqlite database seeded with a demo tenant, a few
// raw materials, and products derived from them. It is used for local
// development and by tests that want representative data.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:quintal-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.RawMaterial{},
		&models.Product{},
		&models.Ingredient{},
		&models.CostChange{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("quintal"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Demo Mill",
		Email:        "demo@quintal.app",
		PasswordHash: string(password),
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	materials := costing.NewMaterialStore(database)
	products := costing.NewProductStore(database)

	flour, err := materials.Create(ctx, user.ID, "Flour", decimal.NewFromInt(100))
	if err != nil {
		return err
	}
	sugar, err := materials.Create(ctx, user.ID, "Sugar", decimal.NewFromInt(50))
	if err != nil {
		return err
	}
	butter, err := materials.Create(ctx, user.ID, "Butter", decimal.NewFromInt(300))
	if err != nil {
		return err
	}

	if _, err := products.Create(ctx, user.ID, costing.ProductInput{
		Name:           "Cake",
		AdditionalCost: decimal.NewFromInt(10),
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(70)},
			{RawMaterialID: sugar.ID, Percentage: decimal.NewFromInt(30)},
		},
	}); err != nil {
		return err
	}

	if _, err := products.Create(ctx, user.ID, costing.ProductInput{
		Name:           "Shortbread",
		AdditionalCost: decimal.NewFromInt(5),
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(60)},
			{RawMaterialID: butter.ID, Percentage: decimal.NewFromInt(40)},
		},
	}); err != nil {
		return err
	}

	applog.Debug(ctx, "mock data seeded", "owner", user.ID)
	return nil
}
