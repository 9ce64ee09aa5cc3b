package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quintal/internal/costing"
	"quintal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(
		&models.User{},
		&models.RawMaterial{},
		&models.Product{},
		&models.Ingredient{},
		&models.CostChange{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

func createOwner(t *testing.T, database *gorm.DB, email string) uint {
	t.Helper()

	user := &models.User{Email: email, Name: "Importer", PasswordHash: "x"}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return user.ID
}

func TestReadRecordsParsesRows(t *testing.T) {
	t.Parallel()

	input := "Flour,100\nSugar, 49.95\n"
	records, err := readRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readRecords error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "Flour" || !records[0].Cost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Name != "Sugar" || !records[1].Cost.Equal(decimal.RequireFromString("49.95")) {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestReadRecordsSkipsHeaderRow(t *testing.T) {
	t.Parallel()

	input := "name,cost\nFlour,100\n"
	records, err := readRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readRecords error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header to be skipped, got %d records", len(records))
	}
	if records[0].Name != "Flour" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestReadRecordsRejectsBadRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"header only", "name,cost\n"},
		{"empty material name", "Flour,100\n ,50\n"},
		{"zero cost", "Flour,100\nSugar,0\n"},
		{"negative cost", "Flour,100\nSugar,-5\n"},
		{"non-numeric cost past header", "Flour,100\nSugar,cheap\n"},
		{"wrong column count", "Flour,100,extra\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := readRecords(strings.NewReader(tt.input)); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestResolveOwnerMatchesCaseInsensitively(t *testing.T) {
	database := newTestDB(t)
	want := createOwner(t, database, "miller@example.com")

	got, err := resolveOwner(database, "  MILLER@example.com ")
	if err != nil {
		t.Fatalf("resolveOwner error = %v", err)
	}
	if got != want {
		t.Fatalf("resolveOwner = %d, want %d", got, want)
	}

	if _, err := resolveOwner(database, "stranger@example.com"); err == nil {
		t.Fatal("expected error for unknown account")
	}
}

func TestImportRecordsCreatesUpdatesAndSkips(t *testing.T) {
	database := newTestDB(t)
	ownerID := createOwner(t, database, "miller@example.com")
	ctx := context.Background()

	materials := costing.NewMaterialStore(database)
	products := costing.NewProductStore(database)

	flour, err := materials.Create(ctx, ownerID, "Flour", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("seed flour: %v", err)
	}
	if _, err := materials.Create(ctx, ownerID, "Sugar", decimal.NewFromInt(50)); err != nil {
		t.Fatalf("seed sugar: %v", err)
	}
	bread, err := products.Create(ctx, ownerID, costing.ProductInput{
		Name:           "Bread",
		AdditionalCost: decimal.NewFromInt(2),
		Ingredients: []costing.IngredientInput{
			{RawMaterialID: flour.ID, Percentage: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("seed bread: %v", err)
	}

	summary, err := importRecords(ctx, database, ownerID, []materialRecord{
		{Name: "Flour", Cost: decimal.NewFromInt(200)},  // changed, recalculates bread
		{Name: "Sugar", Cost: decimal.NewFromInt(50)},   // unchanged
		{Name: "Butter", Cost: decimal.NewFromInt(300)}, // new
	})
	if err != nil {
		t.Fatalf("importRecords error = %v", err)
	}

	if summary.Created != 1 {
		t.Fatalf("Created = %d, want 1", summary.Created)
	}
	if summary.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", summary.Updated)
	}
	if summary.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Recalculated != 1 {
		t.Fatalf("Recalculated = %d, want 1", summary.Recalculated)
	}

	reloaded, err := products.Get(ctx, ownerID, bread.ID)
	if err != nil {
		t.Fatalf("reload bread: %v", err)
	}
	if !reloaded.TotalCost.Equal(decimal.NewFromInt(202)) {
		t.Fatalf("bread total = %s, want 202", reloaded.TotalCost)
	}

	var change models.CostChange
	if err := database.Where("raw_material_id = ?", flour.ID).First(&change).Error; err != nil {
		t.Fatalf("load cost change: %v", err)
	}
	if change.Reason != models.CostChangeCSVImport {
		t.Fatalf("change reason = %q, want %q", change.Reason, models.CostChangeCSVImport)
	}
	if !change.Before.Equal(decimal.NewFromInt(100)) || !change.After.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("change = %s -> %s, want 100 -> 200", change.Before, change.After)
	}

	var butter models.RawMaterial
	if err := database.Where("owner_id = ? AND name = ?", ownerID, "Butter").First(&butter).Error; err != nil {
		t.Fatalf("load created material: %v", err)
	}
	if !butter.Cost.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("butter cost = %s, want 300", butter.Cost)
	}
}

func TestImportRecordsIsScopedToOwner(t *testing.T) {
	database := newTestDB(t)
	ownerID := createOwner(t, database, "miller@example.com")
	otherID := createOwner(t, database, "other@example.com")
	ctx := context.Background()

	materials := costing.NewMaterialStore(database)
	foreign, err := materials.Create(ctx, otherID, "Flour", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("seed foreign flour: %v", err)
	}

	summary, err := importRecords(ctx, database, ownerID, []materialRecord{
		{Name: "Flour", Cost: decimal.NewFromInt(100)},
	})
	if err != nil {
		t.Fatalf("importRecords error = %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("Created = %d, want 1: foreign material must not shadow the name", summary.Created)
	}

	var untouched models.RawMaterial
	if err := database.First(&untouched, foreign.ID).Error; err != nil {
		t.Fatalf("reload foreign material: %v", err)
	}
	if !untouched.Cost.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("foreign cost = %s, want 40", untouched.Cost)
	}
}

func TestRunValidatesArguments(t *testing.T) {
	if err := run("", "miller@example.com"); err == nil {
		t.Fatal("expected error for empty csv path")
	}
	if err := run("materials.csv", ""); err == nil {
		t.Fatal("expected error for empty owner email")
	}
	if err := run("does-not-exist.csv", "miller@example.com"); err == nil {
		t.Fatal("expected error for missing csv file")
	}
}
