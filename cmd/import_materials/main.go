package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"quintal/internal/config"
	"quintal/internal/costing"
	"quintal/internal/db"
	"quintal/models"
)

type materialRecord struct {
	Name string
	Cost decimal.Decimal
}

type importSummary struct {
	Created      int
	Updated      int
	Skipped      int
	Recalculated int
}

func main() {
	owner := flag.String("owner", "", "email of the account that owns the imported materials")
	flag.Parse()

	csvPath := "raw_materials.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	if err := run(csvPath, *owner); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath, ownerEmail string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}
	if strings.TrimSpace(ownerEmail) == "" {
		return fmt.Errorf("owner email must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("configure database: %w", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	records, err := readRecords(file)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	ownerID, err := resolveOwner(database, ownerEmail)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	summary, err := importRecords(context.Background(), database, ownerID, records)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d material(s): %d created, %d updated, %d unchanged, %d product(s) recalculated\n",
		len(records), summary.Created, summary.Updated, summary.Skipped, summary.Recalculated)
	return nil
}

// readRecords parses name,cost rows. A header row is recognised by a
// non-numeric cost column and skipped.
func readRecords(r io.Reader) ([]materialRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = 2

	var records []materialRecord
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		name := strings.TrimSpace(row[0])
		costValue := strings.TrimSpace(row[1])

		cost, err := decimal.NewFromString(costValue)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid cost %q", line, costValue)
		}

		if name == "" {
			return nil, fmt.Errorf("line %d: material name must not be empty", line)
		}
		if !cost.IsPositive() {
			return nil, fmt.Errorf("line %d: cost must be greater than zero", line)
		}

		records = append(records, materialRecord{Name: name, Cost: cost})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no material records found")
	}
	return records, nil
}

func resolveOwner(database *gorm.DB, email string) (uint, error) {
	var user models.User
	err := database.
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("no account found for %s", email)
		}
		return 0, err
	}
	return user.ID, nil
}

// importRecords applies each row in its own transaction: new names become
// materials, changed costs are updated with an audit row and dependent
// product totals are recalculated before the row commits.
func importRecords(ctx context.Context, database *gorm.DB, ownerID uint, records []materialRecord) (importSummary, error) {
	var summary importSummary

	for _, record := range records {
		err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.RawMaterial
			err := tx.Where("owner_id = ? AND name = ?", ownerID, record.Name).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				material := models.RawMaterial{Name: record.Name, Cost: record.Cost, OwnerID: ownerID}
				if err := tx.Create(&material).Error; err != nil {
					return err
				}
				summary.Created++
				return nil
			}
			if err != nil {
				return err
			}

			if existing.Cost.Equal(record.Cost) {
				summary.Skipped++
				return nil
			}

			previous := existing.Cost
			if err := tx.Model(&existing).Update("cost", record.Cost).Error; err != nil {
				return err
			}

			change := models.CostChange{
				RawMaterialID: existing.ID,
				OwnerID:       ownerID,
				Before:        previous,
				After:         record.Cost,
				Reason:        models.CostChangeCSVImport,
			}
			if err := tx.Create(&change).Error; err != nil {
				return err
			}

			recalculated, err := costing.Recalculate(ctx, tx, ownerID, existing.ID)
			if err != nil {
				return err
			}
			summary.Updated++
			summary.Recalculated += recalculated
			return nil
		})
		if err != nil {
			return summary, fmt.Errorf("import %q: %w", record.Name, err)
		}
	}

	return summary, nil
}
