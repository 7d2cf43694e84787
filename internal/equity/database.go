package equity

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Increment adds amount to the singleton inside the given handle, which may be a transaction.
// The row is created with amount as its value when it does not exist yet. The sum is an
// integer expression, so it is exact on every driver.
func Increment(tx *gorm.DB, amount decimal.Decimal) error {
	units, err := toUnits(amount)
	if err != nil {
		return fmt.Errorf("failed to increment equity by %s: %w", amount, err)
	}

	now := time.Now()
	row := Equity{ID: SingletonID, Units: units, UpdatedAt: now}

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"equity_units": gorm.Expr("equities.equity_units + ?", units),
			"updated_at":   now,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment equity: %w", err)
	}
	return nil
}

func (d *Database) Increment(ctx context.Context, amount decimal.Decimal) error {
	return Increment(d.db.WithContext(ctx), amount)
}

// Set overwrites the singleton value
func (d *Database) Set(ctx context.Context, amount decimal.Decimal) error {
	units, err := toUnits(amount)
	if err != nil {
		return fmt.Errorf("failed to seed equity with %s: %w", amount, err)
	}

	row := Equity{ID: SingletonID, Units: units, UpdatedAt: time.Now()}
	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"equity_units", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed equity: %w", err)
	}
	return nil
}

// Get returns the singleton, or nil when it was never written
func (d *Database) Get(ctx context.Context) (*Equity, error) {
	var row Equity
	result := d.db.WithContext(ctx).Where("id = ?", SingletonID).Limit(1).Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch equity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}
