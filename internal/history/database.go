package history

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateHistory(ctx context.Context, record *History) error {
	if err := d.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create history: %w", err)
	}
	return nil
}

// HasMonth reports whether a snapshot for month was already written
func (d *Database) HasMonth(ctx context.Context, month string) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&History{}).Where("month = ?", month).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check history: %w", err)
	}
	return count > 0, nil
}

// ListHistory returns every snapshot, newest month first
func (d *Database) ListHistory(ctx context.Context) ([]History, error) {
	records := []History{}
	if err := d.db.WithContext(ctx).Order("month DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return records, nil
}
