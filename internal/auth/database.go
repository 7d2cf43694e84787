package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateAdmin(ctx context.Context, admin *Admin) error {
	if err := d.db.WithContext(ctx).Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetAdmin returns the admin with username, or nil when there is none
func (d *Database) GetAdmin(ctx context.Context, username string) (*Admin, error) {
	var admin Admin
	result := d.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&admin)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &admin, nil
}
