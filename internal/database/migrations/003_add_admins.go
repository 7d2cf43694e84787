package migrations

import (
	"github.com/ksred/fxjournal/internal/auth"
	"gorm.io/gorm"
)

// AddAdmins creates the admin accounts table
func AddAdmins(db *gorm.DB) error {
	return db.AutoMigrate(&auth.Admin{})
}
