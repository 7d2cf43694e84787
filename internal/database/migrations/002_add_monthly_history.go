package migrations

import (
	"github.com/ksred/fxjournal/internal/history"
	"gorm.io/gorm"
)

// AddMonthlyHistory creates the monthly snapshot table.
// The unique index on month is the idempotency key of the snapshot job.
func AddMonthlyHistory(db *gorm.DB) error {
	return db.AutoMigrate(&history.History{})
}
