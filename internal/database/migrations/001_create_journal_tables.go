package migrations

import (
	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/types"
	"gorm.io/gorm"
)

// CreateJournalTables creates the trades table and the equity singleton table
func CreateJournalTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.Trade{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&equity.Equity{}); err != nil {
		return err
	}

	// Listings order by created_at with id breaking ties within a second
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_trades_created_at_id
		 ON trades(created_at, id)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
