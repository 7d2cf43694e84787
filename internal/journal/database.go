package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/types"
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

// CreateTrade inserts the trade and applies its equity delta in one transaction
func (d *Database) CreateTrade(ctx context.Context, trade *types.Trade, delta decimal.Decimal) error {
	return d.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}

		if delta.IsZero() {
			return nil
		}
		return equity.Increment(tx, delta)
	})
}

// UpdateTrade replaces the editable fields of a trade and applies newPl - oldPl to the ledger.
// It returns the stored trade after the update.
func (d *Database) UpdateTrade(ctx context.Context, tradeID string, fields map[string]interface{}, newPL types.NumericString) (*types.Trade, error) {
	var updated types.Trade

	err := d.withTx(ctx, func(tx *gorm.DB) error {
		existing, err := findTrade(forUpdate(tx), tradeID)
		if err != nil {
			return err
		}

		result := tx.Model(&types.Trade{}).Where("id = ?", existing.ID).Updates(fields)
		if result.Error != nil {
			return fmt.Errorf("failed to update trade: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		delta := newPL.Decimal().Sub(existing.PL.Decimal())
		if !delta.IsZero() {
			if err := equity.Increment(tx, delta); err != nil {
				return err
			}
		}

		return tx.Where("id = ?", existing.ID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTrade removes a trade. When reverse is set its P/L is taken back out of the ledger
// in the same transaction. The deleted trade is returned.
func (d *Database) DeleteTrade(ctx context.Context, tradeID string, reverse bool) (*types.Trade, error) {
	var deleted *types.Trade

	err := d.withTx(ctx, func(tx *gorm.DB) error {
		existing, err := findTrade(forUpdate(tx), tradeID)
		if err != nil {
			return err
		}

		result := tx.Where("id = ?", existing.ID).Delete(&types.Trade{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete trade: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if pl := existing.PL.Decimal(); reverse && !pl.IsZero() {
			if err := equity.Increment(tx, pl.Neg()); err != nil {
				return err
			}
		}

		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetTrade retrieves a trade by its public id
func (d *Database) GetTrade(ctx context.Context, tradeID string) (*types.Trade, error) {
	return findTrade(d.db.WithContext(ctx), tradeID)
}

// ListTrades returns every trade matching the filter
func (d *Database) ListTrades(ctx context.Context, filter TradeFilter) ([]types.Trade, error) {
	query := d.db.WithContext(ctx).Model(&types.Trade{})

	if filter.CreatedPrefix != "" {
		query = query.Where("created_at LIKE ? ESCAPE '\\'", escapeLike(filter.CreatedPrefix)+"%")
	}
	if filter.RequirePair {
		query = query.Where("pair IS NOT NULL AND pair <> ''")
	}

	if filter.Order == OldestFirst {
		query = query.Order("created_at ASC, id ASC")
	} else {
		query = query.Order("created_at DESC, id DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	trades := []types.Trade{}
	if err := query.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}
	return trades, nil
}

// CountTrades returns the number of stored trades
func (d *Database) CountTrades(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&types.Trade{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// withTx runs fn in a transaction, rolling back on error or panic
func (d *Database) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := d.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// forUpdate locks the selected rows until the transaction ends, so concurrent edits of one
// trade apply their P/L differences one after the other. The sqlite dialect drops the clause;
// sqlite already serializes writers.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func findTrade(db *gorm.DB, tradeID string) (*types.Trade, error) {
	var trade types.Trade
	if err := db.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch trade: %w", err)
	}
	return &trade, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
