package equity

import (
	"fmt"
	"time"

	"github.com/ksred/fxjournal/pkg/response"
	"github.com/shopspring/decimal"
)

// SingletonID is the primary key of the only Equity row
const SingletonID = 1

// Scale is the number of decimal places the ledger keeps. Balances are stored as
// integer multiples of 10^-Scale so that every driver adds them exactly.
const Scale = 6

// ErrOutOfRange is returned for amounts that do not fit the stored integer
var ErrOutOfRange = fmt.Errorf("equity amount out of range: %w", response.ErrValidation)

// Equity is the running account balance
type Equity struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Units     int64     `gorm:"column:equity_units;not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Equity) TableName() string {
	return "equities"
}

// Balance returns the stored value as a decimal
func (e Equity) Balance() decimal.Decimal {
	return fromUnits(e.Units)
}

// toUnits converts amount to stored units, rounding half away from zero past Scale places
func toUnits(amount decimal.Decimal) (int64, error) {
	units := amount.Shift(Scale).Round(0)
	if !units.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return units.IntPart(), nil
}

func fromUnits(units int64) decimal.Decimal {
	return decimal.New(units, -Scale)
}

// SeedRequest is the body of the seed endpoint
type SeedRequest struct {
	Equity *decimal.Decimal `json:"equity" binding:"required"`
}
