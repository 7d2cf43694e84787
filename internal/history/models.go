package history

import (
	"time"

	"github.com/ksred/fxjournal/internal/types"
	"github.com/shopspring/decimal"
)

// Snapshot outcomes when nothing was written
const (
	ReasonNotDue          = "not due"
	ReasonNoTrades        = "no trades"
	ReasonAlreadyRecorded = "already recorded"
)

// History is the immutable report of one calendar month
type History struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	Month string `gorm:"uniqueIndex;size:7;not null" json:"month"`
	// MaxDrawdown is the worst single losing trade of the month, not a peak-to-trough figure
	MaxDrawdown  decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"max_drawdown"`
	RiskPerTrade decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"risk_per_trade"`
	// LastEquity is the ledger balance when the snapshot ran
	LastEquity decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"last_equity"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Metrics returns the stored figures rounded the way every response rounds them
func (h History) Metrics() types.SnapshotMetrics {
	return types.SnapshotMetrics{
		MaxDrawdown:  types.Round2(h.MaxDrawdown),
		RiskPerTrade: types.Round2(h.RiskPerTrade),
		LastEquity:   types.Round2(h.LastEquity),
	}
}

// Response is the JSON form of the record
func (h History) Response() types.HistoryResponse {
	return types.HistoryResponse{
		Month:           h.Month,
		SnapshotMetrics: h.Metrics(),
		CreatedAt:       h.CreatedAt,
	}
}
