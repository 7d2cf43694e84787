package equity

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fxjournal/internal/types"
	"github.com/ksred/fxjournal/pkg/response"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger owns the running equity balance. Callers only ever apply deltas.
type Ledger struct {
	db *Database
}

// NewLedger creates a ledger backed by the given connection
func NewLedger(gormDB *gorm.DB) *Ledger {
	return &Ledger{
		db: NewDatabase(gormDB),
	}
}

// ApplyDelta atomically adds amount (positive or negative) to the balance
func (l *Ledger) ApplyDelta(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}

	if err := l.db.Increment(ctx, amount); err != nil {
		log.Error().Err(err).Str("service", "equity").Str("delta", amount.String()).Msg("failed to apply equity delta")
		return err
	}

	log.Debug().Str("service", "equity").Str("delta", amount.String()).Msg("applied equity delta")
	return nil
}

// Current returns the latest balance, zero when the ledger was never seeded
func (l *Ledger) Current(ctx context.Context) (decimal.Decimal, error) {
	row, err := l.db.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		return decimal.Zero, nil
	}
	return row.Balance(), nil
}

// Seed sets the balance to an absolute value
func (l *Ledger) Seed(ctx context.Context, amount decimal.Decimal) error {
	if err := l.db.Set(ctx, amount); err != nil {
		return err
	}

	log.Info().Str("service", "equity").Str("equity", amount.String()).Msg("equity seeded")
	return nil
}

// GinHandlers contains HTTP handlers for the equity endpoints
type GinHandlers struct {
	ledger *Ledger
}

// NewGinHandlers creates a new set of HTTP handlers for the equity endpoints
func NewGinHandlers(ledger *Ledger) *GinHandlers {
	return &GinHandlers{
		ledger: ledger,
	}
}

// GetEquityHandler handles GET requests for the current balance
func (h *GinHandlers) GetEquityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := h.ledger.Current(c.Request.Context())
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, types.EquityResponse{Equity: types.Round2(current)})
	}
}

// SeedEquityHandler handles PUT requests that set the starting balance
func (h *GinHandlers) SeedEquityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		if err := h.ledger.Seed(c.Request.Context(), *req.Equity); err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, types.EquityResponse{Equity: types.Round2(*req.Equity)})
	}
}
