package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/journal"
	"github.com/ksred/fxjournal/internal/stats"
	"github.com/ksred/fxjournal/internal/types"
	"github.com/ksred/fxjournal/pkg/response"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

// Service writes one History record per calendar month
type Service struct {
	db      *Database
	journal *journal.Service
	ledger  *equity.Ledger
}

func NewService(gormDB *gorm.DB, journalService *journal.Service, ledger *equity.Ledger) *Service {
	return &Service{
		db:      NewDatabase(gormDB),
		journal: journalService,
		ledger:  ledger,
	}
}

// PreviousMonth returns the "YYYY-MM" key of the month before t
func PreviousMonth(t time.Time) string {
	return time.Date(t.Year(), t.Month()-1, 1, 0, 0, 0, 0, t.Location()).Format(monthLayout)
}

// RunMonthlySnapshot records the previous month when today is the 1st in the journal zone.
// Any other day, an empty month, or a month already on file is reported without writing.
func (s *Service) RunMonthlySnapshot(ctx context.Context, today time.Time) (*types.SnapshotResponse, error) {
	today = today.In(s.journal.Now().Location())
	result := &types.SnapshotResponse{RunAt: today}

	logger := log.With().Str("service", "history").Str("date", today.Format(dateLayout)).Logger()

	if today.Day() != 1 {
		result.Reason = ReasonNotDue
		logger.Debug().Msg("monthly snapshot not due")
		return result, nil
	}

	month := PreviousMonth(today)
	result.Month = month
	logger = logger.With().Str("month", month).Logger()

	recorded, err := s.db.HasMonth(ctx, month)
	if err != nil {
		logger.Error().Err(err).Msg("failed to check existing snapshot")
		return nil, err
	}
	if recorded {
		result.Reason = ReasonAlreadyRecorded
		logger.Info().Msg("monthly snapshot already recorded")
		return result, nil
	}

	trades, err := s.journal.ListTrades(ctx, journal.TradeFilter{CreatedPrefix: month, Order: journal.OldestFirst})
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch trades for snapshot")
		return nil, err
	}
	if len(trades) == 0 {
		result.Reason = ReasonNoTrades
		logger.Info().Msg("no trades in previous month")
		return result, nil
	}

	monthly := stats.MonthlyMetrics(trades)
	lastEquity, err := s.ledger.Current(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read equity for snapshot")
		return nil, err
	}

	record := &History{
		Month:        month,
		MaxDrawdown:  monthly.WorstTrade,
		RiskPerTrade: monthly.RiskPerTrade,
		LastEquity:   lastEquity,
	}
	if err := s.db.CreateHistory(ctx, record); err != nil {
		// a concurrent run won the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			result.Reason = ReasonAlreadyRecorded
			logger.Info().Msg("monthly snapshot already recorded")
			return result, nil
		}
		logger.Error().Err(err).Msg("failed to store snapshot")
		return nil, err
	}

	result.Ran = true
	metrics := record.Metrics()
	result.Metrics = &metrics

	logger.Info().
		Int("trades", len(trades)).
		Int("losing_trades", monthly.LosingTrades).
		Str("max_drawdown", record.MaxDrawdown.String()).
		Str("risk_per_trade", record.RiskPerTrade.String()).
		Str("last_equity", record.LastEquity.String()).
		Msg("monthly snapshot recorded")

	return result, nil
}

// ListHistory returns every snapshot, newest month first
func (s *Service) ListHistory(ctx context.Context) ([]History, error) {
	return s.db.ListHistory(ctx)
}

// ParseDate reads a "YYYY-MM-DD" date in the journal zone
func (s *Service) ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, value, s.journal.Now().Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be formatted as YYYY-MM-DD: %w", err)
	}
	return date, nil
}

// GinHandlers contains HTTP handlers for the history endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for the history endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListHistoryHandler handles GET requests for the stored monthly snapshots
func (h *GinHandlers) ListHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := h.service.ListHistory(c.Request.Context())
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		out := make([]types.HistoryResponse, 0, len(records))
		for _, record := range records {
			out = append(out, record.Response())
		}
		response.Success(c, out)
	}
}

// CronHandler runs the monthly snapshot, normally called by an external scheduler.
// Optional query parameter: date (YYYY-MM-DD), defaults to today
func (h *GinHandlers) CronHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		today := h.service.journal.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := h.service.ParseDate(raw)
			if err != nil {
				response.BadRequest(c, "date must be formatted as YYYY-MM-DD")
				return
			}
			today = parsed
		}

		result, err := h.service.RunMonthlySnapshot(c.Request.Context(), today)
		response.Handle(c, result, err)
	}
}
