package stats

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fxjournal/internal/journal"
	"github.com/ksred/fxjournal/internal/types"
	"github.com/ksred/fxjournal/pkg/response"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 100
	monthLayout        = "2006-01"
)

// Service reads trades from the journal and runs them through the aggregation engine
type Service struct {
	journal *journal.Service
	logger  zerolog.Logger
}

// NewService creates a new stats service over the given journal
func NewService(journalService *journal.Service) *Service {
	return &Service{
		journal: journalService,
		logger:  log.With().Str("service", "stats").Logger(),
	}
}

// CurrentMonth returns the "YYYY-MM" key of today in the journal zone
func (s *Service) CurrentMonth() string {
	return s.journal.Now().Format(monthLayout)
}

func (s *Service) allTrades(ctx context.Context) ([]types.Trade, error) {
	return s.journal.ListTrades(ctx, journal.TradeFilter{Order: journal.OldestFirst})
}

// monthTrades returns the trades of month, or of the current month when month is empty
func (s *Service) monthTrades(ctx context.Context, month string) ([]types.Trade, error) {
	if month == "" {
		month = s.CurrentMonth()
	}
	return s.journal.ListTrades(ctx, journal.TradeFilter{CreatedPrefix: month, Order: journal.OldestFirst})
}

func (s *Service) WinRate(ctx context.Context) (types.WinRateResponse, error) {
	trades, err := s.allTrades(ctx)
	if err != nil {
		return types.WinRateResponse{}, err
	}
	return WinRate(trades), nil
}

func (s *Service) TotalPL(ctx context.Context, month string) (types.TotalPLResponse, error) {
	trades, err := s.monthTrades(ctx, month)
	if err != nil {
		return types.TotalPLResponse{}, err
	}
	return TotalPL(trades), nil
}

func (s *Service) Percentage(ctx context.Context, month string) (types.PercentageResponse, error) {
	trades, err := s.monthTrades(ctx, month)
	if err != nil {
		return types.PercentageResponse{}, err
	}
	return PercentageBreakdown(trades), nil
}

func (s *Service) Chart(ctx context.Context, month string) ([]types.ChartPoint, error) {
	trades, err := s.monthTrades(ctx, month)
	if err != nil {
		return nil, err
	}
	return ChartSeries(trades), nil
}

func (s *Service) TopPairs(ctx context.Context) ([]types.PairSummary, error) {
	trades, err := s.journal.ListTrades(ctx, journal.TradeFilter{RequirePair: true, Order: journal.OldestFirst})
	if err != nil {
		return nil, err
	}
	return TopPairs(trades, DefaultTopPairs), nil
}

// Pairs returns the per-pair win/loss and performance reports
func (s *Service) Pairs(ctx context.Context) (types.PairsResponse, error) {
	trades, err := s.journal.ListTrades(ctx, journal.TradeFilter{RequirePair: true, Order: journal.OldestFirst})
	if err != nil {
		return types.PairsResponse{}, err
	}
	return types.PairsResponse{
		WinLoss:     PairWinLoss(trades),
		Performance: PairPerformance(trades),
	}, nil
}

func (s *Service) EquityCurve(ctx context.Context) (types.EquityCurveResponse, error) {
	trades, err := s.allTrades(ctx)
	if err != nil {
		return types.EquityCurveResponse{}, err
	}

	report := EquityCurve(trades)
	s.logger.Debug().
		Int("points", len(report.EquityCurve)).
		Float64("max_drawdown_percent", report.MaxDrawdownPercent).
		Msg("computed equity curve")
	return report, nil
}

func (s *Service) RecentTrades(ctx context.Context, limit int) ([]types.RecentTrade, error) {
	trades, err := s.journal.ListTrades(ctx, journal.TradeFilter{Order: journal.NewestFirst, Limit: limit})
	if err != nil {
		return nil, err
	}
	return RecentTrades(trades, limit), nil
}

func (s *Service) TotalTrades(ctx context.Context) (types.TotalTradesResponse, error) {
	count, err := s.journal.CountTrades(ctx)
	if err != nil {
		return types.TotalTradesResponse{}, err
	}
	return types.TotalTradesResponse{TotalTrades: count}, nil
}

// GinHandlers contains HTTP handlers for the stats endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for the stats endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// monthParam reads the optional month query parameter. It writes a 400 and returns false when malformed.
func monthParam(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if month != "" && !journal.ValidMonth(month) {
		response.BadRequest(c, "month must be formatted as YYYY-MM")
		return "", false
	}
	return month, true
}

// WinRateHandler handles GET requests for the all-time win rate
func (h *GinHandlers) WinRateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.WinRate(c.Request.Context())
		response.Handle(c, result, err)
	}
}

// TotalPLHandler handles GET requests for the net P/L of a month
// Optional query parameter: month (YYYY-MM), defaults to the current month
func (h *GinHandlers) TotalPLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, ok := monthParam(c)
		if !ok {
			return
		}
		result, err := h.service.TotalPL(c.Request.Context(), month)
		response.Handle(c, result, err)
	}
}

// PercentageHandler handles GET requests for the outcome breakdown of a month
// Optional query parameter: month (YYYY-MM), defaults to the current month
func (h *GinHandlers) PercentageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, ok := monthParam(c)
		if !ok {
			return
		}
		result, err := h.service.Percentage(c.Request.Context(), month)
		response.Handle(c, result, err)
	}
}

// ChartHandler handles GET requests for the daily chart series of a month
// Optional query parameter: month (YYYY-MM), defaults to the current month
func (h *GinHandlers) ChartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, ok := monthParam(c)
		if !ok {
			return
		}
		result, err := h.service.Chart(c.Request.Context(), month)
		response.Handle(c, result, err)
	}
}

func (h *GinHandlers) TopPairsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.TopPairs(c.Request.Context())
		response.Handle(c, result, err)
	}
}

func (h *GinHandlers) PairsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.Pairs(c.Request.Context())
		response.Handle(c, result, err)
	}
}

func (h *GinHandlers) EquityCurveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.EquityCurve(c.Request.Context())
		response.Handle(c, result, err)
	}
}

// RecentTradesHandler handles GET requests for the latest trades
// Optional query parameter: limit (1-100, default 5)
func (h *GinHandlers) RecentTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultRecentLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxRecentLimit {
				response.BadRequest(c, "limit must be between 1 and 100")
				return
			}
			limit = parsed
		}

		result, err := h.service.RecentTrades(c.Request.Context(), limit)
		response.Handle(c, result, err)
	}
}

func (h *GinHandlers) TotalTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.TotalTrades(c.Request.Context())
		response.Handle(c, result, err)
	}
}
