package journal

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ksred/fxjournal/internal/types"
	"github.com/ksred/fxjournal/pkg/response"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service handles journal entries and keeps the equity ledger in step with them
type Service struct {
	db   *Database
	opts Options
}

// NewService creates a new journal service with the given database connection
func NewService(gormDB *gorm.DB, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		db:   NewDatabase(gormDB),
		opts: opts,
	}
}

// CreateTrade validates and stores a new trade, then credits its P/L to the ledger.
// Both writes commit together.
func (s *Service) CreateTrade(ctx context.Context, input types.TradeInput) (*types.Trade, error) {
	return s.create(ctx, input, "")
}

func (s *Service) create(ctx context.Context, input types.TradeInput, createdAt string) (*types.Trade, error) {
	input, err := s.validate(input, s.opts.RequireType)
	if err != nil {
		return nil, err
	}

	trade := &types.Trade{
		TradeID:   uuid.New().String(),
		Pair:      input.Pair,
		Type:      input.Type,
		Result:    input.Result,
		Note:      input.Note,
		SL:        input.SL,
		TP:        input.TP,
		LotSize:   input.LotSize,
		PL:        input.PL,
		CreatedAt: createdAt,
	}
	if trade.CreatedAt == "" {
		trade.CreatedAt = s.timestamp()
	}

	if err := s.db.CreateTrade(ctx, trade, trade.PL.Decimal()); err != nil {
		log.Error().Err(err).Str("service", "journal").Str("pair", trade.Pair).Msg("failed to create trade")
		return nil, err
	}

	log.Info().
		Str("service", "journal").
		Str("trade_id", trade.TradeID).
		Str("pair", trade.Pair).
		Str("result", trade.Result).
		Str("pl", trade.PL.String()).
		Msg("trade created")

	return trade, nil
}

// ImportTrade stores a trade recorded elsewhere. A non-empty createdAt must use the journal
// timestamp layout and is kept as is; an empty one is stamped with the current time.
func (s *Service) ImportTrade(ctx context.Context, input types.TradeInput, createdAt string) (*types.Trade, error) {
	createdAt = strings.TrimSpace(createdAt)
	if createdAt != "" {
		if _, err := time.ParseInLocation(types.TimestampLayout, createdAt, s.opts.Location); err != nil {
			return nil, &response.ValidationError{Field: "createdAt", Message: "createdAt must be formatted as YYYY-MM-DD HH:MM:SS"}
		}
	}
	return s.create(ctx, input, createdAt)
}

// UpdateTrade replaces the editable fields of a trade and moves the ledger by the P/L difference.
// The direction is only changed when the input carries one.
func (s *Service) UpdateTrade(ctx context.Context, tradeID string, input types.TradeInput) (*types.Trade, error) {
	input, err := s.validate(input, false)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"pair":       input.Pair,
		"result":     input.Result,
		"note":       input.Note,
		"sl":         input.SL,
		"tp":         input.TP,
		"lot_size":   input.LotSize,
		"pl":         input.PL,
		"updated_at": s.timestamp(),
	}
	if input.Type != "" {
		fields["type"] = input.Type
	}

	trade, err := s.db.UpdateTrade(ctx, tradeID, fields, input.PL)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("service", "journal").Str("trade_id", tradeID).Msg("failed to update trade")
		}
		return nil, err
	}

	log.Info().Str("service", "journal").Str("trade_id", tradeID).Str("pl", trade.PL.String()).Msg("trade updated")
	return trade, nil
}

// DeleteTrade removes a trade. The ledger is only adjusted under the ReverseEquity policy.
func (s *Service) DeleteTrade(ctx context.Context, tradeID string) error {
	deleted, err := s.db.DeleteTrade(ctx, tradeID, s.opts.DeletePolicy == ReverseEquity)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("service", "journal").Str("trade_id", tradeID).Msg("failed to delete trade")
		}
		return err
	}

	log.Info().
		Str("service", "journal").
		Str("trade_id", tradeID).
		Str("pl", deleted.PL.String()).
		Str("delete_policy", s.opts.DeletePolicy.String()).
		Msg("trade deleted")
	return nil
}

// GetTrade retrieves a trade by its id
func (s *Service) GetTrade(ctx context.Context, tradeID string) (*types.Trade, error) {
	return s.db.GetTrade(ctx, tradeID)
}

// ListTrades returns every trade matching the filter
func (s *Service) ListTrades(ctx context.Context, filter TradeFilter) ([]types.Trade, error) {
	return s.db.ListTrades(ctx, filter)
}

// CountTrades returns the number of stored trades
func (s *Service) CountTrades(ctx context.Context) (int64, error) {
	return s.db.CountTrades(ctx)
}

// Now returns the current time in the journal zone
func (s *Service) Now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Service) timestamp() string {
	return s.Now().Format(types.TimestampLayout)
}

// validate trims the input and checks the required fields
func (s *Service) validate(input types.TradeInput, requireType bool) (types.TradeInput, error) {
	input.Pair = strings.TrimSpace(input.Pair)
	input.Note = strings.TrimSpace(input.Note)

	if input.Pair == "" {
		return input, &response.ValidationError{Field: "pair", Message: "pair and result are required"}
	}

	if strings.TrimSpace(input.Result) == "" {
		return input, &response.ValidationError{Field: "result", Message: "pair and result are required"}
	}
	result, ok := canonical(input.Result, types.ResultProfit, types.ResultLoss, types.ResultBreakEven)
	if !ok {
		return input, &response.ValidationError{Field: "result", Message: "result must be one of Profit, Loss, Break Even"}
	}
	input.Result = result

	if strings.TrimSpace(input.Type) == "" {
		if requireType {
			return input, &response.ValidationError{Field: "type", Message: "type is required"}
		}
		input.Type = ""
	} else {
		tradeType, ok := canonical(input.Type, types.TypeBuy, types.TypeSell)
		if !ok {
			return input, &response.ValidationError{Field: "type", Message: "type must be Buy or Sell"}
		}
		input.Type = tradeType
	}

	return input, nil
}

// canonical matches value case-insensitively against the allowed spellings
func canonical(value string, allowed ...string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}
	return value, false
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether s is a "YYYY-MM" key
func ValidMonth(s string) bool {
	return monthPattern.MatchString(s)
}

// GinHandlers contains HTTP handlers for the journal endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for the journal endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListTradesHandler handles GET requests listing trades, newest first.
// Optional query parameter: month (YYYY-MM)
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := TradeFilter{Order: NewestFirst}
		if month := c.Query("month"); month != "" {
			if !ValidMonth(month) {
				response.BadRequest(c, "month must be formatted as YYYY-MM")
				return
			}
			filter.CreatedPrefix = month
		}

		trades, err := h.service.ListTrades(c.Request.Context(), filter)
		response.Handle(c, trades, err)
	}
}

// CreateTradeHandler handles POST requests to log a new trade
func (h *GinHandlers) CreateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.TradeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		trade, err := h.service.CreateTrade(c.Request.Context(), input)
		response.Handle(c, trade, err)
	}
}

// GetTradeHandler handles GET requests for a single trade
// URL parameter: id
func (h *GinHandlers) GetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trade, err := h.service.GetTrade(c.Request.Context(), c.Param("id"))
		response.Handle(c, trade, err)
	}
}

// UpdateTradeHandler handles PUT requests editing a trade
// URL parameter: id
func (h *GinHandlers) UpdateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.TradeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		trade, err := h.service.UpdateTrade(c.Request.Context(), c.Param("id"), input)
		response.Handle(c, trade, err)
	}
}

// DeleteTradeHandler handles DELETE requests
// URL parameter: id
func (h *GinHandlers) DeleteTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service.DeleteTrade(c.Request.Context(), c.Param("id")); err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"message": "trade deleted"})
	}
}
