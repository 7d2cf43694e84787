package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ksred/fxjournal/internal/auth"
	"github.com/ksred/fxjournal/internal/config"
	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/history"
	"github.com/ksred/fxjournal/internal/journal"
	"github.com/ksred/fxjournal/internal/stats"
	"github.com/ksred/fxjournal/pkg/middleware"
)

// app holds the wired services of the server
type app struct {
	cfg     *config.Config
	auth    *auth.Service
	journal *journal.Service
	ledger  *equity.Ledger
	stats   *stats.Service
	history *history.Service
}

func newApp(cfg *config.Config, db *gorm.DB) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	policy := journal.KeepEquity
	if cfg.ReverseEquityOnDelete {
		policy = journal.ReverseEquity
	}

	journalService := journal.NewService(db, journal.Options{
		RequireType:  cfg.RequireTradeType,
		DeletePolicy: policy,
		Location:     loc,
	})
	ledger := equity.NewLedger(db)

	return &app{
		cfg:     cfg,
		auth:    auth.NewService(db, cfg.JWTSecret, cfg.TokenTTL),
		journal: journalService,
		ledger:  ledger,
		stats:   stats.NewService(journalService),
		history: history.NewService(db, journalService, ledger),
	}, nil
}

// router configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: public endpoints for registration and login, rate limited per client IP
// - Journal, stats, equity and history routes: protected by JWT authentication, rate limited per admin
// - Internal routes: protected by the cron secret
func (a *app) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	authHandlers := auth.NewGinHandlers(a.auth)
	journalHandlers := journal.NewGinHandlers(a.journal)
	equityHandlers := equity.NewGinHandlers(a.ledger)
	statsHandlers := stats.NewGinHandlers(a.stats)
	historyHandlers := history.NewGinHandlers(a.history)

	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := v1.Group("/auth")
		authRoutes.Use(middleware.RateLimit())
		{
			authRoutes.POST("/register", authHandlers.RegisterHandler())
			authRoutes.POST("/login", authHandlers.LoginHandler())
		}

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.auth), middleware.RateLimit())

		// Trade routes
		trades := protected.Group("/trades")
		{
			trades.GET("", journalHandlers.ListTradesHandler())
			trades.POST("", journalHandlers.CreateTradeHandler())
			trades.GET("/:id", journalHandlers.GetTradeHandler())
			trades.PUT("/:id", journalHandlers.UpdateTradeHandler())
			trades.DELETE("/:id", journalHandlers.DeleteTradeHandler())
		}

		// Reporting routes
		statsRoutes := protected.Group("/stats")
		{
			statsRoutes.GET("/winrate", statsHandlers.WinRateHandler())
			statsRoutes.GET("/totalpl", statsHandlers.TotalPLHandler())
			statsRoutes.GET("/percentage", statsHandlers.PercentageHandler())
			statsRoutes.GET("/chart", statsHandlers.ChartHandler())
			statsRoutes.GET("/pairs/top", statsHandlers.TopPairsHandler())
			statsRoutes.GET("/pairs", statsHandlers.PairsHandler())
			statsRoutes.GET("/equity-curve", statsHandlers.EquityCurveHandler())
			statsRoutes.GET("/recent", statsHandlers.RecentTradesHandler())
			statsRoutes.GET("/total-trades", statsHandlers.TotalTradesHandler())
			statsRoutes.GET("/equity", equityHandlers.GetEquityHandler())
		}

		protected.PUT("/equity", equityHandlers.SeedEquityHandler())
		protected.GET("/history", historyHandlers.ListHistoryHandler())

		// Internal routes, called by the external scheduler
		internal := v1.Group("/internal")
		internal.Use(middleware.CronAuth(a.cfg.CronSecret))
		{
			internal.GET("/history/cron", historyHandlers.CronHandler())
			internal.POST("/history/cron", historyHandlers.CronHandler())
		}
	}

	return router
}
