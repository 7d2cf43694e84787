package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ksred/fxjournal/internal/types"
)

// simConfig controls the traffic generator, read from SIM_* environment variables
type simConfig struct {
	ServerAddress string  `envconfig:"SERVER_ADDRESS" default:"http://localhost:8080"`
	Username      string  `envconfig:"USERNAME" default:"simulation"`
	Password      string  `envconfig:"PASSWORD" default:"simulation-password"`
	MinTrades     int     `envconfig:"MIN_TRADES" default:"15"`
	MaxTrades     int     `envconfig:"MAX_TRADES" default:"60"`
	Workers       int     `envconfig:"WORKERS" default:"3"`
	StartEquity   float64 `envconfig:"START_EQUITY" default:"10000"`
}

var (
	pairs      = []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD", "AUDUSD"}
	directions = []string{types.TypeBuy, types.TypeSell}
	results    = []string{types.ResultProfit, types.ResultProfit, types.ResultLoss, types.ResultLoss, types.ResultBreakEven}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// randomTrade builds a trade whose PL sign agrees with its result
func randomTrade(r *rand.Rand) types.TradeInput {
	result := results[r.Intn(len(results))]
	lot := decimal.New(int64(r.Intn(100)+1), -2)
	sl := decimal.New(int64(r.Intn(40)+10), 0)

	pl := decimal.Zero
	switch result {
	case types.ResultProfit:
		pl = decimal.New(int64(r.Intn(20000)+100), -2)
	case types.ResultLoss:
		pl = decimal.New(-int64(r.Intn(15000)+100), -2)
	}

	return types.TradeInput{
		Pair:    pairs[r.Intn(len(pairs))],
		Type:    directions[r.Intn(len(directions))],
		Result:  result,
		Note:    "simulated",
		SL:      types.NumericString(sl.String()),
		TP:      types.NumericString(sl.Mul(decimal.NewFromInt(2)).String()),
		LotSize: types.NumericString(lot.String()),
		PL:      types.NumericString(pl.String()),
	}
}

// revise returns the trade's fields with a note suffix and a PL scaled by 10%
func revise(trade *types.Trade) types.TradeInput {
	return types.TradeInput{
		Pair:    trade.Pair,
		Type:    trade.Type,
		Result:  trade.Result,
		Note:    trade.Note + " (revised)",
		SL:      trade.SL,
		TP:      trade.TP,
		LotSize: trade.LotSize,
		PL:      types.NumericString(trade.PL.Decimal().Mul(decimal.RequireFromString("1.1")).Round(2).String()),
	}
}

// createTrades generates and submits random trades to the API
// Runs as a worker goroutine, sending created trades to tradesChan
func createTrades(workerID, numTrades int, simClient *simulationClient, tradesChan chan<- *types.Trade) {
	r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for i := 0; i < numTrades; i++ {
		input := randomTrade(r)

		trade, err := simClient.createTrade(input)
		if err != nil {
			log.Error().Err(err).
				Int("worker_id", workerID).
				Str("pair", input.Pair).
				Msg("Failed to create trade")
			continue
		}

		tradesChan <- trade
		log.Info().
			Int("worker_id", workerID).
			Str("trade_id", trade.TradeID).
			Str("pair", trade.Pair).
			Str("result", trade.Result).
			Str("pl", trade.PL.String()).
			Msg("Trade created")

		time.Sleep(time.Duration(r.Intn(500)) * time.Millisecond)
	}
}

// main drives a running journal API with simulated trading activity
func main() {
	var cfg simConfig
	if err := envconfig.Process("SIM", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to read simulation config")
	}
	if cfg.Workers < 1 || cfg.MaxTrades <= cfg.MinTrades {
		log.Fatal().Msg("SIM_WORKERS must be positive and SIM_MAX_TRADES above SIM_MIN_TRADES")
	}

	simClient := newSimulationClient(cfg.ServerAddress)
	if err := simClient.authenticate(cfg.Username, cfg.Password); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}
	if err := simClient.seedEquity(cfg.StartEquity); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed equity")
	}

	startTime := time.Now()
	targetTrades := rand.Intn(cfg.MaxTrades-cfg.MinTrades) + cfg.MinTrades
	log.Info().Int("target_trades", targetTrades).Float64("start_equity", cfg.StartEquity).Msg("Starting simulation")

	tradesChan := make(chan *types.Trade, targetTrades)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			createTrades(workerID, targetTrades/cfg.Workers, simClient, tradesChan)
		}(i)
	}

	wg.Wait()
	close(tradesChan)

	var created []*types.Trade
	for trade := range tradesChan {
		created = append(created, trade)
	}
	log.Info().Int("trades_created", len(created)).Msg("All trades created")

	// Revise every fifth trade and remove every seventh
	var updated, deleted, failed int
	for i, trade := range created {
		switch {
		case i%7 == 6:
			if err := simClient.deleteTrade(trade.TradeID); err != nil {
				log.Error().Err(err).Str("trade_id", trade.TradeID).Msg("Failed to delete trade")
				failed++
				continue
			}
			deleted++
		case i%5 == 4:
			if _, err := simClient.updateTrade(trade.TradeID, revise(trade)); err != nil {
				log.Error().Err(err).Str("trade_id", trade.TradeID).Msg("Failed to update trade")
				failed++
				continue
			}
			updated++
		}
	}

	trades, err := simClient.listTrades()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list trades")
	}

	var (
		winRate    types.WinRateResponse
		totalPL    types.TotalPLResponse
		equity     types.EquityResponse
		curve      types.EquityCurveResponse
		topPairs   []types.PairSummary
		percentage types.PercentageResponse
	)
	for path, out := range map[string]interface{}{
		"/winrate":      &winRate,
		"/totalpl":      &totalPL,
		"/equity":       &equity,
		"/equity-curve": &curve,
		"/pairs/top":    &topPairs,
		"/percentage":   &percentage,
	} {
		if err := simClient.getStats(path, out); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to read stats")
		}
	}

	// Print summary
	duration := time.Since(startTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("JOURNAL SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Trade Statistics
------------------
Created:          %d
Updated:          %d
Deleted:          %d
Failed:           %d
In Journal:       %d
Win Rate:         %.2f%%
Total PL (month): %.2f (%s)
Profit/Loss/BE:   %.2f%% / %.2f%% / %.2f%%
Equity:           %.2f
Max Drawdown:     %.2f%%
Risk Per Trade:   %.2f
Duration:         %v

Pair Distribution
--------------------
`, len(created), updated, deleted, failed, len(trades),
		winRate.WinRate, totalPL.TotalPL, totalPL.Status,
		percentage.ProfitPercent, percentage.LossPercent, percentage.BreakEvenPercent,
		equity.Equity, curve.MaxDrawdownPercent, curve.AvgRiskPerTrade,
		duration.Round(time.Millisecond))

	pairCounts := make(map[string]int)
	maxPairCount := 0
	for _, trade := range trades {
		pairCounts[trade.Pair]++
		if pairCounts[trade.Pair] > maxPairCount {
			maxPairCount = pairCounts[trade.Pair]
		}
	}
	names := make([]string, 0, len(pairCounts))
	for pair := range pairCounts {
		names = append(names, pair)
	}
	sort.Strings(names)

	for _, pair := range names {
		count := pairCounts[pair]
		barLength := int(float64(count) / float64(maxPairCount) * 20)
		fmt.Printf("%-8s: %s (%d)\n", pair, strings.Repeat("#", barLength), count)
	}

	fmt.Println("\nTop Pairs")
	fmt.Println("------------------")
	for _, pair := range topPairs {
		fmt.Printf("%-8s: %d trades, %.2f%% win rate, %.2f PL\n", pair.Pair, pair.TotalTrades, pair.WinRate, pair.ProfitLoss)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("created", len(created)).
		Int("updated", updated).
		Int("deleted", deleted).
		Float64("equity", equity.Equity).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}
