package stats

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ksred/fxjournal/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tr(createdAt, pair, result, pl string) types.Trade {
	return types.Trade{
		TradeID:   pair + "@" + createdAt,
		Pair:      pair,
		Result:    result,
		PL:        types.NumericString(pl),
		CreatedAt: createdAt,
	}
}

func sampleTrades() []types.Trade {
	return []types.Trade{
		tr("2025-09-03 10:00:00", "EUR/USD", types.ResultProfit, "120.5"),
		tr("2025-09-01 09:00:00", "GBP/USD", types.ResultLoss, "-40"),
		tr("2025-09-03 12:30:00", "EUR/USD", types.ResultLoss, "-20.25"),
		tr("2025-09-02 16:45:00", "USD/JPY", types.ResultBreakEven, "0"),
		tr("2025-09-02 18:00:00", "EUR/USD", types.ResultProfit, "abc"),
	}
}

func TestParseNumber(t *testing.T) {
	assert.True(t, decimal.RequireFromString("12.5").Equal(ParseNumber(" 12.5 ")))
	assert.True(t, decimal.RequireFromString("-3").Equal(ParseNumber("-3")))
	assert.True(t, ParseNumber("").IsZero())
	assert.True(t, ParseNumber("abc").IsZero())
	assert.True(t, ParseNumber("12abc").IsZero())
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, types.WinRateResponse{}, WinRate(nil))

	got := WinRate(sampleTrades())
	assert.Equal(t, types.WinRateResponse{WinRate: 40, Total: 5, Wins: 2, Losses: 2}, got)
}

func TestWinRateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	results := []string{types.ResultProfit, types.ResultLoss, types.ResultBreakEven, ""}

	for i := 0; i < 200; i++ {
		trades := make([]types.Trade, rng.Intn(30))
		for j := range trades {
			trades[j] = tr("2025-09-01 00:00:00", "EUR/USD", results[rng.Intn(len(results))], "1")
		}

		got := WinRate(trades)
		assert.GreaterOrEqual(t, got.WinRate, 0.0)
		assert.LessOrEqual(t, got.WinRate, 100.0)
	}
}

func TestTotalPL(t *testing.T) {
	assert.Equal(t, types.TotalPLResponse{TotalPL: 0, Status: "no data"}, TotalPL(nil))
	assert.Equal(t, types.TotalPLResponse{TotalPL: 60.25, Status: types.ResultProfit}, TotalPL(sampleTrades()))

	losing := []types.Trade{tr("2025-09-01 00:00:00", "EUR/USD", types.ResultLoss, "-0.01")}
	assert.Equal(t, types.ResultLoss, TotalPL(losing).Status)

	flat := []types.Trade{tr("2025-09-01 00:00:00", "EUR/USD", types.ResultBreakEven, "0")}
	assert.Equal(t, types.ResultProfit, TotalPL(flat).Status)
}

func TestPercentageBreakdown(t *testing.T) {
	assert.Equal(t, types.PercentageResponse{}, PercentageBreakdown(nil))

	got := PercentageBreakdown(sampleTrades())
	assert.Equal(t, types.PercentageResponse{ProfitPercent: 40, LossPercent: 40, BreakEvenPercent: 20}, got)

	thirds := []types.Trade{
		tr("2025-09-01 00:00:00", "A", types.ResultProfit, "1"),
		tr("2025-09-01 00:00:00", "A", types.ResultLoss, "-1"),
		tr("2025-09-01 00:00:00", "A", types.ResultBreakEven, "0"),
	}
	got = PercentageBreakdown(thirds)
	assert.Equal(t, 33.33, got.ProfitPercent)
	assert.InDelta(t, 100, got.ProfitPercent+got.LossPercent+got.BreakEvenPercent, 0.03)
}

func TestPercentageBreakdownSumsToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	results := []string{types.ResultProfit, types.ResultLoss, types.ResultBreakEven}

	for i := 0; i < 200; i++ {
		trades := make([]types.Trade, 1+rng.Intn(50))
		for j := range trades {
			trades[j] = tr("2025-09-01 00:00:00", "EUR/USD", results[rng.Intn(len(results))], "1")
		}

		got := PercentageBreakdown(trades)
		assert.InDelta(t, 100, got.ProfitPercent+got.LossPercent+got.BreakEvenPercent, 0.03)
	}
}

func TestChartSeries(t *testing.T) {
	got := ChartSeries(sampleTrades())

	require.Len(t, got, 3)
	assert.Equal(t, []types.ChartPoint{
		{Date: "2025-09-03", Profit: 120.5, Loss: 20.25},
		{Date: "2025-09-01", Loss: 40},
		{Date: "2025-09-02"},
	}, got, "days keep first-seen order, losses are absolute")

	assert.Empty(t, ChartSeries(nil))
}

func TestTopPairsOrdering(t *testing.T) {
	var trades []types.Trade
	add := func(pair string, n int) {
		for i := 0; i < n; i++ {
			trades = append(trades, tr("2025-09-01 00:00:00", pair, types.ResultProfit, "1"))
		}
	}
	add("A", 5)
	add("B", 3)
	add("C", 3)
	add("D", 1)

	got := TopPairs(trades, DefaultTopPairs)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Pair)
	assert.Equal(t, "B", got[1].Pair)
	assert.Equal(t, "C", got[2].Pair)
	assert.Equal(t, 5, got[0].TotalTrades)
}

func TestTopPairsTiesKeepFirstSeenOrder(t *testing.T) {
	trades := []types.Trade{
		tr("2025-09-01 00:00:00", "C", types.ResultLoss, "-1"),
		tr("2025-09-01 00:00:00", "B", types.ResultProfit, "2"),
		tr("2025-09-01 00:00:00", "", types.ResultProfit, "2"),
		tr("2025-09-01 00:00:00", "B", types.ResultLoss, "-1.005"),
		tr("2025-09-01 00:00:00", "C", types.ResultProfit, "3"),
	}

	got := TopPairs(trades, DefaultTopPairs)
	require.Len(t, got, 2, "trades without a pair are skipped")
	assert.Equal(t, types.PairSummary{Pair: "C", TotalTrades: 2, WinRate: 50, ProfitLoss: 2}, got[0])
	assert.Equal(t, types.PairSummary{Pair: "B", TotalTrades: 2, WinRate: 50, ProfitLoss: 1}, got[1])
}

func TestPairReports(t *testing.T) {
	trades := sampleTrades()

	winLoss := PairWinLoss(trades)
	require.Len(t, winLoss, 3)
	assert.Equal(t, types.PairWinLoss{Pair: "EUR/USD", Win: 2, Loss: 1, Total: 3, WinRate: 66.67}, winLoss[0])
	assert.Equal(t, "GBP/USD", winLoss[1].Pair)
	assert.Equal(t, "USD/JPY", winLoss[2].Pair)

	performance := PairPerformance(trades)
	require.Len(t, performance, 3)
	assert.Equal(t, types.PairPerformance{Pair: "EUR/USD", TotalProfit: 120.5, TotalLoss: 20.25, NetPL: 100.25, TradeCount: 3}, performance[0])
	assert.Equal(t, "USD/JPY", performance[1].Pair)
	assert.Equal(t, types.PairPerformance{Pair: "GBP/USD", TotalLoss: 40, NetPL: -40, TradeCount: 1}, performance[2])
}

func TestEquityCurveDrawdown(t *testing.T) {
	trades := []types.Trade{
		tr("2025-09-04 10:00:00", "EUR/USD", types.ResultLoss, "-30"),
		tr("2025-09-01 10:00:00", "EUR/USD", types.ResultProfit, "100"),
		tr("2025-09-03 10:00:00", "EUR/USD", types.ResultProfit, "40"),
		tr("2025-09-02 10:00:00", "EUR/USD", types.ResultLoss, "-20"),
	}

	got := EquityCurve(trades)
	require.Len(t, got.EquityCurve, 4)

	var balances, drawdowns []float64
	for _, p := range got.EquityCurve {
		balances = append(balances, p.Balance)
		drawdowns = append(drawdowns, p.Drawdown)
		assert.Equal(t, p.Balance, p.Equity)
	}
	assert.Equal(t, []float64{100, 80, 120, 90}, balances)
	assert.Equal(t, []float64{0, 20, 0, 25}, drawdowns)
	assert.Equal(t, 25.0, got.MaxDrawdownPercent)
	assert.Equal(t, "2025-09-01", got.EquityCurve[0].Date)

	assert.Equal(t, "2025-09-04 10:00:00", trades[0].CreatedAt, "input must not be reordered")
}

func TestEquityCurveNonPositivePeak(t *testing.T) {
	trades := []types.Trade{
		tr("2025-09-01 10:00:00", "EUR/USD", types.ResultLoss, "-50"),
		tr("2025-09-02 10:00:00", "EUR/USD", types.ResultLoss, "-25"),
	}

	got := EquityCurve(trades)
	for _, p := range got.EquityCurve {
		assert.Zero(t, p.Drawdown)
	}
	assert.Zero(t, got.MaxDrawdownPercent)

	empty := EquityCurve(nil)
	assert.Empty(t, empty.EquityCurve)
	assert.NotNil(t, empty.EquityCurve)
}

func TestRiskPerTrade(t *testing.T) {
	trades := []types.Trade{
		{LotSize: "0.5", SL: "20"},
		{LotSize: "1", SL: "30"},
		{LotSize: "0", SL: "30"},
		{LotSize: "1", SL: "-5"},
		{LotSize: "abc", SL: "10"},
	}

	assert.True(t, decimal.NewFromInt(200).Equal(RiskPerTrade(trades)), "(100 + 300) / 2")
	assert.True(t, RiskPerTrade(nil).IsZero())
	assert.Equal(t, 200.0, EquityCurve(trades).AvgRiskPerTrade)
}

func TestRecentTrades(t *testing.T) {
	trades := append(sampleTrades(), types.Trade{TradeID: "blank", CreatedAt: "2025-08-30 08:00:00", PL: "5"})

	got := RecentTrades(trades, 5)
	require.Len(t, got, 5)

	assert.Equal(t, types.RecentTrade{ID: "EUR/USD@2025-09-03 12:30:00", Pair: "EUR/USD", Result: types.ResultLoss, PL: "-20.25", CreatedAt: "2025-09-03 12:30:00"}, got[0])
	assert.Equal(t, "+120.50", got[1].PL)
	assert.Equal(t, "+0.00", got[2].PL, "unparseable P/L formats as zero")
	assert.Equal(t, "0.00", got[3].PL)
	assert.Equal(t, "-40.00", got[4].PL)

	got = RecentTrades(trades, 10)
	require.Len(t, got, 6)
	assert.Equal(t, types.RecentTrade{ID: "blank", Pair: "-", Result: "-", PL: "5.00", CreatedAt: "2025-08-30 08:00:00"}, got[5])

	assert.Empty(t, RecentTrades(trades, 0))
}

func TestRecentTradesKeepsStoreOrderWithinSameSecond(t *testing.T) {
	// Newest first, as the store lists them: later insert first on equal createdAt
	trades := []types.Trade{
		{TradeID: "third", CreatedAt: "2025-09-03 10:00:00", Result: types.ResultProfit, PL: "3"},
		{TradeID: "second", CreatedAt: "2025-09-03 10:00:00", Result: types.ResultProfit, PL: "2"},
		{TradeID: "first", CreatedAt: "2025-09-03 10:00:00", Result: types.ResultProfit, PL: "1"},
		{TradeID: "older", CreatedAt: "2025-09-02 10:00:00", Result: types.ResultLoss, PL: "-1"},
	}

	got := RecentTrades(trades, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "first", got[2].ID)
}

func TestMonthlyMetrics(t *testing.T) {
	trades := []types.Trade{
		{PL: "-50"},
		{PL: "-10"},
		{PL: "30"},
		{PL: "abc"},
	}

	got := MonthlyMetrics(trades)
	assert.True(t, decimal.NewFromInt(-50).Equal(got.WorstTrade))
	assert.True(t, decimal.NewFromInt(30).Equal(got.RiskPerTrade))
	assert.Equal(t, 2, got.LosingTrades)

	none := MonthlyMetrics([]types.Trade{{PL: "10"}})
	assert.True(t, none.WorstTrade.IsZero())
	assert.True(t, none.RiskPerTrade.IsZero())
}

func TestUnparseablePLContributesZero(t *testing.T) {
	base := []types.Trade{
		tr("2025-09-01 10:00:00", "EUR/USD", types.ResultProfit, "10"),
		tr("2025-09-02 10:00:00", "EUR/USD", types.ResultLoss, "-4"),
	}
	withJunk := append(append([]types.Trade{}, base...), tr("2025-09-03 10:00:00", "EUR/USD", types.ResultLoss, "abc"))

	assert.Equal(t, TotalPL(base).TotalPL, TotalPL(withJunk).TotalPL)
	assert.Equal(t, EquityCurve(base).MaxDrawdownPercent, EquityCurve(withJunk).MaxDrawdownPercent)
	assert.Equal(t, PairPerformance(base)[0].NetPL, PairPerformance(withJunk)[0].NetPL)
	assert.Equal(t, MonthlyMetrics(base), MonthlyMetrics(withJunk))
}

func TestEngineIsPure(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pairs := []string{"EUR/USD", "GBP/USD", "USD/JPY", "XAU/USD"}
	results := []string{types.ResultProfit, types.ResultLoss, types.ResultBreakEven}

	trades := make([]types.Trade, 60)
	for i := range trades {
		trades[i] = types.Trade{
			TradeID:   fmt.Sprintf("t%d", i),
			Pair:      pairs[rng.Intn(len(pairs))],
			Result:    results[rng.Intn(len(results))],
			PL:        types.NumericString(fmt.Sprintf("%d.%02d", rng.Intn(400)-200, rng.Intn(100))),
			LotSize:   types.NumericString(fmt.Sprintf("0.%d", 1+rng.Intn(9))),
			SL:        types.NumericString(fmt.Sprint(rng.Intn(50))),
			CreatedAt: fmt.Sprintf("2025-09-%02d %02d:00:00", 1+rng.Intn(28), rng.Intn(24)),
		}
	}
	snapshot := append([]types.Trade{}, trades...)

	assert.Equal(t, WinRate(trades), WinRate(trades))
	assert.Equal(t, TotalPL(trades), TotalPL(trades))
	assert.Equal(t, PercentageBreakdown(trades), PercentageBreakdown(trades))
	assert.Equal(t, ChartSeries(trades), ChartSeries(trades))
	assert.Equal(t, TopPairs(trades, 3), TopPairs(trades, 3))
	assert.Equal(t, PairWinLoss(trades), PairWinLoss(trades))
	assert.Equal(t, PairPerformance(trades), PairPerformance(trades))
	assert.Equal(t, EquityCurve(trades), EquityCurve(trades))
	assert.Equal(t, RecentTrades(trades, 5), RecentTrades(trades, 5))
	assert.Equal(t, MonthlyMetrics(trades), MonthlyMetrics(trades))

	assert.Equal(t, snapshot, trades, "input must be left untouched")
}
