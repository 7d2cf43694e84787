package stats

import (
	"sort"

	"github.com/ksred/fxjournal/internal/types"
	"github.com/shopspring/decimal"
)

// Everything in this file is a pure function of its input. The slices passed in are never
// reordered or modified.

// DefaultTopPairs is the number of pairs reported as most traded
const DefaultTopPairs = 3

// riskMultiplier turns lot size times stop-loss distance into an approximate monetary risk
var (
	riskMultiplier = decimal.NewFromInt(10)
	hundred        = decimal.NewFromInt(100)
)

// ParseNumber reads a numeric-as-string field. Invalid or empty input is zero.
func ParseNumber(s string) decimal.Decimal {
	return types.NumericString(s).Decimal()
}

func percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
}

// WinRate reports the share of Profit trades over every trade
func WinRate(trades []types.Trade) types.WinRateResponse {
	var wins, losses int
	for _, t := range trades {
		switch t.Result {
		case types.ResultProfit:
			wins++
		case types.ResultLoss:
			losses++
		}
	}

	return types.WinRateResponse{
		WinRate: types.Round2(percent(wins, len(trades))),
		Total:   len(trades),
		Wins:    wins,
		Losses:  losses,
	}
}

// TotalPL sums the P/L of the given trades
func TotalPL(trades []types.Trade) types.TotalPLResponse {
	if len(trades) == 0 {
		return types.TotalPLResponse{TotalPL: 0, Status: "no data"}
	}

	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(t.PL.Decimal())
	}

	status := types.ResultProfit
	if sum.IsNegative() {
		status = types.ResultLoss
	}
	return types.TotalPLResponse{TotalPL: types.Round2(sum), Status: status}
}

// PercentageBreakdown reports the share of each outcome. An empty set yields zeros.
func PercentageBreakdown(trades []types.Trade) types.PercentageResponse {
	var profit, loss, breakEven int
	for _, t := range trades {
		switch t.Result {
		case types.ResultProfit:
			profit++
		case types.ResultLoss:
			loss++
		case types.ResultBreakEven:
			breakEven++
		}
	}

	total := len(trades)
	if total == 0 {
		total = 1
	}

	return types.PercentageResponse{
		ProfitPercent:    types.Round2(percent(profit, total)),
		LossPercent:      types.Round2(percent(loss, total)),
		BreakEvenPercent: types.Round2(percent(breakEven, total)),
	}
}

type chartBucket struct {
	date                    string
	profit, loss, breakEven decimal.Decimal
}

// ChartSeries groups P/L per calendar day, in the order the days first appear.
// Losses are reported as absolute values.
func ChartSeries(trades []types.Trade) []types.ChartPoint {
	var buckets []*chartBucket
	byDate := make(map[string]*chartBucket)

	for _, t := range trades {
		date := t.Date()
		b, ok := byDate[date]
		if !ok {
			b = &chartBucket{date: date}
			byDate[date] = b
			buckets = append(buckets, b)
		}

		pl := t.PL.Decimal()
		switch t.Result {
		case types.ResultProfit:
			b.profit = b.profit.Add(pl)
		case types.ResultLoss:
			b.loss = b.loss.Add(pl.Abs())
		case types.ResultBreakEven:
			b.breakEven = b.breakEven.Add(pl)
		}
	}

	points := make([]types.ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, types.ChartPoint{
			Date:      b.date,
			Profit:    types.Round2(b.profit),
			Loss:      types.Round2(b.loss),
			BreakEven: types.Round2(b.breakEven),
		})
	}
	return points
}

type pairTally struct {
	pair                string
	total, wins, losses int
	net, profit, loss   decimal.Decimal
}

// tallyPairs groups trades by pair in first-seen order. Trades without a pair are skipped.
func tallyPairs(trades []types.Trade) []*pairTally {
	var tallies []*pairTally
	byPair := make(map[string]*pairTally)

	for _, t := range trades {
		if t.Pair == "" {
			continue
		}
		p, ok := byPair[t.Pair]
		if !ok {
			p = &pairTally{pair: t.Pair}
			byPair[t.Pair] = p
			tallies = append(tallies, p)
		}

		p.total++
		switch t.Result {
		case types.ResultProfit:
			p.wins++
		case types.ResultLoss:
			p.losses++
		}

		pl := t.PL.Decimal()
		p.net = p.net.Add(pl)
		if pl.IsPositive() {
			p.profit = p.profit.Add(pl)
		} else if pl.IsNegative() {
			p.loss = p.loss.Add(pl.Abs())
		}
	}
	return tallies
}

// TopPairs returns the n most traded pairs. Ties keep the order pairs were first seen in.
func TopPairs(trades []types.Trade, n int) []types.PairSummary {
	tallies := tallyPairs(trades)
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].total > tallies[j].total
	})
	if n >= 0 && len(tallies) > n {
		tallies = tallies[:n]
	}

	pairs := make([]types.PairSummary, 0, len(tallies))
	for _, p := range tallies {
		pairs = append(pairs, types.PairSummary{
			Pair:        p.pair,
			TotalTrades: p.total,
			WinRate:     types.Round2(percent(p.wins, p.total)),
			ProfitLoss:  types.Round2(p.net),
		})
	}
	return pairs
}

// PairWinLoss tallies wins and losses per pair, most traded first
func PairWinLoss(trades []types.Trade) []types.PairWinLoss {
	tallies := tallyPairs(trades)
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].total > tallies[j].total
	})

	rows := make([]types.PairWinLoss, 0, len(tallies))
	for _, p := range tallies {
		rows = append(rows, types.PairWinLoss{
			Pair:    p.pair,
			Win:     p.wins,
			Loss:    p.losses,
			Total:   p.total,
			WinRate: types.Round2(percent(p.wins, p.total)),
		})
	}
	return rows
}

// PairPerformance reports gross profit, gross loss and net P/L per pair, best net first
func PairPerformance(trades []types.Trade) []types.PairPerformance {
	tallies := tallyPairs(trades)
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].profit.Sub(tallies[i].loss).GreaterThan(tallies[j].profit.Sub(tallies[j].loss))
	})

	rows := make([]types.PairPerformance, 0, len(tallies))
	for _, p := range tallies {
		rows = append(rows, types.PairPerformance{
			Pair:        p.pair,
			TotalProfit: types.Round2(p.profit),
			TotalLoss:   types.Round2(p.loss),
			NetPL:       types.Round2(p.profit.Sub(p.loss)),
			TradeCount:  p.total,
		})
	}
	return rows
}

// oldestFirst returns a copy of trades ordered by createdAt ascending
func oldestFirst(trades []types.Trade) []types.Trade {
	sorted := make([]types.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})
	return sorted
}

// newestFirst returns a copy of trades ordered by createdAt descending. Trades stamped
// in the same second keep their input order.
func newestFirst(trades []types.Trade) []types.Trade {
	sorted := make([]types.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	return sorted
}

// EquityCurve replays every trade oldest first. Each point carries the running balance and
// its drawdown from the running peak. A peak at or below zero has no drawdown.
func EquityCurve(trades []types.Trade) types.EquityCurveResponse {
	points := make([]types.EquityPoint, 0, len(trades))
	balance, peak, maxDrawdown := decimal.Zero, decimal.Zero, decimal.Zero

	for _, t := range oldestFirst(trades) {
		balance = balance.Add(t.PL.Decimal())
		peak = decimal.Max(peak, balance)

		drawdown := decimal.Zero
		if peak.IsPositive() {
			drawdown = peak.Sub(balance).Div(peak).Mul(hundred)
		}
		maxDrawdown = decimal.Max(maxDrawdown, drawdown)

		points = append(points, types.EquityPoint{
			Date:     t.Date(),
			Equity:   types.Round2(balance),
			Balance:  types.Round2(balance),
			Drawdown: types.Round2(drawdown),
		})
	}

	return types.EquityCurveResponse{
		EquityCurve:        points,
		MaxDrawdownPercent: types.Round2(maxDrawdown),
		AvgRiskPerTrade:    types.Round2(RiskPerTrade(trades)),
	}
}

// RiskPerTrade averages lotSize * sl * 10 over trades where both are positive
func RiskPerTrade(trades []types.Trade) decimal.Decimal {
	total := decimal.Zero
	count := 0
	for _, t := range trades {
		lot, sl := t.LotSize.Decimal(), t.SL.Decimal()
		if !lot.IsPositive() || !sl.IsPositive() {
			continue
		}
		total = total.Add(lot.Mul(sl).Mul(riskMultiplier))
		count++
	}

	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// RecentTrades returns the newest trades first with a display-formatted P/L:
// "+x.xx" for a Profit, "-x.xx" for a Loss, the plain value otherwise.
// Trades from the same second keep the order they were given in.
func RecentTrades(trades []types.Trade, limit int) []types.RecentTrade {
	if limit < 0 {
		limit = 0
	}
	sorted := newestFirst(trades)
	recent := make([]types.RecentTrade, 0, min(limit, len(sorted)))

	for _, t := range sorted {
		if len(recent) == limit {
			break
		}
		recent = append(recent, types.RecentTrade{
			ID:        t.TradeID,
			Pair:      orDash(t.Pair),
			Result:    orDash(t.Result),
			PL:        formatPL(t.Result, t.PL.Decimal()),
			CreatedAt: t.CreatedAt,
		})
	}
	return recent
}

func formatPL(result string, pl decimal.Decimal) string {
	switch result {
	case types.ResultProfit:
		return "+" + pl.Abs().StringFixed(2)
	case types.ResultLoss:
		return "-" + pl.Abs().StringFixed(2)
	default:
		return pl.StringFixed(2)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Monthly are the figures a monthly snapshot stores
type Monthly struct {
	// WorstTrade is the most negative P/L, zero without losing trades
	WorstTrade decimal.Decimal
	// RiskPerTrade is the mean absolute P/L of the losing trades
	RiskPerTrade decimal.Decimal
	LosingTrades int
}

// MonthlyMetrics summarizes the losing trades (negative P/L) of a month
func MonthlyMetrics(trades []types.Trade) Monthly {
	var m Monthly
	lossSum := decimal.Zero

	for _, t := range trades {
		pl := t.PL.Decimal()
		if !pl.IsNegative() {
			continue
		}
		if m.LosingTrades == 0 || pl.LessThan(m.WorstTrade) {
			m.WorstTrade = pl
		}
		lossSum = lossSum.Add(pl.Abs())
		m.LosingTrades++
	}

	if m.LosingTrades > 0 {
		m.RiskPerTrade = lossSum.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}
	return m
}
