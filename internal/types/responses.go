package types

import "time"

// WinRateResponse is the all-time win rate report
type WinRateResponse struct {
	WinRate float64 `json:"winRate"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
}

// TotalPLResponse is the net profit/loss of a period
type TotalPLResponse struct {
	TotalPL float64 `json:"totalPl"`
	Status  string  `json:"status"`
}

// PercentageResponse is the share of each outcome within a period
type PercentageResponse struct {
	ProfitPercent    float64 `json:"profitPercent"`
	LossPercent      float64 `json:"lossPercent"`
	BreakEvenPercent float64 `json:"breakEvenPercent"`
}

// ChartPoint is the per-day outcome totals used by the dashboard chart
type ChartPoint struct {
	Date      string  `json:"date"`
	Profit    float64 `json:"profit"`
	Loss      float64 `json:"loss"`
	BreakEven float64 `json:"breakEven"`
}

// PairSummary is one row of the most traded pairs report
type PairSummary struct {
	Pair        string  `json:"pair"`
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
	ProfitLoss  float64 `json:"profitLoss"`
}

// PairWinLoss is the win/loss tally of a pair
type PairWinLoss struct {
	Pair    string  `json:"pair"`
	Win     int     `json:"win"`
	Loss    int     `json:"loss"`
	Total   int     `json:"total"`
	WinRate float64 `json:"winRate"`
}

// PairPerformance is the gross and net result of a pair
type PairPerformance struct {
	Pair        string  `json:"pair"`
	TotalProfit float64 `json:"totalProfit"`
	TotalLoss   float64 `json:"totalLoss"`
	NetPL       float64 `json:"netPL"`
	TradeCount  int     `json:"tradeCount"`
}

// PairsResponse groups the per-pair reports
type PairsResponse struct {
	WinLoss     []PairWinLoss     `json:"winLoss"`
	Performance []PairPerformance `json:"performance"`
}

// EquityPoint is one point of the equity curve
type EquityPoint struct {
	Date     string  `json:"date"`
	Equity   float64 `json:"equity"`
	Balance  float64 `json:"balance"`
	Drawdown float64 `json:"drawdown"`
}

// EquityCurveResponse is the all-time equity curve with its peak-to-trough drawdown
type EquityCurveResponse struct {
	EquityCurve        []EquityPoint `json:"equityCurve"`
	MaxDrawdownPercent float64       `json:"maxDrawdownPercent"`
	AvgRiskPerTrade    float64       `json:"avgRiskPerTrade"`
}

// RecentTrade is a trade formatted for the recent trades list
type RecentTrade struct {
	ID        string `json:"id"`
	Pair      string `json:"pair"`
	Result    string `json:"result"`
	PL        string `json:"pl"`
	CreatedAt string `json:"createdAt"`
}

// EquityResponse represents the current ledger balance
type EquityResponse struct {
	Equity float64 `json:"equity"`
}

// SnapshotMetrics are the figures stored in a monthly History record
type SnapshotMetrics struct {
	MaxDrawdown  float64 `json:"max_drawdown"`
	RiskPerTrade float64 `json:"risk_per_trade"`
	LastEquity   float64 `json:"last_equity"`
}

// HistoryResponse is one stored monthly snapshot
type HistoryResponse struct {
	Month string `json:"month"`
	SnapshotMetrics
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotResponse represents the outcome of one monthly snapshot run
type SnapshotResponse struct {
	Ran     bool             `json:"ran"`
	Reason  string           `json:"reason,omitempty"`
	Month   string           `json:"month,omitempty"`
	Metrics *SnapshotMetrics `json:"metrics,omitempty"`
	RunAt   time.Time        `json:"run_at"`
}

// TotalTradesResponse is the number of stored trades
type TotalTradesResponse struct {
	TotalTrades int64 `json:"totalTrades"`
}
