package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Trade outcomes
const (
	ResultProfit    = "Profit"
	ResultLoss      = "Loss"
	ResultBreakEven = "Break Even"
)

// Trade directions
const (
	TypeBuy  = "Buy"
	TypeSell = "Sell"
)

// TimestampLayout is the layout of CreatedAt and UpdatedAt. It sorts lexicographically.
const TimestampLayout = "2006-01-02 15:04:05"

// NumericString is a numeric value kept exactly as the user entered it.
// It decodes from either a JSON string or a JSON number.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field must be a string or a number: %w", err)
	}
	*n = NumericString(num.String())
	return nil
}

// UnmarshalYAML accepts scalars of any kind so import files may use bare numbers.
func (n *NumericString) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*n = NumericString(strings.TrimSpace(s))
	return nil
}

func (n NumericString) String() string {
	return string(n)
}

// Decimal parses the value. Empty or malformed values count as zero so that
// bad historical data never blocks a report.
func (n NumericString) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to 2 decimal places for a response
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Trade is one logged trading position.
type Trade struct {
	ID        uint          `gorm:"primaryKey" json:"-" yaml:"-"`
	TradeID   string        `gorm:"uniqueIndex;size:36" json:"id" yaml:"id,omitempty"`
	Pair      string        `gorm:"index" json:"pair" yaml:"pair"`
	Type      string        `json:"type,omitempty" yaml:"type,omitempty"`
	Result    string        `json:"result" yaml:"result"`
	Note      string        `json:"note" yaml:"note,omitempty"`
	SL        NumericString `gorm:"column:sl" json:"sl" yaml:"sl,omitempty"`
	TP        NumericString `gorm:"column:tp" json:"tp" yaml:"tp,omitempty"`
	LotSize   NumericString `json:"lotSize" yaml:"lotSize,omitempty"`
	PL        NumericString `gorm:"column:pl" json:"pl" yaml:"pl,omitempty"`
	CreatedAt string        `gorm:"index;size:19" json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt string        `gorm:"size:19" json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// TradeInput carries the editable fields of a trade.
type TradeInput struct {
	Pair    string        `json:"pair" yaml:"pair"`
	Type    string        `json:"type" yaml:"type"`
	Result  string        `json:"result" yaml:"result"`
	Note    string        `json:"note" yaml:"note"`
	SL      NumericString `json:"sl" yaml:"sl"`
	TP      NumericString `json:"tp" yaml:"tp"`
	LotSize NumericString `json:"lotSize" yaml:"lotSize"`
	PL      NumericString `json:"pl" yaml:"pl"`
}

// Date returns the date portion of CreatedAt.
func (t Trade) Date() string {
	date, _, _ := strings.Cut(t.CreatedAt, " ")
	return date
}
