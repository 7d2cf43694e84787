package journal

import (
	"time"

	"github.com/ksred/fxjournal/pkg/response"
)

// ErrNotFound is returned when a trade id does not match a stored trade
var ErrNotFound = &response.NotFoundError{Resource: "trade"}

// ErrValidation matches every input rejection of the journal
var ErrValidation = response.ErrValidation

// DeletePolicy decides whether deleting a trade reverses its equity contribution
type DeletePolicy int

const (
	// KeepEquity leaves the ledger untouched on delete
	KeepEquity DeletePolicy = iota
	// ReverseEquity subtracts the deleted trade's P/L from the ledger
	ReverseEquity
)

func (p DeletePolicy) String() string {
	if p == ReverseEquity {
		return "reverse"
	}
	return "keep"
}

// Options configures the journal service
type Options struct {
	RequireType  bool
	DeletePolicy DeletePolicy
	Location     *time.Location
	// Now overrides the clock, tests only
	Now func() time.Time
}

// SortOrder is the created_at ordering of a trade listing
type SortOrder string

const (
	NewestFirst SortOrder = "desc"
	OldestFirst SortOrder = "asc"
)

// TradeFilter narrows a trade listing. The zero value lists every trade, newest first.
type TradeFilter struct {
	// CreatedPrefix matches the start of createdAt, e.g. "2025-09" or "2025-09-14"
	CreatedPrefix string
	// RequirePair skips trades without a pair
	RequirePair bool
	Order       SortOrder
	Limit       int
}
