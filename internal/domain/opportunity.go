package domain

import (
	"math"
	"time"
)

// ActiveOffer is an open exchange offer reported by the game session.
// It is replaced, never mutated, when the session reports a new state.
type ActiveOffer struct {
	ID             string
	ItemID         int
	ItemName       string
	BuyPrice       int64
	SellPrice      int64 // target sell price
	Quantity       int
	QuantityFilled int
	IsBuyOffer     bool
	CreatedAt      time.Time
	Slot           int // exchange slot (0-7)
}

// FillPercent returns the filled share in [0, 1].
func (o ActiveOffer) FillPercent() float64 {
	if o.Quantity <= 0 {
		return 0
	}
	return float64(o.QuantityFilled) / float64(o.Quantity)
}

// IsPartiallyFilled returns true if some but not all units filled.
func (o ActiveOffer) IsPartiallyFilled() bool {
	return o.QuantityFilled > 0 && o.QuantityFilled < o.Quantity
}

// CapitalCommitted is the gp locked by the offer.
func (o ActiveOffer) CapitalCommitted() int64 {
	return o.BuyPrice * int64(o.Quantity)
}

// Urgency of switching to a better opportunity.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"    // no action needed
	UrgencyMedium Urgency = "MEDIUM" // consider switching
	UrgencyHigh   Urgency = "HIGH"   // cancel now
)

// EvaluationResult is the outcome of comparing an open offer with a new signal.
type EvaluationResult struct {
	ShouldCancel        bool
	CurrentProfitRate   float64 // gp/min
	NewOpportunityRate  float64 // gp/min
	ImprovementFactor   float64 // +Inf when the current rate is <= 0 and the new one is positive
	EstimatedLossIfHold int64
	Urgency             Urgency
	Recommendation      string

	OfferItemName  string
	OfferSlot      int
	BetterItemName string // set only when ShouldCancel
}

// HasInfiniteImprovement reports whether the current position earns nothing
// while the candidate earns something.
func (r EvaluationResult) HasInfiniteImprovement() bool {
	return math.IsInf(r.ImprovementFactor, 1)
}
