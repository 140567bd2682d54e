package opportunity

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/alejandrodnm/flipsignal/internal/ports"
)

const (
	// MinHoldDuration is the anti-churn floor: younger offers are never cancelled.
	MinHoldDuration = 30 * time.Second
	// CancelThreshold is the improvement factor from which switching pays off.
	CancelThreshold = 1.5
	// HighUrgencyThreshold marks a switch as urgent.
	HighUrgencyThreshold = 2.5

	maxRateWindowMinutes    = 60.0
	minFillForExtrapolation = 0.1
	defaultFillMinutes      = 10.0
	defaultRecoveryMinutes  = 10.0

	defaultStaleMinutes = 120
	minStaleMinutes     = 15
	maxStaleMinutes     = 240
)

// Manager decides whether an open offer should be abandoned for a better
// signal, comparing profit rates in gp per minute.
type Manager struct {
	clock ports.Clock
}

// NewManager creates a Manager that measures offer age with clock.
func NewManager(clock ports.Clock) *Manager {
	return &Manager{clock: clock}
}

// Evaluate compares an open offer with a candidate signal.
func (m *Manager) Evaluate(offer domain.ActiveOffer, candidate domain.MarketSignal) domain.EvaluationResult {
	elapsed := m.clock.Now().Sub(offer.CreatedAt)
	if elapsed < MinHoldDuration {
		return domain.EvaluationResult{
			Urgency:        domain.UrgencyLow,
			Recommendation: "Hold - Too early to evaluate (< 30s)",
			OfferItemName:  offer.ItemName,
			OfferSlot:      offer.Slot,
		}
	}

	elapsedMin := elapsed.Minutes()
	totalMin := estimatedTotalMinutes(offer.FillPercent(), elapsedMin)

	currentRate := 0.0
	if totalMin > 0 {
		projected := domain.NetMargin(offer.BuyPrice, offer.SellPrice) * int64(offer.Quantity)
		currentRate = float64(projected) / totalMin
	}

	newRate := candidateRate(offer.CapitalCommitted(), candidate)
	factor := ImprovementFactor(currentRate, newRate)
	shouldCancel := factor >= CancelThreshold

	remaining := math.Max(0, totalMin-elapsedMin)
	lossIfHold := max(0, int64((newRate-currentRate)*remaining))

	res := domain.EvaluationResult{
		ShouldCancel:        shouldCancel,
		CurrentProfitRate:   currentRate,
		NewOpportunityRate:  newRate,
		ImprovementFactor:   factor,
		EstimatedLossIfHold: lossIfHold,
		Urgency:             UrgencyFor(factor),
		OfferItemName:       offer.ItemName,
		OfferSlot:           offer.Slot,
	}
	switch {
	case shouldCancel:
		res.BetterItemName = candidate.ItemName
		res.Recommendation = fmt.Sprintf(
			"CANCEL RECOMMENDED: %s offers %s better rate (%.0f vs %.0f gp/min). Opportunity cost if hold: %sgp",
			candidate.ItemName, formatFactor(factor), newRate, currentRate, humanize.Comma(lossIfHold))
	case factor > 1:
		res.Recommendation = fmt.Sprintf(
			"HOLD: %s is %.1fx better but below %.1fx threshold. Current offer is acceptable.",
			candidate.ItemName, factor, CancelThreshold)
	default:
		res.Recommendation = fmt.Sprintf("HOLD: Current offer on %s is optimal (%.0f gp/min)",
			offer.ItemName, currentRate)
	}

	slog.Debug("opportunity: evaluated",
		"offer", offer.ItemName,
		"candidate", candidate.ItemName,
		"factor", factor,
		"cancel", shouldCancel,
	)
	return res
}

// estimatedTotalMinutes extrapolates how long the offer needs to fill
// completely, capped at one hour.
func estimatedTotalMinutes(fill, elapsedMin float64) float64 {
	var total float64
	if fill > minFillForExtrapolation {
		total = elapsedMin / fill
	} else {
		total = math.Max(defaultFillMinutes, elapsedMin*5)
	}
	return math.Min(total, maxRateWindowMinutes)
}

// candidateRate is the gp/min the committed capital would earn on the
// candidate item.
func candidateRate(capital int64, candidate domain.MarketSignal) float64 {
	var qty int64
	if candidate.InstaSellPrice > 0 {
		qty = capital / candidate.InstaSellPrice
	}
	qty = max(1, min(qty, int64(candidate.BuyLimit)))

	recovery := candidate.AvgRecoveryTimeMinutes
	if recovery <= 0 {
		recovery = defaultRecoveryMinutes
	}
	return float64(candidate.MarginAfterTax*qty) / recovery
}

// ImprovementFactor is newRate/currentRate. A position earning nothing is
// infinitely improved by any positive rate.
func ImprovementFactor(currentRate, newRate float64) float64 {
	if currentRate > 0 {
		return newRate / currentRate
	}
	if newRate > 0 {
		return math.Inf(1)
	}
	return 0
}

// UrgencyFor maps an improvement factor to an urgency level.
func UrgencyFor(factor float64) domain.Urgency {
	switch {
	case factor >= HighUrgencyThreshold:
		return domain.UrgencyHigh
	case factor >= CancelThreshold:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func formatFactor(f float64) string {
	if math.IsInf(f, 1) {
		return "∞x"
	}
	return fmt.Sprintf("%.1fx", f)
}

// EvaluateBest evaluates every (offer, signal) pair and returns the one with
// the highest improvement factor. Pairs on the same item and signals that are
// not actionable (WAIT, HOLD) are skipped.
func (m *Manager) EvaluateBest(offers []domain.ActiveOffer, signals []domain.MarketSignal) domain.EvaluationResult {
	if len(offers) == 0 || len(signals) == 0 {
		return domain.EvaluationResult{
			Urgency:        domain.UrgencyLow,
			Recommendation: "No offers or signals to evaluate",
		}
	}

	var best *domain.EvaluationResult
	for _, offer := range offers {
		for _, sig := range signals {
			if offer.ItemID == sig.ItemID || !sig.Action.IsActionable() {
				continue
			}
			res := m.Evaluate(offer, sig)
			if res.ImprovementFactor > 0 && (best == nil || res.ImprovementFactor > best.ImprovementFactor) {
				best = &res
			}
		}
	}

	if best == nil {
		return domain.EvaluationResult{
			Urgency:        domain.UrgencyLow,
			Recommendation: "No better opportunities found - all positions optimal",
		}
	}

	slog.Info("opportunity: best switch candidate",
		"offer", best.OfferItemName,
		"slot", best.OfferSlot,
		"factor", formatFactor(best.ImprovementFactor),
		"cancel", best.ShouldCancel,
	)
	return *best
}

// FindBestOpportunity returns the bullish (BUY/ACCUMULATE), timeframe-safe
// signal with the highest score × confidence at or above minScore.
func FindBestOpportunity(signals []domain.MarketSignal, minScore float64) (domain.MarketSignal, bool) {
	var (
		best  domain.MarketSignal
		found bool
	)
	for _, s := range signals {
		if s.OpportunityScore < minScore || !s.IsBullish() || !s.IsSafeForTimeframe {
			continue
		}
		if !found || s.RankValue() > best.RankValue() {
			best, found = s, true
		}
	}
	return best, found
}

// StaleThreshold returns how many minutes an offer may stay open before it is
// cancelled regardless of opportunity cost. Large orders relative to daily
// volume get more time: 1% of volume ≈ 15m, 10% ≈ 35m, 100% ≈ 215m.
func StaleThreshold(quantity int, avgVolume24h int64) int {
	if avgVolume24h <= 0 {
		return defaultStaleMinutes
	}
	ratio := float64(quantity) / float64(avgVolume24h)
	threshold := math.Max(minStaleMinutes, math.Min(maxStaleMinutes, 15+ratio*200))
	return int(threshold)
}

// IsStaleOffer reports whether the offer has been open longer than its
// StaleThreshold (whole minutes).
func (m *Manager) IsStaleOffer(offer domain.ActiveOffer, avgVolume24h int64) bool {
	threshold := StaleThreshold(offer.Quantity, avgVolume24h)
	elapsedMin := int(m.clock.Now().Sub(offer.CreatedAt) / time.Minute)
	return elapsedMin > threshold
}
