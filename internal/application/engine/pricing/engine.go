package pricing

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

const (
	kellyFallbackFraction = 0.05
	kellyMaxFraction      = 0.25
)

// Engine turns a MarketSignal into an exact trading plan.
// It holds no state; one value can be shared by every goroutine.
type Engine struct{}

// New creates a pricing engine.
func New() *Engine {
	return &Engine{}
}

// Calculate builds a PriceRecommendation for signal.
//
// Buy one gp above the best of insta-sell and support, sell one gp below the
// best of insta-buy and resistance. When those cross, the sell price is pushed
// to buyAt+1; the net figures are still computed from the corrected prices,
// so they may be zero or negative.
func (e *Engine) Calculate(
	signal domain.MarketSignal,
	availableCapital int64,
	risk domain.RiskTolerance,
	supportPrice, resistPrice int64,
) domain.PriceRecommendation {
	buyAt := max(signal.InstaSellPrice, supportPrice) + 1

	sellAt := min(signal.InstaBuyPrice, resistPrice) - 1
	if sellAt <= buyAt {
		slog.Warn("pricing: inverted prices, forcing 1gp nominal margin",
			"item", signal.ItemName,
			"buy_at", buyAt,
			"sell_at", sellAt,
		)
		sellAt = buyAt + 1
	}

	taxPerUnit := domain.Tax(sellAt)
	quantity := positionQuantity(availableCapital, risk, buyAt, signal.BuyLimit)

	gross := (sellAt - buyAt) * int64(quantity)
	net := gross - taxPerUnit*int64(quantity)

	var roi float64
	if cost := buyAt * int64(quantity); cost > 0 {
		roi = float64(net) / float64(cost) * 100
	}

	stopLoss := int64(math.Floor(float64(buyAt) * risk.StopLossMultiplier()))
	takeProfit := int64(math.Ceil(float64(sellAt) * risk.TakeProfitMultiplier()))

	rec := domain.PriceRecommendation{
		ItemID:           signal.ItemID,
		ItemName:         signal.ItemName,
		BuyAt:            buyAt,
		SellAt:           sellAt,
		Quantity:         quantity,
		GrossProfit:      gross,
		NetProfit:        net,
		TaxAmountPerUnit: taxPerUnit,
		EffectiveROI:     roi,
		StopLoss:         stopLoss,
		TakeProfit:       takeProfit,
		Reasoning:        reasoning(buyAt, sellAt, supportPrice, resistPrice, taxPerUnit, net, roi),
	}

	slog.Debug("pricing: recommendation",
		"item", signal.ItemName,
		"buy_at", buyAt,
		"sell_at", sellAt,
		"qty", quantity,
		"net", net,
	)
	return rec
}

// positionQuantity sizes the position: the risk fraction of capital divided by
// the buy price, capped at the item's buy limit, never below one unit.
func positionQuantity(capital int64, risk domain.RiskTolerance, buyAt int64, buyLimit int) int {
	var affordable int64
	if buyAt > 0 {
		affordable = int64(float64(capital)*risk.PositionFraction()) / buyAt
	}
	qty := min(affordable, int64(buyLimit))
	return int(max(1, qty))
}

func reasoning(buyAt, sellAt, support, resist, tax, net int64, roi float64) string {
	return fmt.Sprintf("Buy at %sgp (Support: %sgp), Sell at %sgp (Resist: %sgp). Tax: %sgp/ea. Net: %sgp (%.2f%% ROI)",
		humanize.Comma(buyAt), humanize.Comma(support),
		humanize.Comma(sellAt), humanize.Comma(resist),
		humanize.Comma(tax),
		humanize.Comma(net), roi,
	)
}

// KellyPosition returns the gp to commit according to half-Kelly, limited to
// 25% of totalCapital. Without usable history (avgLoss <= 0 or winRate outside
// (0, 1)) it falls back to 5%.
//
//	f* = (b·p - q) / b,  b = avgWin/avgLoss, q = 1-p
func KellyPosition(winRate, avgWin, avgLoss float64, totalCapital int64) int64 {
	fraction := KellyFraction(winRate, avgWin, avgLoss)
	return int64(float64(totalCapital) * fraction)
}

// KellyFraction is the capital fraction used by KellyPosition.
func KellyFraction(winRate, avgWin, avgLoss float64) float64 {
	if avgLoss <= 0 || winRate <= 0 || winRate >= 1 || math.IsNaN(avgWin) {
		return kellyFallbackFraction
	}
	b := avgWin / avgLoss
	if b <= 0 {
		return 0
	}
	p, q := winRate, 1-winRate
	kelly := (b*p - q) / b
	return math.Max(0, math.Min(kellyMaxFraction, kelly*0.5))
}
