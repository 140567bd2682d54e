package scanner

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// DefaultBuyLimit is used for items missing from the catalog.
const DefaultBuyLimit = 8

// Analyzer convierte un quote en una MarketSignal. Mantiene las cachés
// de nombre, buy limit y tiempo de recuperación por item.
type Analyzer struct {
	indicators IndicatorSource
	names      *itemCache[string]
	buyLimits  *itemCache[int]
	recovery   *itemCache[float64]
}

// NewAnalyzer crea un Analyzer con cachés acotadas a cacheSize items.
func NewAnalyzer(indicators IndicatorSource, cacheSize int) *Analyzer {
	if indicators == nil {
		indicators = NewSimulatedIndicators()
	}
	return &Analyzer{
		indicators: indicators,
		names:      newItemCache[string](cacheSize),
		buyLimits:  newItemCache[int](cacheSize),
		recovery:   newItemCache[float64](cacheSize),
	}
}

// Analyze computes every metric of the signal for one item. The quote must
// already have passed isTradeable.
func (a *Analyzer) Analyze(q domain.ItemQuote, w domain.WeightProfile, cfg domain.ScanConfig, now time.Time) domain.MarketSignal {
	volume := q.TotalVolume()

	spreadPct := domain.SpreadPercent(q.InstaBuyPrice, q.InstaSellPrice)
	// Always evaluate the theoretical flip: buy at the low, sell at the high.
	margin := domain.NetMargin(q.InstaSellPrice, q.InstaBuyPrice)
	roi := domain.ROIPercent(margin, q.InstaSellPrice)

	ind := a.indicators.Indicators(q)

	recovery := a.recovery.getOrCompute(q.ItemID, func() float64 {
		return domain.EstimateRecoveryTime(volume, spreadPct)
	})

	anomaly := domain.IsAnomaly(spreadPct, volume, q.AverageVolume())

	score := domain.OpportunityScore(domain.ScoreInputs{
		SpreadPercent:     spreadPct,
		ROIPercent:        roi,
		Volume:            volume,
		RSI:               ind.RSI,
		Momentum:          ind.Momentum,
		BaselineDeviation: ind.BaselineDeviationPercent,
	}, w, cfg.RiskTolerance)

	confidence := domain.Confidence(score, volume, anomaly)

	return domain.MarketSignal{
		ItemID:                   q.ItemID,
		ItemName:                 a.ItemName(q.ItemID),
		Timestamp:                now,
		InstaBuyPrice:            q.InstaBuyPrice,
		InstaSellPrice:           q.InstaSellPrice,
		Volume24h:                volume,
		BuyLimit:                 a.BuyLimit(q.ItemID),
		SpreadPercent:            spreadPct,
		MarginAfterTax:           margin,
		ROIPercent:               roi,
		RSI:                      ind.RSI,
		Momentum:                 ind.Momentum,
		BaselineDeviationPercent: ind.BaselineDeviationPercent,
		AvgRecoveryTimeMinutes:   recovery,
		OpportunityScore:         score,
		Confidence:               confidence,
		Action:                   domain.ActionForScore(score),
		IsAnomaly:                anomaly,
		IsSafeForTimeframe:       recovery <= cfg.MaxRecoveryMinutes(),
	}
}

// ItemName devuelve el nombre del catálogo o "Item #<id>".
func (a *Analyzer) ItemName(itemID int) string {
	if name, ok := a.names.get(itemID); ok {
		return name
	}
	return fmt.Sprintf("Item #%d", itemID)
}

// BuyLimit devuelve el límite del catálogo o DefaultBuyLimit.
func (a *Analyzer) BuyLimit(itemID int) int {
	if limit, ok := a.buyLimits.get(itemID); ok {
		return limit
	}
	return DefaultBuyLimit
}

// learnItem records catalog data for an item. Existing entries win.
func (a *Analyzer) learnItem(m domain.ItemMapping) {
	if m.Name != "" {
		a.names.putIfAbsent(m.ItemID, m.Name)
	}
	if m.BuyLimit > 0 {
		a.buyLimits.putIfAbsent(m.ItemID, m.BuyLimit)
	}
}
