package domain

import "math"

const (
	// MinLiquidity is the minimum 24h volume for an item to be scored.
	MinLiquidity = 50

	baseScore           = 50.0
	baseRecoveryMinutes = 10.0
	anomalySpreadPct    = 20.0
	anomalyVolumeMult   = 5
)

// SpreadPercent = (instaBuy - instaSell) / instaSell × 100.
func SpreadPercent(instaBuy, instaSell int64) float64 {
	if instaSell <= 0 {
		return 0
	}
	return float64(instaBuy-instaSell) / float64(instaSell) * 100
}

// ROIPercent is the net margin relative to the buy price.
func ROIPercent(margin, buyPrice int64) float64 {
	if buyPrice <= 0 {
		return 0
	}
	return float64(margin) / float64(buyPrice) * 100
}

// EstimateRecoveryTime estimates how many minutes the price needs to recover
// after a flip. Liquid items recover faster, wide spreads slower.
//
//	base 10m × volume factor (2 under 100, 1 up to 1000, 0.5 above)
//	         × spread factor (2 above 5%, 1.5 above 2%, else 1)
func EstimateRecoveryTime(totalVolume int64, spreadPct float64) float64 {
	volumeFactor := 2.0
	switch {
	case totalVolume > 1000:
		volumeFactor = 0.5
	case totalVolume > 100:
		volumeFactor = 1.0
	}

	spreadFactor := 1.0
	switch {
	case spreadPct > 5:
		spreadFactor = 2.0
	case spreadPct > 2:
		spreadFactor = 1.5
	}

	return baseRecoveryMinutes * volumeFactor * spreadFactor
}

// IsAnomaly flags extreme spreads (> 20%) and volume spikes (> 5× average).
func IsAnomaly(spreadPct float64, totalVolume, avgVolume int64) bool {
	return spreadPct > anomalySpreadPct || totalVolume > avgVolume*anomalyVolumeMult
}

// ScoreInputs agrupa las métricas que alimentan el score.
type ScoreInputs struct {
	SpreadPercent     float64
	ROIPercent        float64
	Volume            int64
	RSI               float64
	Momentum          float64
	BaselineDeviation float64
}

// OpportunityScore computes the 0-100 composite score.
func OpportunityScore(in ScoreInputs, w WeightProfile, risk RiskTolerance) float64 {
	score := baseScore

	// Spread (short term)
	switch {
	case in.SpreadPercent > 2:
		score += 15 * w.Spread
	case in.SpreadPercent > 1:
		score += 8 * w.Spread
	case in.SpreadPercent < 0.5:
		score -= 10 * w.Spread
	}

	volScore := math.Log10(math.Max(1, float64(in.Volume))) * 5
	score += volScore * w.VolumeSurge

	// Oversold is an entry, overbought a risk.
	if in.RSI < risk.RSIBuyThreshold() {
		score += 20 * w.RSI
	} else if in.RSI > risk.RSISellThreshold() {
		score -= 15 * w.RSI
	}

	// Baseline deviation (long term): crashed = opportunity, pumped = risky.
	if in.BaselineDeviation < -10 {
		score += 25 * w.BaselineDeviation
	} else if in.BaselineDeviation > 10 {
		score -= 15 * w.BaselineDeviation
	}

	if in.Momentum > 5 {
		score += 10 * w.TrendStrength
	} else if in.Momentum < -5 {
		score -= 5 * w.TrendStrength
	}

	switch {
	case in.ROIPercent > 5:
		score += 10
	case in.ROIPercent > 2:
		score += 5
	}

	return clamp(score, 0, 100)
}

// Confidence mide cuánto se aleja el score del neutro (50), ajustado por
// liquidez y penalizado si hay anomalía.
func Confidence(score float64, volume int64, anomaly bool) float64 {
	confidence := math.Abs(score-baseScore) * 2

	switch {
	case volume > 10_000:
		confidence *= 1.2
	case volume < 100:
		confidence *= 0.7
	}

	if anomaly {
		confidence *= 0.6
	}

	return clamp(confidence, 0, 100)
}

// ActionForScore maps a score to an action.
func ActionForScore(score float64) SignalAction {
	switch {
	case score >= 80:
		return ActionBuy
	case score >= 70:
		return ActionAccumulate
	case score <= 25:
		return ActionSell
	case score <= 35:
		return ActionWait
	}
	return ActionHold
}

// SimulatedRSI approximates RSI from the 24h volume split and the spread.
// More volume at the low price (sell pressure) lowers it.
func SimulatedRSI(q ItemQuote) float64 {
	spreadRatio := 1.0
	if q.InstaSellPrice > 0 {
		spreadRatio = float64(q.InstaBuyPrice) / float64(q.InstaSellPrice)
	}
	volumeRatio := 1.0
	if q.BuyVolume24h > 0 {
		volumeRatio = float64(q.SellVolume24h) / float64(q.BuyVolume24h)
	}
	rsi := 50 + (volumeRatio-1)*30 + (1-spreadRatio)*20
	return clamp(rsi, 0, 100)
}

// SimulatedMomentum is the signed volume imbalance in hundreds of units,
// clamped to [-50, 50].
func SimulatedMomentum(q ItemQuote) float64 {
	diff := float64(q.SellVolume24h-q.BuyVolume24h) / 100
	return clamp(diff, -50, 50)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
