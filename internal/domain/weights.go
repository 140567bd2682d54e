package domain

const (
	MinTimeHorizon = 5
	MaxTimeHorizon = 480
)

// WeightProfile holds the horizon-dependent scoring weights.
// Short-horizon weights (spread, order book, volume surge) fade out as the
// horizon grows; long-horizon weights (baseline deviation, volume consistency,
// trend strength) fade in. RSI and risk penalty are constant.
type WeightProfile struct {
	Spread            float64
	OrderBook         float64
	VolumeSurge       float64
	BaselineDeviation float64
	VolumeConsistency float64
	TrendStrength     float64
	RSI               float64
	RiskPenalty       float64
}

// HorizonFactor normaliza el horizonte a [0, 1]: 0 = 5 minutos, 1 = 480 minutos.
func HorizonFactor(timeHorizonMinutes int) float64 {
	t := (float64(timeHorizonMinutes) - MinTimeHorizon) / (MaxTimeHorizon - MinTimeHorizon)
	return clamp(t, 0, 1)
}

// CalculateWeights derives the weight profile from the time horizon alone.
func CalculateWeights(timeHorizonMinutes int) WeightProfile {
	t := HorizonFactor(timeHorizonMinutes)
	return WeightProfile{
		Spread:            0.30 * (1 - t),
		OrderBook:         0.25 * (1 - t),
		VolumeSurge:       0.20 * (1 - t),
		BaselineDeviation: 0.35 * t,
		VolumeConsistency: 0.25 * t,
		TrendStrength:     0.20 * t,
		RSI:               0.15,
		RiskPenalty:       0.10,
	}
}

// ShortTermTotal is the sum of the weights that favour quick flips.
func (w WeightProfile) ShortTermTotal() float64 {
	return w.Spread + w.OrderBook + w.VolumeSurge
}

// LongTermTotal is the sum of the weights that favour slow flips.
func (w WeightProfile) LongTermTotal() float64 {
	return w.BaselineDeviation + w.VolumeConsistency + w.TrendStrength
}
