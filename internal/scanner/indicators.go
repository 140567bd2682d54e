package scanner

import (
	"math/rand/v2"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// IndicatorSource produces the technical indicators of an item.
//
// The implementations below are estimates built from a single snapshot.
// A timeseries-backed source can replace them without touching the scorer.
type IndicatorSource interface {
	Indicators(q domain.ItemQuote) domain.Indicators
}

// SimulatedIndicators derives RSI and momentum from the volume split and adds
// a small random baseline deviation in [-5, 5) as a stand-in for a 30-day
// baseline comparison.
type SimulatedIndicators struct {
	random func() float64
}

// NewSimulatedIndicators uses the global math/rand/v2 source, which is safe
// for concurrent use by the worker pool.
func NewSimulatedIndicators() *SimulatedIndicators {
	return &SimulatedIndicators{random: rand.Float64}
}

// Indicators implements IndicatorSource.
func (s *SimulatedIndicators) Indicators(q domain.ItemQuote) domain.Indicators {
	return domain.Indicators{
		RSI:                      domain.SimulatedRSI(q),
		Momentum:                 domain.SimulatedMomentum(q),
		BaselineDeviationPercent: (s.random() - 0.5) * 10,
	}
}

// SnapshotIndicators is the deterministic variant: same RSI and momentum as
// SimulatedIndicators, and the price is assumed to sit on its baseline.
type SnapshotIndicators struct{}

// Indicators implements IndicatorSource.
func (SnapshotIndicators) Indicators(q domain.ItemQuote) domain.Indicators {
	return domain.Indicators{
		RSI:      domain.SimulatedRSI(q),
		Momentum: domain.SimulatedMomentum(q),
	}
}
