package domain

import (
	"fmt"
	"time"
)

// SignalAction is the recommended action for an item.
type SignalAction string

const (
	ActionBuy        SignalAction = "BUY"
	ActionSell       SignalAction = "SELL"
	ActionHold       SignalAction = "HOLD"
	ActionWait       SignalAction = "WAIT"
	ActionAccumulate SignalAction = "ACCUMULATE"
)

// IsActionable returns false for WAIT and HOLD.
func (a SignalAction) IsActionable() bool {
	return a != ActionWait && a != ActionHold
}

// Indicators are the technical inputs of the score. The current values are
// simplified estimates, see scanner.IndicatorSource.
type Indicators struct {
	RSI                      float64 // [0, 100]
	Momentum                 float64 // [-50, 50]
	BaselineDeviationPercent float64
}

// MarketSignal is the scored view of one item in one scan cycle.
// A new scan produces a new signal; existing signals are never updated.
type MarketSignal struct {
	ItemID    int
	ItemName  string
	Timestamp time.Time

	// --- Raw inputs ---
	InstaBuyPrice  int64 // wiki high
	InstaSellPrice int64 // wiki low
	Volume24h      int64
	BuyLimit       int

	// --- Derived metrics ---
	SpreadPercent            float64
	MarginAfterTax           int64 // per unit, buying at InstaSellPrice and selling at InstaBuyPrice
	ROIPercent               float64
	RSI                      float64
	Momentum                 float64
	BaselineDeviationPercent float64
	AvgRecoveryTimeMinutes   float64

	// --- Scoring ---
	OpportunityScore float64 // [0, 100]
	Confidence       float64 // [0, 100]
	Action           SignalAction

	// --- Risk flags ---
	IsAnomaly          bool
	IsSafeForTimeframe bool
}

// RankValue is the sort key used to rank signals: score × confidence.
func (s MarketSignal) RankValue() float64 {
	return s.OpportunityScore * s.Confidence
}

// SpreadGp devuelve el spread bruto en gp.
func (s MarketSignal) SpreadGp() int64 {
	return s.InstaBuyPrice - s.InstaSellPrice
}

// IsBullish returns true for BUY and ACCUMULATE.
func (s MarketSignal) IsBullish() bool {
	return s.Action == ActionBuy || s.Action == ActionAccumulate
}

// IsHighConfidence returns true when confidence >= 70.
func (s MarketSignal) IsHighConfidence() bool {
	return s.Confidence >= 70
}

// Summary is a one-line description for logs and panels.
func (s MarketSignal) Summary() string {
	return fmt.Sprintf("%s: %s (%.0f%% conf) - Margin: %dgp, ROI: %.2f%%",
		s.ItemName, s.Action, s.Confidence, s.MarginAfterTax, s.ROIPercent)
}

func (s MarketSignal) String() string { return s.Summary() }

// ScanConfig contiene los parámetros de un scan.
type ScanConfig struct {
	TimeHorizonMinutes int
	RiskTolerance      RiskTolerance
	MinScore           float64
	MaxResults         int
}

const (
	DefaultTimeHorizon = 30
	DefaultMinScore    = 30.0
	DefaultMaxResults  = 25
)

// DefaultScanConfig devuelve la configuración por defecto: 30 minutos, riesgo medio.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		TimeHorizonMinutes: DefaultTimeHorizon,
		RiskTolerance:      RiskMedium,
		MinScore:           DefaultMinScore,
		MaxResults:         DefaultMaxResults,
	}
}

// MaxRecoveryMinutes is the slowest price recovery accepted for this horizon.
func (c ScanConfig) MaxRecoveryMinutes() float64 {
	return float64(c.TimeHorizonMinutes) * 3
}
