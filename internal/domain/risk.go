package domain

import (
	"fmt"
	"strings"
)

// RiskTolerance is the user's risk appetite. Each tier carries the whole set of
// constants that change with it, so the scorer and the pricing engine always
// move together.
type RiskTolerance int

const (
	RiskLow RiskTolerance = iota
	RiskMedium
	RiskHigh
)

type riskProfile struct {
	name             string
	rsiBuy           float64
	rsiSell          float64
	positionFraction float64
	stopLoss         float64
	takeProfit       float64
}

var riskProfiles = [...]riskProfile{
	RiskLow:    {name: "LOW", rsiBuy: 25, rsiSell: 75, positionFraction: 0.05, stopLoss: 0.97, takeProfit: 1.05},
	RiskMedium: {name: "MEDIUM", rsiBuy: 30, rsiSell: 70, positionFraction: 0.10, stopLoss: 0.95, takeProfit: 1.10},
	RiskHigh:   {name: "HIGH", rsiBuy: 40, rsiSell: 60, positionFraction: 0.20, stopLoss: 0.93, takeProfit: 1.15},
}

// profile clamps out-of-range values to the nearest tier.
func (r RiskTolerance) profile() riskProfile {
	switch {
	case r < RiskLow:
		return riskProfiles[RiskLow]
	case r > RiskHigh:
		return riskProfiles[RiskHigh]
	}
	return riskProfiles[r]
}

// Level returns the tier index (0, 1 or 2) after clamping.
func (r RiskTolerance) Level() int {
	return int(min(max(r, RiskLow), RiskHigh))
}

func (r RiskTolerance) String() string { return r.profile().name }

// RSIBuyThreshold: RSI below this is treated as oversold.
func (r RiskTolerance) RSIBuyThreshold() float64 { return r.profile().rsiBuy }

// RSISellThreshold: RSI above this is treated as overbought.
func (r RiskTolerance) RSISellThreshold() float64 { return r.profile().rsiSell }

// PositionFraction is the share of available capital committed to one flip.
func (r RiskTolerance) PositionFraction() float64 { return r.profile().positionFraction }

// StopLossMultiplier is applied to the buy price. Higher tolerance cuts losses sooner.
func (r RiskTolerance) StopLossMultiplier() float64 { return r.profile().stopLoss }

// TakeProfitMultiplier is applied to the sell price.
func (r RiskTolerance) TakeProfitMultiplier() float64 { return r.profile().takeProfit }

// ParseRiskTolerance acepta "low", "medium", "high" (o 0, 1, 2).
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "0":
		return RiskLow, nil
	case "medium", "med", "1", "":
		return RiskMedium, nil
	case "high", "2":
		return RiskHigh, nil
	}
	return RiskMedium, fmt.Errorf("domain.ParseRiskTolerance: unknown risk tolerance %q", s)
}
