package domain

import "time"

// CycleReport is everything produced by one advisor cycle.
type CycleReport struct {
	CycleID         string
	StartedAt       time.Time
	Duration        time.Duration
	Config          ScanConfig
	Signals         []MarketSignal
	Recommendations []PriceRecommendation
	Evaluation      *EvaluationResult
	StaleOffers     []ActiveOffer
}
