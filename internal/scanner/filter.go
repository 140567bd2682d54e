package scanner

import (
	"log/slog"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// isTradeable descarta items con precios inválidos o poca liquidez.
// Es un filtro previo al análisis: estos items no llegan al Analyzer.
func isTradeable(q domain.ItemQuote) bool {
	return q.HasValidSpread() && q.TotalVolume() >= domain.MinLiquidity
}

// PassesElasticityCheck rejects items whose price recovers too slowly for the
// horizon: recovery must be at most 3× the horizon. For 5-minute flips only
// items recovering in 15 minutes or less pass.
func PassesElasticityCheck(sig domain.MarketSignal, timeHorizonMinutes int) bool {
	maxRecovery := float64(timeHorizonMinutes) * 3
	if sig.AvgRecoveryTimeMinutes <= maxRecovery {
		return true
	}
	slog.Debug("failed elasticity check",
		"item", sig.ItemName,
		"recovery_min", sig.AvgRecoveryTimeMinutes,
		"max_min", maxRecovery,
	)
	return false
}

// Filter aplica el elasticity check y el score mínimo.
type Filter struct {
	cfg domain.ScanConfig
}

// NewFilter crea un Filter con la configuración del scan.
func NewFilter(cfg domain.ScanConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve las señales que pasan todos los filtros.
func (f *Filter) Apply(signals []domain.MarketSignal) []domain.MarketSignal {
	result := make([]domain.MarketSignal, 0, len(signals))
	for _, sig := range signals {
		if f.passes(sig) {
			result = append(result, sig)
		}
	}
	return result
}

func (f *Filter) passes(sig domain.MarketSignal) bool {
	if !PassesElasticityCheck(sig, f.cfg.TimeHorizonMinutes) {
		return false
	}
	return sig.OpportunityScore >= f.cfg.MinScore
}
