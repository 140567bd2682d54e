package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/alejandrodnm/flipsignal/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	AnalysisWorkers int // goroutines para análisis paralelo (0 = NumCPU*2)
	CacheSize       int // items por caché (nombre, buy limit, recuperación)
}

// DefaultConfig devuelve la configuración por defecto del scanner.
func DefaultConfig() Config {
	return Config{CacheSize: defaultCacheSize}
}

// Scanner es el signal engine: snapshot → análisis → filtros → ranking.
//
// Scan está pensado para correr en un worker de fondo. No deduplica scans
// concurrentes; el llamador no debe solaparlos.
type Scanner struct {
	cfg      Config
	source   ports.SnapshotSource
	catalog  ports.CatalogSource
	clock    ports.Clock
	analyzer *Analyzer

	mu      sync.RWMutex
	volumes map[int]int64 // volumen 24h de cada item del último snapshot
}

// New crea un Scanner con todas las dependencias inyectadas.
// catalog puede ser nil: los items se nombran "Item #<id>" con buy limit por defecto.
func New(
	cfg Config,
	source ports.SnapshotSource,
	catalog ports.CatalogSource,
	indicators IndicatorSource,
	clock ports.Clock,
) *Scanner {
	return &Scanner{
		cfg:      cfg,
		source:   source,
		catalog:  catalog,
		clock:    clock,
		analyzer: NewAnalyzer(indicators, cfg.CacheSize),
	}
}

// LoadCatalog precarga nombres y buy limits desde el CatalogSource.
func (s *Scanner) LoadCatalog(ctx context.Context) error {
	if s.catalog == nil {
		return nil
	}
	items, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("scanner.LoadCatalog: %w", err)
	}
	for _, m := range items {
		s.analyzer.learnItem(m)
	}
	slog.Info("item catalog loaded", "items", len(items))
	return nil
}

// SetBuyLimits registers buy limits for items not yet known.
func (s *Scanner) SetBuyLimits(limits map[int]int) {
	for id, limit := range limits {
		s.analyzer.learnItem(domain.ItemMapping{ItemID: id, BuyLimit: limit})
	}
}

// Volume24h devuelve el volumen 24h total del item en el último snapshot
// válido, filtrado o no. 0 si el item no apareció nunca.
func (s *Scanner) Volume24h(itemID int) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volumes[itemID]
}

func (s *Scanner) recordVolumes(snapshot domain.Snapshot) {
	volumes := make(map[int]int64, len(snapshot))
	for id, q := range snapshot {
		volumes[id] = q.TotalVolume()
	}
	s.mu.Lock()
	s.volumes = volumes
	s.mu.Unlock()
}

// Scan devuelve las señales ranqueadas por score × confidence.
//
// Nunca devuelve error: si el snapshot falla o viene vacío se loguea un
// warning y se devuelve una lista vacía ("sin señal, reintentar el próximo ciclo").
func (s *Scanner) Scan(ctx context.Context, cfg domain.ScanConfig) []domain.MarketSignal {
	start := time.Now()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = domain.DefaultMaxResults
	}

	slog.Info("scan starting",
		"horizon_min", cfg.TimeHorizonMinutes,
		"risk", cfg.RiskTolerance.String(),
		"min_score", cfg.MinScore,
	)

	snapshot, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		slog.Warn("snapshot unavailable, no signals this cycle", "err", err)
		return []domain.MarketSignal{}
	}
	if len(snapshot) == 0 {
		slog.Warn("snapshot is empty, no signals this cycle")
		return []domain.MarketSignal{}
	}
	s.recordVolumes(snapshot)

	quotes := tradeableQuotes(snapshot)
	weights := domain.CalculateWeights(cfg.TimeHorizonMinutes)

	analyzed := analyzeItemsConcurrent(ctx, s.analyzer, quotes, weights, cfg, s.clock.Now(), s.cfg.AnalysisWorkers)
	filtered := NewFilter(cfg).Apply(analyzed)
	ranked := rankSignals(filtered)

	if len(ranked) > cfg.MaxResults {
		ranked = ranked[:cfg.MaxResults]
	}

	slog.Info("scan complete",
		"items", len(snapshot),
		"tradeable", len(quotes),
		"passed_filters", len(filtered),
		"signals", len(ranked),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return ranked
}

// tradeableQuotes extrae los quotes que pasan el filtro previo.
func tradeableQuotes(snapshot domain.Snapshot) []domain.ItemQuote {
	quotes := make([]domain.ItemQuote, 0, len(snapshot))
	for id, q := range snapshot {
		q.ItemID = id
		if !isTradeable(q) {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// rankSignals ordena por score × confidence descendente; empate por item ID.
func rankSignals(signals []domain.MarketSignal) []domain.MarketSignal {
	sort.SliceStable(signals, func(i, j int) bool {
		ri, rj := signals[i].RankValue(), signals[j].RankValue()
		if ri != rj {
			return ri > rj
		}
		return signals[i].ItemID < signals[j].ItemID
	})
	return signals
}
