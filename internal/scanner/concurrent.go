package scanner

// concurrent.go: worker pool para el análisis paralelo de items.
//
// El catálogo tiene miles de items; el scoring es CPU puro, así que repartirlo
// entre cores acorta el ciclo sin tocar la API.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// analyzeItemsConcurrent analiza todos los quotes en paralelo.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func analyzeItemsConcurrent(
	ctx context.Context,
	analyzer *Analyzer,
	quotes []domain.ItemQuote,
	weights domain.WeightProfile,
	cfg domain.ScanConfig,
	now time.Time,
	workers int,
) []domain.MarketSignal {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan domain.ItemQuote, len(quotes))
	resultCh := make(chan domain.MarketSignal, len(quotes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range workCh {
				if ctx.Err() != nil {
					continue // drenar sin trabajar
				}
				resultCh <- analyzer.Analyze(q, weights, cfg, now)
			}
		}()
	}

	for _, q := range quotes {
		workCh <- q
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	signals := make([]domain.MarketSignal, 0, len(quotes))
	for sig := range resultCh {
		signals = append(signals, sig)
	}

	slog.Debug("concurrent analysis complete",
		"items_queued", len(quotes),
		"signals", len(signals),
		"workers", workers,
	)

	return signals
}
