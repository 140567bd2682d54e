package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/flipsignal/internal/application/engine"
	"github.com/alejandrodnm/flipsignal/internal/application/engine/opportunity"
	"github.com/alejandrodnm/flipsignal/internal/application/engine/pricing"
	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/alejandrodnm/flipsignal/internal/ports"
)

const (
	DefaultTopN    = 1
	defaultCapital = 10_000_000
)

// Config holds the pricing settings of a cycle.
type Config struct {
	Scan          domain.ScanConfig
	Capital       int64 // gp available for new positions
	TopN          int   // signals priced per cycle
	SupportOffset int64 // support = instaSell - offset
	ResistOffset  int64 // resist = instaBuy + offset
}

// Engine runs one integrated advisory cycle:
// scan → price the top signals → evaluate tracked offers → notify → persist.
type Engine struct {
	scanner  engine.ScannerService
	pricer   *pricing.Engine
	manager  *opportunity.Manager
	offers   ports.OfferStorage
	store    ports.Storage
	notifier ports.Notifier
	clock    ports.Clock
	cfg      Config
}

// New creates an advisor. offers, store and notifier may be nil.
func New(
	scanner engine.ScannerService,
	offers ports.OfferStorage,
	store ports.Storage,
	notifier ports.Notifier,
	clock ports.Clock,
	cfg Config,
) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Capital <= 0 {
		cfg.Capital = defaultCapital
	}
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &Engine{
		scanner:  scanner,
		pricer:   pricing.New(),
		manager:  opportunity.NewManager(clock),
		offers:   offers,
		store:    store,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
	}
}

// RunOnce executes a single cycle. Only context cancellation is returned as
// an error; storage and notifier failures are logged.
func (e *Engine) RunOnce(ctx context.Context) (*domain.CycleReport, error) {
	start := e.clock.Now()
	report := &domain.CycleReport{
		CycleID:   uuid.NewString(),
		StartedAt: start,
		Config:    e.cfg.Scan,
	}

	report.Signals = e.scanner.Scan(ctx, e.cfg.Scan)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("advisor.RunOnce: %w", err)
	}

	report.Recommendations = e.priceTop(report.Signals)

	offers := e.loadOffers(ctx)
	if len(offers) > 0 {
		eval := e.manager.EvaluateBest(offers, report.Signals)
		report.Evaluation = &eval
		report.StaleOffers = e.staleOffers(offers, report.Signals)
	}

	report.Duration = e.clock.Now().Sub(start)

	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, *report); err != nil {
			slog.Warn("advisor: notify failed", "err", err)
		}
	}
	if e.store != nil {
		if err := e.store.SaveScan(ctx, *report); err != nil {
			slog.Warn("advisor: error saving scan", "err", err)
		}
	}

	slog.Info("advisor: cycle complete",
		"cycle", report.CycleID,
		"signals", len(report.Signals),
		"priced", len(report.Recommendations),
		"offers", len(offers),
		"stale", len(report.StaleOffers),
	)
	return report, nil
}

// priceTop builds recommendations for TopN signals, using support and
// resistance at a fixed offset around the current spread. The best bullish,
// timeframe-safe signal is priced first; the rest follow the ranking.
func (e *Engine) priceTop(signals []domain.MarketSignal) []domain.PriceRecommendation {
	n := min(e.cfg.TopN, len(signals))
	picked := make([]domain.MarketSignal, 0, n)

	best, found := opportunity.FindBestOpportunity(signals, e.cfg.Scan.MinScore)
	if found && n > 0 {
		picked = append(picked, best)
	}
	for _, sig := range signals {
		if len(picked) >= n {
			break
		}
		if found && sig.ItemID == best.ItemID {
			continue
		}
		picked = append(picked, sig)
	}

	recs := make([]domain.PriceRecommendation, 0, len(picked))
	for _, sig := range picked {
		support := sig.InstaSellPrice - e.cfg.SupportOffset
		resist := sig.InstaBuyPrice + e.cfg.ResistOffset
		recs = append(recs, e.pricer.Calculate(sig, e.cfg.Capital, e.cfg.Scan.RiskTolerance, support, resist))
	}
	return recs
}

func (e *Engine) loadOffers(ctx context.Context) []domain.ActiveOffer {
	if e.offers == nil {
		return nil
	}
	offers, err := e.offers.GetActiveOffers(ctx)
	if err != nil {
		slog.Warn("advisor: error loading offers", "err", err)
		return nil
	}
	return offers
}

// staleOffers returns the offers open longer than their stale threshold.
// The 24h volume comes from this cycle's signal for the item or, when the
// item was filtered out, from the scanner's last snapshot.
func (e *Engine) staleOffers(offers []domain.ActiveOffer, signals []domain.MarketSignal) []domain.ActiveOffer {
	volume := make(map[int]int64, len(signals))
	for _, s := range signals {
		volume[s.ItemID] = s.Volume24h
	}

	var stale []domain.ActiveOffer
	for _, o := range offers {
		v, ok := volume[o.ItemID]
		if !ok {
			v = e.scanner.Volume24h(o.ItemID)
		}
		if e.manager.IsStaleOffer(o, v) {
			stale = append(stale, o)
		}
	}
	return stale
}

// ImportOffers replaces the tracked offers with the given ones. Offers
// without an ID get one; a missing creation time means "now".
func (e *Engine) ImportOffers(ctx context.Context, offers []domain.ActiveOffer) error {
	if e.offers == nil {
		return fmt.Errorf("advisor.ImportOffers: no offer storage configured")
	}

	current, err := e.offers.GetActiveOffers(ctx)
	if err != nil {
		return fmt.Errorf("advisor.ImportOffers: list: %w", err)
	}
	keep := make(map[int]bool, len(offers))
	for _, o := range offers {
		keep[o.Slot] = true
	}
	for _, o := range current {
		if keep[o.Slot] {
			continue
		}
		if err := e.offers.RemoveOffer(ctx, o.Slot); err != nil {
			return fmt.Errorf("advisor.ImportOffers: remove slot %d: %w", o.Slot, err)
		}
	}

	now := e.clock.Now()
	for _, o := range offers {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if err := e.offers.SaveOffer(ctx, o); err != nil {
			return fmt.Errorf("advisor.ImportOffers: save slot %d: %w", o.Slot, err)
		}
	}

	slog.Info("advisor: offers imported", "count", len(offers), "at", now.Format(time.RFC3339))
	return nil
}
