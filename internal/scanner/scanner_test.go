package scanner_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/alejandrodnm/flipsignal/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSnapshotSource struct {
	snapshot domain.Snapshot
	err      error
	calls    int
}

func (m *mockSnapshotSource) FetchSnapshot(_ context.Context) (domain.Snapshot, error) {
	m.calls++
	return m.snapshot, m.err
}

type mockCatalog struct {
	items []domain.ItemMapping
	err   error
}

func (m *mockCatalog) FetchCatalog(_ context.Context) ([]domain.ItemMapping, error) {
	return m.items, m.err
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var scanTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- helpers ---

func quote(buy, sell, buyVol, sellVol int64) domain.ItemQuote {
	return domain.ItemQuote{
		InstaBuyPrice:  buy,
		InstaSellPrice: sell,
		BuyVolume24h:   buyVol,
		SellVolume24h:  sellVol,
	}
}

func newScanner(src *mockSnapshotSource, catalog *mockCatalog) *scanner.Scanner {
	cfg := scanner.DefaultConfig()
	cfg.AnalysisWorkers = 4
	if catalog == nil {
		return scanner.New(cfg, src, nil, scanner.SnapshotIndicators{}, fixedClock(scanTime))
	}
	return scanner.New(cfg, src, catalog, scanner.SnapshotIndicators{}, fixedClock(scanTime))
}

func scanConfig(minScore float64, maxResults int) domain.ScanConfig {
	cfg := domain.DefaultScanConfig()
	cfg.MinScore = minScore
	cfg.MaxResults = maxResults
	return cfg
}

// --- tests ---

func TestScanner_Scan_FetchErrorReturnsEmpty(t *testing.T) {
	src := &mockSnapshotSource{err: errors.New("connection refused")}
	s := newScanner(src, nil)

	signals := s.Scan(context.Background(), domain.DefaultScanConfig())

	require.NotNil(t, signals)
	assert.Empty(t, signals)
	assert.Equal(t, 1, src.calls)
}

func TestScanner_Scan_EmptySnapshot(t *testing.T) {
	s := newScanner(&mockSnapshotSource{snapshot: domain.Snapshot{}}, nil)
	signals := s.Scan(context.Background(), domain.DefaultScanConfig())
	require.NotNil(t, signals)
	assert.Empty(t, signals)
}

func TestScanner_Scan_SkipsMalformedItems(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{
		1: quote(110, 100, 2500, 2500), // valid
		2: quote(100, 110, 2500, 2500), // inverted
		3: quote(100, 100, 2500, 2500), // no spread
		4: quote(0, 100, 2500, 2500),   // missing price
		5: quote(110, 100, 20, 20),     // illiquid (40 < 50)
		6: quote(110, 100, 0, 0),       // missing volume
	}}
	s := newScanner(src, nil)

	signals := s.Scan(context.Background(), scanConfig(0, 25))

	require.Len(t, signals, 1)
	assert.Equal(t, 1, signals[0].ItemID)
	for _, sig := range signals {
		assert.Greater(t, sig.InstaBuyPrice, sig.InstaSellPrice)
	}
}

func TestScanner_Scan_SmallFlipScenario(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{1: quote(110, 100, 2500, 2500)}}
	s := newScanner(src, nil)

	signals := s.Scan(context.Background(), scanConfig(0, 25))
	require.Len(t, signals, 1)
	sig := signals[0]

	assert.InDelta(t, 10.0, sig.SpreadPercent, 1e-9)
	assert.Equal(t, int64(8), sig.MarginAfterTax)
	assert.InDelta(t, 8.0, sig.ROIPercent, 1e-9)
	assert.Equal(t, int64(5000), sig.Volume24h)
	assert.Equal(t, 10.0, sig.AvgRecoveryTimeMinutes, "liquid ×0.5, wide spread ×2")
	assert.True(t, sig.IsSafeForTimeframe)
	assert.False(t, sig.IsAnomaly)
	assert.Equal(t, scanTime, sig.Timestamp)
	assert.Equal(t, "Item #1", sig.ItemName)
	assert.Equal(t, scanner.DefaultBuyLimit, sig.BuyLimit)

	w := domain.CalculateWeights(30)
	want := 50 + 15*w.Spread + math.Log10(5000)*5*w.VolumeSurge + 10
	assert.InDelta(t, want, sig.OpportunityScore, 1e-9, "spread and ROI bonuses applied")
	assert.Greater(t, sig.OpportunityScore, 60.0)
	assert.InDelta(t, (want-50)*2, sig.Confidence, 1e-9)
	assert.Equal(t, domain.ActionForScore(want), sig.Action)
}

func TestScanner_Scan_RanksAndTruncates(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{
		3: quote(1010, 1000, 100, 100),
		1: quote(110, 100, 2500, 2500),
		2: quote(1050, 1000, 10_000, 10_000),
	}}
	s := newScanner(src, nil)

	all := s.Scan(context.Background(), scanConfig(0, 25))
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, ids(all))
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].RankValue(), all[i].RankValue())
	}

	top := s.Scan(context.Background(), scanConfig(0, 2))
	assert.Equal(t, []int{1, 2}, ids(top))
}

func TestScanner_Scan_DefaultMaxResults(t *testing.T) {
	snap := domain.Snapshot{}
	for id := 1; id <= 40; id++ {
		snap[id] = quote(110+int64(id), 100, 2500, 2500)
	}
	s := newScanner(&mockSnapshotSource{snapshot: snap}, nil)

	signals := s.Scan(context.Background(), scanConfig(0, 0))
	assert.Len(t, signals, domain.DefaultMaxResults)
}

func TestScanner_Scan_MinScoreCutoff(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{
		1: quote(110, 100, 2500, 2500),  // ~67.8
		3: quote(1010, 1000, 100, 100), // ~52.2
	}}
	s := newScanner(src, nil)

	signals := s.Scan(context.Background(), scanConfig(55, 25))
	assert.Equal(t, []int{1}, ids(signals))
}

func TestScanner_Scan_ElasticityRejectsSlowItems(t *testing.T) {
	// 60 units and a 10% spread: recovery 10 × 2 × 2 = 40 minutes.
	src := &mockSnapshotSource{snapshot: domain.Snapshot{7: quote(110, 100, 30, 30)}}

	cfg := scanConfig(0, 25)
	cfg.TimeHorizonMinutes = 13 // max 39
	assert.Empty(t, newScanner(src, nil).Scan(context.Background(), cfg))

	cfg.TimeHorizonMinutes = 14 // max 42
	assert.Len(t, newScanner(src, nil).Scan(context.Background(), cfg), 1)
}

func TestPassesElasticityCheck_Boundary(t *testing.T) {
	const horizon = 20
	eps := 1e-6
	assert.False(t, scanner.PassesElasticityCheck(domain.MarketSignal{AvgRecoveryTimeMinutes: 3*horizon + eps}, horizon))
	assert.True(t, scanner.PassesElasticityCheck(domain.MarketSignal{AvgRecoveryTimeMinutes: 3*horizon - eps}, horizon))
	assert.True(t, scanner.PassesElasticityCheck(domain.MarketSignal{AvgRecoveryTimeMinutes: 3 * horizon}, horizon))
}

func TestScanner_RecoveryTimeIsMemoized(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{1: quote(110, 100, 2500, 2500)}}
	s := newScanner(src, nil)

	first := s.Scan(context.Background(), scanConfig(0, 25))
	require.Len(t, first, 1)
	assert.Equal(t, 10.0, first[0].AvgRecoveryTimeMinutes)

	// Illiquid now, a fresh estimate would be 40 minutes.
	src.snapshot = domain.Snapshot{1: quote(110, 100, 30, 30)}
	second := s.Scan(context.Background(), scanConfig(0, 25))
	require.Len(t, second, 1)
	assert.Equal(t, 10.0, second[0].AvgRecoveryTimeMinutes)
}

func TestScanner_Catalog(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{
		4151: quote(1_500_000, 1_450_000, 6000, 6000),
		2:    quote(110, 100, 2500, 2500),
	}}
	catalog := &mockCatalog{items: []domain.ItemMapping{{ItemID: 4151, Name: "Abyssal whip", BuyLimit: 70}}}
	s := newScanner(src, catalog)

	require.NoError(t, s.LoadCatalog(context.Background()))
	s.SetBuyLimits(map[int]int{4151: 5, 2: 13_000})

	signals := s.Scan(context.Background(), scanConfig(0, 25))
	byID := make(map[int]domain.MarketSignal)
	for _, sig := range signals {
		byID[sig.ItemID] = sig
	}

	require.Contains(t, byID, 4151)
	assert.Equal(t, "Abyssal whip", byID[4151].ItemName)
	assert.Equal(t, 70, byID[4151].BuyLimit, "first known limit is kept")
	assert.Equal(t, 13_000, byID[2].BuyLimit)
}

func TestScanner_LoadCatalog_Error(t *testing.T) {
	s := newScanner(&mockSnapshotSource{}, &mockCatalog{err: errors.New("503")})
	assert.Error(t, s.LoadCatalog(context.Background()))
}

func TestScanner_Scan_DeterministicWithSnapshotIndicators(t *testing.T) {
	snap := domain.Snapshot{}
	for id := 1; id <= 200; id++ {
		snap[id] = quote(1000+int64(id*7), 1000, int64(50*id), int64(3000-10*id))
	}
	s := newScanner(&mockSnapshotSource{snapshot: snap}, nil)

	a := s.Scan(context.Background(), scanConfig(0, 50))
	b := s.Scan(context.Background(), scanConfig(0, 50))
	assert.Equal(t, a, b)
}

func TestScanner_Scan_SimulatedIndicatorsStayBounded(t *testing.T) {
	snap := domain.Snapshot{}
	for id := 1; id <= 100; id++ {
		snap[id] = quote(1000+int64(id*3), 1000, int64(40*id), 2000)
	}
	cfg := scanner.DefaultConfig()
	s := scanner.New(cfg, &mockSnapshotSource{snapshot: snap}, nil, scanner.NewSimulatedIndicators(), fixedClock(scanTime))

	for _, sig := range s.Scan(context.Background(), scanConfig(0, 100)) {
		assert.GreaterOrEqual(t, sig.BaselineDeviationPercent, -5.0)
		assert.Less(t, sig.BaselineDeviationPercent, 5.0)
		assert.GreaterOrEqual(t, sig.OpportunityScore, 0.0)
		assert.LessOrEqual(t, sig.OpportunityScore, 100.0)
	}
}

func ids(signals []domain.MarketSignal) []int {
	out := make([]int, len(signals))
	for i, s := range signals {
		out[i] = s.ItemID
	}
	return out
}

func TestScanner_Volume24h_CoversFilteredItems(t *testing.T) {
	src := &mockSnapshotSource{snapshot: domain.Snapshot{
		7: quote(1001, 1000, 500_000, 500_000), // spread 0.1%: no pasa min_score
		9: quote(100, 100, 10, 15),             // spread nulo: no es tradeable
	}}
	s := newScanner(src, nil)
	assert.Zero(t, s.Volume24h(7), "before any scan")

	signals := s.Scan(context.Background(), scanConfig(95, 25))
	assert.Empty(t, signals)
	assert.Equal(t, int64(1_000_000), s.Volume24h(7))
	assert.Equal(t, int64(25), s.Volume24h(9))
	assert.Zero(t, s.Volume24h(4151), "not in snapshot")

	// Un fetch fallido conserva los volúmenes del último snapshot válido.
	src.err = errors.New("timeout")
	s.Scan(context.Background(), scanConfig(95, 25))
	assert.Equal(t, int64(1_000_000), s.Volume24h(7))
}
