package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCache_PutIfAbsentKeepsFirst(t *testing.T) {
	c := newItemCache[string](4)

	assert.Equal(t, "first", c.putIfAbsent(1, "first"))
	assert.Equal(t, "first", c.putIfAbsent(1, "second"))

	v, ok := c.get(1)
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestItemCache_GetOrComputeRunsOnce(t *testing.T) {
	c := newItemCache[float64](4)
	calls := 0
	compute := func() float64 { calls++; return 42 }

	assert.Equal(t, 42.0, c.getOrCompute(7, compute))
	assert.Equal(t, 42.0, c.getOrCompute(7, compute))
	assert.Equal(t, 1, calls)
}

func TestItemCache_Bounded(t *testing.T) {
	c := newItemCache[int](3)
	for id := 0; id < 10; id++ {
		c.putIfAbsent(id, id)
	}
	assert.Equal(t, 3, c.len())

	_, ok := c.get(0)
	assert.False(t, ok, "oldest entry evicted")
	_, ok = c.get(9)
	assert.True(t, ok)
}

func TestItemCache_NonPositiveSizeUsesDefault(t *testing.T) {
	c := newItemCache[int](0)
	assert.NotNil(t, c.lru)
}

func TestIsTradeable(t *testing.T) {
	tests := []struct {
		name string
		q    domain.ItemQuote
		want bool
	}{
		{"valid", domain.ItemQuote{InstaBuyPrice: 110, InstaSellPrice: 100, BuyVolume24h: 25, SellVolume24h: 25}, true},
		{"below liquidity", domain.ItemQuote{InstaBuyPrice: 110, InstaSellPrice: 100, BuyVolume24h: 24, SellVolume24h: 25}, false},
		{"inverted", domain.ItemQuote{InstaBuyPrice: 90, InstaSellPrice: 100, BuyVolume24h: 500, SellVolume24h: 500}, false},
		{"zero high", domain.ItemQuote{InstaSellPrice: 100, BuyVolume24h: 500, SellVolume24h: 500}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTradeable(tt.q))
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	cfg := domain.ScanConfig{TimeHorizonMinutes: 10, MinScore: 60}
	in := []domain.MarketSignal{
		{ItemID: 1, OpportunityScore: 70, AvgRecoveryTimeMinutes: 10},
		{ItemID: 2, OpportunityScore: 59.9, AvgRecoveryTimeMinutes: 10},
		{ItemID: 3, OpportunityScore: 90, AvgRecoveryTimeMinutes: 31},
		{ItemID: 4, OpportunityScore: 60, AvgRecoveryTimeMinutes: 30},
	}

	out := NewFilter(cfg).Apply(in)

	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].ItemID)
	assert.Equal(t, 4, out[1].ItemID)
}

func TestAnalyzeItemsConcurrent_AllItems(t *testing.T) {
	a := NewAnalyzer(SnapshotIndicators{}, 0)
	quotes := make([]domain.ItemQuote, 0, 500)
	for id := 1; id <= 500; id++ {
		quotes = append(quotes, domain.ItemQuote{
			ItemID: id, InstaBuyPrice: 1100, InstaSellPrice: 1000,
			BuyVolume24h: 300, SellVolume24h: 300,
		})
	}
	cfg := domain.DefaultScanConfig()

	out := analyzeItemsConcurrent(context.Background(), a, quotes, domain.CalculateWeights(cfg.TimeHorizonMinutes), cfg, time.Now(), 8)

	assert.Len(t, out, 500)
	seen := make(map[int]bool, len(out))
	for _, sig := range out {
		seen[sig.ItemID] = true
	}
	assert.Len(t, seen, 500)
}

func TestAnalyzeItemsConcurrent_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(SnapshotIndicators{}, 0)
	quotes := []domain.ItemQuote{{ItemID: 1, InstaBuyPrice: 110, InstaSellPrice: 100, BuyVolume24h: 100, SellVolume24h: 100}}
	cfg := domain.DefaultScanConfig()

	out := analyzeItemsConcurrent(ctx, a, quotes, domain.CalculateWeights(30), cfg, time.Now(), 2)
	assert.Empty(t, out)
}

func TestAnalyzer_NamesAndLimits(t *testing.T) {
	a := NewAnalyzer(nil, 16)
	a.learnItem(domain.ItemMapping{ItemID: 561, Name: "Nature rune", BuyLimit: 18_000})
	a.learnItem(domain.ItemMapping{ItemID: 561, Name: "Renamed", BuyLimit: 1})
	a.learnItem(domain.ItemMapping{ItemID: 562, BuyLimit: 0})

	assert.Equal(t, "Nature rune", a.ItemName(561))
	assert.Equal(t, 18_000, a.BuyLimit(561))
	assert.Equal(t, "Item #562", a.ItemName(562))
	assert.Equal(t, DefaultBuyLimit, a.BuyLimit(562))
}
