package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTax_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		want  int64
	}{
		{"zero", 0, 0},
		{"negative", -500, 0},
		{"below threshold", 49, 0},
		{"at threshold", 50, 1},
		{"just under 2 gp", 99, 1},
		{"two gp", 100, 2},
		{"small flip", 110, 2},
		{"million", 1_000_000, 20_000},
		{"last uncapped", 249_999_999, 4_999_999},
		{"cap reached", 250_000_000, 5_000_000},
		{"capped not 6M", 300_000_000, 5_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tax(tt.price))
		})
	}
}

func TestTax_MatchesTwoPercentFloor(t *testing.T) {
	for p := int64(50); p < 100_000; p += 7 {
		assert.Equal(t, p*2/100, Tax(p), "price %d", p)
	}
}

func TestNetMargin(t *testing.T) {
	assert.Equal(t, int64(8), NetMargin(100, 110))
	assert.Equal(t, int64(5), NetMargin(40, 45), "tax free under 50gp")
	assert.Equal(t, int64(-1), NetMargin(50, 50))
	assert.Equal(t, int64(-5_000_000), NetMargin(300_000_000, 300_000_000))
}

func TestBreakEvenSellPrice_BoundaryExact(t *testing.T) {
	buys := []int64{-10, 0, 1, 10, 48, 49, 50, 51, 98, 99, 100, 101, 147, 1000, 12_345, 999_999,
		244_999_999, 245_000_000, 250_000_000, 400_000_000}

	for _, buy := range buys {
		be := BreakEvenSellPrice(buy)
		assert.GreaterOrEqual(t, NetMargin(buy, be), int64(0), "buy %d be %d", buy, be)
		assert.Less(t, NetMargin(buy, be-1), int64(0), "buy %d be-1 %d", buy, be-1)
	}
}

func TestBreakEvenSellPrice_Examples(t *testing.T) {
	assert.Equal(t, int64(10), BreakEvenSellPrice(10), "no tax below 50gp")
	assert.Equal(t, int64(102), BreakEvenSellPrice(100))
	assert.Equal(t, int64(1020), BreakEvenSellPrice(1000), "ceil(1000/0.98) would say 1021")
	assert.Equal(t, int64(305_000_000), BreakEvenSellPrice(300_000_000), "capped tax")
}

func TestMaxBuyPrice(t *testing.T) {
	assert.Equal(t, int64(98), MaxBuyPrice(110, 10))
	assert.Equal(t, int64(40), MaxBuyPrice(45, 5))
	// Buying at MaxBuyPrice leaves exactly the target margin.
	assert.Equal(t, int64(250), NetMargin(MaxBuyPrice(12_000, 250), 12_000))
}
