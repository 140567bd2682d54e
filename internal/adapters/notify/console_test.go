package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/adapters/notify"
	"github.com/alejandrodnm/flipsignal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cycleAt = time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)

func makeSignal(id int, name string, score float64) domain.MarketSignal {
	return domain.MarketSignal{
		ItemID:                 id,
		ItemName:               name,
		InstaBuyPrice:          1_500_000,
		InstaSellPrice:         1_450_000,
		Volume24h:              6000,
		BuyLimit:               70,
		SpreadPercent:          3.45,
		MarginAfterTax:         20_000,
		ROIPercent:             1.38,
		AvgRecoveryTimeMinutes: 7.5,
		OpportunityScore:       score,
		Confidence:             72,
		Action:                 domain.ActionForScore(score),
		IsSafeForTimeframe:     true,
	}
}

func makeReport(signals ...domain.MarketSignal) domain.CycleReport {
	return domain.CycleReport{
		CycleID:   "3f1c9a2e-0000-4000-8000-000000000000",
		StartedAt: cycleAt,
		Config:    domain.DefaultScanConfig(),
		Signals:   signals,
	}
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false, false)

	r := makeReport(makeSignal(4151, "Abyssal whip", 81), makeSignal(2, "Cannonball", 64))
	r.Recommendations = []domain.PriceRecommendation{{ItemName: "Abyssal whip", Quantity: 3, Reasoning: "Buy at 1,450,001gp"}}

	require.NoError(t, n.Notify(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "[14:05:09] 2 signals (30m, MEDIUM)")
	assert.Contains(t, out, "BUY Abyssal whip 81/72% m:20,000gp")
	assert.Contains(t, out, "HOLD Cannonball")
	assert.Contains(t, out, "→ Abyssal whip x3: Buy at 1,450,001gp")
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true, false)

	r := makeReport(makeSignal(4151, "Abyssal whip", 81))
	r.Recommendations = []domain.PriceRecommendation{{
		ItemName: "Abyssal whip", Quantity: 3, BuyAt: 1_450_001, SellAt: 1_499_999,
		NetProfit: -10, StopLoss: 1_406_500, TakeProfit: 1_575_000,
	}}

	require.NoError(t, n.Notify(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "Abyssal whip")
	assert.Contains(t, out, "1,500,000")
	assert.Contains(t, out, "20,000")
	assert.Contains(t, out, "PRICE PLAN")
	assert.Contains(t, out, "not profitable after tax")
	assert.Contains(t, out, "cycle 3f1c9...")
}

func TestConsole_Notify_EmptySignals(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true, true)

	require.NoError(t, n.Notify(context.Background(), makeReport()))
	assert.Contains(t, buf.String(), "no signals this cycle")
}

func TestConsole_Notify_OffersAndStale(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false, false)

	r := makeReport(makeSignal(4151, "Abyssal whip", 81))
	r.Evaluation = &domain.EvaluationResult{
		ShouldCancel:   true,
		Urgency:        domain.UrgencyHigh,
		OfferSlot:      2,
		OfferItemName:  "Dragon bones",
		Recommendation: "CANCEL RECOMMENDED: Abyssal whip offers 3.0x better rate",
	}
	r.StaleOffers = []domain.ActiveOffer{{Slot: 5, ItemName: "Yew logs", Quantity: 1000, QuantityFilled: 10, CreatedAt: cycleAt.Add(-3 * time.Hour)}}

	require.NoError(t, n.Notify(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "[HIGH] slot 2 (Dragon bones): CANCEL RECOMMENDED")
	assert.Contains(t, out, "[STALE] slot 5 (Yew logs): open since 11:05, 10/1000 filled")
}

func TestConsole_Notify_Explain(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false, true)

	require.NoError(t, n.Notify(context.Background(), makeReport(makeSignal(4151, "Abyssal whip", 81))))

	out := buf.String()
	assert.Contains(t, out, "EXPLAIN")
	assert.Contains(t, out, "tax:        30,000gp on a 1,500,000gp sale")
	assert.Contains(t, out, "Abyssal whip: BUY (72% conf)")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false, false)

	n.PrintHistory(nil, 4)
	assert.Contains(t, buf.String(), "no stored signals in range (4 cycles stored)")

	// Las filas leídas de SQLite no traen IsSafeForTimeframe
	stored := makeSignal(2, "Cannonball", 64)
	stored.IsSafeForTimeframe = false

	buf.Reset()
	n.PrintHistory([]domain.MarketSignal{stored}, 12)
	out := buf.String()
	assert.Contains(t, out, "HISTORY (1 items, 12 cycles stored)")
	assert.Contains(t, out, "Cannonball")
	assert.NotContains(t, out, "~", "no horizon in history mode")
}

func TestConsole_Notify_SlowFlag(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true, false)

	slow := makeSignal(2, "Cannonball", 64)
	slow.IsSafeForTimeframe = false
	require.NoError(t, n.Notify(context.Background(), makeReport(slow)))

	out := buf.String()
	assert.Contains(t, out, "~*")
	assert.Contains(t, out, "~ slow for horizon")
}
