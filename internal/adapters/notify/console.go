package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/flipsignal/internal/application/engine"
	"github.com/alejandrodnm/flipsignal/internal/domain"
)

const (
	compactShown = 4
	explainShown = 3
	nameWidth    = 24
)

// Console implementa ports.Notifier.
type Console struct {
	out     io.Writer
	table   bool
	explain bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table, explain bool) *Console {
	return &Console{out: os.Stdout, table: table, explain: explain}
}

// NewConsoleWriter crea un notificador que escribe en w. Útil en tests.
func NewConsoleWriter(w io.Writer, table, explain bool) *Console {
	return &Console{out: w, table: table, explain: explain}
}

// Notify imprime el ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.CycleReport) error {
	ts := report.StartedAt.Format("15:04:05")
	if len(report.Signals) == 0 {
		fmt.Fprintf(c.out, "[%s] no signals this cycle\n", ts)
		c.printOffers(report)
		return nil
	}

	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}

	if c.explain {
		c.printExplain(report.Signals)
	}
	return nil
}

// printCompact imprime lo esencial en 2-3 líneas.
func (c *Console) printCompact(r domain.CycleReport) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d signals (%dm, %s)",
		r.StartedAt.Format("15:04:05"), len(r.Signals), r.Config.TimeHorizonMinutes, r.Config.RiskTolerance)

	for i, s := range r.Signals {
		if i >= compactShown {
			break
		}
		fmt.Fprintf(&sb, " | %s %s %.0f/%.0f%% m:%sgp",
			s.Action, engine.TruncateStr(s.ItemName, nameWidth), s.OpportunityScore, s.Confidence,
			humanize.Comma(s.MarginAfterTax))
	}
	fmt.Fprintln(c.out, sb.String())

	for _, rec := range r.Recommendations {
		fmt.Fprintf(c.out, "  → %s x%d: %s\n", rec.ItemName, rec.Quantity, rec.Reasoning)
	}
	c.printOffers(r)
}

// printFull imprime la tabla completa y el plan de precios.
func (c *Console) printFull(r domain.CycleReport) {
	fmt.Fprintf(c.out, "\n[%s] %d signals | horizon %dm, risk %s, cycle %s\n",
		r.StartedAt.Format("15:04:05"), len(r.Signals),
		r.Config.TimeHorizonMinutes, r.Config.RiskTolerance, engine.TruncateStr(r.CycleID, 8))

	c.printTable(r.Signals, true)

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(c.out, "\n=== PRICE PLAN ===")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(c.out, "  %s x%d  buy %sgp  sell %sgp  net %sgp (%.2f%%)  SL %sgp  TP %sgp\n",
				rec.ItemName, rec.Quantity,
				humanize.Comma(rec.BuyAt), humanize.Comma(rec.SellAt),
				humanize.Comma(rec.NetProfit), rec.EffectiveROI,
				humanize.Comma(rec.StopLoss), humanize.Comma(rec.TakeProfit))
			if !rec.IsProfitable() {
				fmt.Fprintln(c.out, "  ⚠ not profitable after tax")
			}
		}
	}

	c.printOffers(r)
	fmt.Fprintln(c.out)
}

// printTable imprime la tabla de señales. Las señales leídas del historial no
// traen el horizonte con el que se evaluaron, así que withHorizon=false omite
// el flag de recuperación lenta.
func (c *Console) printTable(signals []domain.MarketSignal, withHorizon bool) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Item", "Action", "Score", "Conf", "Sell", "Buy", "Margin", "ROI", "Vol 24h", "Recovery", "Flags")

	for i, s := range signals {
		table.Append(
			fmt.Sprintf("%d", i+1),
			engine.TruncateStr(s.ItemName, nameWidth),
			string(s.Action),
			fmt.Sprintf("%.1f", s.OpportunityScore),
			fmt.Sprintf("%.0f%%", s.Confidence),
			humanize.Comma(s.InstaSellPrice),
			humanize.Comma(s.InstaBuyPrice),
			humanize.Comma(s.MarginAfterTax),
			fmt.Sprintf("%.2f%%", s.ROIPercent),
			humanize.Comma(s.Volume24h),
			fmt.Sprintf("%.0fm", s.AvgRecoveryTimeMinutes),
			flags(s, withHorizon),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Sell = insta-sell (you buy here) | Buy = insta-buy (you sell here)")
	if withHorizon {
		fmt.Fprintln(c.out, "  Margin = after 2% tax | Flags: ! anomaly, ~ slow for horizon, * high confidence")
	} else {
		fmt.Fprintln(c.out, "  Margin = after 2% tax | Flags: ! anomaly, * high confidence")
	}
}

func flags(s domain.MarketSignal, withHorizon bool) string {
	var f string
	if s.IsAnomaly {
		f += "!"
	}
	if withHorizon && !s.IsSafeForTimeframe {
		f += "~"
	}
	if s.IsHighConfidence() {
		f += "*"
	}
	return f
}

// printOffers imprime la evaluación de las ofertas abiertas.
func (c *Console) printOffers(r domain.CycleReport) {
	if r.Evaluation != nil && r.Evaluation.ShouldCancel {
		fmt.Fprintf(c.out, "  [%s] slot %d (%s): %s\n",
			r.Evaluation.Urgency, r.Evaluation.OfferSlot, r.Evaluation.OfferItemName, r.Evaluation.Recommendation)
	}
	for _, o := range r.StaleOffers {
		fmt.Fprintf(c.out, "  [STALE] slot %d (%s): open since %s, %d/%d filled, consider cancelling\n",
			o.Slot, o.ItemName, o.CreatedAt.Format("15:04"), o.QuantityFilled, o.Quantity)
	}
}

// printExplain imprime el cálculo paso a paso de los top 3.
func (c *Console) printExplain(signals []domain.MarketSignal) {
	top := signals
	if len(top) > explainShown {
		top = top[:explainShown]
	}

	fmt.Fprintln(c.out, "=== EXPLAIN: step by step ===")
	for i, s := range top {
		tax := domain.Tax(s.InstaBuyPrice)
		fmt.Fprintf(c.out, "\n#%d %s (id %d)\n", i+1, s.ItemName, s.ItemID)
		fmt.Fprintf(c.out, "  spread:     %s - %s = %sgp (%.2f%%)\n",
			humanize.Comma(s.InstaBuyPrice), humanize.Comma(s.InstaSellPrice), humanize.Comma(s.SpreadGp()), s.SpreadPercent)
		fmt.Fprintf(c.out, "  tax:        %sgp on a %sgp sale\n", humanize.Comma(tax), humanize.Comma(s.InstaBuyPrice))
		fmt.Fprintf(c.out, "  margin:     %sgp/ea, ROI %.2f%%, break-even sell %sgp\n",
			humanize.Comma(s.MarginAfterTax), s.ROIPercent, humanize.Comma(domain.BreakEvenSellPrice(s.InstaSellPrice)))
		fmt.Fprintf(c.out, "  indicators: RSI %.1f, momentum %.1f, baseline %+.1f%%\n",
			s.RSI, s.Momentum, s.BaselineDeviationPercent)
		fmt.Fprintf(c.out, "  liquidity:  %s/24h, limit %s, recovery ~%.0fm\n",
			humanize.Comma(s.Volume24h), humanize.Comma(int64(s.BuyLimit)), s.AvgRecoveryTimeMinutes)
		fmt.Fprintf(c.out, "  verdict:    %s\n", s.Summary())
	}
	fmt.Fprintln(c.out)
}

// PrintHistory imprime las señales guardadas en un rango de tiempo.
// cycles es el total de ciclos en la base de datos.
func (c *Console) PrintHistory(signals []domain.MarketSignal, cycles int) {
	if len(signals) == 0 {
		fmt.Fprintf(c.out, "no stored signals in range (%d cycles stored)\n", cycles)
		return
	}
	fmt.Fprintf(c.out, "\n=== HISTORY (%d items, %d cycles stored) ===\n", len(signals), cycles)
	c.printTable(signals, false)
	fmt.Fprintln(c.out)
}
