package engine

import (
	"context"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// ScannerService es la interfaz mínima que los engines necesitan del scanner.
// Desacopla el advisor de *scanner.Scanner concreto.
type ScannerService interface {
	Scan(ctx context.Context, cfg domain.ScanConfig) []domain.MarketSignal
	// Volume24h es el volumen 24h del item en el último snapshot, aunque no
	// haya pasado los filtros. 0 = desconocido.
	Volume24h(itemID int) int64
}

// SystemClock implements ports.Clock with time.Now.
type SystemClock struct{}

// Now devuelve la hora actual en UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Useful for tests and replays.
type FixedClock time.Time

// Now devuelve el instante fijo.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// TruncateStr trunca un string a maxLen caracteres añadiendo "..." si es necesario.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
