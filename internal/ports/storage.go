package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// Storage persiste los resultados de cada ciclo de escaneo.
type Storage interface {
	// SaveScan persiste las señales ranqueadas de un ciclo.
	SaveScan(ctx context.Context, report domain.CycleReport) error

	// GetHistory devuelve la última señal de cada item vista en el rango dado.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.MarketSignal, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

// OfferStorage keeps the open offers reported by the game session.
type OfferStorage interface {
	// SaveOffer inserts or replaces the offer in its slot.
	SaveOffer(ctx context.Context, offer domain.ActiveOffer) error
	GetActiveOffers(ctx context.Context) ([]domain.ActiveOffer, error)
	RemoveOffer(ctx context.Context, slot int) error
}
