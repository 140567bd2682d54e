package ports

import (
	"context"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// SnapshotSource supplies the latest prices and 24h volumes of every item.
type SnapshotSource interface {
	// FetchSnapshot devuelve el snapshot completo del mercado.
	// Timeouts y retries son responsabilidad de la implementación.
	FetchSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// CatalogSource supplies static item metadata (names, buy limits).
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]domain.ItemMapping, error)
}
