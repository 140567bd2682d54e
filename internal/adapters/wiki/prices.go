package wiki

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

const (
	latestPath  = "/latest"
	volumePath  = "/24h"
	mappingPath = "/mapping"
)

// FetchSnapshot implements ports.SnapshotSource. /latest y /24h se piden en
// paralelo; si cualquiera falla el snapshot entero falla.
func (c *Client) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var (
		latest  latestResponse
		volumes volumeResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.get(gctx, latestPath, &latest); err != nil {
			return fmt.Errorf("latest: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.get(gctx, volumePath, &volumes); err != nil {
			return fmt.Errorf("24h: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("wiki.FetchSnapshot: %w", err)
	}

	snap := mapSnapshot(latest.Data, volumes.Data)
	slog.Debug("wiki snapshot fetched",
		"prices", len(latest.Data),
		"volumes", len(volumes.Data),
		"items", len(snap),
	)
	return snap, nil
}

// FetchCatalog implements ports.CatalogSource.
func (c *Client) FetchCatalog(ctx context.Context) ([]domain.ItemMapping, error) {
	var raw []mappingEntry
	if err := c.get(ctx, mappingPath, &raw); err != nil {
		return nil, fmt.Errorf("wiki.FetchCatalog: %w", err)
	}
	return mapCatalog(raw), nil
}
