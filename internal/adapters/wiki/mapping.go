package wiki

import (
	"strconv"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// mapSnapshot une /latest y /24h en un domain.Snapshot.
// Items con ID no numérico se ignoran; items sin datos de volumen quedan con
// volumen 0 y los descarta el filtro de liquidez del scanner.
func mapSnapshot(latest map[string]latestPrice, volumes map[string]volumeEntry) domain.Snapshot {
	snap := make(domain.Snapshot, len(latest))
	for key, p := range latest {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		q := domain.ItemQuote{
			ItemID:         id,
			InstaBuyPrice:  deref(p.High),
			InstaSellPrice: deref(p.Low),
		}
		if v, ok := volumes[key]; ok {
			q.BuyVolume24h = deref(v.HighPriceVolume)
			q.SellVolume24h = deref(v.LowPriceVolume)
		}
		// Sin histórico: la media es el propio total.
		q.AvgVolume24h = q.TotalVolume()
		snap[id] = q
	}
	return snap
}

// mapCatalog convierte /mapping a domain.ItemMapping.
func mapCatalog(raw []mappingEntry) []domain.ItemMapping {
	items := make([]domain.ItemMapping, 0, len(raw))
	for _, r := range raw {
		m := domain.ItemMapping{
			ItemID:  r.ID,
			Name:    r.Name,
			Members: r.Members,
		}
		if r.Limit != nil {
			m.BuyLimit = *r.Limit
		}
		items = append(items, m)
	}
	return items
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
