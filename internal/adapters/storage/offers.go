package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// SaveOffer inserta o reemplaza la oferta de su slot.
func (s *SQLiteStorage) SaveOffer(ctx context.Context, o domain.ActiveOffer) error {
	isBuy := 0
	if o.IsBuyOffer {
		isBuy = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers
			(slot, id, item_id, item_name, buy_price, sell_price, quantity,
			 quantity_filled, is_buy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id              = excluded.id,
			item_id         = excluded.item_id,
			item_name       = excluded.item_name,
			buy_price       = excluded.buy_price,
			sell_price      = excluded.sell_price,
			quantity        = excluded.quantity,
			quantity_filled = excluded.quantity_filled,
			is_buy          = excluded.is_buy,
			created_at      = excluded.created_at
	`,
		o.Slot, o.ID, o.ItemID, o.ItemName, o.BuyPrice, o.SellPrice, o.Quantity,
		o.QuantityFilled, isBuy, o.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveOffer: slot %d: %w", o.Slot, err)
	}
	return nil
}

// GetActiveOffers devuelve las ofertas abiertas ordenadas por slot.
func (s *SQLiteStorage) GetActiveOffers(ctx context.Context) ([]domain.ActiveOffer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, id, item_id, item_name, buy_price, sell_price, quantity,
		       quantity_filled, is_buy, created_at
		FROM offers
		ORDER BY slot ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetActiveOffers: query: %w", err)
	}
	defer rows.Close()

	var offers []domain.ActiveOffer
	for rows.Next() {
		var o domain.ActiveOffer
		var isBuy int
		var createdAt int64
		if err := rows.Scan(
			&o.Slot, &o.ID, &o.ItemID, &o.ItemName, &o.BuyPrice, &o.SellPrice,
			&o.Quantity, &o.QuantityFilled, &isBuy, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetActiveOffers: scan row: %w", err)
		}
		o.IsBuyOffer = isBuy == 1
		o.CreatedAt = time.UnixMilli(createdAt).UTC()
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// RemoveOffer borra la oferta del slot. Borrar un slot vacío no es error.
func (s *SQLiteStorage) RemoveOffer(ctx context.Context, slot int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM offers WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("storage.RemoveOffer: slot %d: %w", slot, err)
	}
	return nil
}
