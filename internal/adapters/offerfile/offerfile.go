// Package offerfile lee las ofertas abiertas del Grand Exchange desde un YAML.
//
// La sesión de juego es externa: el usuario (o un plugin) vuelca sus ofertas
// en este archivo y el advisor las importa al arrancar.
package offerfile

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// MaxSlots es el número de slots del Grand Exchange.
const MaxSlots = 8

type file struct {
	Offers []entry `yaml:"offers"`
}

type entry struct {
	Slot       int       `yaml:"slot"`
	ID         string    `yaml:"id"`
	ItemID     int       `yaml:"item_id"`
	ItemName   string    `yaml:"item_name"`
	BuyPrice   int64     `yaml:"buy_price"`
	SellPrice  int64     `yaml:"sell_price"`
	Quantity   int       `yaml:"quantity"`
	Filled     int       `yaml:"filled"`
	Side       string    `yaml:"side"` // buy | sell, default buy
	CreatedAt  time.Time `yaml:"created_at"`
	AgeMinutes float64   `yaml:"age_minutes"` // alternativa a created_at
}

// Load lee y valida el archivo. now resuelve age_minutes.
func Load(path string, now time.Time) ([]domain.ActiveOffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("offerfile.Load: read %q: %w", path, err)
	}
	offers, err := Parse(data, now)
	if err != nil {
		return nil, fmt.Errorf("offerfile.Load: %q: %w", path, err)
	}
	return offers, nil
}

// Parse decodifica el YAML de ofertas.
func Parse(data []byte, now time.Time) ([]domain.ActiveOffer, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	seen := make(map[int]bool, len(f.Offers))
	offers := make([]domain.ActiveOffer, 0, len(f.Offers))
	for i, e := range f.Offers {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("offer %d: %w", i, err)
		}
		if seen[e.Slot] {
			return nil, fmt.Errorf("offer %d: slot %d used twice", i, e.Slot)
		}
		seen[e.Slot] = true
		offers = append(offers, e.toDomain(now))
	}
	return offers, nil
}

func (e entry) validate() error {
	switch {
	case e.Slot < 0 || e.Slot >= MaxSlots:
		return fmt.Errorf("slot %d outside [0, %d)", e.Slot, MaxSlots)
	case e.ItemID <= 0:
		return fmt.Errorf("item_id is required")
	case e.BuyPrice <= 0 || e.SellPrice <= 0:
		return fmt.Errorf("buy_price and sell_price must be > 0")
	case e.Quantity <= 0:
		return fmt.Errorf("quantity must be > 0")
	case e.Filled < 0 || e.Filled > e.Quantity:
		return fmt.Errorf("filled %d outside [0, %d]", e.Filled, e.Quantity)
	}
	switch strings.ToLower(e.Side) {
	case "", "buy", "sell":
		return nil
	default:
		return fmt.Errorf("side %q: want buy or sell", e.Side)
	}
}

func (e entry) toDomain(now time.Time) domain.ActiveOffer {
	created := e.CreatedAt
	if created.IsZero() && e.AgeMinutes > 0 {
		created = now.Add(-time.Duration(e.AgeMinutes * float64(time.Minute)))
	}
	name := e.ItemName
	if name == "" {
		name = fmt.Sprintf("Item #%d", e.ItemID)
	}
	return domain.ActiveOffer{
		ID:             e.ID,
		ItemID:         e.ItemID,
		ItemName:       name,
		BuyPrice:       e.BuyPrice,
		SellPrice:      e.SellPrice,
		Quantity:       e.Quantity,
		QuantityFilled: e.Filled,
		IsBuyOffer:     !strings.EqualFold(e.Side, "sell"),
		CreatedAt:      created.UTC(),
		Slot:           e.Slot,
	}
}
