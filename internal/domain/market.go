package domain

// ItemQuote is one row of the market snapshot: the current insta-buy/insta-sell
// prices of an item plus its traded volume over the last 24h.
type ItemQuote struct {
	ItemID int

	// InstaBuyPrice is the price at which a buy fills immediately (the index "high").
	InstaBuyPrice int64
	// InstaSellPrice is the price at which a sell fills immediately (the index "low").
	InstaSellPrice int64

	BuyVolume24h  int64 // units traded at the high price
	SellVolume24h int64 // units traded at the low price

	// AvgVolume24h is the typical daily volume, used for spike detection.
	// Zero means unknown; TotalVolume is used instead.
	AvgVolume24h int64
}

// TotalVolume devuelve el volumen total negociado en 24h.
func (q ItemQuote) TotalVolume() int64 {
	return q.BuyVolume24h + q.SellVolume24h
}

// AverageVolume devuelve AvgVolume24h o, si no se conoce, el volumen total.
func (q ItemQuote) AverageVolume() int64 {
	if q.AvgVolume24h > 0 {
		return q.AvgVolume24h
	}
	return q.TotalVolume()
}

// HasValidSpread returns true when both prices are positive and the
// insta-buy price is strictly above the insta-sell price.
func (q ItemQuote) HasValidSpread() bool {
	return q.InstaBuyPrice > 0 && q.InstaSellPrice > 0 && q.InstaBuyPrice > q.InstaSellPrice
}

// Snapshot maps item ID to its latest quote.
type Snapshot map[int]ItemQuote

// ItemMapping is the static catalog entry of an item.
type ItemMapping struct {
	ItemID   int
	Name     string
	BuyLimit int // max units purchasable per 4h window (0 = unknown)
	Members  bool
}
