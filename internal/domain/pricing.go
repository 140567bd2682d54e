package domain

// PriceRecommendation is an exact trading plan for one signal.
// SellAt > BuyAt always holds; NetProfit may still be <= 0 after tax.
type PriceRecommendation struct {
	ItemID   int
	ItemName string

	BuyAt            int64
	SellAt           int64
	Quantity         int
	GrossProfit      int64
	NetProfit        int64
	TaxAmountPerUnit int64
	EffectiveROI     float64 // percent
	StopLoss         int64
	TakeProfit       int64
	Reasoning        string
}

// IsProfitable returns true when the plan earns gp after tax.
func (r PriceRecommendation) IsProfitable() bool {
	return r.NetProfit > 0
}
