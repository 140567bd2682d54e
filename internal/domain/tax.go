package domain

const (
	// TaxRate is the exchange tax charged on the sell leg (2%).
	TaxRate = 0.02
	// TaxCap is the maximum tax charged on a single unit.
	TaxCap int64 = 5_000_000
	// TaxFreeBelow: units sold under this price pay no tax.
	TaxFreeBelow int64 = 50

	// taxDivisor makes floor(p*0.02) exact in integer arithmetic.
	taxDivisor = 50
)

// Tax returns the per-unit tax charged when selling at sellPrice.
//
//	tax = 0                              if sellPrice < 50
//	tax = min(floor(sellPrice*0.02), 5M)  otherwise
func Tax(sellPrice int64) int64 {
	if sellPrice < TaxFreeBelow {
		return 0
	}
	return min(sellPrice/taxDivisor, TaxCap)
}

// NetMargin is the per-unit profit of buying at buyPrice and selling at
// sellPrice, after tax. Non-positive means no opportunity.
func NetMargin(buyPrice, sellPrice int64) int64 {
	return sellPrice - buyPrice - Tax(sellPrice)
}

// BreakEvenSellPrice returns the lowest sell price whose net margin is >= 0.
//
// The closed form ceil(buy/0.98) overshoots right after each floor step of
// the tax (buy=100 gives 103, but 102 already nets 0), so the exact minimum
// is searched instead. sell - tax(sell) is non-decreasing in sell, which makes
// binary search valid; the answer always lies in [buy, buy+TaxCap].
func BreakEvenSellPrice(buyPrice int64) int64 {
	lo, hi := buyPrice, buyPrice+TaxCap
	for lo < hi {
		mid := lo + (hi-lo)/2
		if NetMargin(buyPrice, mid) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// MaxBuyPrice returns the highest buy price that still leaves targetMargin
// per unit when selling at sellPrice.
func MaxBuyPrice(sellPrice, targetMargin int64) int64 {
	return sellPrice - Tax(sellPrice) - targetMargin
}
