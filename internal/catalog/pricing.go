package catalog

import "math"

// SellingPrice converts the provider's base price to the storefront
// retail price: a 20% markup floored to whole dollars, plus .95. The
// rounding must stay exactly this so displayed and charged amounts agree.
func SellingPrice(base float64) float64 {
	return math.Floor(base*1.2) + 0.95
}

// ShippingCost is 20% of the selling price with a $5 minimum.
func ShippingCost(sellingPrice float64) float64 {
	cost := sellingPrice * 0.2
	if cost < 5 {
		return 5
	}
	return cost
}

// Cents converts a dollar amount to integer cents for the payment API.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
