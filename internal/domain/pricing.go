package domain

import "math"

// DiscountType represents how a validated coupon reduces the cart total
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// PriceBreakdown is the result of a price calculation for a hold or a
// raw set of selections. All amounts are in the hotel's currency;
// currency conversion is out of scope.
type PriceBreakdown struct {
	Subtotal    float64 // per-line room charges summed across the cart
	MealCharges float64
	Extras      float64
	Discount    float64
	Tax         float64
	Total       float64
	Lines       []PriceLine
}

// PriceLine is the per-room-type detail of a breakdown
type PriceLine struct {
	RoomTypeID   int64
	RoomTypeName string
	Quantity     int
	UnitPrice    float64 // room charge per unit for the whole stay
	Subtotal     float64
	MealCharge   float64
}

// Round2 rounds a monetary amount to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
