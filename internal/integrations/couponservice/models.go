package couponservice

// Coupon результат валидации купона
type Coupon struct {
	Code          string  `json:"code"`
	Valid         bool    `json:"valid"`
	DiscountType  string  `json:"discount_type"` // "percent" | "fixed"
	DiscountValue float64 `json:"discount_value"`
}

// ValidateRequest запрос на валидацию купона в рамках выбранных номеров
type ValidateRequest struct {
	Code        string  `json:"code"`
	HotelID     int64   `json:"hotel_id"`
	RoomTypeIDs []int64 `json:"room_type_ids"`
}

// ErrorResponse модель ошибки от CouponService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
