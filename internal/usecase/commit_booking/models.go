package commit_booking

import (
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

// GuestRequest контактные данные гостя, фиксируемые на бронировании
type GuestRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Request модель запроса на конвертацию холда в бронирование
// PaymentToken присутствует при онлайн-оплате; его отсутствие означает
// оплату при заселении (статус бронирования останется pending)
type Request struct {
	HoldToken    string       `json:"holdToken"`
	Guest        GuestRequest `json:"guest"`
	PaymentToken *string      `json:"paymentToken,omitempty"`
	CouponCode   *string      `json:"couponCode,omitempty"`
	Extras       float64      `json:"extras,omitempty"`
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	HotelID       int64     `json:"hotelId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Amount        float64   `json:"amount"`
	CheckIn       string    `json:"checkIn"`
	CheckOut      string    `json:"checkOut"`
	CreatedAt     time.Time `json:"createdAt"`
}

// toResponse конвертирует domain модель в ответ usecase
func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:            b.ID,
		Code:          b.Code,
		HotelID:       b.HotelID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Amount:        b.Amount,
		CheckIn:       b.CheckInDate.String(),
		CheckOut:      b.CheckOutDate.String(),
		CreatedAt:     b.CreatedAt,
	}
}
