package couponservice

import "errors"

var (
	// ErrCouponNotFound возвращается, когда купон не существует
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponNotApplicable возвращается, когда купон просрочен или не
	// подходит к выбранным номерам
	ErrCouponNotApplicable = errors.New("coupon is not applicable to this selection")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("couponservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("couponservice client: invalid response")
)
