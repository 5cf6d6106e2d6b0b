package pricing

import "errors"

var (
	// ErrRoomTypeNotFound возвращается, когда тип номера не найден или неактивен
	ErrRoomTypeNotFound = errors.New("room type not found")

	// ErrCouponInvalid возвращается, когда купон не существует или
	// неприменим к выбранным номерам
	ErrCouponInvalid = errors.New("coupon is not applicable")

	// ErrUnknownMealPlan возвращается при неизвестном коде плана питания
	ErrUnknownMealPlan = errors.New("unknown meal plan")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("pricing service: internal error")
)
