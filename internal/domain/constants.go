package domain

import "time"

// Default hold configuration values
const (
	DefaultHoldDuration  = 30 * time.Minute
	DefaultMaxExtensions = 2
	DefaultSweepBatch    = 100
)

// Business validation constants
const (
	MaxHoldItems          = 10
	MaxQuantityPerItem    = 20
	MaxStayNights         = 30
	MaxGuestNameLength    = 200
	MaxCancelReasonLength = 500
	MaxRefundPercent      = 100.0
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// HoldConfig конфигурация менеджера холдов, внедряется при создании
// сервиса (никакого глобального состояния)
type HoldConfig struct {
	Duration      time.Duration // срок жизни холда и шаг продления
	MaxExtensions int
	SweepBatch    int // размер пачки для ExpireStale
}

// PricingConfig конфигурация калькулятора цен
type PricingConfig struct {
	TaxRatePercent float64
	MealPlanPrices map[string]float64 // цена питания за человека за ночь по коду плана
}

// TerminalHoldStatuses список статусов, в которых холд уже не держит инвентарь
var TerminalHoldStatuses = []HoldStatus{
	HoldStatusExpired,
	HoldStatusConsumed,
	HoldStatusReleased,
}
