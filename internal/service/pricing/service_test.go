package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	roomtypeRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/roomtype"
	"github.com/m04kA/SMC-HotelService/internal/integrations/couponservice"
	"github.com/m04kA/SMC-HotelService/internal/service/pricing/models"
	"github.com/m04kA/SMC-HotelService/pkg/ptr"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// --- fakes ---

type fakeRoomTypeRepo struct {
	roomTypes map[int64]*domain.RoomType
}

func (r *fakeRoomTypeRepo) GetByID(_ context.Context, id int64) (*domain.RoomType, error) {
	rt, ok := r.roomTypes[id]
	if !ok {
		return nil, roomtypeRepo.ErrRoomTypeNotFound
	}
	return rt, nil
}

type fakeInventoryRepo struct {
	overrides map[int64]map[types.DateString]float64
}

func (r *fakeInventoryRepo) GetRange(_ context.Context, roomTypeID int64, from, to types.DateString) ([]*domain.InventoryRecord, error) {
	var out []*domain.InventoryRecord
	dates, _ := from.DatesUntil(to)
	for _, date := range dates {
		rec := &domain.InventoryRecord{RoomTypeID: roomTypeID, Date: date, TotalUnits: 10, AvailableUnits: 10, Active: true}
		if rate, ok := r.overrides[roomTypeID][date]; ok {
			rec.RateOverride = ptr.Ptr(rate)
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeCouponClient struct {
	coupons map[string]*couponservice.Coupon
	err     error
}

func (c *fakeCouponClient) Validate(_ context.Context, code string, _ int64, _ []int64) (*couponservice.Coupon, error) {
	if c.err != nil {
		return nil, c.err
	}
	coupon, ok := c.coupons[code]
	if !ok {
		return nil, couponservice.ErrCouponNotFound
	}
	return coupon, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// --- helpers ---

func newTestService(coupons *fakeCouponClient) (*Service, *fakeInventoryRepo) {
	rtRepo := &fakeRoomTypeRepo{
		roomTypes: map[int64]*domain.RoomType{
			10: {ID: 10, HotelID: 1, Name: "Standard Double", BaseRate: 100, MaxGuests: 2, Active: true},
			20: {ID: 20, HotelID: 1, Name: "Junior Suite", BaseRate: 250.50, MaxGuests: 4, Active: true},
			30: {ID: 30, HotelID: 1, Name: "Closed Wing", BaseRate: 80, MaxGuests: 2, Active: false},
		},
	}
	inv := &fakeInventoryRepo{overrides: make(map[int64]map[types.DateString]float64)}

	if coupons == nil {
		coupons = &fakeCouponClient{coupons: map[string]*couponservice.Coupon{}}
	}

	cfg := domain.PricingConfig{
		TaxRatePercent: 10,
		MealPlanPrices: map[string]float64{
			"breakfast":  15,
			"half_board": 40,
		},
	}

	return NewService(rtRepo, inv, coupons, cfg, noopLogger{}), inv
}

func quoteRequest() *models.QuoteRequest {
	return &models.QuoteRequest{
		HotelID: 1,
		Items: []models.QuoteItemRequest{
			{RoomTypeID: 10, Quantity: 1, Adults: 2, Children: 0},
		},
		CheckIn:  "2026-06-01",
		CheckOut: "2026-06-03",
	}
}

// --- tests ---

func TestService_Quote_BaseRate(t *testing.T) {
	svc, _ := newTestService(nil)

	resp, err := svc.Quote(context.Background(), quoteRequest())
	require.NoError(t, err)

	// 2 ночи по базовому тарифу 100
	assert.Equal(t, 2, resp.Nights)
	assert.Equal(t, 200.0, resp.Subtotal)
	assert.Equal(t, 0.0, resp.MealCharges)
	assert.Equal(t, 0.0, resp.Discount)
	assert.Equal(t, 20.0, resp.Tax)
	assert.Equal(t, 220.0, resp.Total)

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Standard Double", resp.Lines[0].RoomTypeName)
	assert.Equal(t, 200.0, resp.Lines[0].UnitPrice)
}

func TestService_Quote_RateOverrideBeatsBaseRate(t *testing.T) {
	svc, inv := newTestService(nil)
	inv.overrides[10] = map[types.DateString]float64{
		"2026-06-01": 150,
	}

	resp, err := svc.Quote(context.Background(), quoteRequest())
	require.NoError(t, err)

	// первая ночь по переопределенному тарифу 150, вторая по базовому 100
	assert.Equal(t, 250.0, resp.Subtotal)
	assert.Equal(t, 275.0, resp.Total)
}

func TestService_Quote_CheckoutDateNotCharged(t *testing.T) {
	svc, inv := newTestService(nil)
	// переопределение на дату выезда не должно влиять на цену
	inv.overrides[10] = map[types.DateString]float64{
		"2026-06-03": 999,
	}

	resp, err := svc.Quote(context.Background(), quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, 200.0, resp.Subtotal)
}

func TestService_Quote_MealCharges(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Items[0].MealPlan = ptr.Ptr("breakfast")
	req.Items[0].Children = 1

	resp, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	// 15 за человека за ночь, 3 гостя, 2 ночи, 1 номер
	assert.Equal(t, 90.0, resp.MealCharges)
	assert.Equal(t, 200.0, resp.Subtotal)
	assert.Equal(t, 29.0, resp.Tax)
	assert.Equal(t, 319.0, resp.Total)
}

func TestService_Quote_UnknownMealPlan(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Items[0].MealPlan = ptr.Ptr("all_inclusive")

	_, err := svc.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownMealPlan)
}

func TestService_Quote_MultiLineCart(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Items = append(req.Items, models.QuoteItemRequest{
		RoomTypeID: 20, Quantity: 2, Adults: 2, Children: 0,
	})

	resp, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	// 100*2 + 250.50*2*2 = 200 + 1002
	assert.Equal(t, 1202.0, resp.Subtotal)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, 501.0, resp.Lines[1].UnitPrice)
	assert.Equal(t, 1002.0, resp.Lines[1].Subtotal)
}

func TestService_Quote_PercentCoupon(t *testing.T) {
	coupons := &fakeCouponClient{coupons: map[string]*couponservice.Coupon{
		"SUMMER10": {Code: "SUMMER10", Valid: true, DiscountType: "percent", DiscountValue: 10},
	}}
	svc, _ := newTestService(coupons)

	req := quoteRequest()
	req.CouponCode = ptr.Ptr("SUMMER10")

	resp, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 20.0, resp.Discount)
	assert.Equal(t, 18.0, resp.Tax)
	assert.Equal(t, 198.0, resp.Total)
}

func TestService_Quote_FixedCouponClampedAtZero(t *testing.T) {
	coupons := &fakeCouponClient{coupons: map[string]*couponservice.Coupon{
		"MEGA": {Code: "MEGA", Valid: true, DiscountType: "fixed", DiscountValue: 10000},
	}}
	svc, _ := newTestService(coupons)

	req := quoteRequest()
	req.CouponCode = ptr.Ptr("MEGA")

	resp, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	// скидка зажата на уровне корзины, итог не уходит в минус
	assert.Equal(t, 200.0, resp.Discount)
	assert.Equal(t, 0.0, resp.Total)
}

func TestService_Quote_UnknownCoupon(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.CouponCode = ptr.Ptr("NOPE")

	_, err := svc.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestService_Quote_Extras(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Extras = 50

	resp, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 50.0, resp.Extras)
	assert.Equal(t, 25.0, resp.Tax)
	assert.Equal(t, 275.0, resp.Total)
}

func TestService_Quote_RoomTypeNotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Items[0].RoomTypeID = 999

	_, err := svc.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}

func TestService_Quote_InactiveRoomType(t *testing.T) {
	svc, _ := newTestService(nil)

	req := quoteRequest()
	req.Items[0].RoomTypeID = 30

	_, err := svc.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}

func TestService_Quote_Validation(t *testing.T) {
	svc, _ := newTestService(nil)

	tests := []struct {
		name   string
		mutate func(*models.QuoteRequest)
	}{
		{"zero hotel id", func(r *models.QuoteRequest) { r.HotelID = 0 }},
		{"no items", func(r *models.QuoteRequest) { r.Items = nil }},
		{"negative extras", func(r *models.QuoteRequest) { r.Extras = -1 }},
		{"check-out equals check-in", func(r *models.QuoteRequest) { r.CheckOut = r.CheckIn }},
		{"malformed date", func(r *models.QuoteRequest) { r.CheckOut = "03/06/2026" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := quoteRequest()
			tt.mutate(req)

			_, err := svc.Quote(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_PriceHold(t *testing.T) {
	svc, _ := newTestService(nil)

	h := &domain.Hold{
		HotelID: 1,
		Items: []domain.HoldItem{
			{RoomTypeID: 10, Quantity: 2, Adults: 2, Children: 0},
		},
		CheckInDate:  "2026-06-01",
		CheckOutDate: "2026-06-04",
	}

	b, err := svc.PriceHold(context.Background(), h, nil, 0)
	require.NoError(t, err)

	// 3 ночи, 2 номера по 100
	assert.Equal(t, 600.0, b.Subtotal)
	assert.Equal(t, 660.0, b.Total)
}
