package commit_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	holdRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-HotelService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
	"github.com/m04kA/SMC-HotelService/pkg/ptr"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// --- fakes ---

type fakeHoldRepo struct {
	holds map[string]*domain.Hold
}

func (r *fakeHoldRepo) GetByToken(_ context.Context, token string) (*domain.Hold, error) {
	h, ok := r.holds[token]
	if !ok {
		return nil, holdRepo.ErrHoldNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHoldRepo) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Hold, error) {
	return r.GetByToken(ctx, token)
}

func (r *fakeHoldRepo) UpdateStatus(_ context.Context, token string, status domain.HoldStatus) error {
	h, ok := r.holds[token]
	if !ok {
		return holdRepo.ErrHoldNotFound
	}
	h.Status = status
	return nil
}

type invKey struct {
	roomTypeID int64
	date       types.DateString
}

type fakeInventoryRepo struct {
	held   map[invKey]int
	booked map[invKey]int
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{held: make(map[invKey]int), booked: make(map[invKey]int)}
}

func (r *fakeInventoryRepo) ConsumeHeld(_ context.Context, roomTypeID int64, date types.DateString, qty int) error {
	k := invKey{roomTypeID, date}
	r.held[k] -= qty
	r.booked[k] += qty
	return nil
}

func (r *fakeInventoryRepo) ReleaseHeld(_ context.Context, roomTypeID int64, date types.DateString, qty int) error {
	k := invKey{roomTypeID, date}
	r.held[k] -= qty
	return nil
}

type fakeBookingRepo struct {
	created []*domain.Booking
	nextID  int64
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.nextID++
	cp := *b
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.created = append(r.created, &cp)
	return &cp, nil
}

type fakePricer struct {
	breakdown *domain.PriceBreakdown
	err       error
}

func (p *fakePricer) PriceHold(_ context.Context, _ *domain.Hold, _ *string, _ float64) (*domain.PriceBreakdown, error) {
	return p.breakdown, p.err
}

type fakePolicyResolver struct {
	policy *domain.CancellationPolicy
}

func (p *fakePolicyResolver) ResolvePolicy(_ context.Context, _, _ int64) (*domain.CancellationPolicy, error) {
	return p.policy, nil
}

type fakePaymentClient struct {
	resp  *paymentgw.ChargeResponse
	err   error
	calls int
}

func (c *fakePaymentClient) Charge(_ context.Context, _ float64, _ string) (*paymentgw.ChargeResponse, error) {
	c.calls++
	return c.resp, c.err
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (c *fakeNotifyClient) Send(_ context.Context, event notifyservice.Event) {
	c.events = append(c.events, event)
}

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// steppingClock отдает first на первом вызове и rest дальше:
// имитирует истечение холда между ранней проверкой и блокировкой
type steppingClock struct {
	first time.Time
	rest  time.Time
	calls *int
}

func (c steppingClock) Now() time.Time {
	*c.calls++
	if *c.calls == 1 {
		return c.first
	}
	return c.rest
}

// --- helpers ---

type fixture struct {
	uc       *UseCase
	holds    *fakeHoldRepo
	inv      *fakeInventoryRepo
	bookings *fakeBookingRepo
	payments *fakePaymentClient
	notify   *fakeNotifyClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	h := &domain.Hold{
		Token:   "hold-token-1",
		HotelID: 1,
		Items: []domain.HoldItem{
			{RoomTypeID: 10, Quantity: 2, Adults: 2, Children: 0},
		},
		CheckInDate:  "2026-06-01",
		CheckOutDate: "2026-06-03",
		Status:       domain.HoldStatusActive,
		ExpiresAt:    now.Add(20 * time.Minute),
	}

	holds := &fakeHoldRepo{holds: map[string]*domain.Hold{h.Token: h}}
	inv := newFakeInventoryRepo()
	inv.held[invKey{10, "2026-06-01"}] = 2
	inv.held[invKey{10, "2026-06-02"}] = 2

	bookings := &fakeBookingRepo{}
	pricer := &fakePricer{breakdown: &domain.PriceBreakdown{
		Subtotal: 400,
		Tax:      40,
		Total:    440,
		Lines: []domain.PriceLine{
			{RoomTypeID: 10, RoomTypeName: "Standard Double", Quantity: 2, UnitPrice: 200, Subtotal: 400},
		},
	}}
	resolver := &fakePolicyResolver{policy: &domain.CancellationPolicy{
		ID:           7,
		IsRefundable: true,
		Tiers: []domain.PolicyTier{
			{HoursBeforeCheckIn: 72, RefundPercent: 100},
		},
	}}
	payments := &fakePaymentClient{resp: &paymentgw.ChargeResponse{Success: true, TransactionID: "pay-1"}}
	notify := &fakeNotifyClient{}

	uc := NewUseCase(holds, bookings, inv, pricer, resolver, payments, notify, passthroughTxManager{}, noopLogger{}).
		WithTimeProvider(fixedClock{now: now})

	return &fixture{uc: uc, holds: holds, inv: inv, bookings: bookings, payments: payments, notify: notify}
}

func commitRequest() *Request {
	return &Request{
		HoldToken: "hold-token-1",
		Guest: GuestRequest{
			Name:  "Anna Schmidt",
			Email: "anna@example.com",
		},
		PaymentToken: ptr.Ptr("card-token"),
	}
}

// --- tests ---

func TestUseCase_Execute_PaidCommit(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), commitRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentStatusPaid), resp.PaymentStatus)
	assert.Equal(t, 440.0, resp.Amount)
	assert.NotEmpty(t, resp.Code)

	// холд сконвертирован
	assert.Equal(t, domain.HoldStatusConsumed, f.holds.holds["hold-token-1"].Status)

	// юниты переехали из held в booked
	assert.Equal(t, 0, f.inv.held[invKey{10, "2026-06-01"}])
	assert.Equal(t, 2, f.inv.booked[invKey{10, "2026-06-01"}])
	assert.Equal(t, 2, f.inv.booked[invKey{10, "2026-06-02"}])

	// политика заморожена на бронировании
	require.Len(t, f.bookings.created, 1)
	b := f.bookings.created[0]
	require.NotNil(t, b.PolicyID)
	assert.Equal(t, int64(7), *b.PolicyID)
	assert.True(t, b.PolicyRefundable)
	assert.Len(t, b.PolicyTiers, 1)

	// событие отправлено
	require.Len(t, f.notify.events, 1)
	assert.Equal(t, "booking.settled", f.notify.events[0].Type)
}

func TestUseCase_Execute_DeferredPayment(t *testing.T) {
	f := newFixture(t)

	req := commitRequest()
	req.PaymentToken = nil

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentStatusDeferred), resp.PaymentStatus)
	assert.Equal(t, 0, f.payments.calls)
}

func TestUseCase_Execute_PaymentDeclined(t *testing.T) {
	f := newFixture(t)
	f.payments.err = paymentgw.ErrDeclined

	_, err := f.uc.Execute(context.Background(), commitRequest())
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// холд остался активным, бронирование не создано
	assert.Equal(t, domain.HoldStatusActive, f.holds.holds["hold-token-1"].Status)
	assert.Empty(t, f.bookings.created)
}

func TestUseCase_Execute_AlreadyConsumed(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), commitRequest())
	require.NoError(t, err)

	// повторная конвертация того же токена не создает дубликат
	_, err = f.uc.Execute(context.Background(), commitRequest())
	assert.ErrorIs(t, err, ErrHoldAlreadyConsumed)
	assert.Len(t, f.bookings.created, 1)
}

func TestUseCase_Execute_ExpiredHold(t *testing.T) {
	f := newFixture(t)
	f.holds.holds["hold-token-1"].ExpiresAt = time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), commitRequest())
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Empty(t, f.bookings.created)

	// просроченный холд лениво переведен в expired, юниты возвращены
	assert.Equal(t, domain.HoldStatusExpired, f.holds.holds["hold-token-1"].Status)
	assert.Equal(t, 0, f.inv.held[invKey{10, "2026-06-01"}])
	assert.Equal(t, 0, f.inv.held[invKey{10, "2026-06-02"}])
	assert.Equal(t, 0, f.inv.booked[invKey{10, "2026-06-01"}])
}

func TestUseCase_Execute_HoldLapsesUnderLock(t *testing.T) {
	f := newFixture(t)

	// холд истекает между ранней проверкой и блокировкой строки:
	// двигаем часы вперед после создания фикстуры
	f.uc.WithTimeProvider(steppingClock{
		first: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		rest:  time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC),
		calls: new(int),
	})
	f.holds.holds["hold-token-1"].ExpiresAt = time.Date(2026, 5, 1, 12, 15, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), commitRequest())
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Empty(t, f.bookings.created)

	// истечение зафиксировано в транзакции конвертации
	assert.Equal(t, domain.HoldStatusExpired, f.holds.holds["hold-token-1"].Status)
	assert.Equal(t, 0, f.inv.held[invKey{10, "2026-06-01"}])
	assert.Equal(t, 0, f.inv.held[invKey{10, "2026-06-02"}])
}

func TestUseCase_Execute_HoldNotFound(t *testing.T) {
	f := newFixture(t)

	req := commitRequest()
	req.HoldToken = "no-such-token"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"empty token", func(r *Request) { r.HoldToken = " " }},
		{"empty guest name", func(r *Request) { r.Guest.Name = "" }},
		{"empty email", func(r *Request) { r.Guest.Email = "" }},
		{"malformed email", func(r *Request) { r.Guest.Email = "not-an-email" }},
		{"negative extras", func(r *Request) { r.Extras = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := commitRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUseCase_Execute_NoPolicyMeansNonRefundable(t *testing.T) {
	f := newFixture(t)
	f.uc.policyResolver = &fakePolicyResolver{policy: nil}

	_, err := f.uc.Execute(context.Background(), commitRequest())
	require.NoError(t, err)

	b := f.bookings.created[0]
	assert.Nil(t, b.PolicyID)
	assert.False(t, b.PolicyRefundable)
	assert.Empty(t, b.PolicyTiers)
}
