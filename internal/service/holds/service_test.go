package holds

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	holdRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/hold"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// --- fakes ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type invKey struct {
	roomTypeID int64
	date       types.DateString
}

type fakeInventoryRepo struct {
	mu        sync.Mutex
	available map[invKey]int
	held      map[invKey]int
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		available: make(map[invKey]int),
		held:      make(map[invKey]int),
	}
}

func (r *fakeInventoryRepo) seed(roomTypeID int64, date types.DateString, available int) {
	r.available[invKey{roomTypeID, date}] = available
}

func (r *fakeInventoryRepo) ReserveNight(_ context.Context, roomTypeID int64, date types.DateString, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := invKey{roomTypeID, date}
	avail, ok := r.available[k]
	if !ok {
		return inventoryRepo.ErrRecordNotFound
	}
	if avail < qty {
		return &inventoryRepo.CapacityError{
			RoomTypeID: roomTypeID,
			Date:       date,
			Requested:  qty,
			Available:  avail,
		}
	}
	r.available[k] = avail - qty
	r.held[k] += qty
	return nil
}

func (r *fakeInventoryRepo) ReleaseHeld(_ context.Context, roomTypeID int64, date types.DateString, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := invKey{roomTypeID, date}
	if r.held[k] < qty {
		return inventoryRepo.ErrReleaseClamped
	}
	r.held[k] -= qty
	r.available[k] += qty
	return nil
}

type fakeHoldRepo struct {
	mu    sync.Mutex
	holds map[string]*domain.Hold
}

func newFakeHoldRepo() *fakeHoldRepo {
	return &fakeHoldRepo{holds: make(map[string]*domain.Hold)}
}

func (r *fakeHoldRepo) Create(_ context.Context, h *domain.Hold) (*domain.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	cp.CreatedAt = time.Now()
	r.holds[h.Token] = &cp
	return &cp, nil
}

func (r *fakeHoldRepo) GetByToken(_ context.Context, token string) (*domain.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[token]
	if !ok {
		return holdRepo.ErrHoldNotFound
	}
	h.Status = status
	return nil
}

func (r *fakeHoldRepo) Extend(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[token]
	if !ok || h.Status != domain.HoldStatusActive {
		return holdRepo.ErrHoldNotFound
	}
	h.ExpiresAt = expiresAt
	h.ExtensionCount++
	return nil
}

func (r *fakeHoldRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]*domain.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Hold
	for _, h := range r.holds {
		if h.Status == domain.HoldStatusActive && h.ExpiresAt.Before(now) {
			cp := *h
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// --- helpers ---

func newTestService(t *testing.T) (*Service, *fakeInventoryRepo, *fakeHoldRepo, *fakeClock) {
	t.Helper()

	inv := newFakeInventoryRepo()
	hr := newFakeHoldRepo()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	cfg := domain.HoldConfig{
		Duration:      30 * time.Minute,
		MaxExtensions: 2,
		SweepBatch:    100,
	}

	svc := NewService(inv, hr, &fakeTxManager{}, cfg, noopLogger{}).WithTimeProvider(clock)
	return svc, inv, hr, clock
}

func createRequest() *models.CreateHoldRequest {
	return &models.CreateHoldRequest{
		HotelID: 1,
		Items: []models.HoldItemRequest{
			{RoomTypeID: 10, Quantity: 1, Adults: 2, Children: 0},
		},
		CheckIn:  "2026-03-15",
		CheckOut: "2026-03-17",
	}
}

// --- tests ---

func TestService_Create_Success(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	resp, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 2, resp.Nights)
	assert.Equal(t, string(domain.HoldStatusActive), resp.Status)
	assert.Equal(t, 0, resp.ExtensionCount)

	assert.Equal(t, 4, inv.available[invKey{10, "2026-03-15"}])
	assert.Equal(t, 1, inv.held[invKey{10, "2026-03-15"}])
	assert.Equal(t, 4, inv.available[invKey{10, "2026-03-16"}])
}

func TestService_Create_InsufficientCapacity(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 0)

	resp, err := svc.Create(context.Background(), createRequest())
	require.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Nil(t, resp)

	// ошибка несет конкретику отказа: дату, запрос и остаток
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(10), capErr.RoomTypeID)
	assert.Equal(t, types.DateString("2026-03-16"), capErr.Date)
	assert.Equal(t, 1, capErr.Requested)
	assert.Equal(t, 0, capErr.Available)
}

func TestService_Create_UnknownDate(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)

	resp, err := svc.Create(context.Background(), createRequest())
	require.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Nil(t, resp)
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateHoldRequest)
	}{
		{"zero hotel id", func(r *models.CreateHoldRequest) { r.HotelID = 0 }},
		{"no items", func(r *models.CreateHoldRequest) { r.Items = nil }},
		{"zero quantity", func(r *models.CreateHoldRequest) { r.Items[0].Quantity = 0 }},
		{"zero adults", func(r *models.CreateHoldRequest) { r.Items[0].Adults = 0 }},
		{"negative children", func(r *models.CreateHoldRequest) { r.Items[0].Children = -1 }},
		{"check-out before check-in", func(r *models.CreateHoldRequest) { r.CheckOut = "2026-03-14" }},
		{"check-out equals check-in", func(r *models.CreateHoldRequest) { r.CheckOut = r.CheckIn }},
		{"malformed date", func(r *models.CreateHoldRequest) { r.CheckIn = "15.03.2026" }},
		{"stay too long", func(r *models.CreateHoldRequest) { r.CheckOut = "2026-05-15" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_Create_ConcurrentLastUnit(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 1)
	inv.seed(10, "2026-03-16", 1)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), createRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientCapacity)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, inv.available[invKey{10, "2026-03-15"}])
	assert.Equal(t, 1, inv.held[invKey{10, "2026-03-15"}])
}

func TestService_Get_Active(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Token, got.Token)
	assert.Equal(t, string(domain.HoldStatusActive), got.Status)
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestService_Get_LazyExpiry(t *testing.T) {
	svc, inv, hr, clock := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)

	_, err = svc.Get(context.Background(), created.Token)
	require.ErrorIs(t, err, ErrHoldExpired)

	// юниты вернулись в available, холд переведен в expired
	assert.Equal(t, 5, inv.available[invKey{10, "2026-03-15"}])
	assert.Equal(t, 0, inv.held[invKey{10, "2026-03-15"}])
	assert.Equal(t, domain.HoldStatusExpired, hr.holds[created.Token].Status)

	// повторный доступ стабильно отвечает expired без двойного возврата
	_, err = svc.Get(context.Background(), created.Token)
	require.ErrorIs(t, err, ErrHoldExpired)
	assert.Equal(t, 5, inv.available[invKey{10, "2026-03-15"}])
}

func TestService_Extend_Success(t *testing.T) {
	svc, inv, _, clock := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)

	extended, err := svc.Extend(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, extended.ExtensionCount)
	assert.Equal(t, created.ExpiresAt.Add(30*time.Minute), extended.ExpiresAt)
}

func TestService_Extend_LimitReached(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Extend(context.Background(), created.Token)
		require.NoError(t, err)
	}

	_, err = svc.Extend(context.Background(), created.Token)
	assert.ErrorIs(t, err, ErrExtensionLimitReached)
}

func TestService_Extend_Expired(t *testing.T) {
	svc, inv, hr, clock := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)

	_, err = svc.Extend(context.Background(), created.Token)
	require.ErrorIs(t, err, ErrHoldExpired)
	assert.Equal(t, domain.HoldStatusExpired, hr.holds[created.Token].Status)
	assert.Equal(t, 5, inv.available[invKey{10, "2026-03-15"}])
}

func TestService_Release_Success(t *testing.T) {
	svc, inv, hr, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	err = svc.Release(context.Background(), created.Token)
	require.NoError(t, err)

	assert.Equal(t, domain.HoldStatusReleased, hr.holds[created.Token].Status)
	assert.Equal(t, 5, inv.available[invKey{10, "2026-03-15"}])
	assert.Equal(t, 0, inv.held[invKey{10, "2026-03-15"}])
}

func TestService_Release_Idempotent(t *testing.T) {
	svc, inv, _, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), created.Token))
	require.NoError(t, svc.Release(context.Background(), created.Token))

	// второй release не добавляет юниты сверх исходного total
	assert.Equal(t, 5, inv.available[invKey{10, "2026-03-15"}])
}

func TestService_Release_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Release(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestService_Get_Consumed(t *testing.T) {
	svc, inv, hr, _ := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	hr.holds[created.Token].Status = domain.HoldStatusConsumed

	_, err = svc.Get(context.Background(), created.Token)
	assert.ErrorIs(t, err, ErrHoldAlreadyConsumed)
}

func TestService_ExpireStale(t *testing.T) {
	svc, inv, hr, clock := newTestService(t)
	inv.seed(10, "2026-03-15", 5)
	inv.seed(10, "2026-03-16", 5)

	first, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)

	second, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	// первый холд просрочен, второй еще жив
	clock.Advance(15 * time.Minute)

	resp, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Expired)

	assert.Equal(t, domain.HoldStatusExpired, hr.holds[first.Token].Status)
	assert.Equal(t, domain.HoldStatusActive, hr.holds[second.Token].Status)
	assert.Equal(t, 4, inv.available[invKey{10, "2026-03-15"}])
	assert.Equal(t, 1, inv.held[invKey{10, "2026-03-15"}])
}

func TestService_ExpireStale_Empty(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	resp, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Expired)
}
