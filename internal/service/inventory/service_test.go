package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	roomtypeRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/roomtype"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory/models"
	"github.com/m04kA/SMC-HotelService/pkg/ptr"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// --- fakes ---

type invKey struct {
	roomTypeID int64
	date       types.DateString
}

type fakeInventoryRepo struct {
	records map[invKey]*domain.InventoryRecord
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{records: make(map[invKey]*domain.InventoryRecord)}
}

func (r *fakeInventoryRepo) seed(rec *domain.InventoryRecord) {
	r.records[invKey{rec.RoomTypeID, rec.Date}] = rec
}

func (r *fakeInventoryRepo) GetRange(_ context.Context, roomTypeID int64, from, to types.DateString) ([]*domain.InventoryRecord, error) {
	dates, _ := from.DatesUntil(to)
	var out []*domain.InventoryRecord
	for _, date := range dates {
		if rec, ok := r.records[invKey{roomTypeID, date}]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) SyncTotal(_ context.Context, roomTypeID int64, date types.DateString, newTotal int) error {
	k := invKey{roomTypeID, date}
	rec, ok := r.records[k]
	if !ok {
		r.records[k] = &domain.InventoryRecord{
			RoomTypeID:     roomTypeID,
			Date:           date,
			TotalUnits:     newTotal,
			AvailableUnits: newTotal,
			Active:         true,
		}
		return nil
	}
	committed := rec.HeldUnits + rec.BookedUnits
	if newTotal < committed {
		return &inventoryRepo.ConflictError{
			RoomTypeID: roomTypeID,
			Date:       date,
			NewTotal:   newTotal,
			Committed:  committed,
		}
	}
	rec.TotalUnits = newTotal
	rec.AvailableUnits = newTotal - committed
	return nil
}

func (r *fakeInventoryRepo) SetRateOverride(_ context.Context, roomTypeID int64, date types.DateString, rate *float64) error {
	k := invKey{roomTypeID, date}
	rec, ok := r.records[k]
	if !ok {
		return inventoryRepo.ErrRecordNotFound
	}
	rec.RateOverride = rate
	return nil
}

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

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// --- helpers ---

func newTestService() (*Service, *fakeInventoryRepo) {
	inv := newFakeInventoryRepo()
	rt := &fakeRoomTypeRepo{roomTypes: map[int64]*domain.RoomType{
		10: {ID: 10, HotelID: 1, Name: "Standard Double", BaseRate: 100, MaxGuests: 2, Active: true},
	}}
	return NewService(inv, rt, passthroughTxManager{}, noopLogger{}), inv
}

// --- tests ---

func TestService_Sync_InitializesRange(t *testing.T) {
	svc, inv := newTestService()

	resp, err := svc.Sync(context.Background(), 10, &models.SyncRequest{
		From:       "2026-07-01",
		To:         "2026-07-03",
		TotalUnits: ptr.Ptr(5),
	})
	require.NoError(t, err)

	// включительный диапазон: 3 даты
	assert.Len(t, resp.Days, 3)
	for _, day := range resp.Days {
		assert.Equal(t, 5, day.TotalUnits)
		assert.Equal(t, 5, day.AvailableUnits)
	}
	assert.Len(t, inv.records, 3)
}

func TestService_Sync_ShrinkKeepsCommittedUnits(t *testing.T) {
	svc, inv := newTestService()
	inv.seed(&domain.InventoryRecord{
		RoomTypeID: 10, Date: "2026-07-01",
		TotalUnits: 10, AvailableUnits: 6, HeldUnits: 1, BookedUnits: 3, Active: true,
	})

	resp, err := svc.Sync(context.Background(), 10, &models.SyncRequest{
		From:       "2026-07-01",
		To:         "2026-07-01",
		TotalUnits: ptr.Ptr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Days[0].TotalUnits)
	assert.Equal(t, 1, resp.Days[0].AvailableUnits)
	assert.Equal(t, 1, resp.Days[0].HeldUnits)
	assert.Equal(t, 3, resp.Days[0].BookedUnits)
}

func TestService_Sync_CapacityConflict(t *testing.T) {
	svc, inv := newTestService()
	inv.seed(&domain.InventoryRecord{
		RoomTypeID: 10, Date: "2026-07-01",
		TotalUnits: 10, AvailableUnits: 6, HeldUnits: 1, BookedUnits: 3, Active: true,
	})

	_, err := svc.Sync(context.Background(), 10, &models.SyncRequest{
		From:       "2026-07-01",
		To:         "2026-07-01",
		TotalUnits: ptr.Ptr(2),
	})
	assert.ErrorIs(t, err, ErrCapacityConflict)

	// ошибка несет конкретику конфликта: дату, новый total и занятые юниты
	var confErr *ConflictError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, types.DateString("2026-07-01"), confErr.Date)
	assert.Equal(t, 2, confErr.NewTotal)
	assert.Equal(t, 4, confErr.Committed)

	// леджер не изменился
	assert.Equal(t, 10, inv.records[invKey{10, "2026-07-01"}].TotalUnits)
}

func TestService_Sync_SetAndClearRateOverride(t *testing.T) {
	svc, inv := newTestService()
	inv.seed(&domain.InventoryRecord{
		RoomTypeID: 10, Date: "2026-07-01",
		TotalUnits: 5, AvailableUnits: 5, Active: true,
	})

	resp, err := svc.Sync(context.Background(), 10, &models.SyncRequest{
		From:         "2026-07-01",
		To:           "2026-07-01",
		RateOverride: ptr.Ptr(149.99),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Days[0].RateOverride)
	assert.Equal(t, 149.99, *resp.Days[0].RateOverride)

	resp, err = svc.Sync(context.Background(), 10, &models.SyncRequest{
		From:          "2026-07-01",
		To:            "2026-07-01",
		ClearOverride: true,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Days[0].RateOverride)
}

func TestService_Sync_RoomTypeNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Sync(context.Background(), 999, &models.SyncRequest{
		From:       "2026-07-01",
		To:         "2026-07-01",
		TotalUnits: ptr.Ptr(5),
	})
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}

func TestService_Sync_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		req  *models.SyncRequest
	}{
		{"reversed range", &models.SyncRequest{From: "2026-07-03", To: "2026-07-01", TotalUnits: ptr.Ptr(5)}},
		{"nothing to apply", &models.SyncRequest{From: "2026-07-01", To: "2026-07-01"}},
		{"negative total", &models.SyncRequest{From: "2026-07-01", To: "2026-07-01", TotalUnits: ptr.Ptr(-1)}},
		{"negative rate", &models.SyncRequest{From: "2026-07-01", To: "2026-07-01", RateOverride: ptr.Ptr(-10.0)}},
		{"malformed date", &models.SyncRequest{From: "01.07.2026", To: "2026-07-01", TotalUnits: ptr.Ptr(5)}},
		{"override and clear together", &models.SyncRequest{
			From: "2026-07-01", To: "2026-07-01",
			RateOverride: ptr.Ptr(99.0), ClearOverride: true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Sync(context.Background(), 10, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
