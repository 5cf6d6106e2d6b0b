package sync_inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory/models"
)

type fakeInventoryService struct {
	resp *models.SyncResponse
	err  error
}

func (s *fakeInventoryService) Sync(_ context.Context, _ int64, _ *models.SyncRequest) (*models.SyncResponse, error) {
	return s.resp, s.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, svc InventoryService) *httptest.ResponseRecorder {
	t.Helper()

	body := `{"from": "2026-07-01", "to": "2026-07-01", "totalUnits": 2}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/room-types/10/inventory", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"roomTypeId": "10"})
	rec := httptest.NewRecorder()

	NewHandler(svc, noopLogger{}).Handle(rec, req)
	return rec
}

func TestHandler_CapacityConflict_DetailInBody(t *testing.T) {
	svc := &fakeInventoryService{err: &inventory.ConflictError{
		RoomTypeID: 10,
		Date:       "2026-07-01",
		NewTotal:   2,
		Committed:  4,
	}}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Code)

	// тело несет конкретику конфликта, а не только общую формулировку
	assert.Contains(t, resp.Message, msgCapacityConflict)
	assert.Contains(t, resp.Message, "новый объем 2")
	assert.Contains(t, resp.Message, "меньше 4")
	assert.Contains(t, resp.Message, "2026-07-01")
}

func TestHandler_CapacityConflict_PlainSentinel(t *testing.T) {
	svc := &fakeInventoryService{err: inventory.ErrCapacityConflict}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msgCapacityConflict, resp.Message)
}

func TestHandler_RoomTypeNotFound(t *testing.T) {
	svc := &fakeInventoryService{err: inventory.ErrRoomTypeNotFound}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
