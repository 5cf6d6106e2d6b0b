package create_hold

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/holds"
	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
)

type fakeHoldsService struct {
	resp *models.HoldResponse
	err  error
}

func (s *fakeHoldsService) Create(_ context.Context, _ *models.CreateHoldRequest) (*models.HoldResponse, error) {
	return s.resp, s.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, svc HoldsService) *httptest.ResponseRecorder {
	t.Helper()

	body := `{
		"hotelId": 1,
		"items": [{"roomTypeId": 10, "quantity": 2, "adults": 2}],
		"checkIn": "2026-03-15",
		"checkOut": "2026-03-17"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(body))
	rec := httptest.NewRecorder()

	NewHandler(svc, noopLogger{}).Handle(rec, req)
	return rec
}

func TestHandler_InsufficientCapacity_DetailInBody(t *testing.T) {
	svc := &fakeHoldsService{err: &holds.CapacityError{
		RoomTypeID: 10,
		Date:       "2026-03-16",
		Requested:  2,
		Available:  1,
	}}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Code)

	// тело несет конкретику отказа, а не только общую формулировку
	assert.Contains(t, resp.Message, msgInsufficientCapacity)
	assert.Contains(t, resp.Message, "запрошено 2")
	assert.Contains(t, resp.Message, "доступно 1")
	assert.Contains(t, resp.Message, "2026-03-16")
}

func TestHandler_InsufficientCapacity_PlainSentinel(t *testing.T) {
	svc := &fakeHoldsService{err: holds.ErrInsufficientCapacity}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, msgInsufficientCapacity, resp.Message)
}

func TestHandler_InvalidInput(t *testing.T) {
	svc := &fakeHoldsService{err: holds.ErrInvalidInput}

	rec := doRequest(t, svc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
