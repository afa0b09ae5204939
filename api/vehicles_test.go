package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/rmfarias/fleetreserve/internal/service/vehicles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockVehicleUseCase struct {
	mock.Mock
}

func (m *MockVehicleUseCase) List(ctx context.Context, activeOnly bool) ([]domain.Vehicle, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockVehicleUseCase) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleUseCase) Create(ctx context.Context, input vehicles.VehicleInput) (*domain.Vehicle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleUseCase) Update(ctx context.Context, id int64, input vehicles.VehicleInput) (*domain.Vehicle, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewReader(b)
}

func TestVehicleHandler_availability(t *testing.T) {
	mockVehicles := &MockVehicleUseCase{}
	mockReservations := &MockReservationUseCase{}
	handler := NewVehicleHandler(mockVehicles, mockReservations)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("GET",
		"/vehicles/3/availability?from=2025-06-01T10:00:00Z&to=2025-06-01T12:00:00Z", nil)

	mockReservations.On("CheckAvailability", c.Request.Context(), int64(3), tstamp(10), tstamp(12), int64(0)).
		Return(true, nil)

	handler.availability(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]bool
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["available"])

	mockReservations.AssertExpectations(t)
}

func TestVehicleHandler_availability_badWindow(t *testing.T) {
	handler := NewVehicleHandler(&MockVehicleUseCase{}, &MockReservationUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("GET", "/vehicles/3/availability?from=tomorrow&to=later", nil)

	handler.availability(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVehicleHandler_get_notFound(t *testing.T) {
	mockVehicles := &MockVehicleUseCase{}
	handler := NewVehicleHandler(mockVehicles, &MockReservationUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "99"}}
	c.Request = httptest.NewRequest("GET", "/vehicles/99", nil)

	mockVehicles.On("GetByID", c.Request.Context(), int64(99)).Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleHandler_create(t *testing.T) {
	mockVehicles := &MockVehicleUseCase{}
	handler := NewVehicleHandler(mockVehicles, &MockReservationUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("POST", "/vehicles",
		jsonBody(t, map[string]interface{}{"name": "Fiorino 12", "plate": "ABC1D23", "odometer": 1000, "active": true}))
	c.Request.Header.Set("Content-Type", "application/json")

	mockVehicles.On("Create", c.Request.Context(), vehicles.VehicleInput{
		Name: "Fiorino 12", Plate: "ABC1D23", Odometer: 1000, Active: true,
	}).Return(&domain.Vehicle{ID: 7, Name: "Fiorino 12", Plate: "ABC1D23", Odometer: 1000, Active: true}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockVehicles.AssertExpectations(t)
}
