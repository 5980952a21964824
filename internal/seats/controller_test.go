package seats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aerolink/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Layout() wizard.Layout {
	return m.Called().Get(0).(wizard.Layout)
}

func (m *mockService) OccupiedSeats(ctx context.Context, flightID string) ([]string, error) {
	args := m.Called(ctx, flightID)
	seats, _ := args.Get(0).([]string)
	return seats, args.Error(1)
}

func (m *mockService) SeatMap(ctx context.Context, flightID string) (*SeatMapResponse, error) {
	args := m.Called(ctx, flightID)
	resp, _ := args.Get(0).(*SeatMapResponse)
	return resp, args.Error(1)
}

func (m *mockService) Invalidate(ctx context.Context, flightID string) {
	m.Called(ctx, flightID)
}

func TestController_GetFlightSeatMap(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		flightID string
		resp     *SeatMapResponse
		err      error
		want     int
	}{
		{"ok", "f-1", &SeatMapResponse{FlightID: "f-1", Capacity: 180}, nil, http.StatusOK},
		{"bad id", "nope", nil, ErrInvalidFlightID, http.StatusBadRequest},
		{"unknown flight", "f-2", nil, ErrFlightNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("SeatMap", mock.Anything, tt.flightID).Return(tt.resp, tt.err)

			r := gin.New()
			SetupSeatRoutes(r.Group("/api/v1"), NewController(svc))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/flight/"+tt.flightID+"/seats", nil))

			assert.Equal(t, tt.want, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.want), body["status_code"])
		})
	}
}
