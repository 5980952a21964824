package flights

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aerolink/internal/shared/config"
	"aerolink/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) SearchFlights(ctx context.Context, clientKey string, req SearchFlightsRequest) (*SearchFlightsResponse, error) {
	args := m.Called(ctx, clientKey, req)
	resp, _ := args.Get(0).(*SearchFlightsResponse)
	return resp, args.Error(1)
}

func (m *mockService) GetAllAirports(ctx context.Context) ([]Airport, error) {
	args := m.Called(ctx)
	airports, _ := args.Get(0).([]Airport)
	return airports, args.Error(1)
}

func (m *mockService) GetAllFlights(ctx context.Context, departureAirportID string) ([]Flight, error) {
	args := m.Called(ctx, departureAirportID)
	flights, _ := args.Get(0).([]Flight)
	return flights, args.Error(1)
}

func (m *mockService) GetFlight(ctx context.Context, flightID string) (*Flight, error) {
	args := m.Called(ctx, flightID)
	flight, _ := args.Get(0).(*Flight)
	return flight, args.Error(1)
}

func (m *mockService) BookableFlight(ctx context.Context, flightID string, cabin wizard.CabinClass, seats int) (*wizard.FlightRef, error) {
	args := m.Called(ctx, flightID, cabin, seats)
	ref, _ := args.Get(0).(*wizard.FlightRef)
	return ref, args.Error(1)
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupFlightRoutes(r.Group("/api/v1"), NewController(svc), config.JWTConfig{Secret: "s"})
	return r
}

func postSearch(r http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flight/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestController_SearchFlights(t *testing.T) {
	valid := `{"type":"one_way","from":"JFK","to":"LHR","departureDate":"2026-10-20"}`

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"ok", valid, nil, http.StatusOK},
		{"superseded", valid, ErrSearchSuperseded, http.StatusConflict},
		{"unknown airport", valid, ErrAirportNotFound, http.StatusNotFound},
		{"same airport", valid, ErrSameAirport, http.StatusBadRequest},
		{"missing type", `{"from":"JFK","to":"LHR","departureDate":"2026-10-20"}`, nil, http.StatusBadRequest},
		{"bad date format", `{"type":"one_way","from":"JFK","to":"LHR","departureDate":"tomorrow"}`, nil, http.StatusBadRequest},
		{"malformed json", `{`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("SearchFlights", mock.Anything, "session:tab-9", mock.Anything).
				Return(&SearchFlightsResponse{Outbound: []FlightRow{}}, tt.err).Maybe()

			w := postSearch(newTestRouter(svc), tt.body, map[string]string{HeaderSearchSession: "tab-9"})

			assert.Equal(t, tt.want, w.Code)
			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		})
	}
}

func TestController_SearchClientKeyFallsBackToIP(t *testing.T) {
	svc := &mockService{}
	svc.On("SearchFlights", mock.Anything, mock.MatchedBy(func(k string) bool { return len(k) > 3 && k[:3] == "ip:" }), mock.Anything).
		Return(&SearchFlightsResponse{}, nil)

	w := postSearch(newTestRouter(svc), `{"type":"one_way","from":"JFK","to":"LHR","departureDate":"2026-10-20"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestController_GetFlight(t *testing.T) {
	svc := &mockService{}
	svc.On("GetFlight", mock.Anything, "missing").Return(nil, ErrFlightNotFound)
	svc.On("GetFlight", mock.Anything, "bad").Return(nil, ErrInvalidFlightID)
	r := newTestRouter(svc)

	for path, want := range map[string]int{"missing": http.StatusNotFound, "bad": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/flight/"+path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
