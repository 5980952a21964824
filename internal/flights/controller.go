package flights

import (
	"errors"
	"net/http"
	"strings"

	"aerolink/internal/shared/middleware"
	"aerolink/internal/shared/utils/response"
	"aerolink/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// HeaderSearchSession lets a client scope search cancellation to one browser tab
const HeaderSearchSession = "X-Search-Session"

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// SearchFlights godoc
// @Summary      Search flights
// @Description  One-way or round-trip search. A newer search from the same client cancels this one with 409.
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        X-Search-Session  header  string                false  "Client search scope"
// @Param        request           body    SearchFlightsRequest  true   "Search"
// @Success      200  {object}  response.StandardApiResponse{data=SearchFlightsResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /flight/search [post]
func (c *Controller) SearchFlights(ctx *gin.Context) {
	var req SearchFlightsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.SearchFlights(ctx.Request.Context(), searchClientKey(ctx), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSearchSuperseded):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Search superseded", nil, err.Error())
		case errors.Is(err, ErrAirportNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Airport not found", nil, err.Error())
		case errors.Is(err, ErrSameAirport),
			errors.Is(err, ErrInvalidDate),
			errors.Is(err, ErrReturnDateRequired),
			errors.Is(err, ErrReturnBeforeDeparture),
			errors.Is(err, wizard.ErrInvalidCabinClass):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid search", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to search flights", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Flights retrieved successfully", result, nil)
}

// searchClientKey picks the scope within which a newer search replaces an older one
func searchClientKey(ctx *gin.Context) string {
	if key := strings.TrimSpace(ctx.GetHeader(HeaderSearchSession)); key != "" {
		return "session:" + key
	}
	if userID, ok := middleware.GetUserID(ctx); ok {
		return "user:" + userID
	}
	return "ip:" + ctx.ClientIP()
}

// GetAllAirports godoc
// @Summary  List airports
// @Tags     flights
// @Produce  json
// @Success  200  {object}  response.StandardApiResponse{data=[]Airport}
// @Router   /flight/get-all-airports [get]
func (c *Controller) GetAllAirports(ctx *gin.Context) {
	airports, err := c.service.GetAllAirports(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get airports", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Airports retrieved successfully", airports, nil)
}

func (c *Controller) GetAllFlights(ctx *gin.Context) {
	var query FlightListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	if err := c.validator.Struct(query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	flights, err := c.service.GetAllFlights(ctx.Request.Context(), query.DepartureAirportID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get flights", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Flights retrieved successfully", flights, nil)
}

func (c *Controller) GetFlight(ctx *gin.Context) {
	flight, err := c.service.GetFlight(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFlightID):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid flight ID", nil, err.Error())
		case errors.Is(err, ErrFlightNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Flight not found", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get flight", nil, err.Error())
		}
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Flight retrieved successfully", flight, nil)
}
