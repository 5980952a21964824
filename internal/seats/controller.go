package seats

import (
	"errors"
	"net/http"

	"aerolink/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetFlightSeatMap godoc
// @Summary      Seat map of a flight
// @Description  Grid of every seat with its occupancy. No session state is involved.
// @Tags         seats
// @Produce      json
// @Param        id   path      string  true  "Flight ID"
// @Success      200  {object}  response.StandardApiResponse{data=SeatMapResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /flight/{id}/seats [get]
func (c *Controller) GetFlightSeatMap(ctx *gin.Context) {
	flightID := ctx.Param("id")
	if flightID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Flight ID is required", nil, "missing flight ID")
		return
	}

	seatMap, err := c.service.SeatMap(ctx.Request.Context(), flightID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFlightID):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid flight ID", nil, err.Error())
		case errors.Is(err, ErrFlightNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Flight not found", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get seat map", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}
