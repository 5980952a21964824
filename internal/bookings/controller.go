package bookings

import (
	"context"
	"errors"
	"net/http"

	"aerolink/internal/flights"
	"aerolink/internal/seats"
	"aerolink/internal/shared/middleware"
	"aerolink/internal/shared/utils/response"
	"aerolink/internal/wizard"
	"aerolink/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SearchRedirect is where a client goes when its session can no longer be resumed
const SearchRedirect = "/flights/search"

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

// StartSession godoc
// @Summary      Start a booking session
// @Description  Leaves the search step for the chosen flight and snapshots its occupied seats
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        request  body      StartSessionRequest  true  "Flight and party"
// @Success      201      {object}  response.StandardApiResponse{data=SessionView}
// @Failure      400      {object}  response.StandardApiResponse
// @Failure      404      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /booking/sessions [post]
func (c *Controller) StartSession(ctx *gin.Context) {
	var req StartSessionRequest
	if !c.bind(ctx, &req) {
		return
	}

	ownerID, _ := middleware.GetUserID(ctx)
	view, err := c.service.Start(ctx.Request.Context(), ownerID, req)
	if err != nil {
		c.respondError(ctx, err, "Failed to start booking")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking session started", view, nil)
}

// GetSession godoc
// @Summary      Current state of a booking session
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=SessionView}
// @Failure      403  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id} [get]
func (c *Controller) GetSession(ctx *gin.Context) {
	view, err := c.service.View(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to load booking session")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking session retrieved", view, nil)
}

// ToggleSeat godoc
// @Summary      Select or deselect a seat
// @Description  Occupied seats are ignored. A full selection rejects new seats with 409.
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Session ID"
// @Param        request  body      ToggleSeatRequest  true  "Seat"
// @Success      200      {object}  response.StandardApiResponse{data=ToggleResponse}
// @Failure      409      {object}  response.StandardApiResponse
// @Failure      422      {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/seats/toggle [post]
func (c *Controller) ToggleSeat(ctx *gin.Context) {
	var req ToggleSeatRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.ToggleSeat(ctx.Request.Context(), ctx.Param("id"), callerID(ctx), req.Seat)
	if err != nil {
		c.respondError(ctx, err, "Failed to update seat selection")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat selection updated", resp, nil)
}

// ContinueToPassengers godoc
// @Summary      Leave seat selection
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=PassengerFormsResponse}
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/seats/continue [post]
func (c *Controller) ContinueToPassengers(ctx *gin.Context) {
	resp, err := c.service.ContinueToPassengers(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to continue")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats confirmed, enter passenger details", resp, nil)
}

// GetPassengerForms godoc
// @Summary      Passenger forms, one per selected seat
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=PassengerFormsResponse}
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      410  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/passengers [get]
func (c *Controller) GetPassengerForms(ctx *gin.Context) {
	resp, err := c.service.PassengerForms(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to load passenger forms")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger forms retrieved", resp, nil)
}

// SubmitPassengers godoc
// @Summary      Submit every passenger record
// @Description  All records are accepted or none are. Errors are reported per record.
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Session ID"
// @Param        request  body      SubmitPassengersRequest  true  "Passengers"
// @Success      200      {object}  response.StandardApiResponse{data=PaymentSummary}
// @Failure      409      {object}  response.StandardApiResponse
// @Failure      422      {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/passengers [post]
func (c *Controller) SubmitPassengers(ctx *gin.Context) {
	var req SubmitPassengersRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.SubmitPassengers(ctx.Request.Context(), ctx.Param("id"), callerID(ctx), req.Passengers)
	if err != nil {
		c.respondError(ctx, err, "Failed to save passengers")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger details saved", resp, nil)
}

// GetPaymentSummary godoc
// @Summary      What is about to be paid
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=PaymentSummary}
// @Failure      410  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/payment [get]
func (c *Controller) GetPaymentSummary(ctx *gin.Context) {
	resp, err := c.service.PaymentSummary(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to load payment summary")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment summary retrieved", resp, nil)
}

// Pay godoc
// @Summary      Pay and confirm the booking
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Session ID"
// @Param        request  body      PaymentRequest  true  "Card"
// @Success      201      {object}  response.StandardApiResponse{data=wizard.Receipt}
// @Failure      402      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Failure      410      {object}  response.StandardApiResponse
// @Failure      422      {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/payment [post]
func (c *Controller) Pay(ctx *gin.Context) {
	var req PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	receipt, err := c.service.Pay(ctx.Request.Context(), ctx.Param("id"), callerID(ctx), req)
	if err != nil {
		c.respondError(ctx, err, "Payment failed")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking confirmed", receipt, nil)
}

// Back godoc
// @Summary      Return to an earlier step
// @Tags         booking
// @Accept       json
// @Produce      json
// @Param        id       path      string       true  "Session ID"
// @Param        request  body      BackRequest  true  "SEAT_SELECTION or PASSENGER_INFO"
// @Success      200      {object}  response.StandardApiResponse{data=SessionView}
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/back [post]
func (c *Controller) Back(ctx *gin.Context) {
	var req BackRequest
	if !c.bind(ctx, &req) {
		return
	}

	view, err := c.service.Back(ctx.Request.Context(), ctx.Param("id"), callerID(ctx), req.Step)
	if err != nil {
		c.respondError(ctx, err, "Failed to go back")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Moved back to "+view.Step.String(), view, nil)
}

// GetConfirmation godoc
// @Summary      Receipt of a confirmed session
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse{data=wizard.Receipt}
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id}/confirmation [get]
func (c *Controller) GetConfirmation(ctx *gin.Context) {
	receipt, err := c.service.Confirmation(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to load confirmation")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking confirmation retrieved", receipt, nil)
}

// GetReceiptPDF godoc
// @Summary      Receipt as a PDF document
// @Tags         booking
// @Produce      application/pdf
// @Param        id   path  string  true  "Session ID"
// @Success      200  {file}  binary
// @Router       /booking/sessions/{id}/receipt.pdf [get]
func (c *Controller) GetReceiptPDF(ctx *gin.Context) {
	receipt, err := c.service.Confirmation(ctx.Request.Context(), ctx.Param("id"), callerID(ctx))
	if err != nil {
		c.respondError(ctx, err, "Failed to load confirmation")
		return
	}

	doc, err := RenderReceiptPDF(receipt)
	if err != nil {
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to render receipt", nil, nil)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="booking-`+receipt.BookingReference+`.pdf"`)
	ctx.Data(http.StatusOK, "application/pdf", doc)
}

// AbandonSession godoc
// @Summary      Abandon a booking session
// @Tags         booking
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /booking/sessions/{id} [delete]
func (c *Controller) AbandonSession(ctx *gin.Context) {
	if err := c.service.Abandon(ctx.Request.Context(), ctx.Param("id"), callerID(ctx)); err != nil {
		c.respondError(ctx, err, "Failed to abandon booking session")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking session abandoned", nil, nil)
}

// GetUserBookings godoc
// @Summary      Confirmed bookings of the current user
// @Tags         booking
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size"  default(10)
// @Param        offset  query     int  false  "Offset"     default(0)
// @Success      200     {object}  response.StandardApiResponse{data=BookingListResponse}
// @Failure      401     {object}  response.StandardApiResponse
// @Router       /users/bookings [get]
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var q BookingListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&q); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	list, err := c.service.UserBookings(ctx.Request.Context(), userID, q)
	if err != nil {
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "User bookings retrieved successfully", list, nil)
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return false
	}
	return true
}

func callerID(ctx *gin.Context) string {
	id, _ := middleware.GetUserID(ctx)
	return id
}

func (c *Controller) respondError(ctx *gin.Context, err error, fallback string) {
	var (
		conflict   *SeatConflictError
		capacity   *wizard.CapacityError
		passengers *wizard.PassengerValidationError
		payment    *wizard.PaymentValidationError
	)

	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking session not found or expired", nil, nil)
	case errors.Is(err, ErrSessionForbidden):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Booking session belongs to another user", nil, nil)
	case errors.Is(err, ErrHandoffMissing):
		response.RespondJSON(ctx, "error", http.StatusGone, "Booking details expired, please search again",
			gin.H{"redirect": SearchRedirect}, nil)

	case errors.As(err, &conflict):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Some selected seats were just sold, pick again",
			nil, gin.H{"seats": conflict.Seats})
	case errors.As(err, &capacity):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil,
			gin.H{"seat": capacity.Seat, "capacity": capacity.Capacity})
	case errors.Is(err, wizard.ErrUnknownSeat):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Unknown seat", nil, err.Error())
	case errors.As(err, &passengers):
		var details interface{} = passengers.Records
		if passengers.Reason != "" {
			details = passengers.Reason
		}
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Passenger details are invalid", nil, details)
	case errors.As(err, &payment):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Payment details are invalid", nil, payment.Fields)

	case errors.Is(err, wizard.ErrFlowClosed):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is already confirmed", nil, nil)
	case errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrSelectionIncomplete):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, wizard.ErrPaymentDeclined):
		response.RespondJSON(ctx, "error", http.StatusPaymentRequired, "Payment was declined", nil, nil)

	case errors.Is(err, wizard.ErrInvalidPassengerCount),
		errors.Is(err, wizard.ErrInvalidCabinClass),
		errors.Is(err, wizard.ErrMissingFlight),
		errors.Is(err, flights.ErrInvalidFlightID),
		errors.Is(err, seats.ErrInvalidFlightID):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, flights.ErrFlightNotFound), errors.Is(err, seats.ErrFlightNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Flight not found", nil, nil)
	case errors.Is(err, flights.ErrFlightNotBookable), errors.Is(err, flights.ErrCabinSoldOut):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.RespondJSON(ctx, "error", http.StatusRequestTimeout, "Request was cancelled", nil, nil)
	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, fallback, nil, nil)
	}
}
