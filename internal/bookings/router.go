package bookings

import (
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers the booking wizard and the user's booking history
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, jwtCfg config.JWTConfig) {
	sessions := rg.Group("/booking/sessions")
	sessions.Use(middleware.OptionalAuth(jwtCfg))
	{
		sessions.POST("", controller.StartSession)                            // POST   /api/v1/booking/sessions
		sessions.GET("/:id", controller.GetSession)                           // GET    /api/v1/booking/sessions/:id
		sessions.DELETE("/:id", controller.AbandonSession)                    // DELETE /api/v1/booking/sessions/:id
		sessions.POST("/:id/seats/toggle", controller.ToggleSeat)             // POST   /api/v1/booking/sessions/:id/seats/toggle
		sessions.POST("/:id/seats/continue", controller.ContinueToPassengers) // POST   /api/v1/booking/sessions/:id/seats/continue
		sessions.GET("/:id/passengers", controller.GetPassengerForms)         // GET    /api/v1/booking/sessions/:id/passengers
		sessions.POST("/:id/passengers", controller.SubmitPassengers)         // POST   /api/v1/booking/sessions/:id/passengers
		sessions.GET("/:id/payment", controller.GetPaymentSummary)            // GET    /api/v1/booking/sessions/:id/payment
		sessions.POST("/:id/payment", controller.Pay)                         // POST   /api/v1/booking/sessions/:id/payment
		sessions.POST("/:id/back", controller.Back)                           // POST   /api/v1/booking/sessions/:id/back
		sessions.GET("/:id/confirmation", controller.GetConfirmation)         // GET    /api/v1/booking/sessions/:id/confirmation
		sessions.GET("/:id/receipt.pdf", controller.GetReceiptPDF)            // GET    /api/v1/booking/sessions/:id/receipt.pdf
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(jwtCfg))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings?limit=10&offset=0
	}
}

// Wizard flow:
// 1. POST /booking/sessions            SEARCH -> SEAT_SELECTION
// 2. POST /:id/seats/toggle            until can_continue is true
// 3. POST /:id/seats/continue          SEAT_SELECTION -> PASSENGER_INFO
// 4. POST /:id/passengers              PASSENGER_INFO -> PAYMENT
// 5. POST /:id/payment                 PAYMENT -> CONFIRMED
// POST /:id/back returns to SEAT_SELECTION or PASSENGER_INFO from any later open step.
