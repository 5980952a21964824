// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// `swag init -g server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}}
        },
        "/auth/signin": {
            "post": {"tags": ["auth"], "summary": "Exchange credentials for a token pair", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}
        },
        "/flight/search": {
            "post": {"tags": ["flights"], "summary": "Search flights", "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid search"}}}
        },
        "/flight/{id}/seats": {
            "get": {"tags": ["seats"], "summary": "Seat map of a flight", "responses": {"200": {"description": "OK"}, "404": {"description": "Flight not found"}}}
        },
        "/booking/sessions": {
            "post": {"tags": ["bookings"], "summary": "Start a booking session", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid request"}, "409": {"description": "Flight not bookable"}}}
        },
        "/booking/sessions/{id}": {
            "get": {"tags": ["bookings"], "summary": "Current state of a booking session", "responses": {"200": {"description": "OK"}, "404": {"description": "Session not found"}}},
            "delete": {"tags": ["bookings"], "summary": "Abandon a booking session", "responses": {"200": {"description": "OK"}}}
        },
        "/booking/sessions/{id}/seats/toggle": {
            "post": {"tags": ["bookings"], "summary": "Select or release a seat", "responses": {"200": {"description": "OK"}, "409": {"description": "Wrong step"}, "422": {"description": "Unknown seat"}}}
        },
        "/booking/sessions/{id}/seats/continue": {
            "post": {"tags": ["bookings"], "summary": "Advance to passenger details", "responses": {"200": {"description": "OK"}, "409": {"description": "Selection incomplete"}}}
        },
        "/booking/sessions/{id}/passengers": {
            "get": {"tags": ["bookings"], "summary": "Passenger forms, one per seat", "responses": {"200": {"description": "OK"}, "410": {"description": "Hand-off expired"}}},
            "post": {"tags": ["bookings"], "summary": "Submit passenger details", "responses": {"200": {"description": "OK"}, "422": {"description": "Invalid passenger records"}}}
        },
        "/booking/sessions/{id}/payment": {
            "get": {"tags": ["bookings"], "summary": "Payment summary", "responses": {"200": {"description": "OK"}, "410": {"description": "Hand-off expired"}}},
            "post": {"tags": ["bookings"], "summary": "Pay and confirm the booking", "responses": {"201": {"description": "Confirmed"}, "402": {"description": "Payment declined"}, "409": {"description": "Seats no longer available"}, "410": {"description": "Session or hand-off expired"}, "422": {"description": "Invalid card"}}}
        },
        "/booking/sessions/{id}/back": {
            "post": {"tags": ["bookings"], "summary": "Return to an earlier step", "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/booking/sessions/{id}/confirmation": {
            "get": {"tags": ["bookings"], "summary": "Booking receipt", "responses": {"200": {"description": "OK"}, "410": {"description": "Receipt expired"}}}
        },
        "/booking/sessions/{id}/receipt.pdf": {
            "get": {"tags": ["bookings"], "summary": "Booking receipt as PDF", "produces": ["application/pdf"], "responses": {"200": {"description": "OK"}}}
        },
        "/users/bookings": {
            "get": {"tags": ["bookings"], "summary": "Bookings of the signed-in user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Aerolink Booking API",
	Description:      "Flight search and the multi-step booking wizard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
