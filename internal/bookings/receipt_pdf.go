package bookings

import (
	"bytes"
	"fmt"
	"strings"

	"aerolink/internal/wizard"

	"github.com/phpdave11/gofpdf"
)

// RenderReceiptPDF prints a confirmed receipt on one A4 page
func RenderReceiptPDF(r *wizard.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+r.BookingReference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Reference     : " + r.BookingReference,
		"Transaction   : " + r.TransactionID,
		"Issued        : " + r.IssuedAt.UTC().Format("2006-01-02 15:04 MST"),
		"Flight        : " + r.Flight.FlightNumber,
		"Route         : " + r.Flight.DepartureAirportCode + " - " + r.Flight.ArrivalAirportCode,
		"Departure     : " + r.Flight.DepartureTime.UTC().Format("2006-01-02 15:04 MST"),
		"Cabin         : " + strings.ToUpper(string(r.CabinClass)),
		"Seats         : " + strings.Join(r.Seats, ", "),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, p := range r.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%-5s %s %s", p.Seat, p.FirstName, p.LastName))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Base fare (%d x %.2f): %.2f %s", r.Pricing.Seats, r.Pricing.FarePerSeat, r.Pricing.BaseFare, r.Pricing.Currency))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Taxes: %.2f %s", r.Pricing.Taxes, r.Pricing.Currency))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f %s", r.Pricing.Total, r.Pricing.Currency))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Paid with card "+r.CardMasked)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please bring a valid identity document matching the passenger details to the airport.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
