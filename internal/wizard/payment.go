package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentDetails is the card form. It is never stored.
type PaymentDetails struct {
	CardNumber string `json:"card_number" validate:"required,card_number"`
	CardName   string `json:"card_name" validate:"required,max=100"`
	ExpiryDate string `json:"expiry_date" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,cvv"`
}

// NormalizeCardNumber drops the spaces people type between digit groups
func NormalizeCardNumber(n string) string {
	return strings.ReplaceAll(strings.TrimSpace(n), " ", "")
}

// Last4 returns the last four digits of the card number
func (p PaymentDetails) Last4() string {
	n := NormalizeCardNumber(p.CardNumber)
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}

// Masked renders the card as "**** 3456"
func (p PaymentDetails) Masked() string {
	return "**** " + p.Last4()
}

// ValidatePayment checks the card form and returns a *PaymentValidationError on failure
func (v *Validator) ValidatePayment(p PaymentDetails) error {
	p.CardName = strings.TrimSpace(p.CardName)
	p.ExpiryDate = strings.TrimSpace(p.ExpiryDate)
	p.CVV = strings.TrimSpace(p.CVV)

	if err := v.validate.Struct(p); err != nil {
		return &PaymentValidationError{Fields: fieldErrors(err)}
	}
	return nil
}

// PaymentResult is what a successful charge returns
type PaymentResult struct {
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	CardLast4     string    `json:"card_last4"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Gateway charges a card
type Gateway interface {
	Charge(ctx context.Context, amount float64, currency string, card PaymentDetails) (*PaymentResult, error)
}

// SimulatedGateway approves every charge after Delay
type SimulatedGateway struct {
	Delay time.Duration
}

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay}
}

// Charge waits for the configured delay and approves. Cancelling ctx aborts the charge.
func (g *SimulatedGateway) Charge(ctx context.Context, amount float64, currency string, card PaymentDetails) (*PaymentResult, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &PaymentResult{
		TransactionID: "txn_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Amount:        amount,
		Currency:      currency,
		CardLast4:     card.Last4(),
		ProcessedAt:   time.Now().UTC(),
	}, nil
}
