package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() PaymentDetails {
	return PaymentDetails{
		CardNumber: "4242 4242 4242 3456",
		CardName:   "Amara Okafor",
		ExpiryDate: "09/28",
		CVV:        "123",
	}
}

func TestValidatePayment(t *testing.T) {
	v := fixedValidator()

	tests := []struct {
		name   string
		mutate func(*PaymentDetails)
		field  string
	}{
		{"valid", func(*PaymentDetails) {}, ""},
		{"four digit cvv", func(p *PaymentDetails) { p.CVV = "1234" }, ""},
		{"15 digits", func(p *PaymentDetails) { p.CardNumber = "424242424242345" }, "card_number"},
		{"17 digits", func(p *PaymentDetails) { p.CardNumber = "42424242424234567" }, "card_number"},
		{"dashes", func(p *PaymentDetails) { p.CardNumber = "4242-4242-4242-3456" }, "card_number"},
		{"blank name", func(p *PaymentDetails) { p.CardName = "  " }, "card_name"},
		{"month 13", func(p *PaymentDetails) { p.ExpiryDate = "13/28" }, "expiry_date"},
		{"long year", func(p *PaymentDetails) { p.ExpiryDate = "09/2028" }, "expiry_date"},
		{"short cvv", func(p *PaymentDetails) { p.CVV = "12" }, "cvv"},
		{"alpha cvv", func(p *PaymentDetails) { p.CVV = "12a" }, "cvv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)

			err := v.ValidatePayment(card)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var pe *PaymentValidationError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Fields, tt.field)
		})
	}
}

func TestPaymentDetails_Masked(t *testing.T) {
	assert.Equal(t, "**** 3456", validCard().Masked())
}

func TestSimulatedGateway_Charge(t *testing.T) {
	g := NewSimulatedGateway(10 * time.Millisecond)

	res, err := g.Charge(context.Background(), 570, "USD", validCard())
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, "3456", res.CardLast4)
	assert.Equal(t, 570.0, res.Amount)
}

func TestSimulatedGateway_HonoursCancellation(t *testing.T) {
	g := NewSimulatedGateway(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := g.Charge(ctx, 100, "USD", validCard())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestQuote(t *testing.T) {
	policy := PricingPolicy{TaxPerSeat: 35, Currency: "USD"}

	p := Quote(250, CabinEconomy, 1, policy)
	assert.Equal(t, 285.0, p.Total)

	p = Quote(120.5, CabinBusiness, 2, policy)
	assert.Equal(t, 301.25, p.FarePerSeat)
	assert.Equal(t, 602.5, p.BaseFare)
	assert.Equal(t, 70.0, p.Taxes)
	assert.Equal(t, 672.5, p.Total)
	assert.Equal(t, "USD", p.Currency)

	c, ok := ParseCabinClass("FIRST")
	assert.True(t, ok)
	assert.Equal(t, 4.0, c.Multiplier())
	c, ok = ParseCabinClass("")
	assert.True(t, ok)
	assert.Equal(t, CabinEconomy, c)
	_, ok = ParseCabinClass("premium")
	assert.False(t, ok)
}

func TestGenerateReference(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref, err := GenerateReference()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 45)
}
