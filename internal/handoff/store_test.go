package handoff

import (
	"context"
	"testing"
	"time"

	"aerolink/internal/shared/constants"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*store, *cache.Memory, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	mem := cache.NewMemory()
	mem.SetClock(clk.now)
	s, err := newStore(mem, 30*time.Minute, clk.now)
	require.NoError(t, err)
	return s, mem, clk
}

func paidDraft(t *testing.T) *wizard.BookingDraft {
	t.Helper()
	d, err := wizard.NewDraft(wizard.DraftParams{
		SessionID:      "sess-42",
		Flight:         &wizard.FlightRef{ID: "flight-1", FlightNumber: "AL204", BasePrice: 100},
		CabinClass:     wizard.CabinEconomy,
		PassengerCount: 1,
		MaxPassengers:  9,
		Layout:         wizard.DefaultLayout(),
		Policy:         wizard.PricingPolicy{TaxPerSeat: 35, Currency: "USD"},
		Now:            time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, _, err = d.ToggleSeat("4C")
	require.NoError(t, err)
	require.NoError(t, d.ContinueToPassengers())

	v := wizard.NewValidatorWithClock(func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) })
	_, err = d.SubmitPassengers(v, []wizard.PassengerRecord{{
		Seat:           "4C",
		FirstName:      "Amara",
		LastName:       "Okafor",
		Email:          "amara@example.com",
		Phone:          "+1 555 010 2030",
		DateOfBirth:    "1990-04-12",
		PassengerType:  wizard.PassengerForeign,
		PassportNumber: "X1234567",
	}})
	require.NoError(t, err)
	return d
}

func TestStore_DraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	d := paidDraft(t)

	require.NoError(t, s.SaveDraft(ctx, d))
	assert.True(t, mem.Exists(ctx, "aerolink:booking:session:sess-42:draft"))

	got, err := s.LoadDraft(ctx, "sess-42")
	require.NoError(t, err)
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_PassengerHandoffRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	d := paidDraft(t)

	require.NoError(t, s.SavePassengers(ctx, NewPassengerHandoff(d)))

	got, err := s.LoadPassengers(ctx, d.SessionID)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, got.Version)
	assert.Equal(t, []string{"4C"}, got.Seats)
	assert.Equal(t, "X1234567", got.Passengers[0].PassportNumber)
	assert.Equal(t, 135.0, got.Pricing.Total)
}

func TestStore_MissingAndExpired(t *testing.T) {
	ctx := context.Background()
	s, _, clk := newTestStore(t)

	_, err := s.LoadPassengers(ctx, "nope")
	assert.ErrorIs(t, err, ErrMissing)

	require.NoError(t, s.SaveSeats(ctx, NewSeatHandoff(paidDraft(t))))
	clk.t = clk.t.Add(31 * time.Minute)

	_, err = s.LoadSeats(ctx, "sess-42")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestStore_RejectsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	future := "2026-10-19T10:00:00Z"

	tests := []struct {
		name string
		kind Kind
		raw  string
	}{
		{"not json", KindPassengers, `{{{`},
		{"old version", KindSeats, `{"version":0,"session_id":"s","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `","flight_id":"f","seats":["1A"]}`},
		{"bad seat id", KindSeats, `{"version":1,"session_id":"s","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `","flight_id":"f","seats":["A1"]}`},
		{"empty seats", KindSeats, `{"version":1,"session_id":"s","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `","flight_id":"f","seats":[]}`},
		{"passenger without type", KindPassengers, `{"version":1,"session_id":"s","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `",
			"flight":{"id":"f","flight_number":"AL1"},"seats":["1A"],"pricing":{"total":10,"currency":"USD"},
			"passengers":[{"seat":"1A","first_name":"A","last_name":"B","email":"a@b.co","phone":"5550102030","date_of_birth":"1990-01-01"}]}`},
		{"counts differ", KindPassengers, `{"version":1,"session_id":"s","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `",
			"flight":{"id":"f","flight_number":"AL1"},"seats":["1A","1B"],"pricing":{"total":10,"currency":"USD"},
			"passengers":[{"seat":"1A","first_name":"A","last_name":"B","email":"a@b.co","phone":"5550102030","date_of_birth":"1990-01-01","passenger_type":"local"}]}`},
		{"other session", KindSeats, `{"version":1,"session_id":"other","stored_at":"2026-10-19T09:00:00Z","expires_at":"` + future + `","flight_id":"f","seats":["1A"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mem, _ := newTestStore(t)
			mem.Put(constants.BuildSessionKey("s", string(tt.kind)), []byte(tt.raw), time.Hour)

			var err error
			switch tt.kind {
			case KindSeats:
				_, err = s.LoadSeats(ctx, "s")
			case KindPassengers:
				_, err = s.LoadPassengers(ctx, "s")
			}

			assert.ErrorIs(t, err, ErrStale)
			assert.True(t, IsUnavailable(err))
		})
	}
}

func TestStore_Discard(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	d := paidDraft(t)

	require.NoError(t, s.SaveDraft(ctx, d))
	require.NoError(t, s.SaveSeats(ctx, NewSeatHandoff(d)))
	require.NoError(t, s.SavePassengers(ctx, NewPassengerHandoff(d)))

	require.NoError(t, s.Discard(ctx, d.SessionID, KindPassengers))
	_, err := s.LoadPassengers(ctx, d.SessionID)
	assert.ErrorIs(t, err, ErrMissing)
	_, err = s.LoadSeats(ctx, d.SessionID)
	assert.NoError(t, err)

	require.NoError(t, s.Discard(ctx, d.SessionID))
	assert.Empty(t, mem.Keys())
}

func TestNewStore_RejectsNonPositiveTTL(t *testing.T) {
	_, err := NewStore(cache.NewMemory(), 0)
	assert.Error(t, err)
}
