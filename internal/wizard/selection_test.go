package wizard

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeatMap(t *testing.T, occupied ...string) *SeatMap {
	t.Helper()
	m, err := NewSeatMap(DefaultLayout(), occupied)
	require.NoError(t, err)
	return m
}

func TestSelection_TwoPassengerScenario(t *testing.T) {
	m := newTestSeatMap(t)
	sel := NewSelection(2)

	outcome, _, err := sel.Toggle(m, "5A")
	require.NoError(t, err)
	assert.Equal(t, ToggleSelected, outcome)

	_, _, err = sel.Toggle(m, "5B")
	require.NoError(t, err)
	assert.Equal(t, []string{"5A", "5B"}, sel.Seats)
	assert.True(t, sel.IsComplete())

	_, _, err = sel.Toggle(m, "5C")
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "5C", capErr.Seat)
	assert.Equal(t, []string{"5A", "5B"}, sel.Seats, "rejected toggle must not change the selection")

	outcome, _, err = sel.Toggle(m, "5A")
	require.NoError(t, err)
	assert.Equal(t, ToggleDeselected, outcome)
	assert.Equal(t, []string{"5B"}, sel.Seats)
	assert.False(t, sel.IsComplete())
}

func TestSelection_OccupiedSeatIsNoOp(t *testing.T) {
	m := newTestSeatMap(t, "1A")
	sel := NewSelection(1)

	outcome, id, err := sel.Toggle(m, "1a")
	require.NoError(t, err)
	assert.Equal(t, ToggleIgnored, outcome)
	assert.Equal(t, "1A", id)
	assert.Empty(t, sel.Seats)
}

func TestSelection_OccupiedSeatWhenFullIsStillNoOp(t *testing.T) {
	m := newTestSeatMap(t, "1A")
	sel := NewSelection(1)
	_, _, err := sel.Toggle(m, "2A")
	require.NoError(t, err)

	outcome, _, err := sel.Toggle(m, "1A")
	require.NoError(t, err)
	assert.Equal(t, ToggleIgnored, outcome)
	assert.Equal(t, []string{"2A"}, sel.Seats)
}

func TestSelection_UnknownSeat(t *testing.T) {
	m := newTestSeatMap(t)
	sel := NewSelection(2)

	for _, seat := range []string{"31A", "0A", "5G", "A5", "", "5AA"} {
		_, _, err := sel.Toggle(m, seat)
		assert.ErrorIs(t, err, ErrUnknownSeat, seat)
	}
	assert.Empty(t, sel.Seats)
}

func TestSelection_RandomTogglesNeverExceedCapacity(t *testing.T) {
	m := newTestSeatMap(t, "1A", "1B", "2C", "5D", "5E", "8A", "8F", "12B", "15C", "15D")
	rng := rand.New(rand.NewSource(42))
	cols := []string{"A", "B", "C", "D", "E", "F"}

	for capacity := 1; capacity <= 4; capacity++ {
		sel := NewSelection(capacity)
		for i := 0; i < 2000; i++ {
			seat := string(rune('1'+rng.Intn(9))) + cols[rng.Intn(len(cols))]
			wasSelected := sel.Contains(seat)

			_, _, err := sel.Toggle(m, seat)
			if wasSelected {
				require.NoError(t, err, "deselecting %s must never fail", seat)
			}
			if err != nil {
				require.True(t, IsCapacityError(err), "unexpected error %v", err)
				require.Equal(t, capacity, sel.Len())
			}
			require.LessOrEqual(t, sel.Len(), capacity)
			require.Equal(t, sel.Len() == capacity, sel.IsComplete())
		}
	}
}

func TestSelection_ListIsACopy(t *testing.T) {
	m := newTestSeatMap(t)
	sel := NewSelection(1)
	_, _, _ = sel.Toggle(m, "3C")

	list := sel.List()
	list[0] = "9F"
	assert.Equal(t, []string{"3C"}, sel.Seats)
}
