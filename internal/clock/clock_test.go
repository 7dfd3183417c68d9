package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_Now(t *testing.T) {
	clk := &RealClock{}

	before := time.Now()
	actual := clk.Now()
	after := time.Now()

	assert.False(t, actual.Before(before))
	assert.False(t, actual.After(after))
}

func TestFakeClock(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	clk := NewFakeClock(fixed)

	assert.True(t, clk.Now().Equal(fixed))
	assert.Equal(t, "2024-01-15", Today(clk))

	clk.Advance(36 * time.Hour)
	assert.Equal(t, "2024-01-16", Today(clk))

	clk.Set(fixed)
	assert.True(t, clk.Now().Equal(fixed))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "same day", a: "2024-03-10", b: "2024-03-10", want: 0},
		{name: "late", a: "2024-03-10", b: "2024-03-13", want: 3},
		{name: "early", a: "2024-03-10", b: "2024-03-08", want: -2},
		{name: "across month", a: "2024-02-28", b: "2024-03-01", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseDate(tt.a)
			require.NoError(t, err)
			b, err := ParseDate(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, DaysBetween(a, b))
		})
	}
}
