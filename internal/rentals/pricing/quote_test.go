package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	nine := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		end       time.Time
		price     float64
		wantHours int
		wantPrice float64
		wantErr   bool
	}{
		{"two and a half hours rounds up", nine.Add(150 * time.Minute), 10, 3, 30, false},
		{"exactly one hour", nine.Add(time.Hour), 10, 1, 10, false},
		{"one hour and a second", nine.Add(time.Hour + time.Second), 10, 2, 20, false},
		{"ten minutes rejected", nine.Add(10 * time.Minute), 10, 0, 0, true},
		{"just under an hour rejected", nine.Add(59*time.Minute + 59*time.Second), 10, 0, 0, true},
		{"zero length rejected", nine, 10, 0, 0, true},
		{"reversed range rejected", nine.Add(-2 * time.Hour), 10, 0, 0, true},
		{"fractional price", nine.Add(2 * time.Hour), 12.75, 2, 25.5, false},
		{"float noise snaps to the cent", nine.Add(3 * time.Hour), 0.1, 3, 0.3, false},
		{"sub-cent rate is not rounded away", nine.Add(time.Hour), 0.004, 1, 0.004, false},
		{"sub-cent rate over hours", nine.Add(3 * time.Hour), 0.333, 3, 0.999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, price, err := Quote(nine, tt.end, tt.price)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTooShort)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantHours, hours)
			assert.InDelta(t, tt.wantPrice, price, 1e-9)
		})
	}
}

func TestQuote_HoursAreCeilOfDuration(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for minutes := 60; minutes <= 600; minutes += 7 {
		hours, price, err := Quote(start, start.Add(time.Duration(minutes)*time.Minute), 8)
		assert.NoError(t, err)
		assert.Equal(t, (minutes+59)/60, hours, "minutes=%d", minutes)
		assert.InDelta(t, float64(hours)*8, price, 1e-9)
	}
}

func TestQuote_WholeCentsAreExact(t *testing.T) {
	nine := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	_, price, err := Quote(nine, nine.Add(3*time.Hour), 0.1)
	assert.NoError(t, err)
	assert.Equal(t, 0.3, price)

	_, price, err = Quote(nine, nine.Add(7*time.Hour), 19.99)
	assert.NoError(t, err)
	assert.Equal(t, 139.93, price)
}
