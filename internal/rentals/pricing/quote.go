package pricing

import (
	"errors"
	"math"
	"time"
)

// MinimumDuration is the shortest rentable slot.
const MinimumDuration = time.Hour

var ErrTooShort = errors.New("rental must be at least one hour")

// centNoise is the largest float error snapped away when a product lands
// next to a whole cent.
const centNoise = 1e-9

// Quote prices a slot: partial hours round up, so 2h30m bills as 3 hours.
// The price is hours * hourlyPrice; sub-cent rates are billed as given.
// Slots shorter than MinimumDuration, including reversed ranges, return
// zero hours, zero price and ErrTooShort.
func Quote(start, end time.Time, hourlyPrice float64) (int, float64, error) {
	d := end.Sub(start)
	if d < MinimumDuration {
		return 0, 0, ErrTooShort
	}

	hours := int(math.Ceil(d.Hours()))
	price := float64(hours) * hourlyPrice
	if cents := math.Round(price*100) / 100; math.Abs(cents-price) < centNoise {
		price = cents
	}
	return hours, price, nil
}
