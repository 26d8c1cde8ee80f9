package calculator

import (
	"math"

	"FuelSentinel/internal/model"
)

// PriceRange scans the most recent n rows and returns the high and low price
// of fuel. ok is false when none of those rows carries the fuel.
func PriceRange(series model.TimeSeries, fuel model.FuelType, n int) (high, low float64, ok bool) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range series.Tail(n) {
		p, present := r.Price(fuel)
		if !present {
			continue
		}
		ok = true
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	if !ok {
		return 0, 0, false
	}
	return high, low, true
}
