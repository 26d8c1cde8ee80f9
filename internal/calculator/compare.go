package calculator

import (
	"math"
	"time"

	"FuelSentinel/internal/model"
)

// Compare returns the change between the two most recent rows that carry a
// price for fuel, walking the series from its end. Rows whose date is not a
// Western calendar date are skipped. ok is false when fewer than two such
// rows exist.
func Compare(series model.TimeSeries, fuel model.FuelType) (model.Comparison, bool) {
	var cur, prev *model.DatedPriceRow
	for i := len(series) - 1; i >= 0 && prev == nil; i-- {
		if _, ok := series[i].Price(fuel); !ok || !isDate(series[i].Date) {
			continue
		}
		if cur == nil {
			cur = &series[i]
		} else {
			prev = &series[i]
		}
	}
	if cur == nil || prev == nil {
		return model.Comparison{}, false
	}

	c := model.Comparison{
		Fuel:          fuel,
		CurrentDate:   cur.Date,
		CurrentPrice:  cur.Prices[fuel],
		PreviousDate:  prev.Date,
		PreviousPrice: prev.Prices[fuel],
	}
	c.Delta = roundCents(c.CurrentPrice - c.PreviousPrice)
	switch {
	case c.Delta > 0:
		c.Direction = model.Up
	case c.Delta < 0:
		c.Direction = model.Down
	default:
		c.Delta = 0 // avoid -0
		c.Direction = model.Flat
	}
	return c, true
}

// CompareAll runs Compare for every fuel type in display order and skips
// the ones without enough history.
func CompareAll(series model.TimeSeries) []model.Comparison {
	var out []model.Comparison
	for _, f := range model.FuelTypes {
		if c, ok := Compare(series, f); ok {
			out = append(out, c)
		}
	}
	return out
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
