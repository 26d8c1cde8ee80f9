package model

// RawPoint is a single (label, value) pair as found in the source payload.
// Value is nil when the source reported null or undefined.
type RawPoint struct {
	Label string
	Value any
}

// RawSeriesEntry is one dated element of the embedded price array.
type RawSeriesEntry struct {
	DateLabel string // source calendar, e.g. "113/06/02"
	Points    []RawPoint
}

// DatedPriceRow holds the prices observed on one date.
// A fuel type without a key in Prices is absent for that date.
type DatedPriceRow struct {
	Date   string
	Prices map[FuelType]float64
}

// Price returns the price for f and whether it is present.
func (r DatedPriceRow) Price(f FuelType) (float64, bool) {
	p, ok := r.Prices[f]
	return p, ok
}

// TimeSeries is a list of rows sorted ascending by date.
type TimeSeries []DatedPriceRow

// Latest returns the most recent row, if any.
func (ts TimeSeries) Latest() (DatedPriceRow, bool) {
	if len(ts) == 0 {
		return DatedPriceRow{}, false
	}
	return ts[len(ts)-1], true
}

// Tail returns the last n rows (or all of them when n exceeds the length).
func (ts TimeSeries) Tail(n int) TimeSeries {
	if n <= 0 {
		return nil
	}
	if n >= len(ts) {
		return ts
	}
	return ts[len(ts)-n:]
}

// Direction is the sign of a price change.
type Direction string

const (
	Up   Direction = "UP"
	Down Direction = "DOWN"
	Flat Direction = "FLAT"
)

// Comparison describes the change between the two most recent observations
// of a fuel type.
type Comparison struct {
	Fuel          FuelType
	CurrentDate   string
	CurrentPrice  float64
	PreviousDate  string
	PreviousPrice float64
	Delta         float64
	Direction     Direction
}
