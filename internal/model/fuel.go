package model

// FuelType is one of the canonical fuel grades prices are tracked for.
type FuelType string

const (
	Unleaded92  FuelType = "92"
	Unleaded95  FuelType = "95"
	Unleaded98  FuelType = "98"
	SuperDiesel FuelType = "diesel"
)

// FuelTypes lists every canonical fuel type in display order.
var FuelTypes = []FuelType{Unleaded92, Unleaded95, Unleaded98, SuperDiesel}

var fuelNames = map[FuelType]string{
	Unleaded92:  "92無鉛汽油",
	Unleaded95:  "95無鉛汽油",
	Unleaded98:  "98無鉛汽油",
	SuperDiesel: "超級柴油",
}

// chart fonts do not carry CJK glyphs
var fuelChartLabels = map[FuelType]string{
	Unleaded92:  "92 Unleaded",
	Unleaded95:  "95 Unleaded",
	Unleaded98:  "98 Unleaded",
	SuperDiesel: "Super Diesel",
}

// Name returns the display name used in chat replies.
func (f FuelType) Name() string {
	if n, ok := fuelNames[f]; ok {
		return n
	}
	return string(f)
}

// ChartLabel returns the ASCII legend label used on rendered charts.
func (f FuelType) ChartLabel() string {
	if n, ok := fuelChartLabels[f]; ok {
		return n
	}
	return string(f)
}

// Valid reports whether f is one of the canonical fuel types.
func (f FuelType) Valid() bool {
	_, ok := fuelNames[f]
	return ok
}

// ParseFuelType maps a config key ("92", "95", "98", "diesel") to a FuelType.
func ParseFuelType(s string) (FuelType, bool) {
	f := FuelType(s)
	return f, f.Valid()
}
