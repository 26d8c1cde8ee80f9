package calculator

import (
	"testing"

	"FuelSentinel/internal/model"
)

func TestPriceRange(t *testing.T) {
	series := model.TimeSeries{
		row("2024-05-12", map[model.FuelType]float64{model.Unleaded92: 31.0}),
		row("2024-05-19", map[model.FuelType]float64{model.Unleaded92: 30.6}),
		row("2024-05-26", map[model.FuelType]float64{model.Unleaded92: 30.4, model.Unleaded98: 33.9}),
		row("2024-06-02", map[model.FuelType]float64{model.Unleaded92: 29.8}),
	}

	high, low, ok := PriceRange(series, model.Unleaded92, 3)
	if !ok || high != 30.6 || low != 29.8 {
		t.Errorf("expected (30.6, 29.8, true), got (%v, %v, %v)", high, low, ok)
	}

	high, low, ok = PriceRange(series, model.Unleaded98, 10)
	if !ok || high != 33.9 || low != 33.9 {
		t.Errorf("expected single 98 observation, got (%v, %v, %v)", high, low, ok)
	}

	if _, _, ok := PriceRange(series, model.SuperDiesel, 4); ok {
		t.Error("expected no diesel range")
	}
}
