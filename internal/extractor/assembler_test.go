package extractor

import (
	"reflect"
	"testing"

	"FuelSentinel/internal/model"
)

func TestAssemble(t *testing.T) {
	entries := []model.RawSeriesEntry{
		{DateLabel: "113/05/26", Points: []model.RawPoint{
			{Label: "92 無鉛汽油", Value: 28.3},
			{Label: "95 無鉛汽油", Value: "29.8"},
			{Label: "酒精汽油", Value: 27.0},
		}},
		{DateLabel: "113/06/02", Points: []model.RawPoint{
			{Label: "92無鉛汽油", Value: 27.8},
			{Label: "95 無鉛汽油", Value: "n/a"},
			{Label: "98 無鉛汽油", Value: nil},
			{Label: "超級/高級柴油", Value: -1.0},
		}},
	}

	rows, unmapped := Assemble(entries, DefaultLabels())

	want := []model.DatedPriceRow{
		{Date: "113/05/26", Prices: map[model.FuelType]float64{model.Unleaded92: 28.3, model.Unleaded95: 29.8}},
		{Date: "113/06/02", Prices: map[model.FuelType]float64{model.Unleaded92: 27.8}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("expected %+v, got %+v", want, rows)
	}
	if !reflect.DeepEqual(unmapped, []string{"酒精汽油"}) {
		t.Errorf("expected unmapped [酒精汽油], got %v", unmapped)
	}
}

func TestAssemble_LastWriteWins(t *testing.T) {
	entries := []model.RawSeriesEntry{
		{DateLabel: "113/06/02", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 27.8}, {Label: "95無鉛汽油", Value: 29.3}}},
		{DateLabel: "113/06/02", Points: []model.RawPoint{{Label: "92 無鉛汽油", Value: 27.9}, {Label: "95無鉛汽油", Value: nil}}},
	}

	rows, _ := Assemble(entries, DefaultLabels())
	if len(rows) != 1 {
		t.Fatalf("expected one row for a repeated date, got %d", len(rows))
	}
	if p, ok := rows[0].Price(model.Unleaded92); !ok || p != 27.9 {
		t.Errorf("expected later 92 price 27.9, got (%v, %v)", p, ok)
	}
	if _, ok := rows[0].Price(model.Unleaded95); ok {
		t.Error("expected later absent 95 write to win")
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	entries := []model.RawSeriesEntry{
		{DateLabel: "113/06/02", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 27.8}}},
		{DateLabel: "113/05/26", Points: []model.RawPoint{{Label: "超級柴油", Value: "26.9"}, {Label: "X", Value: 1.0}}},
	}

	rows1, unmapped1 := Assemble(entries, DefaultLabels())
	rows2, unmapped2 := Assemble(entries, DefaultLabels())
	if !reflect.DeepEqual(rows1, rows2) || !reflect.DeepEqual(unmapped1, unmapped2) {
		t.Fatalf("assembly is not idempotent: %+v vs %+v", rows1, rows2)
	}
}

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantOK  bool
		wantErr bool
	}{
		{29.3, 29.3, true, false},
		{30, 30, true, false},
		{" 31.2 ", 31.2, true, false},
		{"1,029.5", 1029.5, true, false},
		{"", 0, false, false},
		{"-", 0, false, false},
		{nil, 0, false, false},
		{"abc", 0, false, true},
		{"NaN", 0, false, true},
		{-0.5, 0, false, true},
		{true, 0, false, true},
	}
	for _, tt := range tests {
		got, ok, err := coercePrice(tt.in)
		if got != tt.want || ok != tt.wantOK || (err != nil) != tt.wantErr {
			t.Errorf("coercePrice(%v): expected (%v, %v, err=%v), got (%v, %v, %v)", tt.in, tt.want, tt.wantOK, tt.wantErr, got, ok, err)
		}
	}
}
