package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"FuelSentinel/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	series := model.TimeSeries{
		{Date: "2024-05-26", Prices: map[model.FuelType]float64{model.Unleaded92: 30.4, model.SuperDiesel: 28.2}},
		{Date: "2024-06-02", Prices: map[model.FuelType]float64{model.Unleaded92: 29.8, model.Unleaded98: 33.3}},
	}
	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := WriteXLSX(path, series); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(pricesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "92無鉛汽油" || rows[0][4] != "超級柴油" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[2][0] != "2024-06-02" || rows[2][1] != "29.8" || rows[2][3] != "33.3" {
		t.Errorf("unexpected row %v", rows[2])
	}
	if rows[2][2] != "" {
		t.Errorf("expected blank 95 cell, got %q", rows[2][2])
	}

	changes, err := f.GetRows(changesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 || changes[1][0] != "92無鉛汽油" || changes[1][6] != "DOWN" {
		t.Errorf("unexpected changes sheet %v", changes)
	}
}

func TestWriteXLSX_Empty(t *testing.T) {
	if err := WriteXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil); err == nil {
		t.Error("expected error for an empty series")
	}
}
