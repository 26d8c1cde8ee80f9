// Package export writes price history to spreadsheet files.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"FuelSentinel/internal/calculator"
	"FuelSentinel/internal/model"
)

const (
	pricesSheet  = "Prices"
	changesSheet = "Changes"
)

// WriteXLSX saves series to path. The Prices sheet has one row per date and
// one column per fuel type, absent prices left blank. The Changes sheet
// lists the latest change of each fuel type.
func WriteXLSX(path string, series model.TimeSeries) error {
	if len(series) == 0 {
		return errors.New("no rows to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", pricesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writePrices(f, series); err != nil {
		return fmt.Errorf("write %s: %w", pricesSheet, err)
	}
	if _, err := f.NewSheet(changesSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := writeChanges(f, series); err != nil {
		return fmt.Errorf("write %s: %w", changesSheet, err)
	}
	return f.SaveAs(path)
}

func writePrices(f *excelize.File, series model.TimeSeries) error {
	sw, err := f.NewStreamWriter(pricesSheet)
	if err != nil {
		return err
	}
	header := []interface{}{"日期"}
	for _, fuel := range model.FuelTypes {
		header = append(header, fuel.Name())
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range series {
		row := []interface{}{r.Date}
		for _, fuel := range model.FuelTypes {
			if p, ok := r.Price(fuel); ok {
				row = append(row, p)
			} else {
				row = append(row, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeChanges(f *excelize.File, series model.TimeSeries) error {
	header := []interface{}{"油品", "本期日期", "本期價格", "前期日期", "前期價格", "漲跌", "方向"}
	if err := f.SetSheetRow(changesSheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range calculator.CompareAll(series) {
		row := []interface{}{
			c.Fuel.Name(), c.CurrentDate, c.CurrentPrice,
			c.PreviousDate, c.PreviousPrice, c.Delta, string(c.Direction),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(changesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
