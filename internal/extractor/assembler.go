package extractor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/model"
)

// Assemble groups raw entries into one row per source date. Dates keep their
// source calendar; rows come back in first-seen order. A repeated
// (date, fuel) pair is last-write-wins, including writes of absent values.
// Labels with no mapping are dropped and returned in unmapped.
func Assemble(entries []model.RawSeriesEntry, labels *Labels) (rows []model.DatedPriceRow, unmapped []string) {
	index := make(map[string]int, len(entries))
	seenUnmapped := make(map[string]bool)

	for _, entry := range entries {
		date := strings.TrimSpace(entry.DateLabel)
		i, ok := index[date]
		if !ok {
			i = len(rows)
			index[date] = i
			rows = append(rows, model.DatedPriceRow{Date: date, Prices: make(map[model.FuelType]float64)})
		}

		for _, p := range entry.Points {
			fuel, ok := labels.Normalize(p.Label)
			if !ok {
				if !seenUnmapped[p.Label] {
					seenUnmapped[p.Label] = true
					unmapped = append(unmapped, p.Label)
					log.WithField("label", p.Label).Warn("unmapped fuel label, dropping point")
				}
				continue
			}

			price, ok, err := coercePrice(p.Value)
			if err != nil {
				log.WithFields(log.Fields{"date": date, "fuel": fuel}).WithError(err).Warn("unusable price, storing absent")
			}
			if !ok {
				delete(rows[i].Prices, fuel)
				continue
			}
			rows[i].Prices[fuel] = price
		}
	}
	return rows, unmapped
}

// coercePrice turns a raw point value into a price. ok is false when the
// value is absent; err is set when a value was present but unusable.
func coercePrice(v any) (price float64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		price = x
	case int:
		price = float64(x)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if s == "" || s == "-" || s == "--" {
			return 0, false, nil
		}
		price, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse %q: %w", x, err)
		}
	default:
		return 0, false, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false, fmt.Errorf("non-finite price %v", price)
	}
	if price < 0 {
		return 0, false, fmt.Errorf("negative price %v", price)
	}
	return price, true, nil
}
