package extractor

import (
	"maps"
	"regexp"
	"sort"
	"strings"
	"time"

	"FuelSentinel/internal/model"
)

var digitRun = regexp.MustCompile(`\d+`)

// Filter converts assembled rows into a TimeSeries: keys move to the Western
// calendar, rows without any price are dropped and the result is sorted
// chronologically. Keys that cannot be converted are kept as-is and sorted
// after every valid date. When two source keys land on the same date the
// later one wins.
func Filter(rows []model.DatedPriceRow) model.TimeSeries {
	type keyed struct {
		row   model.DatedPriceRow
		when  time.Time
		valid bool
	}

	byDate := make(map[string]int, len(rows))
	var kept []keyed
	for _, r := range rows {
		if len(r.Prices) == 0 {
			continue
		}
		date := ConvertROCDate(r.Date)
		when, err := time.Parse(time.DateOnly, date)
		k := keyed{
			row:   model.DatedPriceRow{Date: date, Prices: maps.Clone(r.Prices)},
			when:  when,
			valid: err == nil,
		}
		if i, ok := byDate[date]; ok {
			kept[i] = k
			continue
		}
		byDate[date] = len(kept)
		kept = append(kept, k)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.valid != b.valid {
			return a.valid
		}
		if a.valid {
			return a.when.Before(b.when)
		}
		return padDigits(a.row.Date) < padDigits(b.row.Date)
	})

	series := make(model.TimeSeries, len(kept))
	for i, k := range kept {
		series[i] = k.row
	}
	return series
}

// padDigits left-pads every digit run to four places so "113/6/2" sorts
// before "113/10/02".
func padDigits(s string) string {
	return digitRun.ReplaceAllStringFunc(s, func(d string) string {
		if len(d) >= 4 {
			return d
		}
		return strings.Repeat("0", 4-len(d)) + d
	})
}
