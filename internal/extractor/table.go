package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FuelSentinel/internal/model"
)

// tableColumns is the column order of the history table when it has no header.
var tableColumns = []string{"92無鉛汽油", "95無鉛汽油", "98無鉛汽油", "超級柴油"}

// ParseTable reads the rendered history table (date followed by one price
// column per fuel). Column labels come from the header row when present.
func ParseTable(markup, selector string) ([]model.RawSeriesEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("table %q: %w", selector, ErrNotFound)
	}

	columns := tableColumns
	var header []string
	table.Find("tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.TrimSpace(th.Text()))
	})
	if len(header) > 1 {
		columns = header[1:]
	}

	var entries []model.RawSeriesEntry
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 2 {
			return
		}
		entry := model.RawSeriesEntry{DateLabel: strings.TrimSpace(tds.First().Text())}
		tds.Slice(1, tds.Length()).Each(func(i int, td *goquery.Selection) {
			if i >= len(columns) {
				return
			}
			entry.Points = append(entry.Points, model.RawPoint{
				Label: columns[i],
				Value: strings.TrimSpace(td.Text()),
			})
		})
		entries = append(entries, entry)
	})

	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q has no data rows: %w", selector, ErrMalformedData)
	}
	return entries, nil
}
