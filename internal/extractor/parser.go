package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"FuelSentinel/internal/model"
)

var (
	// ErrNotFound means the expected variable or table is absent from the page.
	ErrNotFound = errors.New("embedded data not found")
	// ErrMalformedData means the embedded data exists but cannot be read.
	ErrMalformedData = errors.New("malformed embedded data")
)

// FindLiteral returns the bracketed array literal assigned to name, verbatim.
func FindLiteral(markup, name string) (string, error) {
	re, err := regexp.Compile(`(?s)\b` + regexp.QuoteMeta(name) + `\s*=\s*(\[.*?\])\s*(?:;|</script>)`)
	if err != nil {
		return "", fmt.Errorf("compile pattern for %q: %w", name, err)
	}
	m := re.FindStringSubmatch(markup)
	if m == nil {
		return "", fmt.Errorf("variable %q: %w", name, ErrNotFound)
	}
	return m[1], nil
}

// CleanLiteral rewrites a script array literal into JSON: single-quoted
// strings become double-quoted, undefined becomes null, bare object keys are
// quoted and trailing commas are dropped. String contents are left alone.
func CleanLiteral(lit string) string {
	var b strings.Builder
	b.Grow(len(lit) + 16)
	last := byte(0) // last significant byte written outside a string

	for i := 0; i < len(lit); {
		c := lit[i]
		switch {
		case c == '"' || c == '\'':
			end := writeString(&b, lit, i)
			last = '"'
			i = end
		case c == ',':
			j := skipSpace(lit, i+1)
			if j < len(lit) && (lit[j] == ']' || lit[j] == '}') {
				i++
				continue
			}
			b.WriteByte(c)
			last = c
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(lit) && isIdentPart(lit[j]) {
				j++
			}
			word := lit[i:j]
			k := skipSpace(lit, j)
			switch {
			case (last == '{' || last == ',') && k < len(lit) && lit[k] == ':':
				b.WriteString(`"` + word + `"`)
			case word == "undefined":
				b.WriteString("null")
			default:
				b.WriteString(word)
			}
			last = lit[j-1]
			i = j
		default:
			b.WriteByte(c)
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				last = c
			}
			i++
		}
	}
	return b.String()
}

// writeString copies the quoted string starting at lit[start] as a JSON
// string and returns the index just past its closing quote.
func writeString(b *strings.Builder, lit string, start int) int {
	quote := lit[start]
	b.WriteByte('"')
	i := start + 1
	for i < len(lit) {
		c := lit[i]
		switch {
		case c == '\\' && i+1 < len(lit):
			if quote == '\'' && lit[i+1] == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte(c)
				b.WriteByte(lit[i+1])
			}
			i += 2
			continue
		case c == quote:
			b.WriteByte('"')
			return i + 1
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
		i++
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// ParseLiteral locates the array assigned to name and returns it deserialized.
func ParseLiteral(markup, name string) (gjson.Result, error) {
	lit, err := FindLiteral(markup, name)
	if err != nil {
		return gjson.Result{}, err
	}
	cleaned := CleanLiteral(lit)
	if !gjson.Valid(cleaned) {
		return gjson.Result{}, fmt.Errorf("variable %q: invalid literal: %w", name, ErrMalformedData)
	}
	res := gjson.Parse(cleaned)
	if !res.IsArray() {
		return gjson.Result{}, fmt.Errorf("variable %q: expected array, got %s: %w", name, res.Type, ErrMalformedData)
	}
	return res, nil
}

// ParseSeries reads a per-date payload:
//
//	name = [{"name": "113/06/02", "data": [{"name": "95 無鉛汽油", "y": 29.3}, ...]}, ...];
//
// Data points may also be written as ["label", value] pairs.
func ParseSeries(markup, name string) ([]model.RawSeriesEntry, error) {
	res, err := ParseLiteral(markup, name)
	if err != nil {
		return nil, err
	}

	items := res.Array()
	entries := make([]model.RawSeriesEntry, 0, len(items))
	for i, item := range items {
		date := item.Get("name")
		data := item.Get("data")
		if !item.IsObject() || !date.Exists() || !data.IsArray() {
			log.WithField("variable", name).Warnf("skipping entry %d: unexpected shape %s", i, item.Raw)
			continue
		}

		entry := model.RawSeriesEntry{DateLabel: date.String()}
		for _, d := range data.Array() {
			switch {
			case d.IsObject():
				entry.Points = append(entry.Points, model.RawPoint{Label: d.Get("name").String(), Value: rawValue(d.Get("y"))})
			case d.IsArray() && len(d.Array()) >= 2:
				pair := d.Array()
				entry.Points = append(entry.Points, model.RawPoint{Label: pair[0].String(), Value: rawValue(pair[1])})
			default:
				log.WithField("variable", name).Warnf("skipping point %s on %s", d.Raw, entry.DateLabel)
			}
		}
		entries = append(entries, entry)
	}

	if len(items) > 0 && len(entries) == 0 {
		return nil, fmt.Errorf("variable %q: no usable entries: %w", name, ErrMalformedData)
	}
	return entries, nil
}

// ParseFuelSeries reads a per-fuel payload whose values line up positionally
// with a separate list of date categories:
//
//	series = [{"name": "92無鉛汽油", "data": [29.1, 29.3]}, ...];
//	categories = ["113/05/26", "113/06/02"];
func ParseFuelSeries(markup, seriesName, categoriesName string) ([]model.RawSeriesEntry, error) {
	series, err := ParseLiteral(markup, seriesName)
	if err != nil {
		return nil, err
	}
	cats, err := ParseLiteral(markup, categoriesName)
	if err != nil {
		return nil, err
	}

	dates := cats.Array()
	entries := make([]model.RawSeriesEntry, len(dates))
	for i, d := range dates {
		entries[i].DateLabel = d.String()
	}

	usable := 0
	for _, fuel := range series.Array() {
		label := fuel.Get("name").String()
		data := fuel.Get("data")
		logger := log.WithFields(log.Fields{"variable": seriesName, "label": label})
		if !data.IsArray() {
			logger.Warn("skipping series without data")
			continue
		}
		values := data.Array()
		if len(values) != len(dates) {
			logger.Warnf("skipping series with %d values for %d dates", len(values), len(dates))
			continue
		}
		for i, v := range values {
			if v.IsObject() {
				v = v.Get("y")
			}
			entries[i].Points = append(entries[i].Points, model.RawPoint{Label: label, Value: rawValue(v)})
		}
		usable++
	}

	if usable == 0 {
		return nil, fmt.Errorf("variable %q: no series lines up with %d dates: %w", seriesName, len(dates), ErrMalformedData)
	}
	return entries, nil
}

func rawValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}
