package extractor

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"FuelSentinel/internal/model"
)

// defaultLabels covers every spelling the history page has used so far.
var defaultLabels = map[string]model.FuelType{
	"92 無鉛汽油": model.Unleaded92,
	"92無鉛汽油":  model.Unleaded92,
	"95 無鉛汽油": model.Unleaded95,
	"95無鉛汽油":  model.Unleaded95,
	"98 無鉛汽油": model.Unleaded98,
	"98無鉛汽油":  model.Unleaded98,
	"超級/高級柴油": model.SuperDiesel,
	"超級柴油":    model.SuperDiesel,
	"高級柴油":    model.SuperDiesel,
}

// Labels is an exact-match table from source labels to fuel types.
type Labels struct {
	table map[string]model.FuelType
}

// DefaultLabels returns the built-in label table.
func DefaultLabels() *Labels {
	l, _ := NewLabels(nil)
	return l
}

// NewLabels builds a label table from the defaults plus extra entries.
// An extra entry that would map a label to a second fuel type is an error.
func NewLabels(extra map[string]model.FuelType) (*Labels, error) {
	l := &Labels{table: make(map[string]model.FuelType, len(defaultLabels)+len(extra))}
	for raw, f := range defaultLabels {
		if err := l.add(raw, f); err != nil {
			return nil, err
		}
	}
	for raw, f := range extra {
		if !f.Valid() {
			return nil, fmt.Errorf("label %q: unknown fuel type %q", raw, f)
		}
		if err := l.add(raw, f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Labels) add(raw string, f model.FuelType) error {
	key := canonicalLabel(raw)
	if existing, ok := l.table[key]; ok && existing != f {
		return fmt.Errorf("label %q already maps to %s, cannot map to %s", raw, existing, f)
	}
	l.table[key] = f
	return nil
}

// Normalize returns the fuel type for a raw source label.
func (l *Labels) Normalize(raw string) (model.FuelType, bool) {
	f, ok := l.table[canonicalLabel(raw)]
	return f, ok
}

// Len returns the number of known spellings.
func (l *Labels) Len() int { return len(l.table) }

// canonicalLabel folds full-width forms and trims surrounding space; it does
// not touch inner spacing, so "92 無鉛汽油" and "92無鉛汽油" stay distinct keys.
func canonicalLabel(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
