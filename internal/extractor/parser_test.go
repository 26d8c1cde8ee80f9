package extractor

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"FuelSentinel/internal/model"
)

func TestParseLiteral_MatchesSemanticContent(t *testing.T) {
	literal := `[{"name":"113/06/02","data":[{"name":"95 無鉛汽油","y":29.3},["92無鉛汽油",27.8]]}]`
	markup := "<script>\nvar series = " + literal + ";\n</script>"

	got, err := ParseLiteral(markup, "series")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want any
	if err := json.Unmarshal([]byte(literal), &want); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Value(), want) {
		t.Fatalf("expected %v, got %v", want, got.Value())
	}
}

func TestParseLiteral_Errors(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		wantErr error
	}{
		{"no assignment", `<script>var other = [1, 2];</script>`, ErrNotFound},
		{"only a prefix match", `<script>var myseries = [1];</script>`, ErrNotFound},
		{"not an array literal", `<script>var series = {"a": 1};</script>`, ErrNotFound},
		{"broken literal", `<script>var series = [{"name": "113/06/02", "data": [}];</script>`, ErrMalformedData},
		{"unterminated string", `<script>var series = ["113/06/02];</script>`, ErrMalformedData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLiteral(tt.markup, "series")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCleanLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`['a', 'b']`, `["a", "b"]`},
		{`[{"y": undefined}]`, `[{"y": null}]`},
		{`[{ name: 'x', y: 1 }]`, `[{ "name": "x", "y": 1 }]`},
		{`[1, 2, ]`, `[1, 2 ]`},
		{`[{"name": "undefinedness"}]`, `[{"name": "undefinedness"}]`},
		{`[{note: "a, note: b"}]`, `[{"note": "a, note: b"}]`},
		{`[{"name": "it's {x: 1}"}]`, `[{"name": "it's {x: 1}"}]`},
		{`['say "hi"', 'don\'t']`, `["say \"hi\"", "don't"]`},
		{`[{a: [1, 2,], b: undefined,}]`, `[{"a": [1, 2], "b": null}]`},
	}
	for _, tt := range tests {
		if got := CleanLiteral(tt.in); got != tt.want {
			t.Errorf("CleanLiteral(%s): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestParseSeries_UndefinedBecomesNull(t *testing.T) {
	markup := `<script>var pieSeries = [{'name':'113/06/02','data':[{'name':'95 無鉛汽油','y':undefined},{'name':'92 無鉛汽油','y':28.1}]}];</script>`

	entries, err := ParseSeries(markup, "pieSeries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.RawSeriesEntry{{
		DateLabel: "113/06/02",
		Points: []model.RawPoint{
			{Label: "95 無鉛汽油", Value: nil},
			{Label: "92 無鉛汽油", Value: 28.1},
		},
	}}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("expected %+v, got %+v", want, entries)
	}
}

func TestParseSeries_SkipsOddEntries(t *testing.T) {
	markup := `var pieSeries = [42, {"name":"113/06/02","data":[{"name":"95 無鉛汽油","y":29.3}, 7]}];`

	entries, err := ParseSeries(markup, "pieSeries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Points) != 1 {
		t.Fatalf("expected one entry with one point, got %+v", entries)
	}
}

func TestParseSeries_NothingUsable(t *testing.T) {
	_, err := ParseSeries(`var pieSeries = [1, 2, 3];`, "pieSeries")
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("expected ErrMalformedData, got %v", err)
	}
}

func TestParseFuelSeries(t *testing.T) {
	markup := `
var categories = ['113/05/26', '113/06/02'];
var series = [
  {name: '92無鉛汽油', data: [28.3, 27.8]},
  {name: '超級柴油', data: [26.9, {y: undefined}]},
];`

	entries, err := ParseFuelSeries(markup, "series", "categories")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.RawSeriesEntry{
		{DateLabel: "113/05/26", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 28.3}, {Label: "超級柴油", Value: 26.9}}},
		{DateLabel: "113/06/02", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 27.8}, {Label: "超級柴油", Value: nil}}},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("expected %+v, got %+v", want, entries)
	}
}

func TestParseFuelSeries_SkipsMisalignedSeries(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"short data", `var categories = ['113/05/26', '113/06/02']; var series = [{name: '92無鉛汽油', data: [28.3, 27.8]}, {name: '液化石油氣', data: [15.1]}];`},
		{"no data", `var categories = ['113/05/26', '113/06/02']; var series = [{name: '液化石油氣'}, {name: '92無鉛汽油', data: [28.3, 27.8]}];`},
	}
	want := []model.RawSeriesEntry{
		{DateLabel: "113/05/26", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 28.3}}},
		{DateLabel: "113/06/02", Points: []model.RawPoint{{Label: "92無鉛汽油", Value: 27.8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseFuelSeries(tt.markup, "series", "categories")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(entries, want) {
				t.Errorf("expected %+v, got %+v", want, entries)
			}
		})
	}
}

func TestParseFuelSeries_NoSeriesAligned(t *testing.T) {
	markup := `var categories = ["113/05/26", "113/06/02"]; var series = [{"name": "92無鉛汽油", "data": [28.3]}];`
	_, err := ParseFuelSeries(markup, "series", "categories")
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("expected ErrMalformedData, got %v", err)
	}
}

func TestParseFuelSeries_MissingCategories(t *testing.T) {
	_, err := ParseFuelSeries(`var series = [{"name": "92無鉛汽油", "data": [28.3]}];`, "series", "categories")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
