// Package extractor turns a fetched history-price page into a clean,
// chronologically ordered price series.
package extractor

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/model"
)

// Shape names the layout of an embedded payload.
type Shape string

const (
	ShapePerDate Shape = "per_date" // [{name: date, data: [{name: label, y: price}]}]
	ShapePerFuel Shape = "per_fuel" // [{name: label, data: [price...]}] + categories
	ShapeTable   Shape = "table"    // rendered <table>
)

// Candidate is one place the price data may live on the page.
type Candidate struct {
	Variable   string `yaml:"variable"`
	Shape      Shape  `yaml:"shape"`
	Categories string `yaml:"categories"`
	Selector   string `yaml:"selector"`
}

// DefaultCandidates lists the page layouts seen so far, newest first.
var DefaultCandidates = []Candidate{
	{Variable: "pieSeries", Shape: ShapePerDate},
	{Variable: "series", Shape: ShapePerFuel, Categories: "categories"},
	{Shape: ShapeTable, Selector: "#tbHistoryPrice"},
}

// Validate checks that the candidate has the fields its shape needs.
func (c Candidate) Validate() error {
	switch c.Shape {
	case ShapePerDate:
		if c.Variable == "" {
			return errors.New("per_date candidate needs a variable")
		}
	case ShapePerFuel:
		if c.Variable == "" || c.Categories == "" {
			return errors.New("per_fuel candidate needs variable and categories")
		}
	case ShapeTable:
		if c.Selector == "" {
			return errors.New("table candidate needs a selector")
		}
	default:
		return fmt.Errorf("unknown shape %q", c.Shape)
	}
	return nil
}

func (c Candidate) String() string {
	switch c.Shape {
	case ShapePerFuel:
		return c.Variable + "+" + c.Categories
	case ShapeTable:
		return "table " + c.Selector
	default:
		return c.Variable
	}
}

// Result is the outcome of one extraction.
type Result struct {
	Series   model.TimeSeries
	Source   string   // candidate that produced the series
	Unmapped []string // source labels with no fuel mapping
}

// Extractor tries each candidate in order until one yields a non-empty series.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	Candidates []Candidate
	Labels     *Labels
}

// New creates an Extractor. Nil or empty arguments fall back to the defaults.
func New(candidates []Candidate, labels *Labels) *Extractor {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Extractor{Candidates: candidates, Labels: labels}
}

// Extract parses markup into a TimeSeries. The error wraps ErrNotFound when
// no candidate is present and ErrMalformedData when candidates were present
// but none produced a usable row.
func (e *Extractor) Extract(markup string) (*Result, error) {
	var malformed error
	for _, c := range e.Candidates {
		entries, err := parseCandidate(markup, c)
		if errors.Is(err, ErrNotFound) {
			log.WithField("candidate", c.String()).Debug("candidate not present")
			continue
		}
		if err != nil {
			log.WithField("candidate", c.String()).WithError(err).Warn("candidate unreadable, trying next")
			malformed = err
			continue
		}

		rows, unmapped := Assemble(entries, e.Labels)
		series := Filter(rows)
		if len(series) == 0 {
			malformed = fmt.Errorf("candidate %s: no priced rows: %w", c, ErrMalformedData)
			log.WithField("candidate", c.String()).Warn("candidate produced no priced rows, trying next")
			continue
		}

		log.WithFields(log.Fields{"candidate": c.String(), "rows": len(series)}).Debug("extracted price series")
		return &Result{Series: series, Source: c.String(), Unmapped: unmapped}, nil
	}

	if malformed != nil {
		return nil, malformed
	}
	return nil, fmt.Errorf("no candidate matched: %w", ErrNotFound)
}

func parseCandidate(markup string, c Candidate) ([]model.RawSeriesEntry, error) {
	switch c.Shape {
	case ShapePerDate:
		return ParseSeries(markup, c.Variable)
	case ShapePerFuel:
		return ParseFuelSeries(markup, c.Variable, c.Categories)
	case ShapeTable:
		return ParseTable(markup, c.Selector)
	default:
		return nil, fmt.Errorf("candidate %s: unknown shape: %w", c, ErrMalformedData)
	}
}
