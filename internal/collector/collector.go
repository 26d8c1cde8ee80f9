package collector

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/extractor"
)

// MockFetcher returns a fixed page for development and testing.
type MockFetcher struct {
	Page string
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPage(_ context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Page, nil
}

// MockPage is a minimal history page served by MockFetcher in dev mode.
const MockPage = `<script>var pieSeries = [
{name:'113/05/26',data:[{name:'92 無鉛汽油',y:30.4},{name:'95 無鉛汽油',y:31.9},{name:'98 無鉛汽油',y:33.9},{name:'超級/高級柴油',y:28.2}]},
{name:'113/06/02',data:[{name:'92 無鉛汽油',y:29.8},{name:'95 無鉛汽油',y:31.3},{name:'98 無鉛汽油',y:33.3},{name:'超級/高級柴油',y:27.7}]}
];</script>`

// Collector fetches the history page and extracts the price series.
// The series is rebuilt on every call.
type Collector struct {
	Fetcher   Fetcher
	Extractor *extractor.Extractor
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, ex *extractor.Extractor) *Collector {
	if ex == nil {
		ex = extractor.New(nil, nil)
	}
	return &Collector{Fetcher: fetcher, Extractor: ex}
}

// Collect fetches the page and extracts a clean TimeSeries.
func (c *Collector) Collect(ctx context.Context) (*extractor.Result, error) {
	page, err := c.Fetcher.FetchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	res, err := c.Extractor.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("extract prices: %w", err)
	}
	log.WithFields(log.Fields{
		"fetcher": c.Fetcher.Name(),
		"source":  res.Source,
		"rows":    len(res.Series),
	}).Info("collected price series")
	return res, nil
}
