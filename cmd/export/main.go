// Command export writes price history to an XLSX file, either from a live
// scrape or from the recorder database.
package main

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"FuelSentinel/internal/collector"
	"FuelSentinel/internal/config"
	"FuelSentinel/internal/export"
	"FuelSentinel/internal/extractor"
	"FuelSentinel/internal/model"
	"FuelSentinel/internal/recorder"
)

func main() {
	cfgPath := flag.StringP("config", "c", "configs/config.yaml", "path to the YAML config file")
	out := flag.StringP("out", "o", "oil_price_history.xlsx", "output .xlsx path")
	fromDB := flag.Bool("db", false, "export recorded history instead of scraping the page")
	last := flag.IntP("last", "n", 0, "keep only the last N dates (0 keeps all)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("configure logging: %v", err)
	}

	var series model.TimeSeries
	if *fromDB {
		series, err = loadRecorded(cfg.Database.SQLitePath)
	} else {
		series, err = scrape(cfg)
	}
	if err != nil {
		log.Fatalf("load prices: %v", err)
	}
	if *last > 0 {
		series = series.Tail(*last)
	}

	if err := export.WriteXLSX(*out, series); err != nil {
		log.Fatalf("export: %v", err)
	}
	log.WithFields(log.Fields{"file": *out, "rows": len(series)}).Info("export written")
}

func scrape(cfg *config.Config) (model.TimeSeries, error) {
	extra, err := cfg.ExtraLabels()
	if err != nil {
		return nil, err
	}
	labels, err := extractor.NewLabels(extra)
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(
		collector.NewCPCFetcher(cfg.Source.HistoryURL, cfg.Source.UserAgent, cfg.Proxy),
		extractor.New(cfg.Source.Candidates, labels),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	res, err := col.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return res.Series, nil
}

func loadRecorded(path string) (model.TimeSeries, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rec, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		return nil, err
	}
	defer rec.Close()
	return rec.History()
}
