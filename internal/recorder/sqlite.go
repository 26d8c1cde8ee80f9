package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"FuelSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL so exports can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	// the recorder and the subscriber store share one database file
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			date        TEXT NOT NULL,
			fuel        TEXT NOT NULL,
			price       REAL NOT NULL,
			source      TEXT,
			recorded_at INTEGER NOT NULL,
			PRIMARY KEY (date, fuel)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_date ON price_history(date)`,

		`CREATE TABLE IF NOT EXISTS push_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			trigger_by  TEXT,
			recipients  INTEGER,
			delivered   INTEGER,
			failed      INTEGER,
			latest_date TEXT,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_push_ts ON push_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPrices(source string, series model.TimeSeries) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO price_history (date, fuel, price, source, recorded_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(date, fuel) DO UPDATE SET
			price = excluded.price, source = excluded.source, recorded_at = excluded.recorded_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	n := 0
	for _, row := range series {
		for _, f := range model.FuelTypes {
			p, ok := row.Price(f)
			if !ok {
				continue
			}
			if _, err := stmt.Exec(row.Date, string(f), p, source, now); err != nil {
				return 0, fmt.Errorf("upsert %s %s: %w", row.Date, f, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) RecordPush(evt *PushEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO push_events
		(timestamp, trigger_by, recipients, delivered, failed, latest_date, note)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Trigger, evt.Recipients, evt.Delivered,
		evt.Failed, evt.LatestDate, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) History() (model.TimeSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT date, fuel, price FROM price_history ORDER BY date, fuel`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var series model.TimeSeries
	for rows.Next() {
		var date, fuel string
		var price float64
		if err := rows.Scan(&date, &fuel, &price); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		f, ok := model.ParseFuelType(fuel)
		if !ok {
			log.WithField("fuel", fuel).Warn("skipping unknown fuel in history")
			continue
		}
		if n := len(series); n == 0 || series[n-1].Date != date {
			series = append(series, model.DatedPriceRow{Date: date, Prices: make(map[model.FuelType]float64)})
		}
		series[len(series)-1].Prices[f] = price
	}
	return series, rows.Err()
}

func (r *SQLiteRecorder) RecentPushes(limit int) ([]PushRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, trigger_by, recipients, delivered, failed, latest_date, note
		FROM push_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pushes: %w", err)
	}
	defer rows.Close()

	var out []PushRecord
	for rows.Next() {
		var rec PushRecord
		var ts int64
		if err := rows.Scan(&ts, &rec.Trigger, &rec.Recipients, &rec.Delivered,
			&rec.Failed, &rec.LatestDate, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan push: %w", err)
		}
		rec.Time = time.Unix(ts, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
