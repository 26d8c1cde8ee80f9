package recorder

import (
	"time"

	"FuelSentinel/internal/model"
)

// Push triggers.
const (
	TriggerSchedule = "SCHEDULE"
	TriggerHTTP     = "HTTP"
	TriggerManual   = "MANUAL"
)

// PushEvent records one broadcast to subscribers.
type PushEvent struct {
	Trigger    string // TriggerSchedule, TriggerHTTP or TriggerManual
	Recipients int
	Delivered  int
	Failed     int
	LatestDate string
	Note       string
}

// PushRecord is a stored PushEvent.
type PushRecord struct {
	PushEvent
	Time time.Time
}

// Recorder persists extracted prices and push history for analysis.
type Recorder interface {
	// RecordPrices upserts every (date, fuel) price of series and returns
	// the number of prices written.
	RecordPrices(source string, series model.TimeSeries) (int, error)
	RecordPush(evt *PushEvent) error
	// History returns every recorded row, ascending by date.
	History() (model.TimeSeries, error)
	RecentPushes(limit int) ([]PushRecord, error)
	Close() error
}
