package recorder

import "FuelSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPrices(_ string, _ model.TimeSeries) (int, error) { return 0, nil }
func (n *NoopRecorder) RecordPush(_ *PushEvent) error                         { return nil }
func (n *NoopRecorder) History() (model.TimeSeries, error)                    { return nil, nil }
func (n *NoopRecorder) RecentPushes(_ int) ([]PushRecord, error)              { return nil, nil }
func (n *NoopRecorder) Close() error                                          { return nil }
