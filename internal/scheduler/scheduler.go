package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/recorder"
)

// Jobs is the work the scheduler triggers.
type Jobs interface {
	PushAll(ctx context.Context, trigger string) (*recorder.PushEvent, error)
	RecordPrices(ctx context.Context) error
}

// SpecParser reads the six-field (seconds first) specs the scheduler runs.
var SpecParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron *cron.Cron
	Jobs Jobs
	Ctx  context.Context
}

// NewScheduler creates a Scheduler whose specs are read in loc.
func NewScheduler(ctx context.Context, jobs Jobs, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron: cron.New(cron.WithParser(SpecParser), cron.WithLocation(loc), cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		Jobs: jobs,
		Ctx:  ctx,
	}
}

// RegisterAll registers the subscriber push and the price recording task.
// An empty spec skips that task.
func (s *Scheduler) RegisterAll(pushCron, recordCron string) error {
	if pushCron != "" {
		if _, err := s.Cron.AddFunc(pushCron, s.pushTask); err != nil {
			return fmt.Errorf("register push task: %w", err)
		}
	}
	if recordCron != "" {
		if _, err := s.Cron.AddFunc(recordCron, s.recordTask); err != nil {
			return fmt.Errorf("register record task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.WithField("jobs", len(s.Cron.Entries())).Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunPushNow executes the push task immediately (for RUN_ON_START).
func (s *Scheduler) RunPushNow() {
	s.pushTask()
}

func (s *Scheduler) pushTask() {
	log.Info("running scheduled push")
	if _, err := s.Jobs.PushAll(s.Ctx, recorder.TriggerSchedule); err != nil {
		log.WithError(err).Error("scheduled push")
	}
}

func (s *Scheduler) recordTask() {
	log.Info("running price recording")
	if err := s.Jobs.RecordPrices(s.Ctx); err != nil {
		log.WithError(err).Error("record prices")
	}
}
