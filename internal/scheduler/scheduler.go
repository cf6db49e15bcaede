package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"FolioScraper/internal/backend"
	"FolioScraper/internal/recorder"
	"FolioScraper/internal/server"
)

// Scheduler re-runs the extraction pipeline on a cron schedule ("watch
// mode"), recording each snapshot and forwarding non-empty results to the
// analytics backend.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline server.Pipeline
	Recorder recorder.Recorder
	Backend  *backend.Client
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p server.Pipeline, rec recorder.Recorder, bk *backend.Client) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Recorder: rec,
		Backend:  bk,
		Ctx:      ctx,
	}
}

// Register adds the watch task under the given cron spec.
func (s *Scheduler) Register(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] watch scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] watch scheduler stopped")
}

// RunNow executes the watch task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	log.Println("[INFO] running watch extraction")
	res, err := s.Pipeline.Extract(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] watch extraction: %v", err)
		return
	}
	if len(res.Holdings) == 0 {
		log.Printf("[INFO] watch extraction found no holdings after %d attempts", res.Attempts)
		return
	}
	log.Printf("[INFO] watch extraction found %d holdings (broker=%s, attempts=%d)",
		len(res.Holdings), res.Broker, res.Attempts)

	if s.Recorder != nil {
		err := s.Recorder.RecordExtraction(&recorder.Snapshot{
			ID:       res.ID,
			Broker:   res.Broker,
			Attempts: res.Attempts,
			Duration: res.Duration,
			Holdings: res.Holdings,
		})
		if err != nil {
			log.Printf("[ERROR] record watch extraction: %v", err)
		}
	}
	if s.Backend != nil {
		if err := s.Backend.SaveHoldings(s.Ctx, res.Holdings); err != nil {
			log.Printf("[WARN] save holdings downstream: %v", err)
		}
	}
}
