package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"GEWatch/internal/display"
	"GEWatch/internal/store"
)

// Reporter receives the formatted refresh report each cycle. The
// graphical shell is not part of this program; printing to the
// terminal is the default.
type Reporter func(report string)

// Scheduler drives the fixed-interval refresh loop. Ticks never
// overlap: if a refresh is still in flight when the next tick fires,
// that tick is skipped.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *store.Store
	Reporter Reporter
	Ctx      context.Context
}

// New creates a Scheduler around the tracking store.
func New(ctx context.Context, st *store.Store, rep Reporter) *Scheduler {
	if rep == nil {
		rep = func(report string) { fmt.Println(report) }
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Store:    st,
		Reporter: rep,
		Ctx:      ctx,
	}
}

// Register schedules the refresh task at the given interval.
func (s *Scheduler) Register(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the refresh loop.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] refresh scheduler started")
}

// Stop stops the refresh loop gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] refresh scheduler stopped")
}

// RunNow executes one refresh immediately (manual trigger).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	updates, err := s.Store.Refresh(s.Ctx)
	if err != nil {
		// Transient: baseline is retained, the next tick retries.
		if errors.Is(err, store.ErrUnavailable) {
			log.Printf("[WARN] refresh skipped, source unavailable: %v", err)
			return
		}
		log.Printf("[ERROR] refresh: %v", err)
		return
	}
	s.Reporter(display.FormatReport(updates))
}
