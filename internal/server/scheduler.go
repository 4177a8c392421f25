package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/repository"
)

// LatestRuns reports when a topic was last researched. The store implements
// it and seeds schedules whose repository has no record yet.
type LatestRuns interface {
	LatestReportTime(ctx context.Context, topic, assistant string) (*time.Time, error)
}

// Scheduler fires configured research schedules when their cron is due.
type Scheduler struct {
	Schedules []config.ScheduleConfig
	Research  Researcher
	Repo      repository.ScheduleRepository
	Latest    LatestRuns
	Logger    *log.Logger

	// Interval between due checks and how long a firing holds its lock.
	Interval time.Duration
	LockTTL  time.Duration

	now func() time.Time
	wg  sync.WaitGroup
}

// Start checks schedules every Interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if len(s.Schedules) == 0 {
		return
	}
	s.Logger.Printf("watching %d schedule(s) every %s", len(s.Schedules), s.Interval)
	ticker := time.NewTicker(s.Interval)
	go func() {
		defer ticker.Stop()
		s.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Wait blocks until every fired run has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

// Tick fires every due schedule and returns how many were started. Runs
// execute in the background; use Wait to join them.
func (s *Scheduler) Tick(ctx context.Context) int {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	lockTTL := s.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}

	fired := 0
	for _, sc := range s.Schedules {
		key := scheduleKey(sc)
		last, err := s.lastRun(ctx, key, sc)
		if err != nil {
			s.Logger.Printf("warn: %s: last run: %v", key, err)
			continue
		}
		if !isDue(sc.Cron, last, now) {
			continue
		}
		// distributed lock to avoid duplicate runs
		ok, err := s.Repo.Acquire(ctx, key, lockTTL)
		if err != nil {
			s.Logger.Printf("warn: %s: acquire lock: %v", key, err)
			continue
		}
		if !ok {
			continue
		}
		if err := s.Repo.MarkRun(ctx, key, now); err != nil {
			s.Logger.Printf("warn: %s: mark run: %v", key, err)
			_ = s.Repo.Release(ctx, key)
			continue
		}
		fired++
		s.wg.Add(1)
		go s.fire(ctx, key, sc)
	}
	return fired
}

func (s *Scheduler) fire(ctx context.Context, key string, sc config.ScheduleConfig) {
	defer s.wg.Done()
	defer func() {
		if err := s.Repo.Release(context.WithoutCancel(ctx), key); err != nil {
			s.Logger.Printf("warn: %s: release lock: %v", key, err)
		}
	}()
	s.Logger.Printf("%s: due, researching %q", key, sc.Topic)
	report, err := s.Research.ProcessTopic(ctx, core.Request{
		Topic:     sc.Topic,
		Assistant: sc.Assistant,
		Translate: sc.Translate,
	})
	if err != nil {
		s.Logger.Printf("%s: run %s ended %s: %v", key, report.ID, report.Status, err)
		return
	}
	s.Logger.Printf("%s: run %s finished, coverage %.2f", key, report.ID, report.Coverage)
}

func (s *Scheduler) lastRun(ctx context.Context, key string, sc config.ScheduleConfig) (*time.Time, error) {
	last, err := s.Repo.LastRun(ctx, key)
	if err != nil || last != nil || s.Latest == nil {
		return last, err
	}
	return s.Latest.LatestReportTime(ctx, sc.Topic, sc.Assistant)
}

func scheduleKey(sc config.ScheduleConfig) string {
	return sc.Assistant + ":" + sc.Topic
}

// isDue determines if a schedule with cronSpec should run at now given its
// last run time. Schedules that never ran are due immediately; invalid cron
// expressions fall back to daily.
func isDue(cronSpec string, last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	expr, err := cronexpr.Parse(cronSpec)
	if err != nil {
		return now.Sub(*last) >= 24*time.Hour
	}
	next := expr.Next(*last)
	return !next.IsZero() && !next.After(now)
}
