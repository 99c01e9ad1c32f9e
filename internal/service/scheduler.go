package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"tomorrow-reminder/internal/model"
)

// Scheduler wraps cron-based jobs: the scan cadence and the daily purge.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Every registers a periodic job. The scan interval must stay under a minute
// or exact-minute matching can skip a window.
func (s *Scheduler) Every(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	if interval >= time.Minute {
		return 0, fmt.Errorf("interval %s too coarse for minute-exact scans", interval)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// Daily registers a job at the given HH:MM local time.
func (s *Scheduler) Daily(timeStr string, job func()) (cron.EntryID, error) {
	hour, minute, err := model.ParseHHMM(timeStr)
	if err != nil {
		return 0, err
	}
	// cron format: second minute hour dom month dow
	return s.cron.AddFunc(fmt.Sprintf("0 %d %d * * *", minute, hour), job)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the timers and waits for running jobs to drain.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
