// Package schedule provides a lightweight interval scheduler for
// housekeeping tasks.
//
//	schedule.Daily().WithoutOverlapping().Run(pruneOldLogs)
//	schedule.Every(15).Minutes().Run(refreshGauges)
//
//	// Start once at boot:
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is the function signature for a scheduled task.
type Task func()

type entry struct {
	interval  time.Duration
	task      Task
	lastRun   time.Time
	running   bool
	noOverlap bool
	mu        sync.Mutex
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	e *entry
}

var (
	regMu   sync.Mutex
	entries []*entry
)

// Every starts a fluent builder with n units.
func Every(n int) *freqBuilder { return &freqBuilder{n: n} }

// EveryMinute schedules the task to run every 60 seconds.
func EveryMinute() *Schedule { return Every(1).Minutes() }

// Hourly schedules the task to run every hour.
func Hourly() *Schedule { return Every(1).Hours() }

// Daily schedules the task to run every 24 hours.
func Daily() *Schedule { return Every(24).Hours() }

type freqBuilder struct{ n int }

func (f *freqBuilder) Minutes() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Minute}}
}

func (f *freqBuilder) Hours() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Hour}}
}

// WithoutOverlapping prevents a new run if the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Run registers the task with the scheduler.
func (s *Schedule) Run(task Task) {
	s.e.task = task

	regMu.Lock()
	entries = append(entries, s.e)
	regMu.Unlock()
}

// Start launches the scheduler loop. It ticks every second and fires any
// entry whose interval has elapsed. Call once at boot.
func Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				regMu.Lock()
				due := make([]*entry, 0, len(entries))
				for _, e := range entries {
					if now.Sub(e.lastRun) >= e.interval {
						e.lastRun = now
						due = append(due, e)
					}
				}
				regMu.Unlock()

				for _, e := range due {
					go e.fire()
				}
			}
		}
	}()
}

func (e *entry) fire() {
	if e.noOverlap {
		e.mu.Lock()
		if e.running {
			e.mu.Unlock()
			return
		}
		e.running = true
		e.mu.Unlock()

		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
	}

	defer func() { recover() }() //nolint:errcheck
	e.task()
}
