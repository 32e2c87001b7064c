// Package scheduler runs background jobs once a day at a wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"equb-app-go/pkg/logger"
)

// Job receives the fire time in the schedule's location.
type Job func(ctx context.Context, now time.Time) error

type Daily struct {
	name       string
	hour       int
	minute     int
	location   *time.Location
	runOnStart bool
	timeout    time.Duration
	job        Job
	log        logger.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func NewDaily(name string, hour, minute int, location *time.Location, job Job, log logger.Logger) *Daily {
	if location == nil {
		location = time.UTC
	}
	return &Daily{
		name:     name,
		hour:     hour,
		minute:   minute,
		location: location,
		timeout:  10 * time.Minute,
		job:      job,
		log:      log.With("job", name),
		now:      time.Now,
		after:    time.After,
	}
}

// WithRunOnStart makes Run fire the job once before waiting for the first slot.
func (d *Daily) WithRunOnStart(enabled bool) *Daily {
	d.runOnStart = enabled
	return d
}

// WithTimeout bounds a single job run.
func (d *Daily) WithTimeout(timeout time.Duration) *Daily {
	d.timeout = timeout
	return d
}

// WithClock replaces the time source and timer, for tests.
func (d *Daily) WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) *Daily {
	d.now = now
	d.after = after
	return d
}

// Next returns the first run time strictly after from.
func (d *Daily) Next(from time.Time) time.Time {
	local := from.In(d.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.location)
	}
	return next
}

// Run blocks until ctx is cancelled. Job failures are logged and the schedule
// continues.
func (d *Daily) Run(ctx context.Context) error {
	d.log.Info("scheduler: started", "run_at", fmt.Sprintf("%02d:%02d", d.hour, d.minute), "timezone", d.location.String())

	if d.runOnStart {
		d.fire(ctx, d.now())
	}

	for {
		now := d.now()
		next := d.Next(now)
		d.log.Debug("scheduler: waiting", "next_run", next)

		select {
		case <-ctx.Done():
			d.log.Info("scheduler: stopped")
			return nil
		case fired := <-d.after(next.Sub(now)):
			d.fire(ctx, fired)
		}
	}
}

func (d *Daily) fire(ctx context.Context, at time.Time) {
	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			d.log.Critical("scheduler: job panicked", "panic", fmt.Sprint(recovered))
		}
	}()

	started := d.now()
	if err := d.job(runCtx, at.In(d.location)); err != nil {
		d.log.InternalError("scheduler: job failed", err)
		return
	}
	d.log.Info("scheduler: job finished", "duration", d.now().Sub(started).String())
}
