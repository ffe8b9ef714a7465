// Package scheduler runs maintenance jobs on a fixed daily cadence,
// decoupled from request handling.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Job is a named unit of maintenance work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Daily fires a job once per day at midnight server time.
type Daily struct {
	job Job
	now func() time.Time
}

func NewDaily(job Job) *Daily {
	return &Daily{job: job, now: time.Now}
}

// Start blocks until ctx is cancelled, firing the job at each midnight.
// Job failures are logged and do not stop the schedule.
func (d *Daily) Start(ctx context.Context) {
	log.Printf("scheduler: job %q scheduled daily at midnight", d.job.Name)
	for {
		timer := time.NewTimer(time.Until(nextMidnight(d.now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("scheduler: job %q stopping", d.job.Name)
			return
		case <-timer.C:
			if err := d.job.Run(ctx); err != nil {
				log.Printf("scheduler: job %q failed: %v", d.job.Name, err)
			}
		}
	}
}

// nextMidnight returns the first instant of the day after now, in now's
// location.
func nextMidnight(now time.Time) time.Time {
	y, m, day := now.Date()
	return time.Date(y, m, day+1, 0, 0, 0, 0, now.Location())
}
