package scheduling

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// JobRunner is the unit of work a scheduler fires. *BatchJob satisfies it.
type JobRunner interface {
    Run(ctx context.Context) (Report, error)
}

// DailyScheduler fires its job once per day at a fixed local wall-clock time.
// It replaces any ambient background-scheduler singleton: the job and its
// dependencies are injected, and the loop stops on context cancellation or
// Stop.
type DailyScheduler struct {
    hour   int
    minute int
    job    JobRunner
    log    logrus.FieldLogger
    now    func() time.Time
    stop   chan struct{}
}

func NewDailyScheduler(hour, minute int, job JobRunner, log logrus.FieldLogger) *DailyScheduler {
    return &DailyScheduler{
        hour:   hour,
        minute: minute,
        job:    job,
        log:    log,
        now:    time.Now,
        stop:   make(chan struct{}),
    }
}

// Start blocks, firing the job at each daily trigger until the context is
// cancelled or Stop is called. Run it in its own goroutine.
func (s *DailyScheduler) Start(ctx context.Context) {
    for {
        next := nextRunAfter(s.now(), s.hour, s.minute)
        s.log.WithField("next_run", next.Format(time.RFC3339)).Info("scheduler armed")

        timer := time.NewTimer(next.Sub(s.now()))
        select {
        case <-ctx.Done():
            timer.Stop()
            return
        case <-s.stop:
            timer.Stop()
            return
        case <-timer.C:
        }

        if _, err := s.job.Run(ctx); err != nil {
            // Job-level failure; the next daily trigger is the retry.
            s.log.WithError(err).Error("scheduled batch run failed")
        }
    }
}

// Stop terminates the scheduling loop.
func (s *DailyScheduler) Stop() {
    close(s.stop)
}

// nextRunAfter returns the next instant at hour:minute strictly after t, in
// t's location.
func nextRunAfter(t time.Time, hour, minute int) time.Time {
    next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
    if !next.After(t) {
        next = next.AddDate(0, 0, 1)
    }
    return next
}
