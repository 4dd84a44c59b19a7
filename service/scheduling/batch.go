package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/models"
)

// Batch job defaults.
const (
    DefaultHorizonDays   = 30
    DefaultBatchSize     = 500
    DefaultRetentionDays = 30
)

// BatchConfig tunes the nightly generation job. Zero values fall back to the
// defaults above.
type BatchConfig struct {
    HorizonDays   int
    BatchSize     int
    RetentionDays int
}

func (c BatchConfig) withDefaults() BatchConfig {
    if c.HorizonDays <= 0 {
        c.HorizonDays = DefaultHorizonDays
    }
    if c.BatchSize <= 0 {
        c.BatchSize = DefaultBatchSize
    }
    if c.RetentionDays <= 0 {
        c.RetentionDays = DefaultRetentionDays
    }
    return c
}

// Report summarizes one batch run. FailedEvents lists events whose generation
// or persistence failed; their failure never aborts the rest of the run.
type Report struct {
    JobID           string    `json:"job_id"`
    StartedAt       time.Time `json:"started_at"`
    FinishedAt      time.Time `json:"finished_at"`
    EventsProcessed int       `json:"events_processed"`
    SlotsGenerated  int       `json:"slots_generated"`
    SlotsCreated    int       `json:"slots_created"`
    Duplicates      int       `json:"duplicates"`
    InsertErrors    int       `json:"insert_errors"`
    FailedEvents    []uint    `json:"failed_events"`
    PurgedSlots     int64     `json:"purged_slots"`
}

// ReportSink receives the report of a finished batch run. Delivery failures
// are logged, never fatal.
type ReportSink interface {
    Deliver(report Report) error
}

// BatchJob materializes the rolling slot horizon for every active event.
type BatchJob struct {
    events     EventRepository
    exceptions ExceptionRepository
    slots      SlotRepository
    generator  *Generator
    log        logrus.FieldLogger
    now        func() time.Time
    cfg        BatchConfig
    sink       ReportSink
}

func NewBatchJob(events EventRepository, exceptions ExceptionRepository, slots SlotRepository, generator *Generator, log logrus.FieldLogger, cfg BatchConfig) *BatchJob {
    return &BatchJob{
        events:     events,
        exceptions: exceptions,
        slots:      slots,
        generator:  generator,
        log:        log,
        now:        time.Now,
        cfg:        cfg.withDefaults(),
    }
}

// WithReportSink attaches an optional sink (e.g. the ops mailer) that gets the
// run report after each pass.
func (j *BatchJob) WithReportSink(sink ReportSink) *BatchJob {
    j.sink = sink
    return j
}

// WithClock overrides the job's clock.
func (j *BatchJob) WithClock(now func() time.Time) *BatchJob {
    j.now = now
    return j
}

// Run executes one full pass: generate and persist slots for every active
// event in the horizon, then purge stale available slots. It returns an error
// only when the active-event set cannot be loaded at all; individual event
// failures are recorded in the report instead.
func (j *BatchJob) Run(ctx context.Context) (Report, error) {
    report := Report{
        JobID:     uuid.NewString(),
        StartedAt: j.now().UTC(),
    }
    log := j.log.WithField("job_id", report.JobID)

    rangeStart := startOfDay(j.now().UTC())
    rangeEnd := rangeStart.AddDate(0, 0, j.cfg.HorizonDays)

    events, err := j.events.FindActiveInRange(ctx, rangeStart, rangeEnd)
    if err != nil {
        return report, fmt.Errorf("batch generation: %w", err)
    }
    log.WithField("events", len(events)).Info("batch slot generation started")

    for i := range events {
        event := &events[i]
        if err := j.processEvent(ctx, event, rangeStart, rangeEnd, &report); err != nil {
            report.FailedEvents = append(report.FailedEvents, event.ID)
            log.WithFields(logrus.Fields{
                "event_id":    event.ID,
                "provider_id": event.ProviderID,
            }).WithError(err).Error("event slot generation failed")
            continue
        }
        report.EventsProcessed++
    }

    purged, err := j.slots.PurgeOldAvailable(ctx, j.cfg.RetentionDays)
    if err != nil {
        log.WithError(err).Warn("slot retention purge failed")
    } else {
        report.PurgedSlots = purged
    }

    report.FinishedAt = j.now().UTC()
    log.WithFields(logrus.Fields{
        "processed":  report.EventsProcessed,
        "created":    report.SlotsCreated,
        "duplicates": report.Duplicates,
        "failed":     len(report.FailedEvents),
        "purged":     report.PurgedSlots,
    }).Info("batch slot generation finished")

    if j.sink != nil {
        if err := j.sink.Deliver(report); err != nil {
            log.WithError(err).Warn("delivering job report failed")
        }
    }
    return report, nil
}

func (j *BatchJob) processEvent(ctx context.Context, event *models.BookingEvent, rangeStart, rangeEnd time.Time, report *Report) error {
    exceptions, err := j.exceptions.FindForEvent(ctx, event.ID, rangeStart, rangeEnd)
    if err != nil {
        return err
    }

    slots, err := j.generator.Generate(event, rangeStart, rangeEnd, exceptions)
    if err != nil {
        return err
    }
    report.SlotsGenerated += len(slots)

    for start := 0; start < len(slots); start += j.cfg.BatchSize {
        end := start + j.cfg.BatchSize
        if end > len(slots) {
            end = len(slots)
        }
        result, err := j.slots.BulkCreateSlots(ctx, slots[start:end])
        if err != nil {
            return err
        }
        report.SlotsCreated += result.Created
        report.Duplicates += result.Duplicates
        report.InsertErrors += len(result.Errors)
    }
    return nil
}
