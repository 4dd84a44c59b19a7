package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/models"
)

// Regenerator rebuilds a single event's future available slots after a
// template edit. Unlike the batch job its errors propagate to the caller, so
// the provider editing the template sees the failure.
type Regenerator struct {
    events      EventRepository
    exceptions  ExceptionRepository
    slots       SlotRepository
    generator   *Generator
    log         logrus.FieldLogger
    now         func() time.Time
    horizonDays int

    mu    sync.Mutex
    locks map[uint]*sync.Mutex
}

func NewRegenerator(events EventRepository, exceptions ExceptionRepository, slots SlotRepository, generator *Generator, log logrus.FieldLogger, horizonDays int) *Regenerator {
    if horizonDays <= 0 {
        horizonDays = DefaultHorizonDays
    }
    return &Regenerator{
        events:      events,
        exceptions:  exceptions,
        slots:       slots,
        generator:   generator,
        log:         log,
        now:         time.Now,
        horizonDays: horizonDays,
        locks:       make(map[uint]*sync.Mutex),
    }
}

// WithClock overrides the regenerator's clock.
func (r *Regenerator) WithClock(now func() time.Time) *Regenerator {
    r.now = now
    return r
}

// Regenerate discards the event's future available slots from the cutoff and
// repopulates them over the rolling horizon. Booked slots are never touched.
//
// The cutoff is fromDate when given, otherwise the start of the current day in
// the event's own timezone. Rapid successive edits of the same event are
// serialized by a per-event lock; the delete and insert run in one transaction
// so a half-regenerated window is never observable.
func (r *Regenerator) Regenerate(ctx context.Context, eventID uint, fromDate *time.Time) error {
    lock := r.lockFor(eventID)
    lock.Lock()
    defer lock.Unlock()

    event, err := r.events.FindByID(ctx, eventID)
    if err != nil {
        return err
    }
    if event == nil {
        return fmt.Errorf("regenerate: event %d not found", eventID)
    }
    if event.Status != models.EventStatusActive {
        r.log.WithFields(logrus.Fields{
            "event_id": eventID,
            "status":   event.Status,
        }).Debug("skipping regeneration of inactive event")
        return nil
    }

    loc, err := time.LoadLocation(event.Timezone)
    if err != nil {
        return fmt.Errorf("regenerate: event %d has invalid timezone %q: %w", eventID, event.Timezone, err)
    }

    var start time.Time
    if fromDate != nil {
        start = fromDate.UTC()
    } else {
        // Midnight in the event's zone, not server-local midnight.
        start = startOfDay(r.now().In(loc)).UTC()
    }
    end := start.AddDate(0, 0, r.horizonDays)

    exceptions, err := r.exceptions.FindForEvent(ctx, eventID, start, end)
    if err != nil {
        return err
    }

    slots, err := r.generator.Generate(event, start, end, exceptions)
    if err != nil {
        return err
    }

    var deleted int64
    var result BulkInsertResult
    err = r.slots.InTransaction(ctx, func(repo SlotRepository) error {
        deleted, err = repo.DeleteAvailableSlotsFrom(ctx, eventID, start)
        if err != nil {
            return err
        }
        result, err = repo.BulkCreateSlots(ctx, slots)
        return err
    })
    if err != nil {
        return fmt.Errorf("regenerating event %d: %w", eventID, err)
    }

    r.log.WithFields(logrus.Fields{
        "event_id":   eventID,
        "from":       start.Format(time.RFC3339),
        "deleted":    deleted,
        "created":    result.Created,
        "duplicates": result.Duplicates,
    }).Info("event slots regenerated")
    return nil
}

func (r *Regenerator) lockFor(eventID uint) *sync.Mutex {
    r.mu.Lock()
    defer r.mu.Unlock()
    lock, ok := r.locks[eventID]
    if !ok {
        lock = &sync.Mutex{}
        r.locks[eventID] = lock
    }
    return lock
}
