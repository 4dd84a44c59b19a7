package scheduling

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/models"
)

func newTestLogger() *logrus.Logger {
    log := logrus.New()
    log.SetOutput(io.Discard)
    return log
}

type fakeEventRepo struct {
    events  []models.BookingEvent
    listErr error
}

func (f *fakeEventRepo) FindActiveInRange(ctx context.Context, start, end time.Time) ([]models.BookingEvent, error) {
    if f.listErr != nil {
        return nil, f.listErr
    }
    var active []models.BookingEvent
    for _, e := range f.events {
        if e.Status == models.EventStatusActive {
            active = append(active, e)
        }
    }
    return active, nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id uint) (*models.BookingEvent, error) {
    for i := range f.events {
        if f.events[i].ID == id {
            event := f.events[i]
            return &event, nil
        }
    }
    return nil, nil
}

type fakeExceptionRepo struct {
    byEvent map[uint][]models.ScheduleException
    errFor  map[uint]error
}

func (f *fakeExceptionRepo) FindForEvent(ctx context.Context, eventID uint, start, end time.Time) ([]models.ScheduleException, error) {
    if err := f.errFor[eventID]; err != nil {
        return nil, err
    }
    return f.byEvent[eventID], nil
}

// fakeSlotRepo is an in-memory SlotRepository enforcing the same uniqueness
// invariant as the real table.
type fakeSlotRepo struct {
    mu         sync.Mutex
    slots      []models.TimeSlot
    nextID     uint
    createErr  error
    purgeErr   error
    purged     int64
    deleteFrom []time.Time
}

func (f *fakeSlotRepo) BulkCreateSlots(ctx context.Context, slots []models.TimeSlot) (BulkInsertResult, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.createErr != nil {
        return BulkInsertResult{}, f.createErr
    }
    var result BulkInsertResult
    for _, s := range slots {
        if f.existsLocked(s.EventID, s.StartTime, s.EndTime) {
            result.Duplicates++
            continue
        }
        f.nextID++
        s.ID = f.nextID
        f.slots = append(f.slots, s)
        result.Created++
    }
    return result, nil
}

func (f *fakeSlotRepo) DeleteAvailableSlotsFrom(ctx context.Context, eventID uint, from time.Time) (int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.deleteFrom = append(f.deleteFrom, from)
    var kept []models.TimeSlot
    var deleted int64
    for _, s := range f.slots {
        if s.EventID == eventID && s.Status == models.SlotStatusAvailable && !s.StartTime.Before(from) {
            deleted++
            continue
        }
        kept = append(kept, s)
    }
    f.slots = kept
    return deleted, nil
}

func (f *fakeSlotRepo) PurgeOldAvailable(ctx context.Context, retentionDays int) (int64, error) {
    if f.purgeErr != nil {
        return 0, f.purgeErr
    }
    return f.purged, nil
}

func (f *fakeSlotRepo) InTransaction(ctx context.Context, fn func(SlotRepository) error) error {
    return fn(f)
}

func (f *fakeSlotRepo) existsLocked(eventID uint, start, end time.Time) bool {
    for _, s := range f.slots {
        if s.EventID == eventID && s.StartTime.Equal(start) && s.EndTime.Equal(end) {
            return true
        }
    }
    return false
}

func (f *fakeSlotRepo) countForEvent(eventID uint) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    n := 0
    for _, s := range f.slots {
        if s.EventID == eventID {
            n++
        }
    }
    return n
}

type fakeSink struct {
    reports []Report
    err     error
}

func (f *fakeSink) Deliver(report Report) error {
    f.reports = append(f.reports, report)
    return f.err
}

// weekdayTemplate builds a single-day template with one block.
func weekdayTemplate(day string, block models.TimeBlock) map[string]models.DailyConfig {
    return map[string]models.DailyConfig{
        day: {Enabled: true, TimeBlocks: []models.TimeBlock{block}},
    }
}

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
