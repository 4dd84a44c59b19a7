package scheduling

import (
	"context"
	"time"

	"github.com/tandemcare/tandem-server/cmd/models"
)

// BulkInsertResult reports the outcome of an idempotent bulk slot insert.
// Collisions with the (event, start, end) uniqueness constraint are counted as
// duplicates, not errors.
type BulkInsertResult struct {
    Created    int
    Duplicates int
    Errors     []error
}

func (r *BulkInsertResult) merge(other BulkInsertResult) {
    r.Created += other.Created
    r.Duplicates += other.Duplicates
    r.Errors = append(r.Errors, other.Errors...)
}

// EventRepository loads availability templates.
type EventRepository interface {
    FindActiveInRange(ctx context.Context, start, end time.Time) ([]models.BookingEvent, error)
    FindByID(ctx context.Context, id uint) (*models.BookingEvent, error)
}

// ExceptionRepository loads blackout definitions for an event whose base
// interval intersects the given range.
type ExceptionRepository interface {
    FindForEvent(ctx context.Context, eventID uint, start, end time.Time) ([]models.ScheduleException, error)
}

// SlotRepository persists materialized slots. Implementations must never
// delete or alter a slot whose status is not available.
type SlotRepository interface {
    BulkCreateSlots(ctx context.Context, slots []models.TimeSlot) (BulkInsertResult, error)
    DeleteAvailableSlotsFrom(ctx context.Context, eventID uint, from time.Time) (int64, error)
    PurgeOldAvailable(ctx context.Context, retentionDays int) (int64, error)

    // InTransaction runs fn against a transactional view of the repository,
    // so a delete-then-insert regeneration commits or rolls back as a unit.
    InTransaction(ctx context.Context, fn func(SlotRepository) error) error
}
