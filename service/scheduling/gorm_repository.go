package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tandemcare/tandem-server/cmd/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository implements EventRepository over gorm.
type GormEventRepository struct {
    db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
    return &GormEventRepository{db: db}
}

func (r *GormEventRepository) FindActiveInRange(ctx context.Context, start, end time.Time) ([]models.BookingEvent, error) {
    var events []models.BookingEvent
    err := r.db.WithContext(ctx).
        Where("status = ?", models.EventStatusActive).
        Where("effective_from <= ?", end).
        Where("effective_to IS NULL OR effective_to >= ?", start).
        Find(&events).Error
    if err != nil {
        return nil, fmt.Errorf("loading active events: %w", err)
    }
    return events, nil
}

func (r *GormEventRepository) FindByID(ctx context.Context, id uint) (*models.BookingEvent, error) {
    var event models.BookingEvent
    err := r.db.WithContext(ctx).First(&event, id).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("loading event %d: %w", id, err)
    }
    return &event, nil
}

// GormExceptionRepository implements ExceptionRepository over gorm.
type GormExceptionRepository struct {
    db *gorm.DB
}

func NewGormExceptionRepository(db *gorm.DB) *GormExceptionRepository {
    return &GormExceptionRepository{db: db}
}

// FindForEvent returns exceptions whose base interval touches [start, end].
// Recurring exceptions anchored before the range are included regardless of
// their base end, since their occurrences extend forward.
func (r *GormExceptionRepository) FindForEvent(ctx context.Context, eventID uint, start, end time.Time) ([]models.ScheduleException, error) {
    var exceptions []models.ScheduleException
    err := r.db.WithContext(ctx).
        Where("event_id = ?", eventID).
        Where("start_datetime <= ?", end).
        Where("recurring = ? OR end_datetime >= ?", true, start).
        Order("start_datetime").
        Find(&exceptions).Error
    if err != nil {
        return nil, fmt.Errorf("loading exceptions for event %d: %w", eventID, err)
    }
    return exceptions, nil
}

// GormSlotRepository implements SlotRepository over gorm.
type GormSlotRepository struct {
    db  *gorm.DB
    now func() time.Time
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
    return &GormSlotRepository{db: db, now: time.Now}
}

var slotConflictColumns = []clause.Column{
    {Name: "event_id"}, {Name: "start_time"}, {Name: "end_time"},
}

// BulkCreateSlots inserts candidate slots with ON CONFLICT DO NOTHING on the
// (event, start, end) uniqueness index, so re-running generation over the same
// range is a no-op. When the batched insert fails for another reason it falls
// back to row-by-row inserts so one bad row cannot sink the whole batch.
func (r *GormSlotRepository) BulkCreateSlots(ctx context.Context, slots []models.TimeSlot) (BulkInsertResult, error) {
    var result BulkInsertResult
    if len(slots) == 0 {
        return result, nil
    }

    tx := r.db.WithContext(ctx).
        Clauses(clause.OnConflict{Columns: slotConflictColumns, DoNothing: true}).
        Create(&slots)
    if tx.Error == nil {
        result.Created = int(tx.RowsAffected)
        result.Duplicates = len(slots) - result.Created
        return result, nil
    }

    for i := range slots {
        row := r.db.WithContext(ctx).
            Clauses(clause.OnConflict{Columns: slotConflictColumns, DoNothing: true}).
            Create(&slots[i])
        switch {
        case row.Error != nil && isDuplicateKeyError(row.Error):
            result.Duplicates++
        case row.Error != nil:
            result.Errors = append(result.Errors,
                fmt.Errorf("slot %s-%s: %w", slots[i].StartTime.Format(time.RFC3339), slots[i].EndTime.Format(time.RFC3339), row.Error))
        case row.RowsAffected == 0:
            result.Duplicates++
        default:
            result.Created++
        }
    }
    return result, nil
}

func (r *GormSlotRepository) DeleteAvailableSlotsFrom(ctx context.Context, eventID uint, from time.Time) (int64, error) {
    tx := r.db.WithContext(ctx).
        Where("event_id = ? AND status = ? AND start_time >= ?", eventID, models.SlotStatusAvailable, from).
        Delete(&models.TimeSlot{})
    if tx.Error != nil {
        return 0, fmt.Errorf("deleting available slots for event %d: %w", eventID, tx.Error)
    }
    return tx.RowsAffected, nil
}

func (r *GormSlotRepository) PurgeOldAvailable(ctx context.Context, retentionDays int) (int64, error) {
    cutoff := r.now().UTC().AddDate(0, 0, -retentionDays)
    tx := r.db.WithContext(ctx).
        Where("status = ? AND start_time < ?", models.SlotStatusAvailable, cutoff).
        Delete(&models.TimeSlot{})
    if tx.Error != nil {
        return 0, fmt.Errorf("purging slots older than %s: %w", cutoff.Format("2006-01-02"), tx.Error)
    }
    return tx.RowsAffected, nil
}

func (r *GormSlotRepository) InTransaction(ctx context.Context, fn func(SlotRepository) error) error {
    return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        return fn(&GormSlotRepository{db: tx, now: r.now})
    })
}

func isDuplicateKeyError(err error) bool {
    if errors.Is(err, gorm.ErrDuplicatedKey) {
        return true
    }
    var pqErr *pq.Error
    if errors.As(err, &pqErr) && pqErr.Code == "23505" {
        return true
    }
    // sqlite (used in tests) reports constraint violations by message only.
    return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
