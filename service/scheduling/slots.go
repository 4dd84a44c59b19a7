package scheduling

import (
	"fmt"
	"time"

	"github.com/tandemcare/tandem-server/cmd/models"
)

// SlotWindow is a single generated slot interval in UTC.
type SlotWindow struct {
    Start time.Time
    End   time.Time
}

// BuildSlots slices one time block on one calendar day into discrete slot
// windows. The block's times are interpreted as civil time in the event's
// timezone and each window is converted to UTC, so a 09:00 block keeps its
// wall-clock meaning across DST transitions.
//
// Packing starts at the block start and advances by slot duration plus buffer;
// a slot that would run past the block end is dropped, not truncated.
func BuildSlots(event *models.BookingEvent, day time.Time, block models.TimeBlock) ([]SlotWindow, error) {
    loc, err := time.LoadLocation(event.Timezone)
    if err != nil {
        return nil, fmt.Errorf("event %d: invalid timezone %q: %w", event.ID, event.Timezone, err)
    }

    startHour, startMin, err := models.ParseClock(block.StartTime)
    if err != nil {
        return nil, fmt.Errorf("event %d: %w", event.ID, err)
    }
    endHour, endMin, err := models.ParseClock(block.EndTime)
    if err != nil {
        return nil, fmt.Errorf("event %d: %w", event.ID, err)
    }

    duration := block.SlotDuration
    if duration == 0 {
        duration = models.DefaultSlotDuration
    }
    if duration < 0 || block.BufferTime < 0 {
        return nil, fmt.Errorf("event %d: invalid block timing (duration %d, buffer %d)",
            event.ID, duration, block.BufferTime)
    }

    cursor := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, loc)
    blockEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, loc)

    slotLen := time.Duration(duration) * time.Minute
    step := slotLen + time.Duration(block.BufferTime)*time.Minute

    var windows []SlotWindow
    for !cursor.Add(slotLen).After(blockEnd) {
        windows = append(windows, SlotWindow{
            Start: cursor.UTC(),
            End:   cursor.Add(slotLen).UTC(),
        })
        cursor = cursor.Add(step)
    }
    return windows, nil
}
