package scheduling

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/models"
)

// GeneratorActor is recorded in the audit fields of every slot the engine
// creates.
const GeneratorActor = "slot-generator"

// Generator materializes time slots from an event's weekly template over a
// date range, suppressing anything that overlaps an expanded exception.
type Generator struct {
    expander Expander
    log      logrus.FieldLogger
}

func NewGenerator(expander Expander, log logrus.FieldLogger) *Generator {
    return &Generator{expander: expander, log: log}
}

// Generate walks [rangeStart, rangeEnd] day by day in the event's timezone,
// applies the weekday template and returns the resulting unpersisted slots.
//
// An event with no enabled days, or whose effective range misses the window,
// yields an empty list. A malformed time block is skipped with a warning
// rather than failing the whole event.
func (g *Generator) Generate(event *models.BookingEvent, rangeStart, rangeEnd time.Time, exceptions []models.ScheduleException) ([]models.TimeSlot, error) {
    loc, err := time.LoadLocation(event.Timezone)
    if err != nil {
        return nil, fmt.Errorf("event %d: invalid timezone %q: %w", event.ID, event.Timezone, err)
    }

    blackouts := g.expandExceptions(exceptions, rangeEnd)

    var slots []models.TimeSlot
    day := startOfDay(rangeStart.In(loc))
    lastDay := startOfDay(rangeEnd.In(loc))
    for !day.After(lastDay) {
        if g.dayInEffectiveRange(event, day) {
            if cfg, ok := event.ConfigFor(day.Weekday()); ok && cfg.Enabled {
                for _, block := range cfg.TimeBlocks {
                    windows, err := BuildSlots(event, day, block)
                    if err != nil {
                        g.log.WithFields(logrus.Fields{
                            "event_id": event.ID,
                            "day":      day.Format("2006-01-02"),
                        }).WithError(err).Warn("skipping malformed time block")
                        continue
                    }
                    for _, w := range windows {
                        if overlapsAny(blackouts, w.Start, w.End) {
                            continue
                        }
                        slots = append(slots, models.TimeSlot{
                            ProviderID:      event.ProviderID,
                            EventID:         event.ID,
                            StartTime:       w.Start,
                            EndTime:         w.End,
                            LocationTypes:   event.LocationTypes,
                            Status:          models.SlotStatusAvailable,
                            BillingOverride: event.DefaultBilling,
                            CreatedBy:       GeneratorActor,
                            UpdatedBy:       GeneratorActor,
                        })
                    }
                }
            }
        }
        day = day.AddDate(0, 0, 1)
    }
    return slots, nil
}

func (g *Generator) expandExceptions(exceptions []models.ScheduleException, horizon time.Time) []Interval {
    var blackouts []Interval
    for i := range exceptions {
        blackouts = append(blackouts, g.expander.Expand(&exceptions[i], horizon)...)
    }
    return blackouts
}

// dayInEffectiveRange compares whole calendar days, not instants, so an event
// effective from 2026-03-01 produces slots on 2026-03-01 regardless of the
// time-of-day carried by either value.
func (g *Generator) dayInEffectiveRange(event *models.BookingEvent, day time.Time) bool {
    if civilDate(day) < civilDate(event.EffectiveFrom) {
        return false
    }
    if event.EffectiveTo != nil && civilDate(day) > civilDate(*event.EffectiveTo) {
        return false
    }
    return true
}

func overlapsAny(blackouts []Interval, start, end time.Time) bool {
    for _, b := range blackouts {
        if b.Overlaps(start, end) {
            return true
        }
    }
    return false
}

// startOfDay returns midnight of t's calendar day in t's own location.
func startOfDay(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// civilDate collapses a time to a comparable yyyymmdd ordinal using its own
// calendar components.
func civilDate(t time.Time) int {
    return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
