package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Event lifecycle statuses. Only active events are picked up by slot generation.
const (
    EventStatusDraft  = "draft"
    EventStatusActive = "active"
    EventStatusPaused = "paused"
)

// Weekday keys used in the DailyConfigs map.
var WeekdayKeys = map[time.Weekday]string{
    time.Sunday:    "sunday",
    time.Monday:    "monday",
    time.Tuesday:   "tuesday",
    time.Wednesday: "wednesday",
    time.Thursday:  "thursday",
    time.Friday:    "friday",
    time.Saturday:  "saturday",
}

// BookingEvent is a provider's standing weekly availability template. Concrete
// bookable slots are materialized from it by the scheduling engine.
type BookingEvent struct {
    gorm.Model
    ProviderID     uint                  `gorm:"column:provider_id;not null;index" json:"provider_id"`
    Title          string                `gorm:"column:title;size:255;not null" json:"title"`
    Timezone       string                `gorm:"column:timezone;size:64;not null" json:"timezone"`
    LocationTypes  []string              `gorm:"column:location_types;serializer:json" json:"location_types"`
    DefaultBilling string                `gorm:"column:default_billing;size:255" json:"default_billing"`
    Status         string                `gorm:"column:status;size:20;not null;default:draft" json:"status"`
    EffectiveFrom  time.Time             `gorm:"column:effective_from;not null" json:"effective_from"`
    EffectiveTo    *time.Time            `gorm:"column:effective_to" json:"effective_to,omitempty"`
    DailyConfigs   map[string]DailyConfig `gorm:"column:daily_configs;serializer:json" json:"daily_configs"`

    Provider   *Provider           `gorm:"foreignKey:ProviderID" json:"-"`
    Exceptions []ScheduleException `gorm:"foreignKey:EventID" json:"exceptions,omitempty"`
}

func (BookingEvent) TableName() string {
    return "booking_events"
}

// DailyConfig is one weekday's template. A missing or disabled day contributes
// no slots.
type DailyConfig struct {
    Enabled    bool        `json:"enabled"`
    TimeBlocks []TimeBlock `json:"time_blocks"`
}

// TimeBlock is a contiguous working window within a day, expressed in the
// event's civil time ("HH:MM") and sliced into slots of SlotDuration minutes
// with BufferTime minutes between them.
type TimeBlock struct {
    StartTime    string `json:"start_time"`
    EndTime      string `json:"end_time"`
    SlotDuration int    `json:"slot_duration"`
    BufferTime   int    `json:"buffer_time"`
}

const DefaultSlotDuration = 30

// ParseClock parses a "HH:MM" civil time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
    t, err := time.Parse("15:04", s)
    if err != nil {
        return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
    }
    return t.Hour(), t.Minute(), nil
}

// Validate checks the block's invariants: parseable times, start before end,
// positive duration, non-negative buffer.
func (b TimeBlock) Validate() error {
    sh, sm, err := ParseClock(b.StartTime)
    if err != nil {
        return err
    }
    eh, em, err := ParseClock(b.EndTime)
    if err != nil {
        return err
    }
    if sh*60+sm >= eh*60+em {
        return fmt.Errorf("block start %s must be before end %s", b.StartTime, b.EndTime)
    }
    if b.SlotDuration <= 0 {
        return fmt.Errorf("slot duration must be positive, got %d", b.SlotDuration)
    }
    if b.BufferTime < 0 {
        return fmt.Errorf("buffer time must not be negative, got %d", b.BufferTime)
    }
    return nil
}

// Validate checks the event template: a loadable IANA timezone, an ordered
// effective range and valid time blocks on every enabled day.
func (e *BookingEvent) Validate() error {
    if _, err := time.LoadLocation(e.Timezone); err != nil {
        return fmt.Errorf("invalid timezone %q: %w", e.Timezone, err)
    }
    if e.EffectiveTo != nil && e.EffectiveTo.Before(e.EffectiveFrom) {
        return fmt.Errorf("effective_to %s is before effective_from %s",
            e.EffectiveTo.Format("2006-01-02"), e.EffectiveFrom.Format("2006-01-02"))
    }
    for day, cfg := range e.DailyConfigs {
        if !cfg.Enabled {
            continue
        }
        for i, block := range cfg.TimeBlocks {
            if err := block.Validate(); err != nil {
                return fmt.Errorf("%s block %d: %w", day, i, err)
            }
        }
    }
    return nil
}

// ConfigFor returns the template for the given weekday, if any.
func (e *BookingEvent) ConfigFor(day time.Weekday) (DailyConfig, bool) {
    cfg, ok := e.DailyConfigs[WeekdayKeys[day]]
    return cfg, ok
}
