package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Recurrence pattern types.
const (
    RecurrenceDaily   = "daily"
    RecurrenceWeekly  = "weekly"
    RecurrenceMonthly = "monthly"
    RecurrenceYearly  = "yearly"
)

// RecurrencePattern describes how a recurring exception repeats. EndDate and
// MaxOccurrences bound expansion; a hard cap applies when neither is set.
type RecurrencePattern struct {
    Type           string     `json:"type"`
    Interval       int        `json:"interval"`
    EndDate        *time.Time `json:"end_date,omitempty"`
    MaxOccurrences int        `json:"max_occurrences,omitempty"`
}

// ScheduleException is a blackout interval that suppresses slot generation for
// an event, either once or on a recurring pattern.
type ScheduleException struct {
    gorm.Model
    EventID       uint               `gorm:"column:event_id;not null;index" json:"event_id"`
    Reason        string             `gorm:"column:reason;size:255" json:"reason"`
    StartDatetime time.Time          `gorm:"column:start_datetime;not null" json:"start_datetime"`
    EndDatetime   time.Time          `gorm:"column:end_datetime;not null" json:"end_datetime"`
    Recurring     bool               `gorm:"column:recurring;default:false" json:"recurring"`
    Pattern       *RecurrencePattern `gorm:"column:pattern;serializer:json" json:"pattern,omitempty"`

    Event *BookingEvent `gorm:"foreignKey:EventID" json:"-"`
}

func (ScheduleException) TableName() string {
    return "schedule_exceptions"
}

// Validate checks the exception's invariants: ordered interval, and a pattern
// with a known type and positive interval whenever the exception recurs.
func (e *ScheduleException) Validate() error {
    if !e.StartDatetime.Before(e.EndDatetime) {
        return fmt.Errorf("exception start must be before end")
    }
    if e.Recurring {
        if e.Pattern == nil {
            return fmt.Errorf("recurring exception requires a recurrence pattern")
        }
        switch e.Pattern.Type {
        case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
        default:
            return fmt.Errorf("unknown recurrence type %q", e.Pattern.Type)
        }
        if e.Pattern.Interval <= 0 {
            return fmt.Errorf("recurrence interval must be positive, got %d", e.Pattern.Interval)
        }
        if e.Pattern.MaxOccurrences < 0 {
            return fmt.Errorf("max occurrences must not be negative, got %d", e.Pattern.MaxOccurrences)
        }
    }
    return nil
}
