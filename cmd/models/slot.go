package models

import (
	"time"

	"gorm.io/gorm"
)

// Slot statuses. The generator only ever creates available slots and only ever
// deletes available slots; booked and blocked slots belong to the booking
// workflow.
const (
    SlotStatusAvailable = "available"
    SlotStatusBooked    = "booked"
    SlotStatusBlocked   = "blocked"
)

// TimeSlot is the materialized bookable unit derived from an event's template.
// Start and end times are stored in UTC. The unique index on
// (event_id, start_time, end_time) is what makes bulk regeneration idempotent.
type TimeSlot struct {
    gorm.Model
    ProviderID      uint      `gorm:"column:provider_id;not null;index" json:"provider_id"`
    EventID         uint      `gorm:"column:event_id;not null;uniqueIndex:idx_event_slot_window" json:"event_id"`
    StartTime       time.Time `gorm:"column:start_time;not null;uniqueIndex:idx_event_slot_window" json:"start_time"`
    EndTime         time.Time `gorm:"column:end_time;not null;uniqueIndex:idx_event_slot_window" json:"end_time"`
    LocationTypes   []string  `gorm:"column:location_types;serializer:json" json:"location_types"`
    Status          string    `gorm:"column:status;size:20;not null;default:available" json:"status"`
    BillingOverride string    `gorm:"column:billing_override;size:255" json:"billing_override"`
    CreatedBy       string    `gorm:"column:created_by;size:100" json:"created_by"`
    UpdatedBy       string    `gorm:"column:updated_by;size:100" json:"updated_by"`

    Provider *Provider     `gorm:"foreignKey:ProviderID" json:"-"`
    Event    *BookingEvent `gorm:"foreignKey:EventID" json:"-"`
}

func (TimeSlot) TableName() string {
    return "time_slots"
}
