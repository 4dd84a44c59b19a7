package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() *BookingEvent {
    return &BookingEvent{
        ProviderID:    1,
        Title:         "Follow-up",
        Timezone:      "America/Chicago",
        Status:        EventStatusActive,
        EffectiveFrom: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
        DailyConfigs: map[string]DailyConfig{
            "tuesday": {Enabled: true, TimeBlocks: []TimeBlock{
                {StartTime: "08:30", EndTime: "12:00", SlotDuration: 30, BufferTime: 10},
            }},
        },
    }
}

func TestBookingEventValidate(t *testing.T) {
    require.NoError(t, validEvent().Validate())

    bad := validEvent()
    bad.Timezone = "Middle/Nowhere"
    assert.Error(t, bad.Validate())

    bad = validEvent()
    to := bad.EffectiveFrom.AddDate(0, 0, -1)
    bad.EffectiveTo = &to
    assert.Error(t, bad.Validate())

    bad = validEvent()
    bad.DailyConfigs["tuesday"] = DailyConfig{Enabled: true, TimeBlocks: []TimeBlock{
        {StartTime: "12:00", EndTime: "08:00", SlotDuration: 30},
    }}
    assert.Error(t, bad.Validate())

    // Invalid blocks on a disabled day are tolerated.
    ok := validEvent()
    ok.DailyConfigs["friday"] = DailyConfig{Enabled: false, TimeBlocks: []TimeBlock{
        {StartTime: "nonsense", EndTime: "08:00"},
    }}
    assert.NoError(t, ok.Validate())
}

func TestTimeBlockValidate(t *testing.T) {
    tests := []struct {
        name    string
        block   TimeBlock
        wantErr bool
    }{
        {"valid", TimeBlock{StartTime: "09:00", EndTime: "17:00", SlotDuration: 30}, false},
        {"zero-length", TimeBlock{StartTime: "09:00", EndTime: "09:00", SlotDuration: 30}, true},
        {"inverted", TimeBlock{StartTime: "17:00", EndTime: "09:00", SlotDuration: 30}, true},
        {"bad clock string", TimeBlock{StartTime: "9:00am", EndTime: "17:00", SlotDuration: 30}, true},
        {"zero duration", TimeBlock{StartTime: "09:00", EndTime: "17:00"}, true},
        {"negative buffer", TimeBlock{StartTime: "09:00", EndTime: "17:00", SlotDuration: 30, BufferTime: -1}, true},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            err := tt.block.Validate()
            if tt.wantErr {
                assert.Error(t, err)
            } else {
                assert.NoError(t, err)
            }
        })
    }
}

func TestScheduleExceptionValidate(t *testing.T) {
    start := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

    valid := &ScheduleException{StartDatetime: start, EndDatetime: start.Add(time.Hour)}
    require.NoError(t, valid.Validate())

    inverted := &ScheduleException{StartDatetime: start, EndDatetime: start.Add(-time.Hour)}
    assert.Error(t, inverted.Validate())

    missingPattern := &ScheduleException{StartDatetime: start, EndDatetime: start.Add(time.Hour), Recurring: true}
    assert.Error(t, missingPattern.Validate())

    badType := &ScheduleException{
        StartDatetime: start, EndDatetime: start.Add(time.Hour), Recurring: true,
        Pattern: &RecurrencePattern{Type: "fortnightly", Interval: 1},
    }
    assert.Error(t, badType.Validate())

    badInterval := &ScheduleException{
        StartDatetime: start, EndDatetime: start.Add(time.Hour), Recurring: true,
        Pattern: &RecurrencePattern{Type: RecurrenceWeekly, Interval: 0},
    }
    assert.Error(t, badInterval.Validate())

    recurring := &ScheduleException{
        StartDatetime: start, EndDatetime: start.Add(time.Hour), Recurring: true,
        Pattern: &RecurrencePattern{Type: RecurrenceWeekly, Interval: 2, MaxOccurrences: 10},
    }
    assert.NoError(t, recurring.Validate())
}

func TestConfigFor(t *testing.T) {
    event := validEvent()

    cfg, ok := event.ConfigFor(time.Tuesday)
    require.True(t, ok)
    assert.True(t, cfg.Enabled)

    _, ok = event.ConfigFor(time.Saturday)
    assert.False(t, ok)
}
