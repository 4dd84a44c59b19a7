package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemcare/tandem-server/cmd/models"
	"gorm.io/gorm"
)

// 2026-03-02 is a Monday.
func mondayEvent(blocks ...models.TimeBlock) *models.BookingEvent {
    if len(blocks) == 0 {
        blocks = []models.TimeBlock{{StartTime: "09:00", EndTime: "12:00", SlotDuration: 60}}
    }
    return &models.BookingEvent{
        Model:          gorm.Model{ID: 1},
        ProviderID:     7,
        Timezone:       "UTC",
        LocationTypes:  []string{"video", "phone"},
        DefaultBilling: "consult-30",
        Status:         models.EventStatusActive,
        EffectiveFrom:  date(2026, time.January, 1),
        DailyConfigs: map[string]models.DailyConfig{
            "monday": {Enabled: true, TimeBlocks: blocks},
        },
    }
}

func TestGenerate_StampsSlotFields(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 2), nil)
    require.NoError(t, err)
    require.Len(t, slots, 3)

    for _, s := range slots {
        assert.Equal(t, uint(1), s.EventID)
        assert.Equal(t, uint(7), s.ProviderID)
        assert.Equal(t, models.SlotStatusAvailable, s.Status)
        assert.Equal(t, "consult-30", s.BillingOverride)
        assert.Equal(t, []string{"video", "phone"}, s.LocationTypes)
        assert.Equal(t, GeneratorActor, s.CreatedBy)
        assert.True(t, s.StartTime.Before(s.EndTime))
    }
}

func TestGenerate_DisabledDayYieldsNothing(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()
    event.DailyConfigs["monday"] = models.DailyConfig{
        Enabled:    false,
        TimeBlocks: []models.TimeBlock{{StartTime: "09:00", EndTime: "17:00", SlotDuration: 30}},
    }

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 8), nil)
    require.NoError(t, err)
    assert.Empty(t, slots)
}

func TestGenerate_MissingWeekdaysSkipped(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()

    // Two weeks, template only covers Mondays: Mar 2 and Mar 9.
    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 15), nil)
    require.NoError(t, err)
    assert.Len(t, slots, 6)
}

func TestGenerate_EffectiveFromBoundary(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()
    event.EffectiveFrom = date(2026, time.March, 9)

    before, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 8), nil)
    require.NoError(t, err)
    assert.Empty(t, before, "day before effective_from must produce nothing")

    onDay, err := g.Generate(event, date(2026, time.March, 9), date(2026, time.March, 9), nil)
    require.NoError(t, err)
    assert.Len(t, onDay, 3, "effective_from day itself produces slots")
}

func TestGenerate_EffectiveRangeEndedYieldsNothing(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()
    effectiveTo := date(2026, time.February, 1)
    event.EffectiveTo = &effectiveTo

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 31), nil)
    require.NoError(t, err)
    assert.Empty(t, slots)
}

func TestGenerate_WeeklyExceptionSuppressesOverlaps(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent(models.TimeBlock{StartTime: "09:00", EndTime: "17:00", SlotDuration: 60})

    // Noon blackout every Monday.
    exceptions := []models.ScheduleException{{
        EventID:       1,
        StartDatetime: time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC),
        EndDatetime:   time.Date(2026, time.March, 2, 13, 0, 0, 0, time.UTC),
        Recurring:     true,
        Pattern:       &models.RecurrencePattern{Type: models.RecurrenceWeekly, Interval: 1},
    }}

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 15), exceptions)
    require.NoError(t, err)

    // Two Mondays, 8 hourly slots each minus the 12:00 slot.
    assert.Len(t, slots, 14)
    for _, s := range slots {
        assert.NotEqual(t, 12, s.StartTime.UTC().Hour(), "12:00 slot should be suppressed on %s", s.StartTime)
    }
}

func TestGenerate_ExceptionLeavesOtherDaysAlone(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent(models.TimeBlock{StartTime: "09:00", EndTime: "11:00", SlotDuration: 60})
    event.DailyConfigs["tuesday"] = models.DailyConfig{
        Enabled:    true,
        TimeBlocks: []models.TimeBlock{{StartTime: "09:00", EndTime: "11:00", SlotDuration: 60}},
    }

    // One-off blackout covering all of Monday Mar 2.
    exceptions := []models.ScheduleException{{
        EventID:       1,
        StartDatetime: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
        EndDatetime:   time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
    }}

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 3), exceptions)
    require.NoError(t, err)

    require.Len(t, slots, 2)
    for _, s := range slots {
        assert.Equal(t, time.Tuesday, s.StartTime.UTC().Weekday())
    }
}

func TestGenerate_MalformedBlockSkippedNotFatal(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent(
        models.TimeBlock{StartTime: "bogus", EndTime: "10:00", SlotDuration: 30},
        models.TimeBlock{StartTime: "10:00", EndTime: "11:00", SlotDuration: 30},
    )

    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 2), nil)
    require.NoError(t, err)
    assert.Len(t, slots, 2)
}

func TestGenerate_TimezoneDayBoundaries(t *testing.T) {
    g := NewGenerator(Expander{}, newTestLogger())
    event := mondayEvent()
    event.Timezone = "Pacific/Auckland"

    // Monday 09:00 in Auckland is Sunday 20:00 UTC (NZDT, +13).
    slots, err := g.Generate(event, date(2026, time.March, 2), date(2026, time.March, 2), nil)
    require.NoError(t, err)
    require.NotEmpty(t, slots)

    loc, _ := time.LoadLocation("Pacific/Auckland")
    assert.Equal(t, "09:00", slots[0].StartTime.In(loc).Format("15:04"))
    assert.Equal(t, time.Monday, slots[0].StartTime.In(loc).Weekday())
}
