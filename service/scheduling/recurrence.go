package scheduling

import (
	"time"

	"github.com/tandemcare/tandem-server/cmd/models"
)

// Interval is an absolute blackout interval, half-open [Start, End).
type Interval struct {
    Start time.Time
    End   time.Time
}

// Overlaps reports whether the interval overlaps [start, end), both half-open.
func (i Interval) Overlaps(start, end time.Time) bool {
    return i.Start.Before(end) && start.Before(i.End)
}

// maxOccurrenceCap bounds expansion of patterns that give neither an end date
// nor a max occurrence count.
const maxOccurrenceCap = 1000

// Expander turns schedule exceptions into concrete blackout intervals.
//
// By default monthly and yearly patterns advance by flat 30/365-day steps,
// matching how the templates have historically been interpreted. CalendarSteps
// switches to calendar-exact AddDate stepping instead.
type Expander struct {
    CalendarSteps bool
}

// Expand produces every occurrence of the exception up to horizon. The result
// is bounded by the pattern's end date, its max occurrence count and a hard
// cap, so expansion always terminates.
func (x Expander) Expand(exc *models.ScheduleException, horizon time.Time) []Interval {
    if !exc.Recurring || exc.Pattern == nil {
        return []Interval{{Start: exc.StartDatetime, End: exc.EndDatetime}}
    }

    pattern := exc.Pattern
    interval := pattern.Interval
    if interval <= 0 {
        interval = 1
    }

    limit := horizon
    if pattern.EndDate != nil && pattern.EndDate.Before(limit) {
        limit = *pattern.EndDate
    }

    maxOccurrences := pattern.MaxOccurrences
    if maxOccurrences <= 0 || maxOccurrences > maxOccurrenceCap {
        maxOccurrences = maxOccurrenceCap
    }

    duration := exc.EndDatetime.Sub(exc.StartDatetime)
    var occurrences []Interval
    for start := exc.StartDatetime; !start.After(limit) && len(occurrences) < maxOccurrences; {
        occurrences = append(occurrences, Interval{Start: start, End: start.Add(duration)})
        start = x.step(start, pattern.Type, interval)
    }
    return occurrences
}

func (x Expander) step(start time.Time, patternType string, interval int) time.Time {
    switch patternType {
    case models.RecurrenceDaily:
        return start.AddDate(0, 0, interval)
    case models.RecurrenceWeekly:
        return start.AddDate(0, 0, 7*interval)
    case models.RecurrenceMonthly:
        if x.CalendarSteps {
            return start.AddDate(0, interval, 0)
        }
        return start.AddDate(0, 0, 30*interval)
    case models.RecurrenceYearly:
        if x.CalendarSteps {
            return start.AddDate(interval, 0, 0)
        }
        return start.AddDate(0, 0, 365*interval)
    default:
        // Unknown types should have been rejected by validation; a daily step
        // keeps the loop terminating regardless.
        return start.AddDate(0, 0, interval)
    }
}
