package scheduling

import (
	"time"

	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
)

// TimeRange is an immutable half-open interval [Start, End). "Updating" a
// range always produces a new value.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange fails when end is not strictly after start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !end.After(start) {
		return TimeRange{}, aggregates.Validation("scheduling.NewTimeRange", "end must be after start")
	}
	return TimeRange{start: start, end: end}, nil
}

// NewTimeRangeWithDuration anchors a range at start for the given number of
// minutes. Appointment lengths come from the appointment type's duration.
func NewTimeRangeWithDuration(start time.Time, minutes int) (TimeRange, error) {
	return NewTimeRange(start, start.Add(time.Duration(minutes)*time.Minute))
}

func (r TimeRange) Start() time.Time { return r.start }
func (r TimeRange) End() time.Time   { return r.end }

func (r TimeRange) IsZero() bool { return r.start.IsZero() && r.end.IsZero() }

func (r TimeRange) DurationMinutes() int {
	return int(r.end.Sub(r.start) / time.Minute)
}

// Overlaps is strict in both directions: ranges that merely touch at a
// boundary do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// WithNewStart keeps the current duration and re-anchors the range.
func (r TimeRange) WithNewStart(newStart time.Time) (TimeRange, error) {
	return NewTimeRange(newStart, newStart.Add(r.end.Sub(r.start)))
}

// WithNewEnd keeps the current start.
func (r TimeRange) WithNewEnd(newEnd time.Time) (TimeRange, error) {
	return NewTimeRange(r.start, newEnd)
}
