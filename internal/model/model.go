package model

import "time"

// Event represents a logical calendar event before recurrence expansion.
// Events are read-only inside the scheduling core: rescheduling always
// produces a new ScheduledEvent, never a mutated Event.
type Event struct {
	UID string // iCalendar UID

	Summary     string
	Description string
	Location    string
	URL         string

	AllDay bool

	// Original start/end in the event's own timezone.
	Start time.Time
	End   time.Time

	// RawRRule is the unexpanded recurrence rule text; empty for one-off
	// events.
	RawRRule string
}

// Occurrence represents a single concrete instance of an event
// (after recurrence expansion and timezone normalization).
type Occurrence struct {
	UID string // originating event's iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event, derived from the local start time.
	InstanceKey string

	Summary     string
	Description string
	Location    string
	URL         string

	AllDay bool

	Start time.Time
	End   time.Time

	// Constraint is the decoded scheduling constraint from the event's
	// description front matter; nil means unconstrained.
	Constraint *Constraint
}

// ScheduledEvent is an occurrence that has been assigned its new start/end,
// or a synthetic filler/holiday event emitted alongside them.
type ScheduledEvent struct {
	Summary     string
	Description string
	Location    string
	URL         string

	AllDay bool

	Start time.Time
	End   time.Time

	// Filler marks a placeholder event generated for unconsumed slots.
	Filler bool
	// Holiday marks a materialized full-day holiday event.
	Holiday bool
}

// Holiday is one full-day entry from the holiday feed. Date is the
// start-of-day instant in the run's timezone; availability matching is by
// instant equality on that value.
type Holiday struct {
	Date    time.Time
	Summary string
}

// HolidaySet is the ordered set of holidays inside the target range.
type HolidaySet []Holiday

// Contains reports whether dayStart (a start-of-day instant) is a holiday.
func (s HolidaySet) Contains(dayStart time.Time) bool {
	for _, h := range s {
		if h.Date.Equal(dayStart) {
			return true
		}
	}
	return false
}
