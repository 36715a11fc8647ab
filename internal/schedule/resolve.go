package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	"icalmove/internal/model"
)

// ResolveAnchor interprets an event's constraint against the already-placed
// events and the availability calendar, yielding the earliest date the
// event may be placed on. None means the event is unconstrained.
//
// The constraint variants are a closed set; anything unknown is a bug.
func ResolveAnchor(eventSummary string, con *model.Constraint, placed []model.ScheduledEvent, cal *Calendar) (mo.Option[time.Time], error) {
	if con == nil {
		return mo.None[time.Time](), nil
	}

	switch con.Kind {
	case model.ConstraintNone:
		return mo.None[time.Time](), nil

	case model.ConstraintRelative:
		return resolveRelative(eventSummary, con, placed)

	case model.ConstraintFixed:
		return resolveFixed(eventSummary, con, cal)

	default:
		return mo.None[time.Time](), fmt.Errorf("schedule: unknown constraint kind %d on %q", con.Kind, eventSummary)
	}
}

// resolveRelative anchors to another event's new start or end. The referent
// must already be placed: events are processed in original-day order, so a
// dependent that precedes its referent is ambiguous input, not something to
// reorder around.
func resolveRelative(eventSummary string, con *model.Constraint, placed []model.ScheduledEvent) (mo.Option[time.Time], error) {
	ref, ok := findBySummary(placed, con.After)
	if !ok {
		return mo.None[time.Time](), &UnresolvedConstraintError{
			Event:     eventSummary,
			Reference: fmt.Sprintf("no scheduled event matches %q (forward or cyclic reference?)", con.After),
		}
	}

	anchor := ref.Start
	if con.Edge == model.AnchorEnd {
		anchor = ref.End
		// An end landing exactly at midnight belongs to the previous day;
		// without this, all-day referents push dependents a day too far.
		if anchor.Hour() == 0 && anchor.Minute() == 0 && anchor.Second() == 0 {
			anchor = anchor.AddDate(0, 0, -1)
		}
	}

	anchor = dateOf(anchor).AddDate(0, 0, con.OffsetDays)
	return mo.Some(anchor), nil
}

// resolveFixed picks the Nth working day of the given week within the
// range. Day is 1-based; negative values count from the week's end.
func resolveFixed(eventSummary string, con *model.Constraint, cal *Calendar) (mo.Option[time.Time], error) {
	var working []time.Time
	for _, d := range cal.Days {
		if d.Week == con.Week && !d.Closed {
			working = append(working, d.Date)
		}
	}

	idx := con.Day - 1
	if con.Day < 0 {
		idx = len(working) + con.Day
	}
	if idx < 0 || idx >= len(working) {
		return mo.None[time.Time](), &UnresolvedConstraintError{
			Event:     eventSummary,
			Reference: fmt.Sprintf("week %d has no working day at ordinal %d", con.Week, con.Day),
		}
	}

	return mo.Some(working[idx]), nil
}

// findBySummary returns the first placed non-filler, non-holiday event
// whose summary contains the fragment.
func findBySummary(placed []model.ScheduledEvent, fragment string) (model.ScheduledEvent, bool) {
	for _, ev := range placed {
		if ev.Filler || ev.Holiday {
			continue
		}
		if strings.Contains(ev.Summary, fragment) {
			return ev, true
		}
	}
	return model.ScheduledEvent{}, false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
