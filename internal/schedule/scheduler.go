package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	appLog "icalmove/internal/log"
	"icalmove/internal/model"
)

// businessDaysRe matches a trailing "(N day)" / "(N days)" summary suffix
// declaring the event's span in working days.
var businessDaysRe = regexp.MustCompile(`\((\d+) days?\)\s*$`)

// DroppedEvent records an occurrence that could not be placed anywhere in
// the target range.
type DroppedEvent struct {
	Summary       string
	OriginalStart time.Time
}

// Result is the outcome of one packing pass.
type Result struct {
	// Scheduled is append-only; its order follows processing order.
	Scheduled []model.ScheduledEvent
	// Dropped lists events that found no day/slot. They are warnings, not
	// failures: the run still succeeds.
	Dropped []DroppedEvent
}

// Pack assigns every occurrence a new start/end inside the availability
// calendar, consuming slots as it goes.
//
// Occurrences are visited grouped by their original start day in ascending
// order, and within a day in original start-time order — a stable sort by
// start time yields exactly that visiting order. This makes constraint
// referents precede their dependents for well-formed input; a relative
// constraint pointing at a same-day-or-later event surfaces as an
// UnresolvedConstraintError, which aborts the run.
func Pack(occurrences []model.Occurrence, cal *Calendar) (Result, error) {
	var res Result

	occs := append([]model.Occurrence(nil), occurrences...)
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].Start.Before(occs[j].Start)
	})

	for _, occ := range occs {
		duration := businessDuration(occ.Summary)

		// Events spanning a full day or more are exempt from slot
		// matching; they only need an open day.
		fullDay := occ.AllDay || occ.End.Sub(occ.Start) >= 24*time.Hour
		var required []Slot
		if !fullDay {
			required = cal.Catalogue.Covering(minuteOfDay(occ.Start), minuteOfDay(occ.End))
		}

		anchor, err := ResolveAnchor(occ.Summary, occ.Constraint, res.Scheduled, cal)
		if err != nil {
			return res, err
		}

		startIdx := 0
		if a, ok := anchor.Get(); ok {
			if idx := cal.IndexOf(a); idx > 0 {
				startIdx = idx
			}
		}

		sel := -1
		for i := startIdx; i < len(cal.Days); i++ {
			if cal.Days[i].Closed {
				continue
			}
			if fullDay || cal.HasOpen(i, required) {
				sel = i
				break
			}
		}

		if sel < 0 {
			appLog.Warn("no available slot; dropping event",
				"summary", occ.Summary,
				"original_start", occ.Start.Format("2006-01-02 15:04"),
			)
			res.Dropped = append(res.Dropped, DroppedEvent{Summary: occ.Summary, OriginalStart: occ.Start})
			continue
		}

		day := cal.Days[sel]
		shift := daysBetween(dateOf(occ.Start), day.Date)
		newStart := occ.Start.AddDate(0, 0, shift)
		newEnd := occ.End.AddDate(0, 0, shift)

		if duration > 1 {
			span := growSpan(cal, sel, duration)
			endDate := day.Date.AddDate(0, 0, span)
			newEnd = time.Date(endDate.Year(), endDate.Month(), endDate.Day(),
				occ.End.Hour(), occ.End.Minute(), occ.End.Second(), occ.End.Nanosecond(),
				occ.End.Location())
		} else if !fullDay && !isOptional(occ.Constraint) {
			// Single time-slotted event: consume its sub-range so later
			// events cannot double-book it.
			cal.Consume(sel, required)
		}

		res.Scheduled = append(res.Scheduled, model.ScheduledEvent{
			Summary:     occ.Summary,
			Description: occ.Description,
			Location:    occ.Location,
			URL:         occ.URL,
			AllDay:      occ.AllDay,
			Start:       newStart,
			End:         newEnd,
		})
	}

	return res, nil
}

// growSpan widens a multi-day event's calendar span until it covers exactly
// `duration` working days: starting at duration days, every weekend or
// holiday falling inside the [start, start+span) window stretches the
// window, until a pass adds no further non-working days.
//
// The fixed point exists because span is monotonically non-decreasing and
// each step equals duration plus the closed-day count of a finite window.
func growSpan(cal *Calendar, startIdx, duration int) int {
	span := duration
	for {
		closed := 0
		for i := startIdx; i < startIdx+span; i++ {
			if cal.ClosedAt(i) {
				closed++
			}
		}
		next := duration + closed
		if next == span {
			return span
		}
		span = next
	}
}

// businessDuration extracts the declared working-day count from the event
// summary; absent or malformed means a single day.
func businessDuration(summary string) int {
	m := businessDaysRe.FindStringSubmatch(summary)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func isOptional(con *model.Constraint) bool {
	return con != nil && con.Optional
}
