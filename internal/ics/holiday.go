package ics

import (
	"sort"
	"time"

	"icalmove/internal/model"
)

// HolidaySet converts full-day events from the holiday feed into a
// model.HolidaySet restricted to [rangeStart, rangeEnd] (inclusive,
// start-of-day instants in loc). Multi-day holidays contribute one entry
// per covered day. The result is sorted by date.
func HolidaySet(events []ParsedEvent, rangeStart, rangeEnd time.Time, loc *time.Location) model.HolidaySet {
	set := make(model.HolidaySet, 0)
	seen := make(map[int64]bool)

	for _, ev := range events {
		start := startOfDay(ev.Start.In(loc))
		end := ev.End.In(loc)
		if !end.After(ev.Start.In(loc)) {
			end = start.AddDate(0, 0, 1)
		}

		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			if d.Before(rangeStart) || d.After(rangeEnd) {
				continue
			}
			if seen[d.Unix()] {
				continue
			}
			seen[d.Unix()] = true
			set = append(set, model.Holiday{Date: d, Summary: ev.Summary})
		}
	}

	sort.Slice(set, func(i, j int) bool { return set[i].Date.Before(set[j].Date) })
	return set
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
