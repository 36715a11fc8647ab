package schedule

import (
	"icalmove/internal/model"
)

// Fillers emits one placeholder event per maximal run of contiguous open
// slots left on each working day after packing. A run spans from its first
// slot to one slot width past its last. Pure read of the calendar's final
// state; nothing is consumed.
func Fillers(cal *Calendar, label string) []model.ScheduledEvent {
	var out []model.ScheduledEvent

	for _, day := range cal.Days {
		if day.Closed {
			continue
		}
		for _, run := range contiguousRuns(day.Open, cal.Catalogue.Width) {
			first := run[0]
			last := run[len(run)-1]
			out = append(out, model.ScheduledEvent{
				Summary: label,
				Start:   slotInstant(day.Date, int(first)),
				End:     slotInstant(day.Date, int(last)+cal.Catalogue.Width),
				Filler:  true,
			})
		}
	}

	return out
}

// contiguousRuns splits an ascending slot list wherever adjacent slots are
// more than one width apart.
func contiguousRuns(slots []Slot, width int) [][]Slot {
	var runs [][]Slot
	var cur []Slot

	for _, s := range slots {
		if len(cur) > 0 && int(s) != int(cur[len(cur)-1])+width {
			runs = append(runs, cur)
			cur = nil
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}
