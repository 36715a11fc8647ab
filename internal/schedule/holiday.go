package schedule

import (
	"icalmove/internal/model"
)

// MaterializeHolidays emits one 09:00–18:00 event per holiday in the set.
// label overrides each holiday's own summary when non-empty. Runs after the
// packer and filler; the output is appended to the final list last.
func MaterializeHolidays(set model.HolidaySet, label string) []model.ScheduledEvent {
	out := make([]model.ScheduledEvent, 0, len(set))

	for _, h := range set {
		summary := h.Summary
		if label != "" {
			summary = label
		}
		out = append(out, model.ScheduledEvent{
			Summary: summary,
			Start:   slotInstant(h.Date, 9*60),
			End:     slotInstant(h.Date, 18*60),
			Holiday: true,
		})
	}

	return out
}
