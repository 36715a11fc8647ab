package schedule

import "time"

// Slot identifies one fixed-width time-of-day unit by its offset from
// midnight, in minutes (e.g. 570 = 09:00).
type Slot int

// Clock renders the slot as "HH:MM".
func (s Slot) Clock() string {
	return time.Date(0, 1, 1, int(s)/60, int(s)%60, 0, 0, time.UTC).Format("15:04")
}

// Catalogue is the fixed, ordered set of slots making up one working day.
type Catalogue struct {
	Slots []Slot
	// Width is the slot width in minutes.
	Width int
}

// NewCatalogue builds the daily catalogue from dayStart (inclusive) to
// dayEnd (exclusive), both minutes from midnight.
func NewCatalogue(dayStart, dayEnd, width int) Catalogue {
	cat := Catalogue{Width: width}
	for m := dayStart; m+width <= dayEnd; m += width {
		cat.Slots = append(cat.Slots, Slot(m))
	}
	return cat
}

// Covering returns the contiguous sub-range of the catalogue overlapped by
// the [startMin, endMin) time-of-day window. Events whose times fall
// outside the catalogue simply require fewer (possibly zero) slots.
func (c Catalogue) Covering(startMin, endMin int) []Slot {
	var out []Slot
	for _, s := range c.Slots {
		if int(s) < endMin && int(s)+c.Width > startMin {
			out = append(out, s)
		}
	}
	return out
}

// minuteOfDay is the wall-clock offset of t from its own midnight.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// slotInstant places a minutes-from-midnight offset onto a calendar day by
// date components, so the wall-clock time holds even when a DST transition
// makes the day shorter or longer than 24 hours.
func slotInstant(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}
