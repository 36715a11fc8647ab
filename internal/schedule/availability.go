package schedule

import (
	"time"

	"icalmove/internal/model"
)

// AvailabilityDay is one calendar day inside the target range. Open is
// mutated in place by the packer as slots are consumed; closed days start
// and remain without open slots.
type AvailabilityDay struct {
	// Date is the start-of-day instant in the run's timezone.
	Date time.Time
	// Closed is true for weekends and holidays.
	Closed bool
	// Week is the 1-indexed week number counted in 7-day strides from the
	// range start.
	Week int
	// Open holds the remaining open slots, ascending.
	Open []Slot
}

// Calendar is the availability arena: one entry per day of the target
// range, indexed by day offset from the range start. All cross-day lookups
// are index arithmetic, never pointer chasing.
type Calendar struct {
	Days      []AvailabilityDay
	Catalogue Catalogue

	start time.Time
	loc   *time.Location
}

// BuildCalendar constructs the availability arena for the inclusive range
// [rangeStart, rangeEnd] (start-of-day instants). A day is closed if it is
// a Saturday/Sunday or the holiday set contains its exact day instant.
func BuildCalendar(rangeStart, rangeEnd time.Time, holidays model.HolidaySet, cat Catalogue) (*Calendar, error) {
	if rangeEnd.Before(rangeStart) {
		return nil, ErrInvertedRange
	}

	cal := &Calendar{
		Catalogue: cat,
		start:     rangeStart,
		loc:       rangeStart.Location(),
	}

	n := daysBetween(rangeStart, rangeEnd) + 1
	cal.Days = make([]AvailabilityDay, n)

	for i := 0; i < n; i++ {
		date := rangeStart.AddDate(0, 0, i)
		closed := isWeekend(date) || holidays.Contains(date)

		day := AvailabilityDay{
			Date:   date,
			Closed: closed,
			Week:   i/7 + 1,
		}
		if !closed {
			day.Open = append([]Slot(nil), cat.Slots...)
		}
		cal.Days[i] = day
	}

	return cal, nil
}

// IndexOf maps a date to its arena index. The result may be negative or
// past the end for dates outside the range.
func (c *Calendar) IndexOf(date time.Time) int {
	return daysBetween(c.start, date)
}

// ClosedAt reports whether the day at index idx is non-working. Indexes
// past the arena fall back to weekday arithmetic: the holiday feed is only
// known inside the range, weekends are known everywhere.
func (c *Calendar) ClosedAt(idx int) bool {
	if idx >= 0 && idx < len(c.Days) {
		return c.Days[idx].Closed
	}
	return isWeekend(c.start.AddDate(0, 0, idx))
}

// Consume removes the given slots from the day at idx.
func (c *Calendar) Consume(idx int, slots []Slot) {
	day := &c.Days[idx]
	kept := day.Open[:0]
	for _, s := range day.Open {
		if !containsSlot(slots, s) {
			kept = append(kept, s)
		}
	}
	day.Open = kept
}

// HasOpen reports whether every slot in want is still open on day idx.
func (c *Calendar) HasOpen(idx int, want []Slot) bool {
	for _, s := range want {
		if !containsSlot(c.Days[idx].Open, s) {
			return false
		}
	}
	return true
}

func containsSlot(slots []Slot, s Slot) bool {
	for _, v := range slots {
		if v == s {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// daysBetween counts calendar days from a to b by date components, so DST
// transitions inside the span cannot skew the count.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}
