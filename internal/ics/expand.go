package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "icalmove/internal/log"
	"icalmove/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// RecurrenceParseError reports a recurrence rule that could not be expanded.
// Whether it aborts the run or only skips the event is the caller's policy.
type RecurrenceParseError struct {
	UID     string
	Summary string
	Rule    string
	Err     error
}

func (e *RecurrenceParseError) Error() string {
	return fmt.Sprintf("ics: cannot expand RRULE %q of event %q: %v", e.Rule, e.Summary, e.Err)
}

func (e *RecurrenceParseError) Unwrap() error { return e.Err }

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// Location is the timezone to which all occurrences will be converted.
	// If nil, time.Local is used.
	Location *time.Location

	// RangeEnd bounds recurrence expansion: occurrences are generated from
	// each event's own start up to this instant. One-off events pass
	// through regardless of where they fall; the scheduler moves them.
	RangeEnd time.Time

	// MaxOccurrencesPerEvent is a safety cap to avoid extremely large
	// expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded occurrences plus per-event
// diagnostics.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
	// RuleErrors records events whose RRULE could not be parsed.
	RuleErrors []*RecurrenceParseError
}

// ExpandOccurrences turns parsed events into concrete occurrences. It
// handles:
//
//   - Single non-recurring events (passed through unchanged)
//   - RRULE-based recurrence, bounded by the rule itself or cfg.RangeEnd
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
//   - DST drift: occurrences whose timezone offset differs from the
//     event's DTSTART offset are re-anchored so wall-clock time-of-day is
//     preserved across the boundary
//
// Expansion is a pure function of its inputs: expanding the same events
// twice yields identical sequences.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.IsZero() {
		return result, errors.New("expand: RangeEnd is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	uidOrder := make([]string, 0, len(events))

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uidOrder = append(uidOrder, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	allOccurrences := make([]model.Occurrence, 0, len(events))

	// Iterate in input order so expansion stays deterministic.
	for _, uid := range uidOrder {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			occ, hitCap, err := expandEvent(ev, ov, cfg)
			if err != nil {
				var rerr *RecurrenceParseError
				if errors.As(err, &rerr) {
					result.RuleErrors = append(result.RuleErrors, rerr)
					continue
				}
				return result, err
			}
			if hitCap {
				truncated = true
			}
			allOccurrences = append(allOccurrences, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("expand: truncated occurrences for UID due to cap",
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	result.Occurrences = allOccurrences
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool, error) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false, nil
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	baseStart := ev.Start
	baseEnd := ev.End

	// Apply any override whose RECURRENCE-ID matches this start.
	if o, ok := findOverrideForStart(overrides, baseStart); ok {
		baseStart = o.Start
		baseEnd = o.End
		ev = o
	}

	return []model.Occurrence{makeOccurrence(ev, baseStart, baseEnd, cfg.Location)}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool, error) {
	out := make([]model.Occurrence, 0)
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil, false, &RecurrenceParseError{UID: ev.UID, Summary: ev.Summary, Rule: ev.RawRRule, Err: err}
	}

	// Anchor the rule at the event's DTSTART.
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)

	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(ev.Start, rangeEnd, true)

	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)

	for _, occStart := range occTimes {
		occStart = reanchorForDST(occStart, ev.Start)

		var occEnd time.Time
		if ev.AllDay {
			// All-day: [date 00:00, next day 00:00) in event's timezone.
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.AddDate(0, 0, 1)
		} else {
			occEnd = occStart.Add(dur)
		}

		baseStart := occStart
		baseEnd := occEnd
		baseEv := ev

		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseStart = o.Start
			baseEnd = o.End
			baseEv = o
		}

		out = append(out, makeOccurrence(baseEv, baseStart, baseEnd, cfg.Location))
	}

	return out, hitCap, nil
}

// reanchorForDST fixes occurrences that drifted across a DST boundary: a
// rule declared at 09:00 keeps firing at 09:00 wall clock on the far side
// of the transition. An occurrence whose time-of-day already matches the
// declared start is left alone; one that drifted is shifted back by the
// timezone-offset delta between it and the declared start.
func reanchorForDST(occ, dtstart time.Time) time.Time {
	if occ.Hour() == dtstart.Hour() && occ.Minute() == dtstart.Minute() {
		return occ
	}
	_, baseOff := dtstart.Zone()
	_, off := occ.Zone()
	if off == baseOff {
		return occ
	}
	return occ.Add(time.Duration(baseOff-off) * time.Second)
}

// findOverrideForStart finds an override event whose RECURRENCE-ID matches
// the given baseStart with exact time equality.
func findOverrideForStart(overrides []ParsedEvent, baseStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(baseStart.Location()).Equal(baseStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeOccurrence converts a (possibly overridden) ParsedEvent + specific
// start/end time into a model.Occurrence normalized into loc.
func makeOccurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Occurrence {
	startLocal := start.In(loc)
	endLocal := end.In(loc)

	occ := model.Occurrence{
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		URL:         ev.URL,
		AllDay:      ev.AllDay,
		Start:       startLocal,
		End:         endLocal,
	}

	// InstanceKey: start time in RFC3339 as a stable per-instance key.
	occ.InstanceKey = startLocal.Format(time.RFC3339Nano)

	return occ
}
