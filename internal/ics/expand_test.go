package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestExpandOccurrences_SingleEventPassesThrough(t *testing.T) {
	// One-off events are never range-filtered: the whole point of the tool
	// is to move events that lie outside the target range into it.
	ev := ParsedEvent{
		UID:     "meeting-1",
		Summary: "Meeting",
		Start:   time.Date(2021, 8, 4, 9, 30, 0, 0, time.UTC),
		End:     time.Date(2021, 8, 4, 10, 30, 0, 0, time.UTC),
	}

	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 9, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)

	occ := res.Occurrences[0]
	assert.Equal(t, "meeting-1", occ.UID)
	assert.Equal(t, ev.Start, occ.Start)
	assert.Equal(t, ev.End, occ.End)
	assert.NotEmpty(t, occ.InstanceKey)
}

func TestExpandOccurrences_DailyRule(t *testing.T) {
	ev := ParsedEvent{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 8, 2, 9, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
	}

	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 5)

	for i, occ := range res.Occurrences {
		assert.Equal(t, ev.Start.AddDate(0, 0, i), occ.Start, "occurrence %d", i)
		// Duration is preserved from the base event.
		assert.Equal(t, 15*time.Minute, occ.End.Sub(occ.Start), "occurrence %d", i)
	}
}

func TestExpandOccurrences_BoundedByRangeEnd(t *testing.T) {
	ev := ParsedEvent{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 8, 2, 9, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY", // unbounded rule
	}

	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 8, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 4) // Aug 2..5
}

func TestExpandOccurrences_ExDateRemovesInstance(t *testing.T) {
	ev := ParsedEvent{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 8, 2, 9, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=3",
		ExDates:  []time.Time{time.Date(2021, 8, 3, 9, 0, 0, 0, time.UTC)},
	}

	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)
	assert.Equal(t, time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC), res.Occurrences[0].Start)
	assert.Equal(t, time.Date(2021, 8, 4, 9, 0, 0, 0, time.UTC), res.Occurrences[1].Start)
}

func TestExpandOccurrences_DSTKeepsWallClock(t *testing.T) {
	// CEST ends on 2021-10-31: a daily 09:00 rule crossing that boundary
	// must keep firing at 09:00 local.
	loc := berlin(t)
	ev := ParsedEvent{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2021, 10, 29, 9, 0, 0, 0, loc),
		End:      time.Date(2021, 10, 29, 10, 0, 0, 0, loc),
		RawRRule: "FREQ=DAILY;COUNT=4",
	}

	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		Location: loc,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 4)

	for i, occ := range res.Occurrences {
		local := occ.Start.In(loc)
		assert.Equal(t, 9, local.Hour(), "occurrence %d drifted to %s", i, local)
		assert.Equal(t, 0, local.Minute(), "occurrence %d drifted to %s", i, local)

		// The rule rolls from October into November.
		wantDate := ev.Start.AddDate(0, 0, i)
		assert.Equal(t, wantDate.Month(), local.Month(), "occurrence %d", i)
		assert.Equal(t, wantDate.Day(), local.Day(), "occurrence %d", i)
	}
}

func TestExpandOccurrences_Idempotent(t *testing.T) {
	events := []ParsedEvent{
		{
			UID:      "standup",
			Summary:  "Standup",
			Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2021, 8, 2, 9, 15, 0, 0, time.UTC),
			RawRRule: "FREQ=WEEKLY;COUNT=3",
		},
		{
			UID:     "meeting-1",
			Summary: "Meeting",
			Start:   time.Date(2021, 8, 4, 9, 30, 0, 0, time.UTC),
			End:     time.Date(2021, 8, 4, 10, 30, 0, 0, time.UTC),
		},
	}
	cfg := ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	first, err := ExpandOccurrences(events, cfg)
	require.NoError(t, err)
	second, err := ExpandOccurrences(events, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExpandOccurrences_BadRuleIsReportedNotFatal(t *testing.T) {
	events := []ParsedEvent{
		{
			UID:      "broken",
			Summary:  "Broken",
			Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2021, 8, 2, 10, 0, 0, 0, time.UTC),
			RawRRule: "FREQ=SOMETIMES",
		},
		{
			UID:     "meeting-1",
			Summary: "Meeting",
			Start:   time.Date(2021, 8, 4, 9, 30, 0, 0, time.UTC),
			End:     time.Date(2021, 8, 4, 10, 30, 0, 0, time.UTC),
		},
	}

	res, err := ExpandOccurrences(events, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, res.RuleErrors, 1)
	assert.Equal(t, "Broken", res.RuleErrors[0].Summary)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, "Meeting", res.Occurrences[0].Summary)
}

func TestExpandOccurrences_RecurrenceIDOverride(t *testing.T) {
	base := ParsedEvent{
		UID:      "standup",
		Summary:  "Standup",
		Start:    time.Date(2021, 8, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 8, 2, 9, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=2",
	}
	rid := time.Date(2021, 8, 3, 9, 0, 0, 0, time.UTC)
	override := ParsedEvent{
		UID:        "standup",
		Summary:    "Standup (moved)",
		Start:      time.Date(2021, 8, 3, 14, 0, 0, 0, time.UTC),
		End:        time.Date(2021, 8, 3, 14, 15, 0, 0, time.UTC),
		Recurrence: &rid,
		IsOverride: true,
	}

	res, err := ExpandOccurrences([]ParsedEvent{base, override}, ExpandConfig{
		Location: time.UTC,
		RangeEnd: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)

	assert.Equal(t, "Standup", res.Occurrences[0].Summary)
	assert.Equal(t, "Standup (moved)", res.Occurrences[1].Summary)
	assert.Equal(t, override.Start, res.Occurrences[1].Start)
}
