package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:meeting-1
DTSTAMP:20210801T120000Z
DTSTART:20210804T093000Z
DTEND:20210804T103000Z
SUMMARY:Kickoff
DESCRIPTION:---\nafter: Planning\n---\nBring slides\, please
LOCATION:Room 2
URL:https://example.com/kickoff
END:VEVENT
BEGIN:VEVENT
UID:standup
DTSTAMP:20210801T120000Z
DTSTART:20210802T090000Z
DTEND:20210802T091500Z
SUMMARY:Standup
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20210803T090000Z
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20210801T120000Z
DTSTART:20210804T090000Z
SUMMARY:No UID, skipped
END:VEVENT
END:VCALENDAR
`

func TestParseICS(t *testing.T) {
	body := strings.ReplaceAll(sampleICS, "\n", "\r\n")

	events, err := ParseICS(Source{ID: "test"}, []byte(body))
	require.NoError(t, err)
	// The UID-less VEVENT is skipped, not fatal.
	require.Len(t, events, 2)

	kickoff := events[0]
	assert.Equal(t, "meeting-1", kickoff.UID)
	assert.Equal(t, "Kickoff", kickoff.Summary)
	assert.Equal(t, "Room 2", kickoff.Location)
	assert.Equal(t, "https://example.com/kickoff", kickoff.URL)
	assert.Equal(t, time.Date(2021, 8, 4, 9, 30, 0, 0, time.UTC), kickoff.Start.UTC())
	assert.Equal(t, time.Date(2021, 8, 4, 10, 30, 0, 0, time.UTC), kickoff.End.UTC())
	assert.False(t, kickoff.AllDay)
	assert.Empty(t, kickoff.RawRRule)

	// TEXT escapes are undone so front matter arrives as real lines.
	assert.Equal(t, "---\nafter: Planning\n---\nBring slides, please", kickoff.Description)

	standup := events[1]
	assert.Equal(t, "FREQ=DAILY;COUNT=5", standup.RawRRule)
	require.Len(t, standup.ExDates, 1)
	assert.Equal(t, time.Date(2021, 8, 3, 9, 0, 0, 0, time.UTC), standup.ExDates[0].UTC())
}

func TestParseICS_AllDay(t *testing.T) {
	raw := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:holiday-1
DTSTAMP:20210801T120000Z
DTSTART;VALUE=DATE:20210825
DTEND;VALUE=DATE:20210826
SUMMARY:Founders Day
END:VEVENT
END:VCALENDAR
`
	body := strings.ReplaceAll(raw, "\n", "\r\n")

	events, err := ParseICS(Source{ID: "test"}, []byte(body))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
}

func TestParseICS_MissingDTEnd(t *testing.T) {
	raw := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:open-ended
DTSTAMP:20210801T120000Z
DTSTART:20210804T093000Z
SUMMARY:Reminder
END:VEVENT
END:VCALENDAR
`
	body := strings.ReplaceAll(raw, "\n", "\r\n")

	events, err := ParseICS(Source{ID: "test"}, []byte(body))
	require.NoError(t, err)
	require.Len(t, events, 1)

	// No DTEND: the end falls back to the start instead of a zero instant.
	assert.Equal(t, time.Date(2021, 8, 4, 9, 30, 0, 0, time.UTC), events[0].Start.UTC())
	assert.Equal(t, events[0].Start, events[0].End)
}

func TestParseICS_Empty(t *testing.T) {
	_, err := ParseICS(Source{ID: "test"}, nil)
	assert.Error(t, err)
}

func TestUnescapeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\Nb`, "a\nb"},
		{`comma\, semi\; slash\\`, `comma, semi; slash\`},
		{`keep \t unknown`, `keep \t unknown`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unescapeText(tt.in), "input %q", tt.in)
	}
}
