package ics

import (
	"fmt"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "icalmove/internal/log"
	"icalmove/internal/model"
)

// WriteFile serializes the scheduled events into an ICS file at path.
// It refuses to overwrite: if the destination already exists the write
// fails instead of clobbering a previous run's output.
func WriteFile(path string, events []model.ScheduledEvent, now time.Time) error {
	body := Serialize(events, now)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("ics: output file %s already exists", path)
		}
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(body); err != nil {
		return err
	}

	appLog.Info("ics write completed", "path", path, "event_count", len(events))
	return nil
}

// Serialize renders the scheduled events as an ICS calendar body.
// Each event gets a fresh UID; DTSTAMP/CREATED use the provided now so the
// output is reproducible in tests.
func Serialize(events []model.ScheduledEvent, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//icalmove//icalmove//EN")

	for _, ev := range events {
		ve := cal.AddEvent(uuid.NewString())
		ve.SetCreatedTime(now)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Summary)

		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		}

		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}
	}

	return cal.Serialize()
}
