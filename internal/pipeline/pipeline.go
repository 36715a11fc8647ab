package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"icalmove/internal/constraint"
	"icalmove/internal/ics"
	appLog "icalmove/internal/log"
	"icalmove/internal/model"
	"icalmove/internal/schedule"
)

// Options carries everything one rescheduling run needs. The caller
// validates dates (start <= end is checked again here, as it is the one
// configuration error the core refuses to work around).
type Options struct {
	InputPath  string
	OutputPath string

	// RangeStart / RangeEnd are inclusive start-of-day instants in Location.
	RangeStart time.Time
	RangeEnd   time.Time
	Location   *time.Location

	Catalogue schedule.Catalogue

	FillerLabel  string
	HolidayLabel string

	// FetchHolidays enables the remote holiday feed; with an empty URL the
	// run behaves as if holidays were disabled.
	FetchHolidays   bool
	HolidayURL      string
	HolidayCacheDir string

	// Now stamps the output calendar; nil means time.Now.
	Now func() time.Time
}

// Run executes one full rescheduling pass: read, decode, expand, build the
// availability calendar, pack, fill, materialize holidays, write.
func Run(ctx context.Context, opts Options) error {
	if opts.RangeEnd.Before(opts.RangeStart) {
		return schedule.ErrInvertedRange
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	body, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return fmt.Errorf("pipeline: reading input calendar: %w", err)
	}

	events, err := ics.ParseICS(ics.Source{ID: "input"}, body)
	if err != nil {
		return fmt.Errorf("pipeline: parsing input calendar: %w", err)
	}

	holidays := fetchHolidays(ctx, opts)

	// Expand up to the end of the last range day; occurrences beyond it
	// could never be placed anyway.
	exp, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
		Location: opts.Location,
		RangeEnd: opts.RangeEnd.AddDate(0, 0, 1),
	})
	if err != nil {
		return fmt.Errorf("pipeline: expanding recurrences: %w", err)
	}
	for _, rerr := range exp.RuleErrors {
		// Policy: a bad RRULE skips that event, the run continues.
		appLog.Warn("skipping event with unparseable recurrence rule",
			"summary", rerr.Summary, "rrule", rerr.Rule)
	}

	occs := exp.Occurrences
	for i := range occs {
		con, rest, derr := constraint.Decode(occs[i].Description)
		if derr != nil {
			appLog.Warn("ignoring malformed constraint front matter",
				"summary", occs[i].Summary, "err", derr)
			continue
		}
		occs[i].Constraint = con
		occs[i].Description = rest
	}

	cal, err := schedule.BuildCalendar(opts.RangeStart, opts.RangeEnd, holidays, opts.Catalogue)
	if err != nil {
		return err
	}

	res, err := schedule.Pack(occs, cal)
	if err != nil {
		return err
	}
	if len(res.Dropped) > 0 {
		appLog.Warn("events dropped for lack of available slots", "count", len(res.Dropped))
	}

	final := res.Scheduled
	final = append(final, schedule.Fillers(cal, opts.FillerLabel)...)
	final = append(final, schedule.MaterializeHolidays(holidays, opts.HolidayLabel)...)

	if err := ics.WriteFile(opts.OutputPath, final, now()); err != nil {
		return err
	}

	appLog.Info("run completed",
		"scheduled", len(res.Scheduled),
		"dropped", len(res.Dropped),
		"total_out", len(final),
	)
	return nil
}

// fetchHolidays pulls and parses the holiday feed. Any failure degrades to
// an empty set with a warning: holidays influence packing but a missing
// feed must not kill a reschedule.
func fetchHolidays(ctx context.Context, opts Options) model.HolidaySet {
	if !opts.FetchHolidays || opts.HolidayURL == "" {
		return nil
	}

	fetcher := ics.NewFetcher(opts.HolidayCacheDir)
	res, err := fetcher.FetchOne(ctx, ics.Source{ID: "holidays", URL: opts.HolidayURL})
	if err != nil {
		appLog.Warn("holiday feed unavailable; continuing without holidays", "err", err)
		return nil
	}

	events, err := ics.ParseICS(res.Source, res.Body)
	if err != nil {
		appLog.Warn("holiday feed unparseable; continuing without holidays", "err", err)
		return nil
	}

	set := ics.HolidaySet(events, opts.RangeStart, opts.RangeEnd, opts.Location)
	appLog.Info("holiday feed loaded", "holidays_in_range", len(set), "from_cache", res.FromCache)
	return set
}
