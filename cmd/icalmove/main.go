package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"icalmove/internal/config"
	appLog "icalmove/internal/log"
	"icalmove/internal/pipeline"
	"icalmove/internal/schedule"
)

// flagConfig holds CLI flag values layered on top of the config file.
type flagConfig struct {
	configPath   string
	outputPath   string
	fillerLabel  string
	holidayLabel string
	holidays     bool
	watch        bool
}

func main() {
	appLog.Info("icalmove starting", "version", "0.1.0")

	flags, input, startArg, endArg := parseFlags()

	conf, err := loadConfig(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid configuration", err)
		os.Exit(1)
	}

	rangeStart, rangeEnd, err := parseRange(startArg, endArg, loc)
	if err != nil {
		appLog.Error("invalid date arguments", err)
		os.Exit(1)
	}

	dayStart, dayEnd, err := conf.DayWindow()
	if err != nil {
		appLog.Error("invalid configuration", err)
		os.Exit(1)
	}

	opts := pipeline.Options{
		InputPath:       input,
		OutputPath:      outputPath(flags.outputPath, input),
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		Location:        loc,
		Catalogue:       schedule.NewCatalogue(dayStart, dayEnd, conf.SlotMinutes),
		FillerLabel:     conf.FillerLabel,
		HolidayLabel:    conf.HolidayLabel,
		FetchHolidays:   flags.holidays || conf.Holidays.Enabled,
		HolidayURL:      conf.Holidays.URL,
		HolidayCacheDir: conf.Holidays.CacheDir,
	}
	if flags.fillerLabel != "" {
		opts.FillerLabel = flags.fillerLabel
	}
	if flags.holidayLabel != "" {
		opts.HolidayLabel = flags.holidayLabel
	}

	appLog.Info("effective run parameters",
		"input", opts.InputPath,
		"output", opts.OutputPath,
		"range_start", rangeStart.Format("2006-01-02"),
		"range_end", rangeEnd.Format("2006-01-02"),
		"timezone", loc.String(),
		"slots_per_day", len(opts.Catalogue.Slots),
		"holidays", opts.FetchHolidays,
		"watch", flags.watch,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if !flags.watch {
		if err := pipeline.Run(ctx, opts); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		appLog.Info("icalmove exiting")
		return
	}

	// Watch mode: re-run the pipeline on the configured cron schedule so a
	// changing source calendar or holiday feed is picked up. Each run still
	// refuses to overwrite an existing output file.
	c := cron.New()
	_, err = c.AddFunc(conf.WatchCron, func() {
		if err := pipeline.Run(ctx, opts); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid watch schedule", err, "cron", conf.WatchCron)
		os.Exit(1)
	}

	if err := pipeline.Run(ctx, opts); err != nil {
		appLog.Error("initial run failed", err)
	}

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	appLog.Info("icalmove exiting")
}

func parseFlags() (flagConfig, string, string, string) {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to config file (optional; defaults apply without one)")
	flag.StringVar(&cfg.outputPath, "out", "", "Output ICS path (default: <input>-moved.ics)")
	flag.StringVar(&cfg.fillerLabel, "filler-label", "", "Title for generated filler events (overrides config)")
	flag.StringVar(&cfg.holidayLabel, "holiday-label", "", "Title for materialized holiday events (overrides config)")
	flag.BoolVar(&cfg.holidays, "holidays", false, "Fetch the configured holiday feed")
	flag.BoolVar(&cfg.watch, "watch", false, "Keep running and re-run on the configured cron schedule")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] <input.ics> <range-start> <range-end>\n\n"+
				"Reschedules the events of input.ics onto the inclusive date range\n"+
				"[range-start, range-end] (YYYY-MM-DD), skipping weekends and holidays.\n\n"+
				"Flags:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	return cfg, flag.Arg(0), flag.Arg(1), flag.Arg(2)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func parseRange(startArg, endArg string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", startArg, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range start %q: %w", startArg, err)
	}
	end, err := time.ParseInLocation("2006-01-02", endArg, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %q: %w", endArg, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s is before range start %s", endArg, startArg)
	}
	return start, end, nil
}

// outputPath mirrors the historical convention: calendar.ics produces
// calendar-moved.ics next to it.
func outputPath(explicit, input string) string {
	if explicit != "" {
		return explicit
	}
	if strings.HasSuffix(input, ".ics") {
		return strings.TrimSuffix(input, ".ics") + "-moved.ics"
	}
	return input + "-moved.ics"
}
