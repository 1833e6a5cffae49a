package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedcal/internal/config"
	"schedcal/internal/gcal"
	icsrender "schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/schedule"
	"schedcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	eventsPath string
	outPath    string
	sync       bool
	token      string
	debug      bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("schedcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"calendar_name", conf.CalendarName,
		"repeat_weeks", conf.RepeatWeeks,
		"semester_end_date", conf.SemesterEndDate,
		"events_path", flags.eventsPath,
		"sync", flags.sync,
	)

	// Single-shot mode: an events file was given; export (or sync) and exit.
	if flags.eventsPath != "" {
		if err := runOnce(conf, flags); err != nil {
			appLog.Error("export failed", err)
			os.Exit(1)
		}
		return
	}

	// Server mode: serve the export/sync API until interrupted.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- web.StartServer(ctx, conf, gcal.NewSynchronizer())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	time.Sleep(100 * time.Millisecond)
	appLog.Info("schedcal exiting")
}

// runOnce reads the extractor's events JSON and either writes the ICS
// document or syncs the events to Google Calendar.
func runOnce(conf *config.Config, flags flagConfig) error {
	events, err := readEvents(flags.eventsPath)
	if err != nil {
		return err
	}

	req := conf.ExportRequest(events)
	now := time.Now()

	items, err := schedule.MaterializeRequest(req, now)
	if err != nil {
		return err
	}

	if flags.sync {
		if req.CalendarName == "" {
			req.CalendarName = gcal.DefaultCalendarName
		}
		result, err := gcal.NewSynchronizer().Sync(context.Background(), flags.token, req, items)
		if err != nil {
			return err
		}
		appLog.Info("sync complete", "calendar_id", result.CalendarID, "calendar_url", result.CalendarURL)
		return nil
	}

	doc := icsrender.Render(req, items, now)
	if flags.outPath == "" || flags.outPath == "-" {
		_, err = os.Stdout.WriteString(doc)
		return err
	}
	if err := os.WriteFile(flags.outPath, []byte(doc), 0o644); err != nil {
		return err
	}
	appLog.Info("ICS written", "path", flags.outPath, "event_count", len(items))
	return nil
}

// readEvents parses the extractor's JSON output: either a bare event array
// or the {"events": [...]} envelope the analyzer responds with.
func readEvents(path string) ([]model.ScheduleEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var events []model.ScheduleEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	var envelope struct {
		Events []model.ScheduleEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", path, err)
	}
	return envelope.Events, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/schedcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.eventsPath, "events", "", "Path to extracted events JSON; run a single export and exit")
	flag.StringVar(&cfg.outPath, "out", "-", "ICS output path ('-' for stdout)")
	flag.BoolVar(&cfg.sync, "sync", false, "Sync events to Google Calendar instead of writing an ICS file")
	flag.StringVar(&cfg.token, "token", "", "Google OAuth access token (required with -sync)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
