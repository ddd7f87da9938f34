package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bageshwar/rankforge-sub000/internal/config"
	"github.com/bageshwar/rankforge-sub000/internal/ipc"
	"github.com/bageshwar/rankforge-sub000/internal/parser"
	"github.com/bageshwar/rankforge-sub000/internal/scoring"
	"github.com/bageshwar/rankforge-sub000/internal/store"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	var (
		logPath    = flag.String("log", "", "Path to CS2 server log file (JSON envelope per line)")
		configPath = flag.String("config", "", "Path to YAML config file (optional)")
		mode       = flag.String("mode", "database", "Output mode: 'json' or 'database'")
		outPath    = flag.String("out", "", "SQLite database path (overrides config, database mode)")
		outputPath = flag.String("output", "", "Path to NDJSON output file (required for json mode)")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintf(os.Stderr, "error: --log is required\n")
		os.Exit(exitFailure)
	}
	if *mode != "json" && *mode != "database" {
		fmt.Fprintf(os.Stderr, "error: --mode must be 'json' or 'database'\n")
		os.Exit(exitFailure)
	}
	if *mode == "json" && *outputPath == "" {
		fmt.Fprintf(os.Stderr, "error: --output is required when --mode=json\n")
		os.Exit(exitFailure)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitFailure)
	}
	if *outPath != "" {
		cfg.Storage.Backend = "sqlite"
		cfg.Storage.SQLitePath = *outPath
	}

	logger := setupLogger(cfg.Logging.Level)

	// Cancel the run on interrupt signals.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	output := ipc.NewOutput()

	if *mode == "json" {
		err = runJSON(ctx, *logPath, *outputPath, cfg, logger, output)
	} else {
		err = run(ctx, *logPath, cfg, logger, output)
	}
	if err != nil {
		output.Error(err.Error())
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}

// setupLogger installs the default slog logger. Application logs go to
// stderr: stdout is reserved for the NDJSON IPC stream.
func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// run parses a log file into the configured database backend and
// recomputes player stats for every game completed during the run.
func run(ctx context.Context, logPath string, cfg config.Config, logger *slog.Logger, output *ipc.Output) error {
	output.Log("info", fmt.Sprintf("Parsing server log: %s", logPath))

	lines, err := loadLines(logPath)
	if err != nil {
		return err
	}
	output.Log("info", fmt.Sprintf("Loaded %d lines", len(lines)))

	var db *sql.DB
	dialect := store.DialectSQLite
	switch cfg.Storage.Backend {
	case "postgres":
		dialect = store.DialectPostgres
		db, err = store.OpenPostgres(ctx, cfg.Storage.PostgresDSN)
	default:
		db, err = store.Open(ctx, cfg.Storage.SQLitePath)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	recorder := store.NewRecorder(db, dialect, logger)
	machine := parser.NewMachine(recorder, recorder, logger)
	machine.SetRoundEndLookahead(cfg.Parser.RoundEndLookahead)
	driver := parser.NewDriver(machine, recorder, logger)

	memLogger := NewMemoryLogger(output, 30, 200000)
	stats, err := driver.Run(ctx, lines, func(line, total, games int) {
		output.Progress(line, total, games)
		memLogger.LogIfNeeded(line)
	})
	if err != nil {
		return err
	}

	// Recompute per-player tallies for the games this run completed.
	reader := store.NewReader(db, dialect)
	scorer := scoring.NewScorer(reader, recorder)
	for _, gameTS := range recorder.ProcessedThisRun() {
		if err := scorer.ComputeStats(ctx, gameTS); err != nil {
			return err
		}
	}

	output.Done(len(lines), stats.EventsEmitted, stats.GamesProcessed)
	return nil
}

// runJSON parses a log file and streams every emitted event and
// accolade batch as NDJSON to the output file, with no database.
func runJSON(ctx context.Context, logPath, outputPath string, cfg config.Config, logger *slog.Logger, output *ipc.Output) error {
	output.Log("info", fmt.Sprintf("Parsing server log: %s", logPath))
	output.Log("info", fmt.Sprintf("Output NDJSON: %s", outputPath))

	lines, err := loadLines(logPath)
	if err != nil {
		return err
	}
	output.Log("info", fmt.Sprintf("Loaded %d lines", len(lines)))

	sink, err := newJSONSink(outputPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	machine := parser.NewMachine(nopGate{}, sink, logger)
	machine.SetRoundEndLookahead(cfg.Parser.RoundEndLookahead)
	driver := parser.NewDriver(machine, sink, logger)

	memLogger := NewMemoryLogger(output, 30, 200000)
	stats, err := driver.Run(ctx, lines, func(line, total, games int) {
		output.Progress(line, total, games)
		memLogger.LogIfNeeded(line)
	})
	if err != nil {
		return err
	}

	if err := sink.Close(); err != nil {
		return err
	}

	output.Done(len(lines), stats.EventsEmitted, stats.GamesProcessed)
	return nil
}

func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	return parser.ReadLines(f)
}
