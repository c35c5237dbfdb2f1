package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/gaitprep/internal/app"
	"github.com/okian/gaitprep/internal/config"
	"github.com/okian/gaitprep/pkg/logger"
)

func main() {
	mode := flag.String("mode", "", "Stages to run: all, normalize or clean (overrides GAITPREP_MODE)")
	flag.Parse()

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, *mode)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Stderr.WriteString("gaitprep failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run loads configuration, wires the pipeline and executes one run.
func run(ctx context.Context, mode string) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if mode != "" {
		cfg.Mode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := service.FromConfig(ctx, cfg, service.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Error(ctx, "close catalog", logger.Error(cerr))
		}
	}()

	summary, err := svc.Run(ctx, cfg.Mode)
	if err != nil {
		return err
	}
	log.Info(ctx, "done",
		logger.String("run_id", summary.RunID),
		logger.Int("rows_in", summary.RowsIn),
		logger.Int("rows_out", summary.RowsOut),
		logger.Duration("elapsed", summary.Duration),
	)
	return nil
}
