package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/football-stats/external/understat"
	"github.com/riskibarqy/football-stats/internal/app"
	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/observability"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const (
	exitOK                 = 0
	exitRunFailed          = 1
	exitConfiguration      = 2
	exitInvariantViolation = 3
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRunFailed)
	}
}

func newApp() *cli.App {
	runFlags := []cli.Flag{
		&cli.StringFlag{Name: "league", Usage: "league identifier (" + joinLeagues() + "); overrides LEAGUE"},
		&cli.StringFlag{Name: "season", Usage: "season start year; overrides SEASON"},
		&cli.StringFlag{Name: "coercion-mode", Usage: "lenient or strict; overrides INGEST_COERCION_MODE"},
	}

	return &cli.App{
		Name:  "ingest",
		Usage: "fetch league player stats from understat and upsert them into postgres",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run one sync and exit",
				Flags:  runFlags,
				Action: runOnce,
			},
			{
				Name:  "schedule",
				Usage: "run syncs on INGEST_SCHEDULE until interrupted",
				Flags: append(runFlags,
					&cli.StringFlag{Name: "cron", Usage: "cron expression; overrides INGEST_SCHEDULE"},
				),
				Action: runScheduled,
			},
		},
	}
}

type runtime struct {
	cfg     config.Config
	logger  *logging.Logger
	service *usecase.PlayerSyncService
	close   func()
}

func setup(c *cli.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cli.Exit(err, exitConfiguration)
	}
	if err := applyFlags(c, &cfg); err != nil {
		return nil, cli.Exit(err, exitConfiguration)
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
		Service: cfg.ServiceName + "-ingest",
	})
	logging.SetDefault(logger)

	shutdownObservability, err := observability.Setup(cfg, logger)
	if err != nil {
		return nil, cli.Exit(err, exitConfiguration)
	}

	db, err := app.OpenDB(c.Context, cfg, logger)
	if err != nil {
		_ = shutdownObservability(context.Background())
		return nil, cli.Exit(err, exitRunFailed)
	}

	service, err := app.NewPlayerSyncService(c.Context, cfg, db, logger)
	if err != nil {
		_ = db.Close()
		_ = shutdownObservability(context.Background())
		return nil, cli.Exit(err, exitConfiguration)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		service: service,
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownObservability(ctx); err != nil {
				logger.Warn("observability shutdown failed", "error", err)
			}
			_ = db.Close()
			_ = logger.Sync()
		},
	}, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("league") {
		cfg.League = c.String("league")
	}
	if c.IsSet("season") {
		cfg.Season = c.String("season")
	}
	if c.IsSet("coercion-mode") {
		mode, err := player.ParseCoercionMode(c.String("coercion-mode"))
		if err != nil {
			return fmt.Errorf("parse --coercion-mode: %w", err)
		}
		cfg.IngestCoercionMode = mode
	}
	if c.IsSet("cron") {
		cfg.IngestSchedule = c.String("cron")
	}
	return nil
}

func runOnce(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := rt.service.Run(ctx, usecase.SyncRequest{League: rt.cfg.League, Season: rt.cfg.Season})
	if code := exitCode(err); code != exitOK {
		return cli.Exit(err, code)
	}

	fmt.Fprintf(c.App.Writer, "league=%s season=%d outcome=%s fetched=%d normalized=%d rejected=%d applied=%d\n",
		report.League, report.Season, report.Outcome, report.Fetched, report.Normalized, report.Rejected, report.Applied)
	return nil
}

func runScheduled(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := usecase.SyncRequest{League: rt.cfg.League, Season: rt.cfg.Season}
	task := func() {
		if _, err := rt.service.Run(ctx, req); err != nil && exitCode(err) == exitConfiguration {
			rt.logger.Error("scheduled sync misconfigured, stopping scheduler", "error", err)
			stop()
		}
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(rt.logger),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("create scheduler: %w", err), exitConfiguration)
	}

	// Singleton mode keeps at most one run in flight; a tick that fires while
	// a run is still going is skipped to the next slot.
	job, err := scheduler.NewJob(
		gocron.CronJob(rt.cfg.IngestSchedule, false),
		gocron.NewTask(task),
		gocron.WithName("player-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("schedule %q: %w", rt.cfg.IngestSchedule, err), exitConfiguration)
	}

	if rt.cfg.IngestRunOnStart {
		task()
	}

	scheduler.Start()
	next, _ := job.NextRun()
	rt.logger.Info("ingest scheduler started", "cron", rt.cfg.IngestSchedule, "next_run", next, "league", req.League, "season", req.Season)

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		rt.logger.Warn("scheduler shutdown failed", "error", err)
	}
	rt.logger.Info("ingest scheduler stopped")
	return nil
}

// exitCode maps a sync error to the process exit status. NoData and
// NoValidData runs return a nil error and exit cleanly.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, usecase.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, usecase.ErrInvariantViolation):
		return exitInvariantViolation
	default:
		return exitRunFailed
	}
}

func joinLeagues() string {
	return strings.Join(understat.Leagues(), ", ")
}
