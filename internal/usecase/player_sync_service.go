package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

type SyncState string

const (
	SyncStateIdle        SyncState = "idle"
	SyncStateFetching    SyncState = "fetching"
	SyncStateNormalizing SyncState = "normalizing"
	SyncStateUpserting   SyncState = "upserting"
	SyncStateSucceeded   SyncState = "succeeded"
	SyncStateFailed      SyncState = "failed"
)

type SyncOutcome string

const (
	SyncOutcomeApplied     SyncOutcome = "applied"
	SyncOutcomeNoData      SyncOutcome = "no_data"
	SyncOutcomeNoValidData SyncOutcome = "no_valid_data"
	SyncOutcomeFailed      SyncOutcome = "failed"
)

type SyncRequest struct {
	League string
	Season string
}

type SyncReport struct {
	League     string
	Season     int
	State      SyncState
	Outcome    SyncOutcome
	Fetched    int
	Normalized int
	Rejected   int
	Applied    int
	Rejections []player.Rejection
	StartedAt  time.Time
	FinishedAt time.Time
}

type PlayerSyncConfig struct {
	// FetchTimeout bounds the upstream call only, never the upsert.
	FetchTimeout time.Duration
	CoercionMode player.CoercionMode
}

// PlayerSyncService runs one fetch, normalize, upsert pass. It keeps no state
// between runs; overlapping runs must be serialized by whoever schedules them.
type PlayerSyncService struct {
	source     player.Source
	engine     *UpsertEngine
	archiver   player.Archiver
	normalizer player.Normalizer
	cfg        PlayerSyncConfig
	logger     *logging.Logger
	now        func() time.Time
}

// NewPlayerSyncService accepts a nil archiver.
func NewPlayerSyncService(
	source player.Source,
	engine *UpsertEngine,
	archiver player.Archiver,
	cfg PlayerSyncConfig,
	logger *logging.Logger,
) *PlayerSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerSyncService{
		source:     source,
		engine:     engine,
		archiver:   archiver,
		normalizer: player.NewNormalizer(cfg.CoercionMode),
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PlayerSyncService) Run(ctx context.Context, req SyncRequest) (SyncReport, error) {
	ctx, span := usecaseTracer.Start(ctx, "usecase.PlayerSyncService.Run")
	defer span.End()

	report := SyncReport{State: SyncStateIdle, StartedAt: s.now()}
	logger := s.logger.With("league", req.League, "season", req.Season)

	fail := func(err error) (SyncReport, error) {
		report.State = SyncStateFailed
		report.Outcome = SyncOutcomeFailed
		report.FinishedAt = s.now()
		logger.ErrorContext(ctx, "player sync failed", "error", err, "state", report.State)
		recordSpanError(span, err)
		return report, err
	}

	league, season, err := parseSyncRequest(req)
	if err != nil {
		return fail(err)
	}
	report.League, report.Season = league, season
	span.SetAttributes(attribute.String("sync.league", league), attribute.Int("sync.season", season))

	s.transition(ctx, logger, &report, SyncStateFetching)
	batch, err := s.fetch(ctx, league, season)
	if err != nil {
		return fail(err)
	}
	report.Fetched = len(batch.Records)
	if report.Fetched == 0 {
		return s.finish(ctx, logger, report, SyncOutcomeNoData), nil
	}
	s.archive(ctx, logger, league, season, batch.Raw)

	s.transition(ctx, logger, &report, SyncStateNormalizing)
	rows, rejections := s.normalizer.NormalizeBatch(batch.Records)
	report.Normalized = len(rows)
	report.Rejected = len(rejections)
	report.Rejections = rejections
	for _, r := range rejections {
		logger.WarnContext(ctx, "record rejected",
			"index", r.Index,
			"player", r.Name,
			"reason", r.Reason(),
			"field", r.Err.Field,
			"value", r.Err.Value,
		)
	}
	if len(rows) == 0 {
		return s.finish(ctx, logger, report, SyncOutcomeNoValidData), nil
	}

	s.transition(ctx, logger, &report, SyncStateUpserting)
	applied, err := s.engine.Apply(ctx, rows)
	if err != nil {
		return fail(err)
	}
	report.Applied = applied
	return s.finish(ctx, logger, report, SyncOutcomeApplied), nil
}

func parseSyncRequest(req SyncRequest) (string, int, error) {
	league := strings.TrimSpace(req.League)
	if league == "" {
		return "", 0, fmt.Errorf("%w: league is required", ErrConfiguration)
	}
	season, err := strconv.Atoi(strings.TrimSpace(req.Season))
	if err != nil {
		return "", 0, fmt.Errorf("%w: season %q is not an integer", ErrConfiguration, req.Season)
	}
	if season <= 0 {
		return "", 0, fmt.Errorf("%w: season must be > 0, got %d", ErrConfiguration, season)
	}
	return league, season, nil
}

func (s *PlayerSyncService) fetch(ctx context.Context, league string, season int) (player.SourceBatch, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	batch, err := s.source.FetchLeaguePlayers(ctx, league, season)
	if errors.Is(err, player.ErrUnknownLeague) {
		return player.SourceBatch{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err != nil {
		return player.SourceBatch{}, fmt.Errorf("%w: league=%s season=%d: %w", ErrFetchFailure, league, season, err)
	}
	return batch, nil
}

// archive never fails the run; the upstream data is still applied.
func (s *PlayerSyncService) archive(ctx context.Context, logger *logging.Logger, league string, season int, raw []byte) {
	if s.archiver == nil || len(raw) == 0 {
		return
	}
	if err := s.archiver.Archive(ctx, league, season, raw); err != nil {
		logger.WarnContext(ctx, "archive raw upstream payload failed", "error", err, "bytes", len(raw))
	}
}

func (s *PlayerSyncService) transition(ctx context.Context, logger *logging.Logger, report *SyncReport, to SyncState) {
	logger.DebugContext(ctx, "player sync state change", "from", report.State, "to", to)
	report.State = to
}

func (s *PlayerSyncService) finish(ctx context.Context, logger *logging.Logger, report SyncReport, outcome SyncOutcome) SyncReport {
	s.transition(ctx, logger, &report, SyncStateSucceeded)
	report.Outcome = outcome
	report.FinishedAt = s.now()

	logger.InfoContext(ctx, "player sync finished",
		"outcome", outcome,
		"fetched", report.Fetched,
		"normalized", report.Normalized,
		"rejected", report.Rejected,
		"applied", report.Applied,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report
}
