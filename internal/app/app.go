package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/football-stats/external/understat"
	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/infrastructure/archive"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const archiveSource = "understat"

// NewHTTPServer wires the read api over the player table.
func NewHTTPServer(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*http.Server, error) {
	return newHTTPServer(cfg, postgres.NewPlayerRepository(db), logger)
}

func newHTTPServer(cfg config.Config, repo player.Reader, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	playerSvc := usecase.NewPlayerService(repo, usecase.PlayerQueryConfig{
		DefaultPerPage: cfg.APIDefaultPerPage,
		MaxPerPage:     cfg.APIMaxPerPage,
	})

	handler := httpapi.NewHandler(playerSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// NewPlayerSyncService wires the understat source, the upsert engine and the
// configured raw payload archive.
func NewPlayerSyncService(ctx context.Context, cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*usecase.PlayerSyncService, error) {
	source := understat.NewClient(understat.ClientConfig{
		BaseURL:        cfg.UnderstatBaseURL,
		Timeout:        cfg.UnderstatTimeout,
		UserAgent:      cfg.UnderstatUserAgent,
		Logger:         logger,
		CircuitBreaker: cfg.UnderstatCircuitBreaker(),
	})

	archiver, err := newArchiver(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	engine := usecase.NewUpsertEngine(postgres.NewPlayerRepository(db), logger)
	return usecase.NewPlayerSyncService(source, engine, archiver, usecase.PlayerSyncConfig{
		FetchTimeout: cfg.IngestFetchTimeout,
		CoercionMode: cfg.IngestCoercionMode,
	}, logger), nil
}

func newArchiver(ctx context.Context, cfg config.Config, db *sqlx.DB) (player.Archiver, error) {
	switch cfg.RawArchiveBackend {
	case config.ArchivePostgres:
		return postgres.NewRawPayloadRepository(db, archiveSource), nil
	case config.ArchiveS3:
		s3Archiver, err := archive.NewS3Archiver(ctx, archive.S3Config{
			Bucket:    cfg.RawArchiveS3Bucket,
			Prefix:    cfg.RawArchiveS3Prefix,
			Region:    cfg.RawArchiveS3Region,
			Endpoint:  cfg.RawArchiveS3Endpoint,
			AccessKey: cfg.RawArchiveS3AccessKey,
			SecretKey: cfg.RawArchiveS3SecretKey,
			PathStyle: cfg.RawArchiveS3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 archive: %w", err)
		}
		return s3Archiver, nil
	default:
		return nil, nil
	}
}
