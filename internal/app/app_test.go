package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	if _, err := newHTTPServer(config.Config{}, memory.NewPlayerRepository(), logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewHTTPServer_ServesPlayers(t *testing.T) {
	cfg := config.Config{HTTPAddr: ":0", APIDefaultPerPage: 10, APIMaxPerPage: 100}
	srv, err := newHTTPServer(cfg, memory.NewPlayerRepository(), logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/players", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewArchiver_NoneIsNil(t *testing.T) {
	archiver, err := newArchiver(context.Background(), config.Config{RawArchiveBackend: config.ArchiveNone}, nil)
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	if archiver != nil {
		t.Fatalf("expected nil archiver, got %T", archiver)
	}
}

func TestNewArchiver_S3RequiresBucket(t *testing.T) {
	_, err := newArchiver(context.Background(), config.Config{RawArchiveBackend: config.ArchiveS3}, nil)
	if err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}
