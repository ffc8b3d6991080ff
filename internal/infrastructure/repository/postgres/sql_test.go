package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/football-stats/internal/domain/player"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped 23505", func(t *testing.T) {
		err := fmt.Errorf("insert player: %w", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "42P01", Message: "relation players does not exist"}) {
			t.Fatalf("expected false for undefined table")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
}

func TestNullableString(t *testing.T) {
	if got := nullableString("  "); got.Valid {
		t.Fatalf("blank string must be null, got %+v", got)
	}
	if got := nullableString(" ENG "); !got.Valid || got.String != "ENG" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestPlayerModelRoundTrip(t *testing.T) {
	at := time.Date(2025, 8, 16, 6, 0, 0, 0, time.UTC)
	stats := player.Stats{
		Name:          "Alexander Isak",
		Team:          "Newcastle United",
		Nationality:   "Sweden",
		Age:           player.IntPtr(25),
		Goals:         23,
		ExpectedGoals: decimal.NewNullDecimal(decimal.RequireFromString("20.123456789012345678")),
	}

	model := playerModelFromStats(stats, at)
	if model.Position.Valid {
		t.Fatalf("empty position must be stored as NULL")
	}
	model.ID = 11

	got := model.toDomain()
	if diff := cmp.Diff(stats, got.Stats); diff != "" {
		t.Fatalf("stats changed through table model (-want +got):\n%s", diff)
	}
	if got.ID != 11 || !got.LastUpdated.Equal(at) {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
}

func TestPlayerSelectColumns(t *testing.T) {
	want := []string{
		"id", "name", "team", "nationality", "position", "age",
		"games", "minutes", "goals", "assists", "shots", "key_passes", "yellow_cards", "red_cards",
		"xg", "xa", "created_at", "last_updated",
	}
	if diff := cmp.Diff(want, playerSelectColumns); diff != "" {
		t.Fatalf("unexpected select columns (-want +got):\n%s", diff)
	}
}
