package main

import (
	"errors"
	"flag"
	"fmt"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{name: "configuration", err: fmt.Errorf("%w: season %q is not an integer", usecase.ErrConfiguration, "abc"), want: exitConfiguration},
		{name: "fetch", err: fmt.Errorf("%w: timeout", usecase.ErrFetchFailure), want: exitRunFailed},
		{name: "storage", err: fmt.Errorf("%w: conn reset", usecase.ErrStorageFailure), want: exitRunFailed},
		{name: "invariant", err: fmt.Errorf("%w: empty batch", usecase.ErrInvariantViolation), want: exitInvariantViolation},
		{name: "unknown", err: errors.New("boom"), want: exitRunFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	app := newApp()
	set := flag.NewFlagSet("run", flag.ContinueOnError)
	for _, f := range app.Commands[1].Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse([]string{"--league", "la_liga", "--season", "2023", "--coercion-mode", "strict", "--cron", "*/5 * * * *"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Config{League: "epl", Season: "2025", IngestCoercionMode: player.CoercionLenient, IngestSchedule: "0 6 * * *"}
	if err := applyFlags(cli.NewContext(app, set, nil), &cfg); err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.League != "la_liga" || cfg.Season != "2023" || cfg.IngestCoercionMode != player.CoercionStrict || cfg.IngestSchedule != "*/5 * * * *" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestApplyFlags_RejectsUnknownCoercionMode(t *testing.T) {
	app := newApp()
	set := flag.NewFlagSet("run", flag.ContinueOnError)
	for _, f := range app.Commands[0].Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse([]string{"--coercion-mode", "loose"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Config{}
	if err := applyFlags(cli.NewContext(app, set, nil), &cfg); err == nil {
		t.Fatalf("expected error for unknown coercion mode")
	}
}
