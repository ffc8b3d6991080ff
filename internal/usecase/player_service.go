package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/football-stats/internal/domain/player"
)

const (
	DefaultPerPage    = 10
	DefaultMaxPerPage = 100
)

type PlayerQueryConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

type ListPlayersInput struct {
	Name        string
	Team        string
	Nationality string
	// Page below 1 is read as 1. PerPage outside [1, MaxPerPage] is rejected;
	// callers fill in DefaultPerPage when the client omits it.
	Page    int
	PerPage int
}

type PlayerPage struct {
	Items      []player.Player
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
}

// PlayerService is the read side behind the HTTP API.
type PlayerService struct {
	repo      player.Reader
	cfg       PlayerQueryConfig
	validator *validator.Validate
}

func NewPlayerService(repo player.Reader, cfg PlayerQueryConfig) *PlayerService {
	if cfg.MaxPerPage <= 0 {
		cfg.MaxPerPage = DefaultMaxPerPage
	}
	if cfg.DefaultPerPage <= 0 || cfg.DefaultPerPage > cfg.MaxPerPage {
		cfg.DefaultPerPage = min(DefaultPerPage, cfg.MaxPerPage)
	}
	return &PlayerService{
		repo:      repo,
		cfg:       cfg,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *PlayerService) MaxPerPage() int {
	return s.cfg.MaxPerPage
}

func (s *PlayerService) DefaultPerPage() int {
	return s.cfg.DefaultPerPage
}

func (s *PlayerService) ListPlayers(ctx context.Context, input ListPlayersInput) (PlayerPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	page := max(input.Page, 1)
	perPage := input.PerPage
	rule := fmt.Sprintf("min=1,max=%d", s.cfg.MaxPerPage)
	if err := s.validator.VarCtx(ctx, perPage, rule); err != nil {
		return PlayerPage{}, fmt.Errorf("%w: per_page must be between 1 and %d", ErrInvalidInput, s.cfg.MaxPerPage)
	}

	filter := player.ListFilter{
		Name:        strings.TrimSpace(input.Name),
		Team:        strings.TrimSpace(input.Team),
		Nationality: strings.TrimSpace(input.Nationality),
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		recordSpanError(span, err)
		return PlayerPage{}, fmt.Errorf("count players: %w", err)
	}

	out := PlayerPage{
		Items:      []player.Player{},
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	if page > out.TotalPages {
		return out, nil
	}

	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		recordSpanError(span, err)
		return PlayerPage{}, fmt.Errorf("list players: %w", err)
	}
	out.Items = items
	return out, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayer")
	defer span.End()

	item, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return player.Player{}, fmt.Errorf("get player by id: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, id)
	}
	return item, nil
}
