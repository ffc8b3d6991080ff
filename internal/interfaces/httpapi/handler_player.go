package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

type playerDTO struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Team            string           `json:"team"`
	Nationality     *string          `json:"nationality"`
	Position        *string          `json:"position"`
	Age             *int             `json:"age"`
	Games           int              `json:"games"`
	Minutes         int              `json:"minutes"`
	Goals           int              `json:"goals"`
	Assists         int              `json:"assists"`
	Shots           int              `json:"shots"`
	KeyPasses       int              `json:"key_passes"`
	YellowCards     int              `json:"yellow_cards"`
	RedCards        int              `json:"red_cards"`
	ExpectedGoals   *decimal.Decimal `json:"xg"`
	ExpectedAssists *decimal.Decimal `json:"xa"`
	CreatedAt       time.Time        `json:"created_at"`
	LastUpdated     time.Time        `json:"last_updated"`
}

type playerPageDTO struct {
	Players     []playerDTO `json:"players"`
	TotalItems  int         `json:"total_items"`
	TotalPages  int         `json:"total_pages"`
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ListPlayers")
	defer span.End()

	query := r.URL.Query()
	page, err := parseIntParam(query.Get("page"), "page", 1)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}
	perPage, err := parseIntParam(query.Get("per_page"), "per_page", h.playerService.DefaultPerPage())
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	result, err := h.playerService.ListPlayers(ctx, usecase.ListPlayersInput{
		Name:        query.Get("name"),
		Team:        query.Get("team"),
		Nationality: query.Get("nationality"),
		Page:        page,
		PerPage:     perPage,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "page", page, "per_page", perPage, "error", err)
		writeError(ctx, w, h.logger, err)
		return
	}

	items := make([]playerDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, playerToDTO(item))
	}

	writeSuccess(w, http.StatusOK, playerPageDTO{
		Players:     items,
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		PerPage:     result.PerPage,
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "GetPlayer")
	defer span.End()

	rawID := strings.TrimSpace(r.PathValue("playerID"))
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeError(ctx, w, h.logger, fmt.Errorf("%w: player id must be a positive integer", usecase.ErrInvalidInput))
		return
	}

	span.SetAttributes(attribute.Int64("player.id", id))

	item, err := h.playerService.GetPlayer(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", id, "error", err)
		writeError(ctx, w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, playerToDTO(item))
}

func parseIntParam(raw, name string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:              p.ID,
		Name:            p.Name,
		Team:            p.Team,
		Nationality:     optionalText(p.Nationality),
		Position:        optionalText(p.Position),
		Age:             p.Age,
		Games:           p.Games,
		Minutes:         p.Minutes,
		Goals:           p.Goals,
		Assists:         p.Assists,
		Shots:           p.Shots,
		KeyPasses:       p.KeyPasses,
		YellowCards:     p.YellowCards,
		RedCards:        p.RedCards,
		ExpectedGoals:   optionalDecimal(p.ExpectedGoals),
		ExpectedAssists: optionalDecimal(p.ExpectedAssists),
		CreatedAt:       p.CreatedAt,
		LastUpdated:     p.LastUpdated,
	}
}

func optionalText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalDecimal(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	return &v.Decimal
}
