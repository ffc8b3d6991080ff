package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

var errMethodNotAllowed = errors.New("method not allowed")

const readOnlyMethods = "GET, HEAD"

type Handler struct {
	playerService *usecase.PlayerService
	logger        *logging.Logger
}

func NewHandler(playerService *usecase.PlayerService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerService: playerService,
		logger:        logger,
	}
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	_, span := startHandlerSpan(r.Context(), "Welcome")
	defer span.End()

	writeSuccess(w, http.StatusOK, map[string]string{"message": "Football Stats API"})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	_, span := startHandlerSpan(r.Context(), "Healthz")
	defer span.End()

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "NotFound")
	defer span.End()

	writeError(ctx, w, h.logger, fmt.Errorf("%w: endpoint %s", usecase.ErrNotFound, r.URL.Path))
}

// MethodNotAllowed answers any non-GET request on a read-only route.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "MethodNotAllowed")
	defer span.End()

	w.Header().Set("Allow", readOnlyMethods)
	writeError(ctx, w, h.logger, fmt.Errorf("%w: %s %s", errMethodNotAllowed, r.Method, r.URL.Path))
}
