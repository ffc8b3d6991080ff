package understat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/platform/resilience"
)

const (
	defaultBaseURL  = "https://understat.com"
	maxResponseSize = 16 << 20
)

var errUnderstatTransient = crerr.New("understat transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches league player tables from understat. It keeps a circuit
// breaker across calls, so a scheduler reusing one Client backs off a
// failing provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("understat circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		logger:     logger,
		breaker:    breaker,
	}
}

// FetchLeaguePlayers returns every player record for league and season in a
// single request. Unknown leagues fail with player.ErrUnknownLeague before
// any network call.
func (c *Client) FetchLeaguePlayers(ctx context.Context, league string, season int) (player.SourceBatch, error) {
	code, ok := LeagueCode(league)
	if !ok {
		return player.SourceBatch{}, fmt.Errorf("%w: %q", player.ErrUnknownLeague, league)
	}
	if season <= 0 {
		return player.SourceBatch{}, fmt.Errorf("season must be greater than zero, got %d", season)
	}

	fullURL := c.baseURL + "/getLeagueData/" + url.PathEscape(code) + "/" + strconv.Itoa(season)

	var raw []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		body, reqErr := c.executeRequest(ctx, fullURL)
		raw = body
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "understat circuit breaker rejected request", "state", c.breaker.State())
			return player.SourceBatch{}, fmt.Errorf("understat is temporarily unavailable: %w", err)
		}
		c.logger.WarnContext(ctx, "understat request failed", "url", fullURL, "error", err)
		return player.SourceBatch{}, err
	}

	records, err := decodePlayers(raw)
	if err != nil {
		return player.SourceBatch{}, fmt.Errorf("decode understat payload league=%s season=%d: %w", code, season, err)
	}

	c.logger.DebugContext(ctx, "understat league players fetched", "league", code, "season", season, "records", len(records), "bytes", len(raw))
	return player.SourceBatch{Records: records, Raw: raw}, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errUnderstatTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errUnderstatTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: provider status=%d body=%s", errUnderstatTransient, resp.StatusCode, abbreviateBody(buf.B))
		}
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
	}

	// buf goes back to the pool; the batch keeps its own copy.
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errUnderstatTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
