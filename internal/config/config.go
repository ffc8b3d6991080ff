package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/platform/resilience"
)

const (
	ArchiveNone     = "none"
	ArchivePostgres = "postgres"
	ArchiveS3       = "s3"
)

// Config stores runtime configuration shared by the api and ingest processes.
type Config struct {
	AppEnv          string
	ServiceName     string
	ServiceVersion  string
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        logging.Level
	LogConsole      bool

	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	CORSAllowedOrigins []string
	APIDefaultPerPage  int
	APIMaxPerPage      int

	League             string
	Season             string
	IngestCoercionMode player.CoercionMode
	IngestFetchTimeout time.Duration
	IngestSchedule     string
	IngestRunOnStart   bool

	UnderstatBaseURL               string
	UnderstatTimeout               time.Duration
	UnderstatUserAgent             string
	UnderstatCircuitEnabled        bool
	UnderstatCircuitFailureCount   int
	UnderstatCircuitOpenTimeout    time.Duration
	UnderstatCircuitHalfOpenMaxReq int

	RawArchiveBackend     string
	RawArchiveS3Bucket    string
	RawArchiveS3Prefix    string
	RawArchiveS3Region    string
	RawArchiveS3Endpoint  string
	RawArchiveS3AccessKey string
	RawArchiveS3SecretKey string
	RawArchiveS3PathStyle bool

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}
	logConsole, err := getEnvAsBool("APP_LOG_CONSOLE", appEnv == EnvDev)
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_CONSOLE: %w", err)
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "football-stats"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           httpAddr(),
		LogLevel:           logLevel,
		LogConsole:         logConsole,
		DBURL:              databaseURL(),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		League:             strings.TrimSpace(getEnv("LEAGUE", "epl")),
		Season:             strings.TrimSpace(getEnv("SEASON", "2025")),
		IngestSchedule:     strings.TrimSpace(getEnv("INGEST_SCHEDULE", "0 6 * * *")),
		UnderstatBaseURL:   strings.TrimSpace(getEnv("UNDERSTAT_BASE_URL", "https://understat.com")),
		UnderstatUserAgent: strings.TrimSpace(getEnv("UNDERSTAT_USER_AGENT", "football-stats-ingest/1.0")),
		RawArchiveS3Bucket: strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_BUCKET", "")),
		RawArchiveS3Prefix: strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_PREFIX", "understat")),
		RawArchiveS3Region: strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_REGION", "us-east-1")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	cfg.RawArchiveS3Endpoint = strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_ENDPOINT", ""))
	cfg.RawArchiveS3AccessKey = strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_ACCESS_KEY", ""))
	cfg.RawArchiveS3SecretKey = strings.TrimSpace(getEnv("RAW_ARCHIVE_S3_SECRET_KEY", ""))

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}

	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1 and DB_MAX_IDLE_CONNS >= 0")
	}
	if cfg.DBConnMaxLifetime, err = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}

	if cfg.APIDefaultPerPage, err = getEnvAsInt("API_DEFAULT_PER_PAGE", 10); err != nil {
		return Config{}, fmt.Errorf("parse API_DEFAULT_PER_PAGE: %w", err)
	}
	if cfg.APIMaxPerPage, err = getEnvAsInt("API_MAX_PER_PAGE", 100); err != nil {
		return Config{}, fmt.Errorf("parse API_MAX_PER_PAGE: %w", err)
	}
	if cfg.APIMaxPerPage < 1 {
		return Config{}, fmt.Errorf("API_MAX_PER_PAGE must be >= 1")
	}
	if cfg.APIDefaultPerPage < 1 || cfg.APIDefaultPerPage > cfg.APIMaxPerPage {
		return Config{}, fmt.Errorf("API_DEFAULT_PER_PAGE must be between 1 and API_MAX_PER_PAGE")
	}

	if cfg.IngestCoercionMode, err = player.ParseCoercionMode(getEnv("INGEST_COERCION_MODE", string(player.CoercionLenient))); err != nil {
		return Config{}, fmt.Errorf("parse INGEST_COERCION_MODE: %w", err)
	}
	if cfg.IngestFetchTimeout, err = getEnvAsDuration("INGEST_FETCH_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse INGEST_FETCH_TIMEOUT: %w", err)
	}
	if cfg.IngestRunOnStart, err = getEnvAsBool("INGEST_RUN_ON_START", true); err != nil {
		return Config{}, fmt.Errorf("parse INGEST_RUN_ON_START: %w", err)
	}

	if cfg.UnderstatTimeout, err = getEnvAsDuration("UNDERSTAT_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_TIMEOUT: %w", err)
	}
	if cfg.UnderstatCircuitEnabled, err = getEnvAsBool("UNDERSTAT_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.UnderstatCircuitFailureCount, err = getEnvAsInt("UNDERSTAT_CIRCUIT_FAILURE_COUNT", 3); err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.UnderstatCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("UNDERSTAT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.UnderstatCircuitOpenTimeout, err = getEnvAsDuration("UNDERSTAT_CIRCUIT_OPEN_TIMEOUT", 5*time.Minute); err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.UnderstatCircuitHalfOpenMaxReq, err = getEnvAsInt("UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.UnderstatCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.RawArchiveBackend, err = parseArchiveBackend(getEnv("RAW_ARCHIVE_BACKEND", ArchiveNone)); err != nil {
		return Config{}, err
	}
	if cfg.RawArchiveBackend == ArchiveS3 && cfg.RawArchiveS3Bucket == "" {
		return Config{}, fmt.Errorf("RAW_ARCHIVE_S3_BUCKET is required when RAW_ARCHIVE_BACKEND=s3")
	}
	if cfg.RawArchiveS3PathStyle, err = getEnvAsBool("RAW_ARCHIVE_S3_PATH_STYLE", cfg.RawArchiveS3Endpoint != ""); err != nil {
		return Config{}, fmt.Errorf("parse RAW_ARCHIVE_S3_PATH_STYLE: %w", err)
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	return cfg, nil
}

func (c Config) UnderstatCircuitBreaker() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.UnderstatCircuitEnabled,
		FailureThreshold: c.UnderstatCircuitFailureCount,
		OpenTimeout:      c.UnderstatCircuitOpenTimeout,
		HalfOpenMaxReq:   c.UnderstatCircuitHalfOpenMaxReq,
	}
}

// databaseURL prefers DATABASE_URL, then DB_URL, then composes one from the
// POSTGRES_* and DB_HOST/DB_PORT parts.
func databaseURL() string {
	for _, key := range []string{"DATABASE_URL", "DB_URL"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}

	return composeDBURL(
		getEnv("POSTGRES_USER", "admin"),
		os.Getenv("POSTGRES_PASSWORD"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("POSTGRES_DB", "football_db"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func composeDBURL(user, password, host, port, name, sslMode string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(strings.TrimSpace(host), strings.TrimSpace(port)),
		Path:   "/" + strings.TrimSpace(name),
	}
	if password != "" {
		u.User = url.UserPassword(strings.TrimSpace(user), password)
	} else {
		u.User = url.User(strings.TrimSpace(user))
	}
	if sslMode = strings.TrimSpace(sslMode); sslMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	}
	return u.String()
}

// httpAddr honors APP_HTTP_ADDR, then a bare PORT as set by most PaaS runtimes.
func httpAddr() string {
	if addr := strings.TrimSpace(os.Getenv("APP_HTTP_ADDR")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

func parseArchiveBackend(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ArchiveNone, ArchivePostgres, ArchiveS3:
		return value, nil
	default:
		return "", fmt.Errorf("invalid RAW_ARCHIVE_BACKEND %q: valid values are %s, %s, %s", v, ArchiveNone, ArchivePostgres, ArchiveS3)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
