package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	DBURL          string

	// CutoffWindow is the prediction submission deadline relative to kickoff.
	CutoffWindow time.Duration

	SettlementWorkers int
	BulkIngestWorkers int
	SettlementSLA     time.Duration

	CacheEnabled bool
	CacheTTL     time.Duration

	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration

	InternalJobToken string

	EventFeedEnabled               bool
	EventFeedTargetURL             string
	EventFeedAuthToken             string
	EventFeedTimeout               time.Duration
	EventFeedCircuitFailureCount   int
	EventFeedCircuitOpenTimeout    time.Duration
	EventFeedCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cutoffWindow, err := time.ParseDuration(getEnv("PREDICTION_CUTOFF_WINDOW", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTION_CUTOFF_WINDOW: %w", err)
	}
	if cutoffWindow < 0 {
		return Config{}, fmt.Errorf("PREDICTION_CUTOFF_WINDOW must be >= 0")
	}

	settlementWorkers, err := getEnvAsInt("SETTLEMENT_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_WORKERS: %w", err)
	}
	if settlementWorkers <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_WORKERS must be > 0")
	}

	bulkIngestWorkers, err := getEnvAsInt("BULK_INGEST_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse BULK_INGEST_WORKERS: %w", err)
	}
	if bulkIngestWorkers <= 0 {
		return Config{}, fmt.Errorf("BULK_INGEST_WORKERS must be > 0")
	}

	settlementSLA, err := time.ParseDuration(getEnv("SETTLEMENT_SLA", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_SLA: %w", err)
	}
	if settlementSLA <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_SLA must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	eventFeedEnabled, err := strconv.ParseBool(getEnv("EVENT_FEED_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_FEED_ENABLED: %w", err)
	}
	eventFeedTargetURL := strings.TrimSpace(getEnv("EVENT_FEED_TARGET_URL", ""))
	if eventFeedEnabled && eventFeedTargetURL == "" {
		return Config{}, fmt.Errorf("EVENT_FEED_TARGET_URL is required when EVENT_FEED_ENABLED=true")
	}
	eventFeedTimeout, err := time.ParseDuration(getEnv("EVENT_FEED_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_FEED_TIMEOUT: %w", err)
	}
	eventFeedCircuitFailureCount, err := getEnvAsInt("EVENT_FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	eventFeedCircuitOpenTimeout, err := time.ParseDuration(getEnv("EVENT_FEED_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_FEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	eventFeedCircuitHalfOpenMaxReq, err := getEnvAsInt("EVENT_FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "prediction-league"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBURL:          strings.TrimSpace(getEnv("DB_URL", "")),

		CutoffWindow: cutoffWindow,

		SettlementWorkers: settlementWorkers,
		BulkIngestWorkers: bulkIngestWorkers,
		SettlementSLA:     settlementSLA,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		EventFeedEnabled:               eventFeedEnabled,
		EventFeedTargetURL:             eventFeedTargetURL,
		EventFeedAuthToken:             strings.TrimSpace(getEnv("EVENT_FEED_AUTH_TOKEN", "")),
		EventFeedTimeout:               eventFeedTimeout,
		EventFeedCircuitFailureCount:   eventFeedCircuitFailureCount,
		EventFeedCircuitOpenTimeout:    eventFeedCircuitOpenTimeout,
		EventFeedCircuitHalfOpenMaxReq: eventFeedCircuitHalfOpenMaxReq,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "prediction-league"),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", "localhost:6060"),

		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP timeouts must be > 0")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
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

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		candidate := strings.TrimSpace(part)
		if candidate == "" {
			continue
		}
		out = append(out, candidate)
	}
	return out
}
