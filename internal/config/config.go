package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"btc-dashboard/internal/domain"

	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPPort       int
	SSHPort        int
	SSHHostKeyPath string
	APIKey         string

	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string

	TickInterval     time.Duration
	InitialPrice     float64
	DefaultTimeframe domain.Timeframe
	LeaderboardLimit int
	// ChartRateLimit is the per-client /api/chart budget per minute.
	ChartRateLimit int

	LogLevel  string
	LogFormat string

	TracingEnabled     bool
	TracingEndpoint    string
	TracingSampleRatio float64

	MCPTransport string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		TracingEndpoint:  strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, serving the built-in leaderboard")
	}
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)
	cfg.SSHPort = positiveInt("SSH_PORT", 23234)
	cfg.LeaderboardLimit = positiveInt("LEADERBOARD_LIMIT", 5)
	cfg.ChartRateLimit = nonNegativeInt("CHART_RATE_LIMIT", 60)
	cfg.TickInterval = time.Duration(positiveInt("TICK_INTERVAL_MS", int(domain.TickInterval/time.Millisecond))) * time.Millisecond

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	cfg.InitialPrice = domain.InitialPrice
	if v := strings.TrimSpace(os.Getenv("INITIAL_PRICE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.InitialPrice = n
		} else {
			log.Warn().Str("value", v).Msg("invalid INITIAL_PRICE, using default")
		}
	}

	cfg.DefaultTimeframe = domain.TimeframeDay
	if v := os.Getenv("DEFAULT_TIMEFRAME"); strings.TrimSpace(v) != "" {
		tf, err := domain.ParseTimeframe(v)
		if err != nil {
			log.Warn().Err(err).Msg("invalid DEFAULT_TIMEFRAME, using day")
		} else {
			cfg.DefaultTimeframe = tf
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")

	cfg.TracingSampleRatio = 1
	if v := strings.TrimSpace(os.Getenv("TRACING_SAMPLE_RATIO")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 1 {
			cfg.TracingSampleRatio = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Warn().Str("value", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid integer setting, using default")
		return def
	}
	return n
}

// nonNegativeInt is positiveInt that also accepts 0, for settings where zero
// switches the feature off.
func nonNegativeInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid integer setting, using default")
		return def
	}
	return n
}
