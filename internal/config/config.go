package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/playforge/arcade-api/internal/platform/logging"
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
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	DBPath          string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBBusyTimeout   time.Duration
	DBConnIdleTime  time.Duration
	MigrationsDir   string
	MigrateAttempts int
	MigrateBackoff  time.Duration

	CORSAllowedOrigins []string
	LogLevel           logging.Level

	AvatarDir     string
	DefaultAvatar string
	UploadDir     string

	TelegramEnabled              bool
	TelegramBotToken             string
	TelegramAPIBaseURL           string
	TelegramTimeout              time.Duration
	TelegramCircuitFailureCount  int
	TelegramCircuitOpenTimeout   time.Duration
	TelegramCircuitHalfOpenMaxRq int
	BroadcastMaxWorkers          int

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if dbMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	dbBusyTimeout, err := time.ParseDuration(getEnv("DB_BUSY_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BUSY_TIMEOUT: %w", err)
	}
	if dbBusyTimeout <= 0 {
		return Config{}, fmt.Errorf("DB_BUSY_TIMEOUT must be > 0")
	}
	dbConnIdleTime, err := time.ParseDuration(getEnv("DB_CONN_IDLE_TIME", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_IDLE_TIME: %w", err)
	}

	migrateAttempts, err := getEnvAsInt("MIGRATE_MAX_ATTEMPTS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATE_MAX_ATTEMPTS: %w", err)
	}
	if migrateAttempts < 1 {
		return Config{}, fmt.Errorf("MIGRATE_MAX_ATTEMPTS must be >= 1")
	}
	migrateBackoff, err := time.ParseDuration(getEnv("MIGRATE_BACKOFF", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATE_BACKOFF: %w", err)
	}
	if migrateBackoff <= 0 {
		return Config{}, fmt.Errorf("MIGRATE_BACKOFF must be > 0")
	}

	telegramEnabled, err := strconv.ParseBool(getEnv("TELEGRAM_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_ENABLED: %w", err)
	}
	telegramToken := strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", ""))
	if telegramEnabled && telegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED=true")
	}
	telegramTimeout, err := time.ParseDuration(getEnv("TELEGRAM_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_TIMEOUT: %w", err)
	}
	if telegramTimeout <= 0 {
		return Config{}, fmt.Errorf("TELEGRAM_TIMEOUT must be > 0")
	}
	telegramCircuitFailureCount, err := getEnvAsInt("TELEGRAM_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if telegramCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("TELEGRAM_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	telegramCircuitOpenTimeout, err := time.ParseDuration(getEnv("TELEGRAM_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if telegramCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("TELEGRAM_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	telegramCircuitHalfOpenMaxReq, err := getEnvAsInt("TELEGRAM_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if telegramCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("TELEGRAM_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	broadcastMaxWorkers, err := getEnvAsInt("BROADCAST_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_MAX_WORKERS: %w", err)
	}
	if broadcastMaxWorkers < 1 {
		return Config{}, fmt.Errorf("BROADCAST_MAX_WORKERS must be >= 1")
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
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "arcade-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,

		DBPath:          getEnv("DB_PATH", "./data/arcade.db"),
		DBMaxOpenConns:  dbMaxOpenConns,
		DBMaxIdleConns:  dbMaxIdleConns,
		DBBusyTimeout:   dbBusyTimeout,
		DBConnIdleTime:  dbConnIdleTime,
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "./db/migrations"),
		MigrateAttempts: migrateAttempts,
		MigrateBackoff:  migrateBackoff,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),

		AvatarDir:     getEnv("AVATAR_DIR", "/avatars"),
		DefaultAvatar: getEnv("DEFAULT_AVATAR", "/avatars/default.png"),
		UploadDir:     getEnv("UPLOAD_DIR", "./data/uploads"),

		TelegramEnabled:              telegramEnabled,
		TelegramBotToken:             telegramToken,
		TelegramAPIBaseURL:           getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		TelegramTimeout:              telegramTimeout,
		TelegramCircuitFailureCount:  telegramCircuitFailureCount,
		TelegramCircuitOpenTimeout:   telegramCircuitOpenTimeout,
		TelegramCircuitHalfOpenMaxRq: telegramCircuitHalfOpenMaxReq,
		BroadcastMaxWorkers:          broadcastMaxWorkers,

		UptraceEnabled:         uptraceEnabled,
		UptraceDSN:             uptraceDSN,
		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, fmt.Errorf("DB_PATH cannot be empty")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
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
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
