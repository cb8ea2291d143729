package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSENSE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSENSE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Venues ──
	setStr(&cfg.Polymarket.GammaHost, "ARBSENSE_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Kalshi.BaseURL, "ARBSENSE_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "ARBSENSE_KALSHI_API_KEY")

	// ── Database ──
	setStr(&cfg.Database.DSN, "ARBSENSE_DATABASE_DSN")
	setStr(&cfg.Database.Host, "ARBSENSE_DATABASE_HOST")
	setInt(&cfg.Database.Port, "ARBSENSE_DATABASE_PORT")
	setStr(&cfg.Database.Database, "ARBSENSE_DATABASE_NAME")
	setStr(&cfg.Database.User, "ARBSENSE_DATABASE_USER")
	setStr(&cfg.Database.Password, "ARBSENSE_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "ARBSENSE_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "ARBSENSE_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "ARBSENSE_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "ARBSENSE_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBSENSE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSENSE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSENSE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSENSE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBSENSE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBSENSE_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ARBSENSE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSENSE_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSENSE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBSENSE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSENSE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBSENSE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBSENSE_S3_FORCE_PATH_STYLE")

	// ── Scanner ──
	setDuration(&cfg.Scanner.Interval, "ARBSENSE_SCANNER_INTERVAL")
	setDuration(&cfg.Scanner.FetchTimeout, "ARBSENSE_SCANNER_FETCH_TIMEOUT")
	setInt(&cfg.Scanner.MatchPrefixLen, "ARBSENSE_SCANNER_MATCH_PREFIX_LEN")
	setFloat64(&cfg.Scanner.MinProfitPct, "ARBSENSE_SCANNER_MIN_PROFIT_PCT")
	setDuration(&cfg.Scanner.OpportunityTTL, "ARBSENSE_SCANNER_OPPORTUNITY_TTL")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "ARBSENSE_ARCHIVE_ENABLED")
	setDuration(&cfg.Archive.Interval, "ARBSENSE_ARCHIVE_INTERVAL")
	setInt(&cfg.Archive.RetentionDays, "ARBSENSE_ARCHIVE_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBSENSE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBSENSE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBSENSE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "ARBSENSE_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSENSE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBSENSE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBSENSE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBSENSE_NOTIFY_EVENTS")
	setDuration(&cfg.Notify.Timeout, "ARBSENSE_NOTIFY_TIMEOUT")
	setFloat64(&cfg.Notify.MinProfitPct, "ARBSENSE_NOTIFY_MIN_PROFIT_PCT")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSENSE_MODE")
	setStr(&cfg.LogLevel, "ARBSENSE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
