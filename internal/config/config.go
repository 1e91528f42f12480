package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	CORS        CORSConfig
	Token       TokenConfig
	Firecrawl   FirecrawlConfig
	OpenAI      OpenAIConfig
	Enrichment  EnrichmentConfig
	Upload      UploadConfig
	Session     SessionConfig
	Credentials CredentialStoreConfig
	Redis       RedisConfig
	DB          DBConfig
	S3          S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TokenConfig holds client token signing settings.
type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// FirecrawlConfig holds settings for the Firecrawl scrape API.
type FirecrawlConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OpenAIConfig holds settings for the OpenAI Chat Completions API.
type OpenAIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	// FallbackModels are tried in order when DefaultModel is rate limited.
	FallbackModels []string `mapstructure:"fallback_models"`
	Endpoint       string   `mapstructure:"endpoint"`
	TimeoutSecs    int      `mapstructure:"timeout_secs"`
}

// EnrichmentConfig holds row enrichment settings.
type EnrichmentConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	ProbeURL        string `mapstructure:"probe_url"`
	MaxContentChars int    `mapstructure:"max_content_chars"`
	PresetsFile     string `mapstructure:"presets_file"`
	// RunTimeout caps one enrichment run. It is kept below the server's
	// write timeout so the response is still deliverable.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// UploadConfig holds spreadsheet upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxRows       int   `mapstructure:"max_rows"`
}

// SessionConfig selects the wizard session store.
type SessionConfig struct {
	Store string `mapstructure:"store"`
}

// CredentialStoreConfig selects where client-supplied API keys are kept.
type CredentialStoreConfig struct {
	Store string `mapstructure:"store"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
	// ConnMaxLifetime recycles pooled connections.
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// ConnectTimeout bounds the startup ping.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for export archives.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether export archiving is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load reads configuration from environment variables with the FIREENRICH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIREENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Token defaults
	v.SetDefault("token.secret", "change-me-in-production")
	v.SetDefault("token.expiry", "720h")
	v.SetDefault("token.issuer", "fireenrich")

	// Vendor defaults
	v.SetDefault("firecrawl.api_key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev")
	v.SetDefault("firecrawl.timeout_secs", 60)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.default_model", "gpt-4o")
	v.SetDefault("openai.fallback_models", "")
	v.SetDefault("openai.endpoint", "")
	v.SetDefault("openai.timeout_secs", 120)

	// Enrichment defaults
	v.SetDefault("enrichment.concurrency", 3)
	v.SetDefault("enrichment.probe_url", "https://example.com")
	v.SetDefault("enrichment.max_content_chars", 20000)
	v.SetDefault("enrichment.presets_file", "")
	v.SetDefault("enrichment.run_timeout", "9m")

	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.max_rows", 1000)

	v.SetDefault("session.store", "memory")
	v.SetDefault("credentials.store", "memory")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "fireenrich:credentials")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fireenrich")
	v.SetDefault("db.password", "fireenrich_secret")
	v.SetDefault("db.name", "fireenrich_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.connect_timeout", "10s")

	// S3 defaults (archiving disabled until a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "FIREENRICH_SERVER_PORT",
		"server.read_timeout":          "FIREENRICH_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "FIREENRICH_SERVER_WRITE_TIMEOUT",
		"server.environment":           "FIREENRICH_SERVER_ENVIRONMENT",
		"log.level":                    "FIREENRICH_LOG_LEVEL",
		"log.format":                   "FIREENRICH_LOG_FORMAT",
		"cors.allowed_origins":         "FIREENRICH_CORS_ALLOWED_ORIGINS",
		"token.secret":                 "FIREENRICH_TOKEN_SECRET",
		"token.expiry":                 "FIREENRICH_TOKEN_EXPIRY",
		"token.issuer":                 "FIREENRICH_TOKEN_ISSUER",
		"firecrawl.base_url":           "FIREENRICH_FIRECRAWL_BASE_URL",
		"firecrawl.timeout_secs":       "FIREENRICH_FIRECRAWL_TIMEOUT_SECS",
		"openai.default_model":         "FIREENRICH_OPENAI_DEFAULT_MODEL",
		"openai.fallback_models":       "FIREENRICH_OPENAI_FALLBACK_MODELS",
		"openai.endpoint":              "FIREENRICH_OPENAI_ENDPOINT",
		"openai.timeout_secs":          "FIREENRICH_OPENAI_TIMEOUT_SECS",
		"enrichment.concurrency":       "FIREENRICH_ENRICHMENT_CONCURRENCY",
		"enrichment.probe_url":         "FIREENRICH_ENRICHMENT_PROBE_URL",
		"enrichment.max_content_chars": "FIREENRICH_ENRICHMENT_MAX_CONTENT_CHARS",
		"enrichment.presets_file":      "FIREENRICH_ENRICHMENT_PRESETS_FILE",
		"enrichment.run_timeout":       "FIREENRICH_ENRICHMENT_RUN_TIMEOUT",
		"upload.max_file_size_mb":      "FIREENRICH_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_rows":              "FIREENRICH_UPLOAD_MAX_ROWS",
		"session.store":                "FIREENRICH_SESSION_STORE",
		"credentials.store":            "FIREENRICH_CREDENTIALS_STORE",
		"redis.addr":                   "FIREENRICH_REDIS_ADDR",
		"redis.password":               "FIREENRICH_REDIS_PASSWORD",
		"redis.db":                     "FIREENRICH_REDIS_DB",
		"redis.key_prefix":             "FIREENRICH_REDIS_KEY_PREFIX",
		"db.host":                      "FIREENRICH_DB_HOST",
		"db.port":                      "FIREENRICH_DB_PORT",
		"db.user":                      "FIREENRICH_DB_USER",
		"db.password":                  "FIREENRICH_DB_PASSWORD",
		"db.name":                      "FIREENRICH_DB_NAME",
		"db.sslmode":                   "FIREENRICH_DB_SSLMODE",
		"db.max_open":                  "FIREENRICH_DB_MAX_OPEN",
		"db.max_idle":                  "FIREENRICH_DB_MAX_IDLE",
		"db.conn_max_lifetime":         "FIREENRICH_DB_CONN_MAX_LIFETIME",
		"db.connect_timeout":           "FIREENRICH_DB_CONNECT_TIMEOUT",
		"s3.region":                    "FIREENRICH_S3_REGION",
		"s3.bucket":                    "FIREENRICH_S3_BUCKET",
		"s3.endpoint":                  "FIREENRICH_S3_ENDPOINT",
		"s3.access_key":                "FIREENRICH_S3_ACCESS_KEY",
		"s3.secret_key":                "FIREENRICH_S3_SECRET_KEY",
		"s3.presign_expiry":            "FIREENRICH_S3_PRESIGN_EXPIRY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// Vendor keys also accept the bare names deployments already set.
	_ = v.BindEnv("firecrawl.api_key", "FIREENRICH_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY")
	_ = v.BindEnv("openai.api_key", "FIREENRICH_OPENAI_API_KEY", "OPENAI_API_KEY")

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FIREENRICH_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIREENRICH_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Token = TokenConfig{
		Secret: v.GetString("token.secret"),
		Expiry: v.GetDuration("token.expiry"),
		Issuer: v.GetString("token.issuer"),
	}
	cfg.Firecrawl = FirecrawlConfig{
		APIKey:      strings.TrimSpace(v.GetString("firecrawl.api_key")),
		BaseURL:     strings.TrimRight(v.GetString("firecrawl.base_url"), "/"),
		TimeoutSecs: v.GetInt("firecrawl.timeout_secs"),
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:         strings.TrimSpace(v.GetString("openai.api_key")),
		DefaultModel:   v.GetString("openai.default_model"),
		FallbackModels: splitList(v.GetString("openai.fallback_models")),
		Endpoint:       v.GetString("openai.endpoint"),
		TimeoutSecs:    v.GetInt("openai.timeout_secs"),
	}
	cfg.Enrichment = EnrichmentConfig{
		Concurrency:     v.GetInt("enrichment.concurrency"),
		ProbeURL:        v.GetString("enrichment.probe_url"),
		MaxContentChars: v.GetInt("enrichment.max_content_chars"),
		PresetsFile:     v.GetString("enrichment.presets_file"),
		RunTimeout:      v.GetDuration("enrichment.run_timeout"),
	}
	if cfg.Enrichment.Concurrency <= 0 {
		cfg.Enrichment.Concurrency = 1
	}
	cfg.Enrichment.RunTimeout = clampRunTimeout(cfg.Enrichment.RunTimeout, cfg.Server.WriteTimeout)
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MaxRows:       v.GetInt("upload.max_rows"),
	}
	cfg.Session = SessionConfig{Store: strings.ToLower(v.GetString("session.store"))}
	cfg.Credentials = CredentialStoreConfig{Store: strings.ToLower(v.GetString("credentials.store"))}
	cfg.Redis = RedisConfig{
		Addr:      v.GetString("redis.addr"),
		Password:  v.GetString("redis.password"),
		DB:        v.GetInt("redis.db"),
		KeyPrefix: v.GetString("redis.key_prefix"),
	}
	cfg.DB = DBConfig{
		Host:            v.GetString("db.host"),
		Port:            v.GetInt("db.port"),
		User:            v.GetString("db.user"),
		Password:        v.GetString("db.password"),
		Name:            v.GetString("db.name"),
		SSLMode:         v.GetString("db.sslmode"),
		MaxOpen:         v.GetInt("db.max_open"),
		MaxIdle:         v.GetInt("db.max_idle"),
		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		ConnectTimeout:  v.GetDuration("db.connect_timeout"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// clampRunTimeout keeps an enrichment run inside 90% of the write timeout,
// leaving room to save results and write the response.
func clampRunTimeout(run, write time.Duration) time.Duration {
	if write <= 0 {
		return run
	}
	limit := write * 9 / 10
	if run <= 0 || run > limit {
		return limit
	}
	return run
}
