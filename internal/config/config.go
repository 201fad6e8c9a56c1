package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
// It is built once in main and handed to every component that needs a piece of it.
type Config struct {
	Server       ServerConfig
	App          AppConfig
	Store        StoreConfig
	ActivityLog  ActivityLogConfig
	Cache        CacheConfig
	Auth         AuthConfig
	Notify       NotifyConfig
	AI           AIConfig
	VoiceNLP     VoiceNLPConfig
	CallProvider CallProviderConfig
	CallProxy    CallProxyConfig
	Calls        CallsConfig
	RateLimit    RateLimitConfig
	Dashboard    DashboardConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// PublicBaseURL is the externally reachable origin of this service, e.g.
	// "https://stock.example.com". The call provider posts back to it.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:""`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"jersey-stock-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path string `envconfig:"STORE_PATH" default:"./data/inventory.db"`

	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"5432"`
	Name     string `envconfig:"STORE_NAME" default:"inventory"`
	User     string `envconfig:"STORE_USER" default:"postgres"`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`

	// URL overrides the host/port settings for hosted databases that hand out a
	// single connection string. The callback receiver falls back to SUPABASE_DB_URL.
	URL         string `envconfig:"STORE_URL" default:""`
	FallbackURL string `envconfig:"SUPABASE_DB_URL" default:""`
}

// ActivityLogConfig selects where activity entries are written.
type ActivityLogConfig struct {
	Type            string `envconfig:"ACTIVITY_LOG_STORE" default:"sql"` // sql or mongodb
	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"inventory"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"activity_logs"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	Type        string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL         time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	SettingsTTL time.Duration `envconfig:"CACHE_SETTINGS_TTL" default:"30s"`
	KeyPrefix   string        `envconfig:"CACHE_KEY_PREFIX" default:"jersey"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AuthConfig controls access gating on the v1 API.
type AuthConfig struct {
	JWTSecret           string   `envconfig:"AUTH_JWT_SECRET" default:""`
	AllowedEmailDomains []string `envconfig:"AUTH_ALLOWED_EMAIL_DOMAINS" default:""`
	Audience            string   `envconfig:"AUTH_JWT_AUDIENCE" default:"authenticated"`
}

// NotifyConfig configures the low-stock webhook.
type NotifyConfig struct {
	WebhookURL string        `envconfig:"NOTIFY_WEBHOOK_URL" default:""`
	Timeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
}

// AIConfig configures the reorder email rewrite.
type AIConfig struct {
	APIKey      string        `envconfig:"OPENAI_API_KEY" default:""`
	BaseURL     string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	Model       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Temperature float64       `envconfig:"OPENAI_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
}

// VoiceNLPConfig configures the remote intent endpoint.
type VoiceNLPConfig struct {
	URL     string        `envconfig:"VOICE_NLP_URL" default:""`
	APIKey  string        `envconfig:"VOICE_NLP_API_KEY" default:""`
	Timeout time.Duration `envconfig:"VOICE_NLP_TIMEOUT" default:"10s"`
}

// CallProviderConfig holds the server-side provider credential used by the
// outbound call proxy. These values are never sent to clients.
type CallProviderConfig struct {
	URL     string        `envconfig:"VOICEFLOW_CALL_API_URL" default:""`
	APIKey  string        `envconfig:"VOICEFLOW_CALL_API_KEY" default:""`
	Timeout time.Duration `envconfig:"VOICEFLOW_CALL_TIMEOUT" default:"30s"`
}

// CallProxyConfig tells the orchestrator where the outbound call proxy lives.
// Empty means this process's own /api/start-call.
type CallProxyConfig struct {
	URL     string        `envconfig:"CALL_PROXY_URL" default:""`
	Timeout time.Duration `envconfig:"CALL_PROXY_TIMEOUT" default:"45s"`
}

// CallsConfig controls the stale call monitor.
type CallsConfig struct {
	StaleAfter    time.Duration `envconfig:"CALLS_STALE_AFTER" default:"30m"`
	CheckInterval time.Duration `envconfig:"CALLS_CHECK_INTERVAL" default:"5m"`
	ReapStale     bool          `envconfig:"CALLS_REAP_STALE" default:"false"`
}

// RateLimitConfig configures per-client request limits in limiter's
// "<limit>-<period>" notation, e.g. "300-M".
type RateLimitConfig struct {
	Enabled bool   `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Rate    string `envconfig:"RATE_LIMIT" default:"300-M"`
}

// DashboardConfig holds dashboard estimates.
type DashboardConfig struct {
	UnitPrice   string `envconfig:"DASHBOARD_UNIT_PRICE" default:"75.00"`
	RecentCalls int    `envconfig:"DASHBOARD_RECENT_CALLS" default:"5"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	if url := s.ConnectionURL(); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	if url := s.ConnectionURL(); url != "" {
		return url
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.User, s.Password, s.Host, s.Port, s.Name)
}

// ConnectionURL returns the explicit connection string, preferring the
// server-side name over the fallback.
func (s *StoreConfig) ConnectionURL() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FallbackURL
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Enabled reports whether bearer tokens are verified.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// Configured reports whether the provider credential and URL are both present.
func (c *CallProviderConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// Configured reports whether the remote intent endpoint can be used.
func (v *VoiceNLPConfig) Configured() bool {
	return v.URL != "" && v.APIKey != ""
}

// ProxyURL returns the outbound call proxy URL the orchestrator should use.
func (c *Config) ProxyURL() string {
	if c.CallProxy.URL != "" {
		return strings.TrimRight(c.CallProxy.URL, "/")
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api/start-call", host, c.Server.Port)
}

// CallbackUnreachable reports whether the provider would be handed a loopback
// callback URL: the proxy runs in-process and no public origin is set.
func (c *Config) CallbackUnreachable() bool {
	return c.CallProvider.Configured() && c.CallProxy.URL == "" && c.Server.PublicBaseURL == ""
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
