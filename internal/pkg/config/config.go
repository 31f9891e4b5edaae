package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/qr"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/retry"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	WebService       WebServiceConfig       `mapstructure:"web_service"`
	Database         DatabaseConfig         `mapstructure:"database"`
	RedisService     RedisServiceConfig     `mapstructure:"redis_service"`
	JWT              JWTConfig              `mapstructure:"jwt"`
	Log              LogConfig              `mapstructure:"log"`
	App              AppConfig              `mapstructure:"app"`
	AnalyticsService AnalyticsServiceConfig `mapstructure:"analytics_service"`
	LLM              LLMConfig              `mapstructure:"llm"`
	QR               qr.Config              `mapstructure:"qr"`
	RateLimit        RateLimitConfig        `mapstructure:"rate_limit"`
	Registry         RegistryConfig         `mapstructure:"registry"`
}

type WebServiceConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisServiceConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

type JWTConfig struct {
	SecretKey   string `mapstructure:"secret_key"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AppConfig holds the public-facing application settings
type AppConfig struct {
	// BaseURL prefixes the public verification links printed on certificates
	BaseURL       string       `mapstructure:"base_url"`
	DefaultUserID string       `mapstructure:"default_user_id"`
	Users         []model.User `mapstructure:"users"`
	MaxUploadMB   int          `mapstructure:"max_upload_mb"`
}

type AnalyticsServiceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   retry.Policy  `mapstructure:"retry"`
}

// LLMConfig configures the OpenAI-compatible narrator endpoint (Groq by default)
type LLMConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Retry          retry.Policy  `mapstructure:"retry"`
}

type RateLimitConfig struct {
	VerifyRPS   float64 `mapstructure:"verify_rps"`
	VerifyBurst int     `mapstructure:"verify_burst"`
}

type RegistryConfig struct {
	FarmersFile string `mapstructure:"farmers_file"`
}

// Load loads the configuration from a YAML file, applying defaults and
// environment overrides
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// LoadOrDefault behaves like Load but tolerates a missing file
func LoadOrDefault(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	if len(cfg.App.Users) == 0 {
		cfg.App.Users = []model.User{DefaultUser()}
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SARTHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names shared with the analytics service deployment
	_ = v.BindEnv("llm.api_key", "SARTHI_LLM_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("analytics_service.url", "SARTHI_ANALYTICS_SERVICE_URL", "PYTHON_SERVICE_URL")
	_ = v.BindEnv("app.base_url", "SARTHI_APP_BASE_URL", "NEXT_PUBLIC_APP_URL")

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("web_service.host", "0.0.0.0")
	v.SetDefault("web_service.port", 8080)

	v.SetDefault("database.path", "data/sarthi.db")

	v.SetDefault("redis_service.enabled", false)
	v.SetDefault("redis_service.host", "localhost")
	v.SetDefault("redis_service.port", 6379)
	v.SetDefault("redis_service.max_wait_time", "5m")

	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("app.base_url", "http://localhost:3000")
	v.SetDefault("app.default_user_id", DefaultUser().ID)
	v.SetDefault("app.max_upload_mb", 50)

	v.SetDefault("analytics_service.url", "http://localhost:8000")
	v.SetDefault("analytics_service.timeout", "2m")
	v.SetDefault("analytics_service.retry.max_attempts", 3)
	v.SetDefault("analytics_service.retry.backoff", "1s")
	v.SetDefault("analytics_service.retry.max_backoff", "10s")

	v.SetDefault("llm.api_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_concurrency", 4)
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.backoff", "1s")
	v.SetDefault("llm.retry.max_backoff", "8s")

	qrDefaults := qr.DefaultConfig()
	v.SetDefault("qr.size", qrDefaults.Size)
	v.SetDefault("qr.foreground", qrDefaults.Foreground)
	v.SetDefault("qr.background", qrDefaults.Background)
	v.SetDefault("qr.border", qrDefaults.Border)
	v.SetDefault("qr.recovery", qrDefaults.Recovery)

	v.SetDefault("rate_limit.verify_rps", 5)
	v.SetDefault("rate_limit.verify_burst", 20)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// DefaultUser is the demo account used when no users are configured
func DefaultUser() model.User {
	return model.User{
		ID:       "mock-user-001",
		Name:     "Demo User",
		Email:    "demo@sarthi.ai",
		PlanType: model.PlanPro,
	}
}

// GetWebServiceAddr returns the web service address
func (c *Config) GetWebServiceAddr() string {
	return fmt.Sprintf("%s:%d", c.WebService.Host, c.WebService.Port)
}

// GetRedisAddr returns the redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisService.Host, c.RedisService.Port)
}

// VerifyURL returns the public verification link for a report
func (c *Config) VerifyURL(reportID string) string {
	return c.App.BaseURL + "/verify/" + reportID
}
