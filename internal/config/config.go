package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Slack     SlackConfig     `yaml:"slack" mapstructure:"slack"`
	Email     EmailConfig     `yaml:"email" mapstructure:"email"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Uptime    UptimeConfig    `yaml:"uptime" mapstructure:"uptime"`
	News      NewsConfig      `yaml:"news" mapstructure:"news"`
	Links     LinksConfig     `yaml:"links" mapstructure:"links"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local database.
type StoreConfig struct {
	Path             string `yaml:"path" mapstructure:"path"`
	SnapshotTTLHours int    `yaml:"snapshot_ttl_hours" mapstructure:"snapshot_ttl_hours"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	MaxPages int    `yaml:"max_pages" mapstructure:"max_pages"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SlackConfig holds the incoming-webhook target.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
	Channel    string `yaml:"channel" mapstructure:"channel"`
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// NotionConfig holds the Notion export target.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ScrapeConfig configures the scrape chain.
type ScrapeConfig struct {
	TimeoutSecs   int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent int  `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	LocalFallback bool `yaml:"local_fallback" mapstructure:"local_fallback"`
}

// CrawlConfig configures hosted crawls.
type CrawlConfig struct {
	MaxDepth    int `yaml:"max_depth" mapstructure:"max_depth"`
	Limit       int `yaml:"limit" mapstructure:"limit"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// UptimeConfig configures probing.
type UptimeConfig struct {
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DegradedMS      int64   `yaml:"degraded_ms" mapstructure:"degraded_ms"`
	RequestsPerSec  float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	RetryCount      int     `yaml:"retry_count" mapstructure:"retry_count"`
	SmartBodyMaxLen int     `yaml:"smart_body_max_len" mapstructure:"smart_body_max_len"`
}

// NewsConfig configures the topic digest.
type NewsConfig struct {
	MaxArticles int `yaml:"max_articles" mapstructure:"max_articles"`
}

// LinksConfig configures the dead-link checker.
type LinksConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxPages      int `yaml:"max_pages" mapstructure:"max_pages"`
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "sitescout.db")
	v.SetDefault("store.snapshot_ttl_hours", 720)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.max_pages", 50)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("email.port", 587)
	v.SetDefault("scrape.timeout_secs", 60)
	v.SetDefault("scrape.max_concurrent", 5)
	v.SetDefault("scrape.local_fallback", true)
	v.SetDefault("crawl.max_depth", 2)
	v.SetDefault("crawl.limit", 100)
	v.SetDefault("crawl.timeout_secs", 300)
	v.SetDefault("uptime.timeout_secs", 10)
	v.SetDefault("uptime.degraded_ms", 2000)
	v.SetDefault("uptime.requests_per_sec", 5)
	v.SetDefault("uptime.retry_count", 1)
	v.SetDefault("uptime.smart_body_max_len", 4000)
	v.SetDefault("news.max_articles", 5)
	v.SetDefault("links.max_concurrent", 10)
	v.SetDefault("links.max_pages", 50)
	v.SetDefault("links.timeout_secs", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
