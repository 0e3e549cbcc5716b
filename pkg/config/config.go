package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	FetchMode                  string `mapstructure:"FETCH_MODE"` // "http" or "chromedp"
	FetchUserAgent             string `mapstructure:"FETCH_USER_AGENT"`
	PageFetchTimeoutSeconds    int    `mapstructure:"PAGE_FETCH_TIMEOUT_SECONDS"`
	SitemapFetchTimeoutSeconds int    `mapstructure:"SITEMAP_FETCH_TIMEOUT_SECONDS"`
	FetchProxies               string `mapstructure:"FETCH_PROXIES"`
	FetchAllowPrivateNetworks  bool   `mapstructure:"FETCH_ALLOW_PRIVATE_NETWORKS"`

	LLMProvider   string `mapstructure:"LLM_PROVIDER"` // "gemini", "openai" or "none"
	LLMModel      string `mapstructure:"LLM_MODEL"`
	LLMTimeout    int    `mapstructure:"LLM_TIMEOUT"`
	LLMMaxTokens  int    `mapstructure:"LLM_MAX_TOKENS"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	GeminiBaseURL string `mapstructure:"GEMINI_BASE_URL"`

	LLMCacheDays    int  `mapstructure:"LLM_CACHE_DAYS"`
	ForceLLMPerPage bool `mapstructure:"FORCE_LLM_PER_PAGE"`

	CrawlMaxURLs          int `mapstructure:"CRAWL_MAX_URLS"`
	CrawlMaxPages         int `mapstructure:"CRAWL_MAX_PAGES"`
	CrawlFallbackMaxPages int `mapstructure:"CRAWL_FALLBACK_MAX_PAGES"`
	CrawlWorkers          int `mapstructure:"CRAWL_WORKERS"`
	CrawlTimeoutSeconds   int `mapstructure:"CRAWL_TIMEOUT_SECONDS"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine; production config comes from the environment.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "seo_audit")

	v.SetDefault("FETCH_MODE", "http")
	v.SetDefault("FETCH_USER_AGENT", "SEO-AI-Checker/1.0 (+https://example.com)")
	v.SetDefault("PAGE_FETCH_TIMEOUT_SECONDS", 15)
	v.SetDefault("SITEMAP_FETCH_TIMEOUT_SECONDS", 10)
	v.SetDefault("FETCH_PROXIES", "")
	v.SetDefault("FETCH_ALLOW_PRIVATE_NETWORKS", false)

	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("LLM_TIMEOUT", 20)
	v.SetDefault("LLM_MAX_TOKENS", 500)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/")

	v.SetDefault("LLM_CACHE_DAYS", 7)
	v.SetDefault("FORCE_LLM_PER_PAGE", false)

	v.SetDefault("CRAWL_MAX_URLS", 500)
	v.SetDefault("CRAWL_MAX_PAGES", 500)
	v.SetDefault("CRAWL_FALLBACK_MAX_PAGES", 50)
	v.SetDefault("CRAWL_WORKERS", 4)
	v.SetDefault("CRAWL_TIMEOUT_SECONDS", 600)
}

func (c *Config) PageFetchTimeout() time.Duration {
	return time.Duration(c.PageFetchTimeoutSeconds) * time.Second
}

func (c *Config) SitemapFetchTimeout() time.Duration {
	return time.Duration(c.SitemapFetchTimeoutSeconds) * time.Second
}

func (c *Config) LLMCallTimeout() time.Duration {
	return time.Duration(c.LLMTimeout) * time.Second
}

// SuggestionTTL is the age after which cached suggestions are regenerated.
func (c *Config) SuggestionTTL() time.Duration {
	return time.Duration(c.LLMCacheDays) * 24 * time.Hour
}

func (c *Config) CrawlTimeout() time.Duration {
	return time.Duration(c.CrawlTimeoutSeconds) * time.Second
}

// Proxies splits FETCH_PROXIES into a list, dropping blanks.
func (c *Config) Proxies() []string {
	var out []string
	for _, p := range strings.Split(c.FetchProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LLMModelName returns the configured model or the provider default.
func (c *Config) LLMModelName() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch strings.ToLower(c.LLMProvider) {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return ""
	}
}
