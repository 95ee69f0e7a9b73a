package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/auth"
	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/forecast"
	"github.com/Veraticus/wealthease/internal/llm"
	"github.com/Veraticus/wealthease/internal/server"
)

// Default model settings.
const (
	DefaultAnalysisModel       = "gpt-3.5-turbo"
	DefaultChatModel           = "gpt-4o-mini"
	DefaultAnthropicModel      = "claude-3-5-haiku-latest"
	DefaultAnalysisMaxTokens   = 1500
	DefaultAnalysisTemperature = 0.7
	DefaultChatMaxTokens       = 500
	DefaultChatTemperature     = 0.3
	DefaultPort                = 3001
)

// LLM holds the settings for one kind of model call.
type LLM struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string

	Port          int
	AllowedOrigin string
	TrustProxy    bool
	Debug         bool

	JWTSecret string
	TokenTTL  time.Duration

	Analysis LLM
	Chat     LLM

	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit int

	Forecast forecast.Policy
}

// envBindings maps viper keys to the environment variables that may set them. The
// unprefixed names are the ones existing deployments already use.
var envBindings = map[string][]string{
	"database.path":         {"WEALTHEASE_DATABASE_PATH"},
	"server.port":           {"WEALTHEASE_PORT", "PORT"},
	"server.allowed_origin": {"WEALTHEASE_ALLOWED_ORIGIN"},
	"server.trust_proxy":    {"WEALTHEASE_TRUST_PROXY"},
	"server.debug":          {"WEALTHEASE_DEBUG"},
	"server.environment":    {"WEALTHEASE_ENV", "NODE_ENV"},
	"auth.jwt_secret":       {"WEALTHEASE_JWT_SECRET", "JWT_SECRET", "SESSION_SECRET"},
	"auth.token_ttl":        {"WEALTHEASE_TOKEN_TTL"},
	"llm.provider":          {"WEALTHEASE_LLM_PROVIDER"},
	"llm.openai_api_key":    {"WEALTHEASE_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"llm.anthropic_api_key": {"WEALTHEASE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.base_url":          {"WEALTHEASE_LLM_BASE_URL"},
	"llm.model":             {"WEALTHEASE_LLM_MODEL", "OPENAI_MODEL"},
	"llm.max_tokens":        {"WEALTHEASE_LLM_MAX_TOKENS", "OPENAI_MAX_TOKENS"},
	"llm.temperature":       {"WEALTHEASE_LLM_TEMPERATURE", "OPENAI_TEMPERATURE"},
	"llm.chat_model":        {"WEALTHEASE_LLM_CHAT_MODEL"},
	"llm.timeout":           {"WEALTHEASE_LLM_TIMEOUT"},
	"llm.cache_ttl":         {"WEALTHEASE_LLM_CACHE_TTL"},
	"llm.rate_limit":        {"WEALTHEASE_LLM_RATE_LIMIT"},
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("auth.token_ttl", auth.DefaultTTL)
	v.SetDefault("llm.provider", llm.ProviderOpenAI)
	v.SetDefault("llm.max_tokens", DefaultAnalysisMaxTokens)
	v.SetDefault("llm.temperature", DefaultAnalysisTemperature)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.cache_ttl", 10*time.Minute)
	v.SetDefault("llm.rate_limit", 60)

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// Load resolves the configuration from v. SetDefaults must have been called.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:  ExpandPath(v.GetString("database.path")),
		Port:          v.GetInt("server.port"),
		AllowedOrigin: v.GetString("server.allowed_origin"),
		TrustProxy:    v.GetBool("server.trust_proxy"),
		Debug:         v.GetBool("server.debug") || strings.EqualFold(v.GetString("server.environment"), "development"),
		JWTSecret:     v.GetString("auth.jwt_secret"),
		TokenTTL:      v.GetDuration("auth.token_ttl"),
		Timeout:       v.GetDuration("llm.timeout"),
		CacheTTL:      v.GetDuration("llm.cache_ttl"),
		RateLimit:     v.GetInt("llm.rate_limit"),
		Forecast:      forecast.DefaultPolicy(),
	}

	provider := strings.ToLower(v.GetString("llm.provider"))
	apiKey := v.GetString("llm.openai_api_key")
	analysisModel, chatModel := DefaultAnalysisModel, DefaultChatModel
	switch provider {
	case llm.ProviderOpenAI:
	case llm.ProviderAnthropic:
		apiKey = v.GetString("llm.anthropic_api_key")
		analysisModel, chatModel = DefaultAnthropicModel, DefaultAnthropicModel
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, provider)
	}
	if m := v.GetString("llm.model"); m != "" {
		analysisModel = m
	}
	if m := v.GetString("llm.chat_model"); m != "" {
		chatModel = m
	}

	cfg.Analysis = LLM{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       analysisModel,
		BaseURL:     v.GetString("llm.base_url"),
		MaxTokens:   v.GetInt("llm.max_tokens"),
		Temperature: v.GetFloat64("llm.temperature"),
	}
	cfg.Chat = LLM{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       chatModel,
		BaseURL:     cfg.Analysis.BaseURL,
		MaxTokens:   DefaultChatMaxTokens,
		Temperature: DefaultChatTemperature,
	}

	if v.IsSet("forecast") {
		if err := v.UnmarshalKey("forecast", &cfg.Forecast); err != nil {
			return nil, fmt.Errorf("%w: forecast policy: %v", common.ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", common.ErrInvalidConfig, c.Port)
	}
	if c.Analysis.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", common.ErrInvalidConfig)
	}
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f out of range", common.ErrInvalidConfig, c.Analysis.Temperature)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database path", common.ErrMissingConfig)
	}
	return nil
}

// AIConfigured reports whether an API key is available.
func (c *Config) AIConfigured() bool {
	return c.Analysis.APIKey != ""
}

// LLMConfig converts s into the provider configuration.
func (c *Config) LLMConfig(s LLM) llm.Config {
	return llm.Config{
		Provider:    s.Provider,
		APIKey:      s.APIKey,
		Model:       s.Model,
		BaseURL:     s.BaseURL,
		Timeout:     c.Timeout,
		CacheTTL:    c.CacheTTL,
		RateLimit:   c.RateLimit,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	}
}

// AnalysisConfig returns the generation settings for the analysis service.
func (c *Config) AnalysisConfig() analysis.Config {
	return analysis.Config{
		AnalysisMaxTokens:   c.Analysis.MaxTokens,
		AnalysisTemperature: c.Analysis.Temperature,
		ChatMaxTokens:       c.Chat.MaxTokens,
		ChatTemperature:     c.Chat.Temperature,
		RequestTimeout:      c.Timeout,
	}
}

// ServerConfig returns the HTTP server settings.
func (c *Config) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Addr = fmt.Sprintf(":%d", c.Port)
	cfg.AllowedOrigin = c.AllowedOrigin
	cfg.TrustProxy = c.TrustProxy
	cfg.Debug = c.Debug
	return cfg
}
