package llm

import (
	"fmt"
	"strings"
)

// NewCompleter creates a provider client from cfg and layers the rate limiter and
// cache on top when they are configured.
func NewCompleter(cfg Config) (Completer, error) {
	var (
		base Completer
		err  error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		base, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		base, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		base = NewRateLimitedCompleter(base, cfg.RateLimit)
	}

	if cfg.CacheTTL > 0 {
		cached, err := NewCachedCompleter(base, cfg.CacheTTL, 0)
		if err != nil {
			return nil, err
		}
		base = cached
	}

	return base, nil
}
