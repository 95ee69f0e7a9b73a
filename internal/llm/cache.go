package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CachedCompleter memoizes successful completions for identical requests.
type CachedCompleter struct {
	next  Completer
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedCompleter wraps next with a ristretto cache bounded to maxBytes of response text.
func NewCachedCompleter(next Completer, ttl time.Duration, maxBytes int64) (*CachedCompleter, error) {
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion cache: %w", err)
	}

	return &CachedCompleter{next: next, cache: cache, ttl: ttl}, nil
}

// Complete implements Completer. Errors are never cached.
func (c *CachedCompleter) Complete(ctx context.Context, r Request) (string, error) {
	key := cacheKey(r)
	if v, ok := c.cache.Get(key); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	resp, err := c.next.Complete(ctx, r)
	if err != nil {
		return "", err
	}

	c.cache.SetWithTTL(key, resp, int64(len(resp))+1, c.ttl)
	c.cache.Wait()
	return resp, nil
}

// Close releases the cache's background goroutines.
func (c *CachedCompleter) Close() {
	c.cache.Close()
}

func cacheKey(r Request) string {
	h := sha256.New()
	h.Write([]byte(r.System))
	h.Write([]byte{0})
	h.Write([]byte(r.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(r.MaxTokens)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(r.Temperature, 'f', -1, 64)))
	return hex.EncodeToString(h.Sum(nil))
}
