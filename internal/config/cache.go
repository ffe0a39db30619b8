package config

import "time"

// CacheConfig controls the response cache in front of the occurrence
// calendar endpoints.  Occurrence expansion is pure and the underlying
// rule changes rarely, so short-TTL caching of the rendered JSON is
// safe.  Caching never applies to registration mutations.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings with defaults tuned for
// calendar reads.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 60*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
