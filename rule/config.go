package rule

import "time"

// EngineConfig holds tuning options for the recurrence engine.
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool
	Cache        CacheConfig

	// MaxOccurrences caps every enumeration, including explicit limits
	// passed by callers. Unbounded rules are always cut off here.
	MaxOccurrences int
}

// DefaultEngineConfig provides sensible defaults for interactive use.
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:   true,
	Cache:          DefaultCacheConfig,
	MaxOccurrences: 1000,
}

// LowMemoryConfig is tuned for memory-constrained environments.
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 2 * time.Minute,
	},
	MaxOccurrences: 500,
}

// DisabledCacheConfig turns off caching entirely.
var DisabledCacheConfig = EngineConfig{
	CacheEnabled:   false,
	MaxOccurrences: 1000,
}
