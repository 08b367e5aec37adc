package constant

import "time"

// Cache configuration constants
const (
	// DefaultLicenseCacheTTL defines how long a license lookup stays cached on the server
	DefaultLicenseCacheTTL = 30 * time.Second
	// CacheNumCounters is the number of keys to track frequency (1M)
	CacheNumCounters = 1e6
	// CacheMaxCost is the maximum cost of cache (1MB)
	CacheMaxCost = 1 << 20
	// CacheBufferItems is the number of keys per Get buffer
	CacheBufferItems = 64
	// CacheGenerationStripes is the number of write counters keys are hashed onto
	CacheGenerationStripes = 64
)
