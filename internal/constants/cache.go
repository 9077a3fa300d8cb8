package constants

import "time"

// CacheBuilder adds the colon between prefix and key.
const (
	UserCachePrefix = "user"
	UserCacheExpiry = 7 * 24 * time.Hour

	// Keyed by cleaner ID and week start.
	StreakCachePrefix = "streak"
	StreakCacheExpiry = time.Hour
)
