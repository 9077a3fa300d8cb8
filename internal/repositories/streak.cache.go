package repositories

import (
	"context"
	"time"

	"cleanhub/internal/constants"
	"cleanhub/internal/database"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

// StreakCache keeps one weekly streak summary per cleaner. Misses and cache
// failures both read as "not cached".
type StreakCache interface {
	Get(ctx context.Context, cleanerID uuid.UUID, weekStart time.Time) (types.StreakSummary, bool)
	Set(ctx context.Context, cleanerID uuid.UUID, weekStart time.Time, summary types.StreakSummary)
	Invalidate(ctx context.Context, cleanerID uuid.UUID, weekStart time.Time)
}

type streakCache struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewStreakCache(db database.DB) StreakCache {
	return &streakCache{
		cache: db.Cache.User,
		log:   logger.New("streakCache"),
	}
}

func StreakCacheKey(cleanerID uuid.UUID, weekStart time.Time) string {
	return cleanerID.String() + ":" + weekStart.UTC().Format("2006-01-02")
}

func (s *streakCache) Get(
	ctx context.Context,
	cleanerID uuid.UUID,
	weekStart time.Time,
) (types.StreakSummary, bool) {
	var summary types.StreakSummary
	if s.cache == nil {
		return summary, false
	}

	found, err := database.NewCacheBuilder(s.cache, StreakCacheKey(cleanerID, weekStart)).
		WithHash(constants.StreakCachePrefix).
		WithContext(ctx).
		Get(&summary)
	if err != nil {
		s.log.Function("Get").Warn("failed to read streak cache", "cleanerID", cleanerID, "error", err)
		return summary, false
	}

	return summary, found
}

func (s *streakCache) Set(
	ctx context.Context,
	cleanerID uuid.UUID,
	weekStart time.Time,
	summary types.StreakSummary,
) {
	if s.cache == nil {
		return
	}

	if err := database.NewCacheBuilder(s.cache, StreakCacheKey(cleanerID, weekStart)).
		WithHash(constants.StreakCachePrefix).
		WithStruct(summary).
		WithTTL(constants.StreakCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		s.log.Function("Set").Warn("failed to write streak cache", "cleanerID", cleanerID, "error", err)
	}
}

func (s *streakCache) Invalidate(ctx context.Context, cleanerID uuid.UUID, weekStart time.Time) {
	if s.cache == nil {
		return
	}

	if err := database.NewCacheBuilder(s.cache, StreakCacheKey(cleanerID, weekStart)).
		WithHash(constants.StreakCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		s.log.Function("Invalidate").Warn("failed to clear streak cache", "cleanerID", cleanerID, "error", err)
	}
}
