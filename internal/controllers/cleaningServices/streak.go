package cleaningServiceController

import (
	"context"

	. "cleanhub/internal/models"
	"cleanhub/internal/types"
	"cleanhub/internal/utils"
)

func (c *CleaningServiceController) GetStreak(ctx context.Context, user *User) (*types.StreakSummary, error) {
	log := c.log.TraceFromContext(ctx).Function("GetStreak")

	if !user.IsCleaner() {
		return nil, types.Authorizationf("only cleaners have streaks")
	}

	weekStart, weekEnd := utils.WeekWindow(c.now())
	if summary, ok := c.streakCache.Get(ctx, user.ID, weekStart); ok {
		return &summary, nil
	}

	rated, err := c.serviceRepo.ListRatedForCleanerBetween(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	summary := types.NewStreakSummary(longestHighRatingRun(rated))
	if summary.HasStreak() != user.HasAStreak {
		if err := c.userRepo.UpdateStreak(ctx, user.ID, summary.HasStreak()); err != nil {
			log.Er("failed to store streak flag", err, "cleanerID", user.ID)
		}
	}

	c.streakCache.Set(ctx, user.ID, weekStart, summary)
	return &summary, nil
}

// longestHighRatingRun expects services ordered by when they were rated.
func longestHighRatingRun(rated []CleaningService) int {
	longest, run := 0, 0
	for _, service := range rated {
		if service.Rating.Score != nil && *service.Rating.Score > types.HighRatingFloor {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
