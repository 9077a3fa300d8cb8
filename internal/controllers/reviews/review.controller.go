package reviewController

import (
	"context"
	"fmt"
	"strings"

	. "cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type ReviewController struct {
	serviceRepo repositories.CleaningServiceRepository
	reviewRepo  repositories.ReviewRepository
	userRepo    repositories.UserRepository
	notifier    services.Notifier
	log         logger.Logger
}

type CreateReviewRequest struct {
	ServiceID string `json:"serviceId"`
	Stars     int    `json:"reviewStars"`
	Message   string `json:"reviewMessage"`
}

type ReviewControllerInterface interface {
	Create(ctx context.Context, user *User, request *CreateReviewRequest) (*Review, error)
	Get(ctx context.Context, reviewID string) (*Review, error)
	ListReceived(ctx context.Context, userID string) ([]Review, error)
	ListGiven(ctx context.Context, userID string) ([]Review, error)
	Delete(ctx context.Context, user *User, reviewID string) error
	RefreshStats(ctx context.Context, user *User) (*ReviewStats, error)
}

func New(repos repositories.Repository, services services.Service) ReviewControllerInterface {
	return &ReviewController{
		serviceRepo: repos.CleaningService,
		reviewRepo:  repos.Review,
		userRepo:    repos.User,
		notifier:    services.Notification,
		log:         logger.New("reviewController"),
	}
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, types.InvalidReferencef("%q is not a valid id", value)
	}
	return id, nil
}

func (r *CreateReviewRequest) validate() error {
	r.Message = strings.TrimSpace(r.Message)

	switch {
	case r.Stars < MinReviewStars || r.Stars > MaxReviewStars:
		return types.Validationf("reviewStars must be between %d and %d", MinReviewStars, MaxReviewStars)
	case len(r.Message) < MinReviewMessageLength:
		return types.Validationf("reviewMessage must be at least %d characters", MinReviewMessageLength)
	case len(r.Message) > MaxReviewMessageLength:
		return types.Validationf("reviewMessage exceeds %d characters", MaxReviewMessageLength)
	}
	return nil
}

// Create records the caller's review of the other side of a completed
// service: the requester reviews the cleaner and the cleaner the requester.
func (c *ReviewController) Create(ctx context.Context, user *User, request *CreateReviewRequest) (*Review, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	serviceID, err := parseID(request.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := request.validate(); err != nil {
		return nil, err
	}

	service, err := c.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	review := &Review{
		ServiceID:  serviceID,
		ReviewerID: user.ID,
		Stars:      request.Stars,
		Message:    request.Message,
	}
	switch {
	case service.IsRequester(user.ID):
		if service.CleanerID == nil {
			return nil, types.Validationf("service %s has no cleaner to review", serviceID)
		}
		review.ReviewerRole = ReviewerUser
		review.ReceiverID = *service.CleanerID
	case service.IsAssignedCleaner(user.ID):
		review.ReviewerRole = ReviewerCleaner
		review.ReceiverID = service.RequestingUserID
	default:
		return nil, types.Authorizationf("only participants can review service %s", serviceID)
	}

	if service.ServiceStatus != ServiceStatusCompleted {
		return nil, types.Validationf("service %s is %s; only completed services can be reviewed", serviceID, service.ServiceStatus)
	}

	if err := c.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	c.notifier.Push(ctx, review.ReceiverID, services.NotificationInput{
		Title:   "New Review Received",
		Message: fmt.Sprintf("You've received a %d-star review from %s.", review.Stars, user.Name()),
		Type:    NotificationInfo,
		Link:    "/reviews/" + review.ID.String(),
		Data:    map[string]any{"reviewId": review.ID, "serviceId": serviceID},
	})

	stats, err := c.refreshStats(ctx, review.ReceiverID)
	if err != nil {
		log.Er("failed to refresh review stats", err, "receiverID", review.ReceiverID)
	} else if stats.NumberOfReviews == 1 {
		c.notifier.Push(ctx, review.ReceiverID, services.NotificationInput{
			Title:   "First Review Received!",
			Message: "Congratulations on receiving your first review!",
			Type:    NotificationSuccess,
			Link:    "/profile/reviews",
		})
	}

	log.Info("Review created", "reviewID", review.ID, "serviceID", serviceID, "role", review.ReviewerRole)
	return review, nil
}

func (c *ReviewController) Get(ctx context.Context, reviewID string) (*Review, error) {
	id, err := parseID(reviewID)
	if err != nil {
		return nil, err
	}
	return c.reviewRepo.GetByID(ctx, id)
}

func (c *ReviewController) ListReceived(ctx context.Context, userID string) ([]Review, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return c.reviewRepo.ListByReceiver(ctx, id)
}

func (c *ReviewController) ListGiven(ctx context.Context, userID string) ([]Review, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return c.reviewRepo.ListByReviewer(ctx, id)
}

// Delete removes a review. Its author or an admin may do so.
func (c *ReviewController) Delete(ctx context.Context, user *User, reviewID string) error {
	log := c.log.TraceFromContext(ctx).Function("Delete")

	id, err := parseID(reviewID)
	if err != nil {
		return err
	}

	review, err := c.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review.ReviewerID != user.ID && !user.IsAdmin() {
		return types.Authorizationf("only the author can delete review %s", id)
	}

	if err := c.reviewRepo.Delete(ctx, review); err != nil {
		return err
	}

	c.notifier.Push(ctx, review.ReceiverID, services.NotificationInput{
		Title:   "Review Deleted",
		Message: "A review you received has been deleted by the author.",
		Type:    NotificationWarning,
		Link:    "/profile/reviews",
	})

	if _, err := c.refreshStats(ctx, review.ReceiverID); err != nil {
		log.Er("failed to refresh review stats", err, "receiverID", review.ReceiverID)
	}

	log.Info("Review deleted", "reviewID", id, "deletedBy", user.ID)
	return nil
}

// RefreshStats recomputes the caller's rating from the reviews they received.
func (c *ReviewController) RefreshStats(ctx context.Context, user *User) (*ReviewStats, error) {
	stats, err := c.refreshStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *ReviewController) refreshStats(ctx context.Context, userID uuid.UUID) (ReviewStats, error) {
	stats, err := c.reviewRepo.StatsForReceiver(ctx, userID)
	if err != nil {
		return ReviewStats{}, err
	}
	if err := c.userRepo.UpdateReviewStats(ctx, userID, stats); err != nil {
		return ReviewStats{}, err
	}
	return stats, nil
}
