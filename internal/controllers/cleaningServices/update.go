package cleaningServiceController

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "cleanhub/internal/models"
	"cleanhub/internal/types"
	"cleanhub/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinRatingScore       = 1
	MaxRatingScore       = 5
	MaxRatingFeedbackLen = 500
)

type ChecklistMark struct {
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

type RatingInput struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback,omitempty"`
}

// UpdateServiceRequest lists every field a client may change. Anything else
// on the service is derived server side.
type UpdateServiceRequest struct {
	ServiceStatus            *ServiceStatus   `json:"serviceStatus,omitempty"`
	CleanerID                *string          `json:"cleanerId,omitempty"`
	Team                     *[]TeamMember    `json:"team,omitempty"`
	Checklist                []ChecklistMark  `json:"checklist,omitempty"`
	RequestedDates           *[]RequestedDate `json:"requestedDates,omitempty"`
	Equipment                *[]Equipment     `json:"equipmentRequirements,omitempty"`
	Rating                   *RatingInput     `json:"rating,omitempty"`
	ReviewedByCleaner        *bool            `json:"reviewedByCleaner,omitempty"`
	ReviewedByRequestingUser *bool            `json:"reviewedByRequestingUser,omitempty"`
	ChatEnabled              *bool            `json:"chatEnabled,omitempty"`
}

func (r *UpdateServiceRequest) isEmpty() bool {
	return r.ServiceStatus == nil &&
		r.CleanerID == nil &&
		r.Team == nil &&
		len(r.Checklist) == 0 &&
		r.RequestedDates == nil &&
		r.Equipment == nil &&
		r.Rating == nil &&
		r.ReviewedByCleaner == nil &&
		r.ReviewedByRequestingUser == nil &&
		r.ChatEnabled == nil
}

// touchesActiveFields is true when the request changes something that is
// frozen once a service reaches a terminal status.
func (r *UpdateServiceRequest) touchesActiveFields(current ServiceStatus) bool {
	return (r.ServiceStatus != nil && *r.ServiceStatus != current) ||
		r.CleanerID != nil ||
		r.Team != nil ||
		len(r.Checklist) > 0 ||
		r.RequestedDates != nil ||
		r.Equipment != nil ||
		r.ChatEnabled != nil
}

// movesRebooking reports the fields that only the rebooking answer may drive.
func (r *UpdateServiceRequest) movesRebooking(current *CleaningService, cleaner *uuid.UUID) bool {
	if r.ServiceStatus != nil && *r.ServiceStatus != current.ServiceStatus {
		return true
	}
	if len(r.Checklist) > 0 {
		return true
	}
	return cleaner != nil && (current.CleanerID == nil || *current.CleanerID != *cleaner)
}

type updateOutcome struct {
	changed   bool
	from      ServiceStatus
	to        ServiceStatus
	assigned  bool
	rated     bool
	checklist bool
}

func (o updateOutcome) transitioned() bool {
	return o.from != o.to
}

func (c *CleaningServiceController) Update(
	ctx context.Context,
	user *User,
	serviceID string,
	request *UpdateServiceRequest,
) (*CleaningService, error) {
	log := c.log.TraceFromContext(ctx).Function("Update")

	id, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}

	if request.isEmpty() {
		return nil, types.Validationf("no fields to update")
	}

	var cleaner *uuid.UUID
	if request.CleanerID != nil {
		cleaner, err = c.resolveCleaner(ctx, *request.CleanerID)
		if err != nil {
			return nil, err
		}
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := c.serviceRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next, outcome, err := c.applyUpdate(user, current, request, cleaner)
		if err != nil {
			return nil, err
		}
		if !outcome.changed {
			return current, nil
		}

		err = c.serviceRepo.Update(ctx, next)
		if errors.Is(err, types.ErrConflict) {
			log.Info("service changed underneath update, retrying", "serviceID", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		c.afterUpdate(ctx, next, outcome)
		return next, nil
	}

	return nil, fmt.Errorf(
		"%w: service %s kept changing after %d attempts",
		types.ErrConflict,
		id,
		maxUpdateAttempts,
	)
}

func (c *CleaningServiceController) resolveCleaner(ctx context.Context, value string) (*uuid.UUID, error) {
	cleanerID, err := parseID(value)
	if err != nil {
		return nil, err
	}

	cleaner, err := c.userRepo.GetByID(ctx, cleanerID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.InvalidReferencef("cleaner %s does not exist", cleanerID)
	}
	if err != nil {
		return nil, err
	}
	if !cleaner.IsCleaner() {
		return nil, types.Validationf("user %s is not a cleaner", cleanerID)
	}
	return &cleanerID, nil
}

// applyUpdate validates the request against the current snapshot and returns
// the service to write. It does no I/O, so a retry after a lost CAS simply
// runs it again on a fresh read.
func (c *CleaningServiceController) applyUpdate(
	user *User,
	current *CleaningService,
	request *UpdateServiceRequest,
	cleaner *uuid.UUID,
) (*CleaningService, updateOutcome, error) {
	now := c.now()
	next := current.Clone()
	outcome := updateOutcome{from: current.ServiceStatus, to: current.ServiceStatus}

	if !user.IsAdmin() && !current.IsParticipant(user.ID) && !(cleaner != nil && *cleaner == user.ID) {
		return nil, outcome, types.Authorizationf("service %s is not visible to the caller", current.ID)
	}

	if current.ServiceStatus.IsTerminal() && request.touchesActiveFields(current.ServiceStatus) {
		return nil, outcome, types.Validationf(
			"service is %s; only the rating and review flags can change",
			current.ServiceStatus,
		)
	}

	if current.AwaitingRebookingAnswer() && request.movesRebooking(current, cleaner) {
		return nil, outcome, types.Validationf(
			"service %s is awaiting the cleaner's rebooking answer", current.ID,
		)
	}

	if cleaner != nil {
		if err := applyCleaner(user, current, next, *cleaner, &outcome); err != nil {
			return nil, outcome, err
		}
	}

	if request.Team != nil {
		if err := applyTeam(user, next, *request.Team, &outcome); err != nil {
			return nil, outcome, err
		}
	}

	if request.RequestedDates != nil {
		if !current.IsRequester(user.ID) && !user.IsAdmin() {
			return nil, outcome, types.Authorizationf("only the requester can change requested dates")
		}
		if current.ServiceStatus != ServiceStatusPending {
			return nil, outcome, types.Validationf("requested dates can only change while pending")
		}
		scheduledAt, err := scheduleFor(*request.RequestedDates)
		if err != nil {
			return nil, outcome, err
		}
		expiresAt := scheduledAt.Add(c.expiryGrace())
		next.RequestedDates = *request.RequestedDates
		next.ScheduledAt = &scheduledAt
		next.ExpiresAt = &expiresAt
		outcome.changed = true
	}

	if request.Equipment != nil {
		if !current.IsRequester(user.ID) && !user.IsAdmin() {
			return nil, outcome, types.Authorizationf("only the requester can change equipment requirements")
		}
		if err := validateEquipment(*request.Equipment); err != nil {
			return nil, outcome, err
		}
		next.Equipment = *request.Equipment
		outcome.changed = true
	}

	if request.ChatEnabled != nil && *request.ChatEnabled != current.ChatEnabled {
		if !current.IsParticipant(user.ID) && !user.IsAdmin() {
			return nil, outcome, types.Authorizationf("only participants can toggle chat")
		}
		next.ChatEnabled = *request.ChatEnabled
		outcome.changed = true
	}

	if len(request.Checklist) > 0 {
		if err := applyChecklist(user, current, next, request.Checklist, now); err != nil {
			return nil, outcome, err
		}
		outcome.changed = true
		outcome.checklist = true
	}

	target := next.ServiceStatus
	if request.ServiceStatus != nil {
		target = *request.ServiceStatus
		if !target.IsValid() {
			return nil, outcome, types.Validationf("unknown service status %q", target)
		}
	}
	if outcome.checklist && next.AllTasksComplete() && target != ServiceStatusCancelled {
		target = ServiceStatusCompleted
	}

	if target != current.ServiceStatus {
		if err := c.applyTransition(user, current, next, target, now, &outcome); err != nil {
			return nil, outcome, err
		}
	} else {
		next.ServiceStatus = current.ServiceStatus
	}

	if request.Rating != nil {
		if err := applyRating(user, current, next, *request.Rating, now); err != nil {
			return nil, outcome, err
		}
		outcome.changed = true
		outcome.rated = true
	}

	if err := applyReviewFlags(user, next, request, &outcome); err != nil {
		return nil, outcome, err
	}

	return next, outcome, nil
}

func applyCleaner(
	user *User,
	current *CleaningService,
	next *CleaningService,
	cleanerID uuid.UUID,
	outcome *updateOutcome,
) error {
	if current.CleanerID != nil && *current.CleanerID == cleanerID {
		return nil
	}

	if !user.IsAdmin() {
		if cleanerID != user.ID {
			return types.Authorizationf("cleaners can only assign themselves")
		}
		if current.CleanerID != nil {
			return types.Authorizationf("service %s already has a cleaner", current.ID)
		}
	}

	if current.ServiceStatus != ServiceStatusPending && !user.IsAdmin() {
		return types.Validationf("a %s service cannot be picked up", current.ServiceStatus)
	}

	next.CleanerID = &cleanerID
	if next.ServiceStatus == ServiceStatusPending {
		next.ServiceStatus = ServiceStatusAssigned
	}
	outcome.changed = true
	outcome.assigned = true
	return nil
}

func applyTeam(user *User, next *CleaningService, team []TeamMember, outcome *updateOutcome) error {
	isLead := next.CleanerID != nil && *next.CleanerID == user.ID
	if !isLead && !user.IsAdmin() {
		return types.Authorizationf("only the assigned cleaner can manage the team")
	}

	leads := 0
	for i, member := range team {
		if member.CleanerID == uuid.Nil {
			return types.Validationf("team[%d].cleanerId is required", i)
		}
		if member.IsTeamLead {
			leads++
		}
	}
	if leads > 1 {
		return types.Validationf("a team can have at most one lead")
	}

	next.Team = team
	outcome.changed = true
	return nil
}

func applyChecklist(
	user *User,
	current *CleaningService,
	next *CleaningService,
	marks []ChecklistMark,
	now time.Time,
) error {
	var role ChecklistRole
	switch {
	case current.IsRequester(user.ID):
		role = ChecklistRoleRequester
	case current.IsAssignedCleaner(user.ID):
		role = ChecklistRoleCleaner
	default:
		return types.Authorizationf("only the requester and assigned cleaners can mark tasks")
	}

	checklist := next.ChecklistItems()
	for i, mark := range marks {
		taskID, err := uuid.Parse(mark.TaskID)
		if err != nil {
			return types.InvalidReferencef("checklist[%d].taskId %q is not a valid id", i, mark.TaskID)
		}
		if err := checklist.MarkTask(taskID, role, mark.Completed, user.ID, now); err != nil {
			return fmt.Errorf("%w: checklist[%d]: %v", types.ErrValidation, i, err)
		}
	}
	return nil
}

func (c *CleaningServiceController) applyTransition(
	user *User,
	current *CleaningService,
	next *CleaningService,
	target ServiceStatus,
	now time.Time,
	outcome *updateOutcome,
) error {
	from := current.ServiceStatus

	switch target {
	case ServiceStatusPending, ServiceStatusExpired:
		return types.Validationf("status %s cannot be set directly", target)
	case ServiceStatusAssigned, ServiceStatusInProgress:
		if next.CleanerID == nil {
			return types.Validationf("a service needs a cleaner before it can be %s", target)
		}
		if !user.IsAdmin() && !next.IsAssignedCleaner(user.ID) {
			return types.Authorizationf("only the assigned cleaner can move a service to %s", target)
		}
	case ServiceStatusCompleted:
		if next.CleanerID == nil {
			return types.Validationf("a service cannot be completed without a cleaner")
		}
		if !user.IsAdmin() && !next.IsParticipant(user.ID) {
			return types.Authorizationf("only participants can complete a service")
		}
	case ServiceStatusCancelled:
		if !user.IsAdmin() && !current.IsParticipant(user.ID) {
			return types.Authorizationf("only participants can cancel a service")
		}
	}

	if !CanTransition(from, target) {
		return types.Validationf("cannot move a service from %s to %s", from, target)
	}

	if target == ServiceStatusCancelled {
		refund, err := cancellationRefund(user, current, now)
		if err != nil {
			return err
		}
		next.SettleCancellation(refund)
	}

	next.ServiceStatus = target
	outcome.to = target
	outcome.changed = true
	return nil
}

// cancellationRefund applies the policy to a requester cancel. Cleaner and
// admin cancels always refund the full fee.
func cancellationRefund(user *User, current *CleaningService, now time.Time) (decimal.Decimal, error) {
	if user.IsAdmin() || !current.IsRequester(user.ID) {
		return current.ServiceFee, nil
	}

	policy := current.Cancellation
	if !policy.Allowed {
		return decimal.Zero, types.Validationf("this service cannot be cancelled")
	}

	if current.ScheduledAt != nil {
		deadline := current.ScheduledAt.Add(-time.Duration(policy.DeadlineHours) * time.Hour)
		if now.After(deadline) {
			return decimal.Zero, nil
		}
	}
	return utils.Percentage(current.ServiceFee, policy.RefundPercentage), nil
}

func applyRating(
	user *User,
	current *CleaningService,
	next *CleaningService,
	rating RatingInput,
	now time.Time,
) error {
	if !current.IsRequester(user.ID) {
		return types.Authorizationf("only the requester can rate a service")
	}
	if next.ServiceStatus != ServiceStatusCompleted {
		return types.Validationf("only a completed service can be rated")
	}
	if current.Rating.Score != nil {
		return types.Validationf("service has already been rated")
	}
	if rating.Score < MinRatingScore || rating.Score > MaxRatingScore {
		return types.Validationf("rating.score must be between %d and %d", MinRatingScore, MaxRatingScore)
	}
	if len(rating.Feedback) > MaxRatingFeedbackLen {
		return types.Validationf("rating.feedback exceeds %d characters", MaxRatingFeedbackLen)
	}

	score := rating.Score
	ratedAt := now
	next.Rating = Rating{Score: &score, Feedback: rating.Feedback, RatedAt: &ratedAt}
	return nil
}

func applyReviewFlags(user *User, next *CleaningService, request *UpdateServiceRequest, outcome *updateOutcome) error {
	if request.ReviewedByCleaner != nil {
		if !next.IsAssignedCleaner(user.ID) {
			return types.Authorizationf("only the cleaner can set reviewedByCleaner")
		}
		if err := setReviewFlag(&next.ReviewedByCleaner, *request.ReviewedByCleaner, next); err != nil {
			return err
		}
		outcome.changed = true
	}

	if request.ReviewedByRequestingUser != nil {
		if !next.IsRequester(user.ID) {
			return types.Authorizationf("only the requester can set reviewedByRequestingUser")
		}
		if err := setReviewFlag(&next.ReviewedByRequestingUser, *request.ReviewedByRequestingUser, next); err != nil {
			return err
		}
		outcome.changed = true
	}
	return nil
}

// setReviewFlag only ever moves a flag from false to true.
func setReviewFlag(flag *bool, value bool, next *CleaningService) error {
	if !value {
		return types.Validationf("review flags cannot be cleared")
	}
	if next.ServiceStatus != ServiceStatusCompleted {
		return types.Validationf("only a completed service can be reviewed")
	}
	*flag = true
	return nil
}

// afterUpdate runs the side effects of a committed write. Only the caller
// whose CAS won gets here, so each transition notifies once.
func (c *CleaningServiceController) afterUpdate(
	ctx context.Context,
	service *CleaningService,
	outcome updateOutcome,
) {
	log := c.log.TraceFromContext(ctx).Function("afterUpdate")

	// A pick-up that lands past assigned in the same write still owes the
	// requester the assignment notice.
	if outcome.assigned && !(outcome.transitioned() && outcome.to == ServiceStatusAssigned) {
		c.notify(ctx, service.RequestingUserID, service,
			"Service Assigned", "A cleaner has been assigned to your service.", NotificationInfo)
	}

	if outcome.transitioned() {
		log.Info(
			"Service status changed",
			"serviceID", service.ID,
			"from", outcome.from,
			"to", outcome.to,
		)

		switch outcome.to {
		case ServiceStatusAssigned:
			c.notify(ctx, service.RequestingUserID, service,
				"Service Assigned", "A cleaner has been assigned to your service.", NotificationInfo)
		case ServiceStatusInProgress:
			c.notify(ctx, service.RequestingUserID, service,
				"Service Started", "Your cleaner has started working.", NotificationInfo)
		case ServiceStatusCompleted:
			c.notify(ctx, service.RequestingUserID, service,
				"Service Completed", "Your cleaning service has been completed.", NotificationSuccess)
			if service.CleanerID != nil {
				c.notify(ctx, *service.CleanerID, service,
					"Job Completed", "The service has been marked as completed.", NotificationSuccess)
			}
		case ServiceStatusCancelled:
			c.notify(ctx, service.RequestingUserID, service,
				"Service Cancelled", "Your cleaning service has been cancelled.", NotificationWarning)
			if service.CleanerID != nil {
				c.notify(ctx, *service.CleanerID, service,
					"Service Cancelled", "A service you were assigned to has been cancelled.", NotificationWarning)
			}
			if err := c.settler.Refund(ctx, service); err != nil {
				log.Er("cancellation refund failed, left for reconciliation", err, "serviceID", service.ID)
			}
		}
	}

	justCompleted := outcome.transitioned() && outcome.to == ServiceStatusCompleted
	shouldPay := (service.AllTasksComplete() || justCompleted) && !service.PaidToCleaner
	if shouldPay && service.ServiceStatus == ServiceStatusCompleted {
		if _, err := c.settler.Payout(ctx, service); err != nil {
			log.Er("payout failed, left for reconciliation", err, "serviceID", service.ID)
		}
	}

	if outcome.rated && service.CleanerID != nil {
		c.recordRating(ctx, *service.CleanerID)
	}
}

// recordRating drops the cleaner's cached streak for the current week so the
// next read counts the new score. The cleaner's average comes from reviews.
func (c *CleaningServiceController) recordRating(ctx context.Context, cleanerID uuid.UUID) {
	weekStart, _ := utils.WeekWindow(c.now())
	c.streakCache.Invalidate(ctx, cleanerID, weekStart)
}
