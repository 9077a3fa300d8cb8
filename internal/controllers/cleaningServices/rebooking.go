package cleaningServiceController

import (
	"context"
	"errors"
	"fmt"

	. "cleanhub/internal/models"
	"cleanhub/internal/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BookAgainRequest struct {
	RequestedDates []RequestedDate `json:"requestedDates"`
}

type RebookingResponseRequest struct {
	Accepted *bool `json:"accepted"`
}

// BookAgain books a completed service again for the same cleaner at the fee
// stored on the original.
func (c *CleaningServiceController) BookAgain(
	ctx context.Context,
	user *User,
	serviceID string,
	request *BookAgainRequest,
) (*CleaningService, error) {
	log := c.log.TraceFromContext(ctx).Function("BookAgain")

	id, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}

	original, err := c.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !original.IsRequester(user.ID) {
		return nil, types.Authorizationf("only the requester can book a service again")
	}
	if original.ServiceStatus != ServiceStatusCompleted {
		return nil, types.Validationf("only a completed service can be booked again, this one is %s", original.ServiceStatus)
	}

	scheduledAt, err := scheduleFor(request.RequestedDates)
	if err != nil {
		return nil, err
	}
	expiresAt := scheduledAt.Add(c.expiryGrace())

	checklist := NewChecklistFromTemplate(original.ChecklistItems().Tasks())
	rebooked := &CleaningService{
		PropertyID:       original.PropertyID,
		RequestingUserID: original.RequestingUserID,
		CleanerID:        original.CleanerID,
		Team:             original.Team,
		ServiceType:      original.ServiceType,
		Extras:           original.Extras,
		BaseFee:          original.BaseFee,
		DiscountAmount:   original.DiscountAmount,
		ServiceFee:       original.ServiceFee,
		BookingFrequency: original.BookingFrequency,
		IsRecurring:      original.IsRecurring,
		ServiceStatus:    ServiceStatusPending,
		Checklist:        datatypes.JSONSlice[ChecklistItem](checklist),
		RequestedDates:   request.RequestedDates,
		ScheduledAt:      &scheduledAt,
		ExpiresAt:        &expiresAt,
		Equipment:        original.Equipment,
		Cancellation:     original.Cancellation,
		HasBeenRebooked:  true,
		RebookedFromID:   &original.ID,
		ChatEnabled:      original.ChatEnabled,
	}
	rebooked.ID = uuid.New()
	if rebooked.ServiceFee.IsPositive() {
		rebooked.Payments = []Payment{NewPendingPayment(rebooked.ServiceFee, rebooked.ID, c.now())}
	}

	if err = c.debitAndCreate(ctx, rebooked); err != nil {
		return nil, err
	}

	if rebooked.CleanerID != nil {
		c.notify(ctx, *rebooked.CleanerID, rebooked,
			"Rebooking Request", "A previous client would like to book you again.", NotificationInfo)
	}

	log.Info(
		"Service booked again",
		"serviceID", rebooked.ID,
		"originalID", original.ID,
		"requesterID", user.ID,
	)
	return rebooked, nil
}

// RespondToRebooking records the cleaner's answer. A decline cancels the
// service and sets its full refund in the same write.
func (c *CleaningServiceController) RespondToRebooking(
	ctx context.Context,
	user *User,
	serviceID string,
	request *RebookingResponseRequest,
) (*CleaningService, error) {
	log := c.log.TraceFromContext(ctx).Function("RespondToRebooking")

	id, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}
	if request.Accepted == nil {
		return nil, types.Validationf("accepted is required")
	}
	accepted := *request.Accepted

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := c.serviceRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if current.CleanerID == nil || *current.CleanerID != user.ID {
			return nil, types.Authorizationf("only the rebooked cleaner can respond")
		}
		if !current.AwaitingRebookingAnswer() {
			return nil, types.Validationf("service %s is not awaiting a rebooking answer", id)
		}

		next := current.Clone()
		if accepted {
			next.ServiceStatus = ServiceStatusAssigned
			next.CleanerAcceptedRebooking = RebookingAccepted
		} else {
			next.ServiceStatus = ServiceStatusCancelled
			next.CleanerAcceptedRebooking = RebookingDeclined
			next.SettleCancellation(current.ServiceFee)
		}

		err = c.serviceRepo.Update(ctx, next)
		if errors.Is(err, types.ErrConflict) {
			log.Info("service changed underneath rebooking answer, retrying", "serviceID", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		if accepted {
			c.notify(ctx, next.RequestingUserID, next,
				"Rebooking Accepted", "Your cleaner accepted the rebooking.", NotificationSuccess)
		} else {
			if err := c.settler.Refund(ctx, next); err != nil {
				log.Er("rebooking refund failed, left for reconciliation", err, "serviceID", id)
			}
			c.notify(ctx, next.RequestingUserID, next,
				"Rebooking Declined", "Your cleaner declined the rebooking. The fee has been refunded.", NotificationWarning)
		}

		log.Info("Rebooking answered", "serviceID", id, "cleanerID", user.ID, "accepted", accepted)
		return next, nil
	}

	return nil, fmt.Errorf(
		"%w: service %s kept changing after %d attempts",
		types.ErrConflict,
		id,
		maxUpdateAttempts,
	)
}
