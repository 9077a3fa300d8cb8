package cleaningServiceController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleanhub/config"
	. "cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"
	"cleanhub/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	MaxEquipmentNotesLength = 200
	maxUpdateAttempts       = 3
)

type CleaningServiceController struct {
	serviceRepo  repositories.CleaningServiceRepository
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
	streakCache  repositories.StreakCache
	ledger       services.Ledger
	settler      services.Settler
	notifier     services.Notifier
	Config       config.Config
	now          func() time.Time
	log          logger.Logger
}

type CreateServiceRequest struct {
	PropertyID         string              `json:"propertyId"`
	ServiceType        ServiceType         `json:"serviceType"`
	BaseFee            decimal.Decimal     `json:"baseFee"`
	Extras             []Extra             `json:"extras"`
	BookingFrequency   BookingFrequency    `json:"bookingFrequency"`
	RequestedDates     []RequestedDate     `json:"requestedDates"`
	Checklist          []string            `json:"checklist,omitempty"`
	Equipment          []Equipment         `json:"equipmentRequirements,omitempty"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
	ChatEnabled        bool                `json:"chatEnabled,omitempty"`
}

type CleaningServiceControllerInterface interface {
	Create(ctx context.Context, user *User, request *CreateServiceRequest) (*CleaningService, error)
	Get(ctx context.Context, user *User, serviceID string) (*CleaningService, error)
	List(ctx context.Context, user *User) ([]CleaningService, error)
	ListPending(ctx context.Context, user *User) ([]CleaningService, error)
	ListAssigned(ctx context.Context, user *User) ([]CleaningService, error)
	Update(
		ctx context.Context,
		user *User,
		serviceID string,
		request *UpdateServiceRequest,
	) (*CleaningService, error)
	Delete(ctx context.Context, user *User, serviceID string) error
	BookAgain(
		ctx context.Context,
		user *User,
		serviceID string,
		request *BookAgainRequest,
	) (*CleaningService, error)
	RespondToRebooking(
		ctx context.Context,
		user *User,
		serviceID string,
		request *RebookingResponseRequest,
	) (*CleaningService, error)
	GetStreak(ctx context.Context, user *User) (*types.StreakSummary, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
) CleaningServiceControllerInterface {
	return &CleaningServiceController{
		serviceRepo:  repos.CleaningService,
		propertyRepo: repos.Property,
		userRepo:     repos.User,
		streakCache:  repos.StreakCache,
		ledger:       services.Ledger,
		settler:      services.Settlement,
		notifier:     services.Notification,
		Config:       config,
		now:          func() time.Time { return time.Now().UTC() },
		log:          logger.New("cleaningServiceController"),
	}
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, types.InvalidReferencef("%q is not a valid id", value)
	}
	return id, nil
}

func (c *CleaningServiceController) expiryGrace() time.Duration {
	hours := c.Config.ServiceExpiryGraceHours
	if hours <= 0 {
		hours = config.DefaultServiceExpiryGraceHours
	}
	return time.Duration(hours) * time.Hour
}

func validateEquipment(equipment []Equipment) error {
	for i, item := range equipment {
		if item.Name == "" {
			return types.Validationf("equipmentRequirements[%d].name is required", i)
		}
		if !item.ProvidedBy.IsValid() {
			return types.Validationf("equipmentRequirements[%d].providedBy %q is not valid", i, item.ProvidedBy)
		}
		if len(item.Notes) > MaxEquipmentNotesLength {
			return types.Validationf("equipmentRequirements[%d].notes exceed %d characters", i, MaxEquipmentNotesLength)
		}
	}
	return nil
}

func validateCancellationPolicy(policy CancellationPolicy) error {
	if policy.DeadlineHours < 0 {
		return types.Validationf("cancellationPolicy.deadlineHours must not be negative")
	}
	if policy.RefundPercentage < 0 || policy.RefundPercentage > 100 {
		return types.Validationf("cancellationPolicy.refundPercentage must be between 0 and 100")
	}
	return nil
}

func scheduleFor(dates []RequestedDate) (time.Time, error) {
	scheduledAt, err := utils.ValidateRequestedDates(dates)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	return scheduledAt, nil
}

func (c *CleaningServiceController) Create(
	ctx context.Context,
	user *User,
	request *CreateServiceRequest,
) (*CleaningService, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	propertyID, err := parseID(request.PropertyID)
	if err != nil {
		return nil, err
	}

	if !request.ServiceType.IsValid() {
		return nil, types.Validationf("unknown service type %q", request.ServiceType)
	}

	fee, err := utils.ComputeFee(request.BaseFee, request.Extras, request.BookingFrequency)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := scheduleFor(request.RequestedDates)
	if err != nil {
		return nil, err
	}

	if err = validateEquipment(request.Equipment); err != nil {
		return nil, err
	}

	policy := DefaultCancellationPolicy()
	if request.CancellationPolicy != nil {
		if err = validateCancellationPolicy(*request.CancellationPolicy); err != nil {
			return nil, err
		}
		policy = *request.CancellationPolicy
	}

	property, err := c.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != user.ID {
		return nil, types.Authorizationf("property %s does not belong to the caller", propertyID)
	}

	tasks := request.Checklist
	if len(tasks) == 0 {
		for _, extra := range request.Extras {
			tasks = append(tasks, extra.Name)
		}
	}

	now := c.now()
	expiresAt := scheduledAt.Add(c.expiryGrace())
	service := &CleaningService{
		PropertyID:       propertyID,
		RequestingUserID: user.ID,
		ServiceType:      request.ServiceType,
		Extras:           request.Extras,
		BaseFee:          request.BaseFee,
		DiscountAmount:   fee.DiscountAmount,
		ServiceFee:       fee.ServiceFee,
		BookingFrequency: request.BookingFrequency,
		IsRecurring:      fee.IsRecurring,
		ServiceStatus:    ServiceStatusPending,
		Checklist:        datatypes.JSONSlice[ChecklistItem](NewChecklistFromTemplate(tasks)),
		RequestedDates:   request.RequestedDates,
		ScheduledAt:      &scheduledAt,
		ExpiresAt:        &expiresAt,
		Equipment:        request.Equipment,
		Cancellation:     policy,
		ChatEnabled:      request.ChatEnabled,
	}
	service.ID = uuid.New()
	if fee.ServiceFee.IsPositive() {
		service.Payments = []Payment{NewPendingPayment(fee.ServiceFee, service.ID, now)}
	}

	if err = c.debitAndCreate(ctx, service); err != nil {
		return nil, err
	}

	log.Info(
		"Cleaning service created",
		"serviceID", service.ID,
		"requesterID", user.ID,
		"serviceFee", service.ServiceFee.StringFixed(2),
	)
	return service, nil
}

// debitAndCreate charges the requester and stores the service. A store failure
// after the debit is compensated with a refund under its own event key.
func (c *CleaningServiceController) debitAndCreate(ctx context.Context, service *CleaningService) error {
	log := c.log.TraceFromContext(ctx).Function("debitAndCreate")

	serviceID := service.ID
	debited := false
	if service.ServiceFee.IsPositive() {
		if _, err := c.ledger.Debit(
			ctx,
			service.RequestingUserID,
			service.ServiceFee,
			BookingKey(serviceID),
			&serviceID,
		); err != nil {
			return err
		}
		debited = true
	}

	err := c.serviceRepo.Create(ctx, service)
	if err == nil {
		return nil
	}

	if debited {
		if _, refundErr := c.ledger.Refund(
			ctx,
			service.RequestingUserID,
			service.ServiceFee,
			BookingCompensationKey(serviceID),
			&serviceID,
		); refundErr != nil {
			log.Er(
				"booking compensation failed",
				refundErr,
				"serviceID", serviceID,
				"requesterID", service.RequestingUserID,
				"amount", service.ServiceFee.StringFixed(2),
			)
		}
	}

	if errors.Is(err, types.ErrPersistence) {
		return err
	}
	return types.Persistence(err)
}

func (c *CleaningServiceController) Get(
	ctx context.Context,
	user *User,
	serviceID string,
) (*CleaningService, error) {
	id, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}

	service, err := c.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canView(user, service) {
		return nil, types.Authorizationf("service %s is not visible to the caller", id)
	}
	return service, nil
}

// canView lets cleaners look at unassigned pending work so they can pick it up.
func canView(user *User, service *CleaningService) bool {
	if user.IsAdmin() || service.IsParticipant(user.ID) {
		return true
	}
	return user.IsCleaner() &&
		service.ServiceStatus == ServiceStatusPending &&
		service.CleanerID == nil
}

func (c *CleaningServiceController) List(ctx context.Context, user *User) ([]CleaningService, error) {
	return c.serviceRepo.ListForUser(ctx, user.ID)
}

func (c *CleaningServiceController) ListPending(ctx context.Context, user *User) ([]CleaningService, error) {
	if !user.IsCleaner() && !user.IsAdmin() {
		return nil, types.Authorizationf("only cleaners can browse pending services")
	}
	return c.serviceRepo.ListPending(ctx)
}

// ListAssigned returns the caller's services that have a cleaner but have not
// started yet.
func (c *CleaningServiceController) ListAssigned(ctx context.Context, user *User) ([]CleaningService, error) {
	return c.serviceRepo.ListForUserByStatus(ctx, user.ID, ServiceStatusAssigned)
}

// Delete removes a service that has no money in flight. A pending service is
// cancelled and refunded in full before it is removed.
func (c *CleaningServiceController) Delete(ctx context.Context, user *User, serviceID string) error {
	log := c.log.TraceFromContext(ctx).Function("Delete")

	id, err := parseID(serviceID)
	if err != nil {
		return err
	}

	service, err := c.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !service.IsRequester(user.ID) && !user.IsAdmin() {
		return types.Authorizationf("only the requester can delete a service")
	}

	switch {
	case service.ServiceStatus == ServiceStatusPending:
		cancelled := service.Clone()
		cancelled.ServiceStatus = ServiceStatusCancelled
		cancelled.SettleCancellation(service.ServiceFee)
		if err = c.serviceRepo.Update(ctx, cancelled); err != nil {
			return err
		}
		service = cancelled
	case service.ServiceStatus == ServiceStatusCompleted && !service.PaidToCleaner:
		return types.Validationf("a completed service cannot be deleted before the cleaner is paid")
	case service.ServiceStatus.IsTerminal():
	default:
		return types.Validationf("a %s service cannot be deleted", service.ServiceStatus)
	}

	if err = c.settler.Reconcile(ctx, service); err != nil {
		return err
	}

	if err = c.serviceRepo.Delete(ctx, service); err != nil {
		return err
	}

	log.Info("Cleaning service deleted", "serviceID", id, "userID", user.ID)
	return nil
}

func (c *CleaningServiceController) notify(
	ctx context.Context,
	userID uuid.UUID,
	service *CleaningService,
	title string,
	message string,
	notificationType NotificationType,
) {
	c.notifier.Push(ctx, userID, services.NotificationInput{
		Title:   title,
		Message: message,
		Type:    notificationType,
		Link:    "/cleaning-services/" + service.ID.String(),
		Data:    map[string]any{"serviceId": service.ID, "status": service.ServiceStatus},
	})
}
