package adminController

import (
	"context"
	"fmt"

	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxDepositDescriptionLength = 200

// JobRunner is the part of the scheduler the admin endpoints drive.
type JobRunner interface {
	RunJob(ctx context.Context, jobName string) error
	JobNames() []string
	IsRunning() bool
}

type AdminControllerInterface interface {
	Deposit(
		ctx context.Context,
		admin *models.User,
		userID string,
		request *DepositRequest,
	) (*models.LedgerEntry, error)
	GetSchedulerStatus(ctx context.Context) *SchedulerStatusResponse
	RunJob(ctx context.Context, jobName string) error
}

type AdminController struct {
	userRepo  repositories.UserRepository
	ledger    services.Ledger
	notifier  services.Notifier
	scheduler JobRunner
	log       logger.Logger
}

func New(repos repositories.Repository, services services.Service) AdminControllerInterface {
	return &AdminController{
		userRepo:  repos.User,
		ledger:    services.Ledger,
		notifier:  services.Notification,
		scheduler: services.Scheduler,
		log:       logger.New("adminController"),
	}
}

// DepositRequest tops up a balance. Reference makes the deposit idempotent:
// repeating a request with the same reference credits once.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

type SchedulerStatusResponse struct {
	Running bool     `json:"running"`
	Jobs    []string `json:"jobs"`
}

func (c *AdminController) Deposit(
	ctx context.Context,
	admin *models.User,
	userID string,
	request *DepositRequest,
) (*models.LedgerEntry, error) {
	log := c.log.TraceFromContext(ctx).Function("Deposit")

	if !admin.IsAdmin() {
		return nil, types.Authorizationf("only admins can deposit funds")
	}

	target, err := uuid.Parse(userID)
	if err != nil {
		return nil, types.InvalidReferencef("%q is not a valid user id", userID)
	}

	if !request.Amount.IsPositive() {
		return nil, types.Validationf("amount must be positive")
	}
	if request.Amount.Exponent() < -2 {
		return nil, types.Validationf("amount has more than two decimal places")
	}
	if len(request.Description) > MaxDepositDescriptionLength {
		return nil, types.Validationf("description exceeds %d characters", MaxDepositDescriptionLength)
	}

	depositID := uuid.New()
	if request.Reference != "" {
		depositID, err = uuid.Parse(request.Reference)
		if err != nil {
			return nil, types.InvalidReferencef("reference %q is not a valid id", request.Reference)
		}
	}

	if _, err = c.userRepo.GetByID(ctx, target); err != nil {
		return nil, err
	}

	entry, recorded, err := c.ledger.Deposit(
		ctx,
		target,
		request.Amount,
		models.DepositKey(depositID),
		request.Description,
	)
	if err != nil {
		return nil, err
	}
	if !recorded {
		log.Info("Deposit already recorded", "userID", target, "reference", depositID)
		return entry, nil
	}

	c.notifier.Push(ctx, target, services.NotificationInput{
		Title:   "Funds Added",
		Message: fmt.Sprintf("%s has been added to your balance.", request.Amount.StringFixed(2)),
		Type:    models.NotificationSuccess,
		Data:    map[string]any{"amount": request.Amount, "reference": depositID},
	})

	log.Info(
		"Deposit recorded",
		"userID", target,
		"adminID", admin.ID,
		"amount", request.Amount.StringFixed(2),
		"reference", depositID,
	)
	return entry, nil
}

func (c *AdminController) GetSchedulerStatus(ctx context.Context) *SchedulerStatusResponse {
	return &SchedulerStatusResponse{
		Running: c.scheduler.IsRunning(),
		Jobs:    c.scheduler.JobNames(),
	}
}

func (c *AdminController) RunJob(ctx context.Context, jobName string) error {
	return c.scheduler.RunJob(ctx, jobName)
}
