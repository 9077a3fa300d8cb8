package userController

import (
	"context"

	"cleanhub/config"
	. "cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type UserController struct {
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	ledger           services.Ledger
	Config           config.Config
	log              logger.Logger
}

type MarkReadRequest struct {
	IDs []string `json:"ids,omitempty"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

type UserControllerInterface interface {
	GetProfile(ctx context.Context, user *User) (*UserProfile, error)
	GetLedger(ctx context.Context, user *User, limit int) ([]LedgerEntry, error)
	GetNotifications(
		ctx context.Context,
		user *User,
		unreadOnly bool,
		limit int,
	) ([]Notification, error)
	MarkNotificationsRead(
		ctx context.Context,
		user *User,
		request *MarkReadRequest,
	) (*MarkReadResponse, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
) UserControllerInterface {
	return &UserController{
		userRepo:         repos.User,
		notificationRepo: repos.Notification,
		ledger:           services.Ledger,
		Config:           config,
		log:              logger.New("userController"),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// GetProfile reads past the user cache so the balance is current.
func (uc *UserController) GetProfile(ctx context.Context, user *User) (*UserProfile, error) {
	fresh, err := uc.userRepo.GetFresh(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile := fresh.ToProfile()
	return &profile, nil
}

func (uc *UserController) GetLedger(ctx context.Context, user *User, limit int) ([]LedgerEntry, error) {
	return uc.ledger.History(ctx, user.ID, clampLimit(limit))
}

func (uc *UserController) GetNotifications(
	ctx context.Context,
	user *User,
	unreadOnly bool,
	limit int,
) ([]Notification, error) {
	return uc.notificationRepo.ListByUser(ctx, user.ID, unreadOnly, clampLimit(limit))
}

// MarkNotificationsRead marks the listed notifications, or all of them when
// no ids are given.
func (uc *UserController) MarkNotificationsRead(
	ctx context.Context,
	user *User,
	request *MarkReadRequest,
) (*MarkReadResponse, error) {
	log := uc.log.TraceFromContext(ctx).Function("MarkNotificationsRead")

	ids := make([]uuid.UUID, 0, len(request.IDs))
	for i, raw := range request.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, types.InvalidReferencef("ids[%d] %q is not a valid id", i, raw)
		}
		ids = append(ids, id)
	}

	marked, err := uc.notificationRepo.MarkRead(ctx, user.ID, ids)
	if err != nil {
		return nil, err
	}

	log.Info("Notifications marked read", "userID", user.ID, "marked", marked)
	return &MarkReadResponse{Marked: marked}, nil
}
