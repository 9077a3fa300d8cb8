package middleware

import (
	"context"

	"cleanhub/config"
	"cleanhub/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (uuid.UUID, error)
}

type Middleware struct {
	userRepo repositories.UserRepository
	tokens   TokenValidator
	Config   config.Config
	log      logger.Logger
}

func New(
	config config.Config,
	repos repositories.Repository,
	tokens TokenValidator,
) Middleware {
	return Middleware{
		userRepo: repos.User,
		tokens:   tokens,
		Config:   config,
		log:      logger.New("middleware"),
	}
}
