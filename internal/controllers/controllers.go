package controllers

import (
	"cleanhub/config"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"

	adminController "cleanhub/internal/controllers/admin"
	cleaningServiceController "cleanhub/internal/controllers/cleaningServices"
	messageController "cleanhub/internal/controllers/messages"
	propertyController "cleanhub/internal/controllers/properties"
	reviewController "cleanhub/internal/controllers/reviews"
	userController "cleanhub/internal/controllers/users"
)

type Controllers struct {
	User            userController.UserControllerInterface
	Property        propertyController.PropertyControllerInterface
	CleaningService cleaningServiceController.CleaningServiceControllerInterface
	Admin           adminController.AdminControllerInterface
	Message         messageController.MessageControllerInterface
	Review          reviewController.ReviewControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
) Controllers {
	return Controllers{
		User:            userController.New(repos, services, config),
		Property:        propertyController.New(repos),
		CleaningService: cleaningServiceController.New(repos, services, config),
		Admin:           adminController.New(repos, services),
		Message:         messageController.New(repos, services),
		Review:          reviewController.New(repos, services),
	}
}
