package app

import (
	"context"

	"cleanhub/config"
	"cleanhub/internal/controllers"
	"cleanhub/internal/database"
	"cleanhub/internal/events"
	"cleanhub/internal/handlers/middleware"
	"cleanhub/internal/jobs"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Repos       repositories.Repository
	Services    services.Service
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	repos := repositories.New(db)
	services := services.New(db, config, repos, eventBus)

	websocket, err := websockets.New(eventBus, config, services.Token, repos.User)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	if err := jobs.RegisterAllJobs(services.Scheduler, config, services, repos); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware.New(config, repos, services.Token),
		Websocket:   websocket,
		EventBus:    eventBus,
		Repos:       repos,
		Services:    services,
		Controllers: controllers.New(services, repos, config),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	if config.SchedulerEnabled {
		if err := services.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	missing := map[string]bool{
		"websocket":         a.Websocket == nil,
		"eventBus":          a.EventBus == nil,
		"ledger":            a.Services.Ledger == nil,
		"notification":      a.Services.Notification == nil,
		"settlement":        a.Services.Settlement == nil,
		"token":             a.Services.Token == nil,
		"scheduler":         a.Services.Scheduler == nil,
		"userController":    a.Controllers.User == nil,
		"serviceController": a.Controllers.CleaningService == nil,
		"adminController":   a.Controllers.Admin == nil,
		"messageController": a.Controllers.Message == nil,
		"reviewController":  a.Controllers.Review == nil,
	}

	for name, isNil := range missing {
		if isNil {
			return log.Error("nil check failed", "component", name)
		}
	}

	return nil
}

// Close stops background work before the stores it writes to.
func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Notification != nil {
		a.Services.Notification.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
