package handlers

import (
	"cleanhub/internal/app"
	"cleanhub/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app app.App, router fiber.Router, name string) Handler {
	return Handler{
		middleware: app.Middleware,
		log:        logger.New("handlers").File(name),
		router:     router,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())

	if app.Websocket != nil {
		WebSocketHandler(router, app.Websocket)
	}

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewCleaningServiceHandler(*app, api).Register()
	NewPropertyHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()
	NewMessageHandler(*app, api).Register()
	NewReviewHandler(*app, api).Register()

	return nil
}
