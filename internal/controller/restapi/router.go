package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/hikari-systems/image-service/config"
	v1 "github.com/hikari-systems/image-service/internal/controller/restapi/v1"
	"github.com/hikari-systems/image-service/internal/usecase"
	"github.com/hikari-systems/image-service/pkg/logger"
)

// @title Image service
// @version 1.0.0
// @host localhost:8080
// @BasePath /
func NewRouter(app *fiber.App, cfg *config.Config, profile *config.Profile, img usecase.ImageUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	app.Get("/healthcheck", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).SendString("OK")
	})

	// Routers
	v1.NewImageRoutes(app, profile, img, cfg.Resize.UploadDir, l)
}
