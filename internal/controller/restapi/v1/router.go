package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hikari-systems/image-service/config"
	"github.com/hikari-systems/image-service/internal/usecase"
	"github.com/hikari-systems/image-service/pkg/logger"
)

// NewImageRoutes registers the image API. Paths are kept exactly as
// the service's existing consumers expect them.
func NewImageRoutes(router fiber.Router, profile *config.Profile, img usecase.ImageUseCase, uploadDir string, l logger.Interface) {
	r := &V1{img: img, profile: profile, uploadDir: uploadDir, logger: l}

	{
		router.Get("/api/image/r/:id/:size", r.getResizedImage)
		router.Get("/api/image/:id", r.getImage)
		router.Post("/api/image/:id/transcode", r.transcodeImage)
		router.Post("/api/image/:category", r.autoReap, r.uploadImage)

		router.Get("/api/category/list", r.listCategories)
	}
}
