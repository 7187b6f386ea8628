package v1

import (
	"github.com/hikari-systems/image-service/config"
	"github.com/hikari-systems/image-service/internal/usecase"
	"github.com/hikari-systems/image-service/pkg/logger"
)

type V1 struct {
	img       usecase.ImageUseCase
	profile   *config.Profile
	uploadDir string
	logger    logger.Interface
}
