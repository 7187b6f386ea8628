package usecase

import (
	"context"
	"time"

	"github.com/hikari-systems/image-service/internal/dto"
	"github.com/hikari-systems/image-service/internal/entity"
)

type (
	// ImageUseCase is the transcode orchestrator: raw input in, fully
	// catalogued image record out.
	ImageUseCase interface {
		Ingest(ctx context.Context, in dto.IngestInput) (*dto.TranscodeOutcome, error)
		FullTranscode(ctx context.Context, rec *entity.ImageRecord) (*dto.TranscodeOutcome, error)
		Get(ctx context.Context, id string) (*entity.ImageRecord, error)
		Descriptor(ctx context.Context, id string) (*dto.ImageDescriptor, error)
		VariantURL(ctx context.Context, id, size string) (string, error)
		ListPendingTranscodes(ctx context.Context, now time.Time, limit int) ([]*entity.ImageRecord, error)
	}
)
