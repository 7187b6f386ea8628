package repo

import (
	"context"
	"io"

	"github.com/hikari-systems/image-service/internal/entity"
)

type (
	// ImageBlobRepo stores raw image bytes under exact keys.
	ImageBlobRepo interface {
		UploadFile(ctx context.Context, key, localPath, contentType string) error
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
	}

	// ImageRecordRepo persists one JSON descriptor per image id with
	// whole-document overwrite semantics.
	ImageRecordRepo interface {
		Get(ctx context.Context, id string) (*entity.ImageRecord, error)
		Upsert(ctx context.Context, rec *entity.ImageRecord) (*entity.ImageRecord, error)
		List(ctx context.Context) ([]*entity.ImageRecord, error)
	}
)
