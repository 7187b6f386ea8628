package transcode

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hikari-systems/image-service/config"
	"github.com/hikari-systems/image-service/internal/dto"
	"github.com/hikari-systems/image-service/internal/entity"
	"github.com/hikari-systems/image-service/internal/infrastructure"
	"github.com/hikari-systems/image-service/internal/repo"
	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/tmpfile"
	"github.com/hikari-systems/image-service/pkg/types/errs"
	"golang.org/x/sync/errgroup"
)

const svgMimeType = "image/svg+xml"

// UseCase orchestrates the transcode pipeline: raw bytes to object
// storage, sanitize/normalize pass, per-size derivatives, metadata
// upsert.
type UseCase struct {
	blobs       repo.ImageBlobRepo
	records     repo.ImageRecordRepo
	signer      infrastructure.URLSigner
	transformer infrastructure.ImageTransformer
	sanitizer   infrastructure.SVGSanitizer
	fetcher     infrastructure.RemoteFetcher

	profile     *config.Profile
	maxParallel int

	logger logger.Interface
}

func New(
	blobs repo.ImageBlobRepo,
	records repo.ImageRecordRepo,
	signer infrastructure.URLSigner,
	transformer infrastructure.ImageTransformer,
	sanitizer infrastructure.SVGSanitizer,
	fetcher infrastructure.RemoteFetcher,
	profile *config.Profile,
	maxParallel int,
	l logger.Interface,
) *UseCase {
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &UseCase{
		blobs:       blobs,
		records:     records,
		signer:      signer,
		transformer: transformer,
		sanitizer:   sanitizer,
		fetcher:     fetcher,
		profile:     profile,
		maxParallel: maxParallel,
		logger:      l,
	}
}

// Ingest stores the raw input under {category}-{id}{ext}, upserts the
// record and, unless processing is deferred, continues straight into a
// full transcode. A blob stored without its metadata write is left
// orphaned on purpose: there is no compensating delete.
func (uc *UseCase) Ingest(ctx context.Context, in dto.IngestInput) (*dto.TranscodeOutcome, error) {
	rec := in.Existing
	if rec == nil {
		now := time.Now().UTC()
		rec = &entity.ImageRecord{ID: uuid.NewString(), CreatedAt: &now}
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	category := normalizeCategory(in.Category)
	key := fmt.Sprintf("%s-%s%s", category, rec.ID, in.Extension)

	if err := uc.blobs.UploadFile(ctx, key, in.LocalPath, in.MimeType); err != nil {
		return nil, fmt.Errorf("UseCase - Ingest - uc.blobs.UploadFile: %w", err)
	}

	rec.Category = category
	rec.DownloadedS3Path = key
	if in.SourceURL != "" {
		rec.SourceURL = in.SourceURL
	}

	stored, err := uc.records.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("UseCase - Ingest - uc.records.Upsert: %w", err)
	}

	if in.ForceImmediate || !uc.profile.Deferred() {
		return uc.Transcode(ctx, in.LocalPath, stored, in.MimeType)
	}

	return &dto.TranscodeOutcome{Record: stored}, nil
}

// Transcode derives the canonical original plus every configured size
// for the record's category and overwrites the stored document.
// Derivatives are generated concurrently, bounded by maxParallel.
// Failed sizes are reported per size; successful ones are persisted.
func (uc *UseCase) Transcode(ctx context.Context, localPath string, rec *entity.ImageRecord, mimeType string) (*dto.TranscodeOutcome, error) {
	uc.logger.Debug("UseCase - Transcode - image=%s id=%s", localPath, rec.ID)

	category := normalizeCategory(rec.Category)
	origExt := uc.profile.Original.Extension

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	// keep only the bits this transcode does not regenerate
	updated := &entity.ImageRecord{
		ID:               id,
		Category:         category,
		AvoidResizeUntil: rec.AvoidResizeUntil,
		SourceURL:        rec.SourceURL,
		CreatedAt:        rec.CreatedAt,
		DownloadedS3Path: rec.DownloadedS3Path,
		OriginalS3Path:   fmt.Sprintf("%s-%s-original%s", category, id, origExt),
		Version:          rec.Version,
	}

	if mimeType == svgMimeType {
		sanitized, err := uc.sanitizer.Sanitize(ctx, localPath)
		if err != nil {
			return nil, fmt.Errorf("UseCase - Transcode - uc.sanitizer.Sanitize: %w", err)
		}
		if err := uc.uploadAndRemove(ctx, sanitized, updated.OriginalS3Path, svgMimeType); err != nil {
			return nil, fmt.Errorf("UseCase - Transcode - original svg upload: %w", err)
		}
	} else {
		// normalize/re-encode pass, no target dimensions
		normalized, err := uc.transformer.Transform(ctx, localPath, 0, 0, "", origExt)
		if err != nil {
			return nil, fmt.Errorf("UseCase - Transcode - uc.transformer.Transform: %w", err)
		}
		if err := uc.uploadAndRemove(ctx, normalized, updated.OriginalS3Path, uc.profile.Original.MimeType); err != nil {
			return nil, fmt.Errorf("UseCase - Transcode - original upload: %w", err)
		}
	}

	sizes := uc.profile.SizesFor(category)

	scaled := make([]entity.ScaledImage, len(sizes))
	scaleErrs := make([]error, len(sizes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.maxParallel)

	for i, sizeKey := range sizes {
		g.Go(func() error {
			sc, err := uc.scale(gctx, localPath, updated, sizeKey)
			if err != nil {
				scaleErrs[i] = err

				return nil
			}

			scaled[i] = sc

			return nil
		})
	}

	// errors are collected per size, never returned from the group
	_ = g.Wait()

	var failed []dto.SizeFailure
	resized := make([]entity.ScaledImage, 0, len(sizes))
	for i := range sizes {
		if scaleErrs[i] != nil {
			uc.logger.Error(fmt.Errorf("UseCase - Transcode - size %s: %w", sizes[i], scaleErrs[i]))
			failed = append(failed, dto.SizeFailure{Size: sizes[i], Err: scaleErrs[i]})

			continue
		}

		resized = append(resized, scaled[i])
	}
	updated.ResizedFiles = resized

	stored, err := uc.records.Upsert(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("UseCase - Transcode - uc.records.Upsert: %w", err)
	}

	return &dto.TranscodeOutcome{Record: stored, FailedSizes: failed}, nil
}

func (uc *UseCase) scale(ctx context.Context, sourcePath string, rec *entity.ImageRecord, sizeKey string) (entity.ScaledImage, error) {
	spec, ok := uc.profile.Size(sizeKey)
	if !ok {
		return entity.ScaledImage{}, fmt.Errorf("UseCase - scale - %q: %w", sizeKey, errs.ErrUnknownSizeKey)
	}

	outPath, err := uc.transformer.Transform(ctx, sourcePath, spec.Width, spec.Height, spec.ExtraArgs, spec.Extension)
	if err != nil {
		return entity.ScaledImage{}, fmt.Errorf("UseCase - scale - uc.transformer.Transform: %w", err)
	}

	key := fmt.Sprintf("%s-%s-%s%s", rec.Category, rec.ID, sizeKey, spec.Extension)
	if err := uc.uploadAndRemove(ctx, outPath, key, spec.MimeType); err != nil {
		return entity.ScaledImage{}, fmt.Errorf("UseCase - scale - upload %s: %w", key, err)
	}

	return entity.ScaledImage{Size: sizeKey, S3Path: key}, nil
}

// uploadAndRemove deletes the local file whether or not the upload
// succeeded.
func (uc *UseCase) uploadAndRemove(ctx context.Context, localPath, key, mimeType string) error {
	err := uc.blobs.UploadFile(ctx, key, localPath, mimeType)

	if rmErr := os.Remove(localPath); rmErr != nil {
		uc.logger.Warn("failed to remove temp file %s: %v", localPath, rmErr)
	}

	return err
}

// FullTranscode re-runs the whole pipeline for an already-catalogued
// record. Records never fetched are pulled from their source URL;
// already-fetched ones are round-tripped back down through the CDN.
func (uc *UseCase) FullTranscode(ctx context.Context, rec *entity.ImageRecord) (*dto.TranscodeOutcome, error) {
	if rec.DownloadedS3Path == "" {
		if rec.SourceURL == "" {
			return nil, fmt.Errorf("UseCase - FullTranscode - id=%s: %w", rec.ID, errs.ErrNoImageSource)
		}

		parsed, err := url.Parse(rec.SourceURL)
		if err != nil {
			return nil, fmt.Errorf("UseCase - FullTranscode - url.Parse: %w", err)
		}
		ext := extensionFromPath(parsed.Path)

		category := normalizeCategory(rec.Category)
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}

		localPath, mimeType, err := uc.fetcher.Fetch(ctx, rec.SourceURL, tmpfile.Name(""), ext)
		if err != nil {
			return nil, fmt.Errorf("UseCase - FullTranscode - uc.fetcher.Fetch: %w", err)
		}
		defer uc.removeScratch(localPath)

		key := fmt.Sprintf("%s-%s%s", category, rec.ID, ext)
		if err := uc.blobs.UploadFile(ctx, key, localPath, mimeType); err != nil {
			return nil, fmt.Errorf("UseCase - FullTranscode - uc.blobs.UploadFile: %w", err)
		}

		fetched := *rec
		fetched.DownloadedS3Path = key

		return uc.Transcode(ctx, localPath, &fetched, mimeType)
	}

	ext := extensionFromPath(rec.DownloadedS3Path)

	dlURL, err := uc.signer.SignedURL(ctx, rec.DownloadedS3Path)
	if err != nil {
		return nil, fmt.Errorf("UseCase - FullTranscode - uc.signer.SignedURL: %w", err)
	}

	localPath, mimeType, err := uc.fetcher.Fetch(ctx, dlURL, tmpfile.Name(""), ext)
	if err != nil {
		return nil, fmt.Errorf("UseCase - FullTranscode - uc.fetcher.Fetch: %w", err)
	}
	defer uc.removeScratch(localPath)

	return uc.Transcode(ctx, localPath, rec, mimeType)
}

func (uc *UseCase) removeScratch(path string) {
	if err := os.Remove(path); err != nil {
		uc.logger.Warn("failed to remove scratch file %s: %v", path, err)
	}
}

func (uc *UseCase) Get(ctx context.Context, id string) (*entity.ImageRecord, error) {
	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UseCase - Get - uc.records.Get: %w", err)
	}

	return rec, nil
}

// Descriptor resolves the record's public original URL: signed
// downloaded path first, raw source URL second.
func (uc *UseCase) Descriptor(ctx context.Context, id string) (*dto.ImageDescriptor, error) {
	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UseCase - Descriptor - uc.records.Get: %w", err)
	}

	if rec.DownloadedS3Path != "" {
		signed, err := uc.signer.SignedURL(ctx, rec.DownloadedS3Path)
		if err != nil {
			return nil, fmt.Errorf("UseCase - Descriptor - uc.signer.SignedURL: %w", err)
		}

		return &dto.ImageDescriptor{ImageRecord: rec, OriginalFileURL: signed}, nil
	}

	if rec.SourceURL != "" {
		return &dto.ImageDescriptor{ImageRecord: rec, OriginalFileURL: rec.SourceURL}, nil
	}

	uc.logger.Warn("image %s has neither downloaded path nor source url", id)

	return nil, fmt.Errorf("UseCase - Descriptor - id=%s: %w", id, errs.ErrNoUsableImage)
}

// VariantURL resolves the redirect target for a size request, falling
// back matching size -> original -> downloaded -> raw source URL.
func (uc *UseCase) VariantURL(ctx context.Context, id, size string) (string, error) {
	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("UseCase - VariantURL - uc.records.Get: %w", err)
	}

	if sc, ok := rec.ResizedFor(size); ok {
		return uc.sign(ctx, sc.S3Path)
	}
	if rec.OriginalS3Path != "" {
		return uc.sign(ctx, rec.OriginalS3Path)
	}
	if rec.DownloadedS3Path != "" {
		return uc.sign(ctx, rec.DownloadedS3Path)
	}
	if rec.SourceURL != "" {
		return rec.SourceURL, nil
	}

	return "", fmt.Errorf("UseCase - VariantURL - id=%s: %w", id, errs.ErrNoUsableImage)
}

func (uc *UseCase) sign(ctx context.Context, key string) (string, error) {
	signed, err := uc.signer.SignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("UseCase - sign - uc.signer.SignedURL: %w", err)
	}

	return signed, nil
}

// ListPendingTranscodes returns records that were fetched but never
// transcoded and whose resize hold, if any, has passed.
func (uc *UseCase) ListPendingTranscodes(ctx context.Context, now time.Time, limit int) ([]*entity.ImageRecord, error) {
	all, err := uc.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("UseCase - ListPendingTranscodes - uc.records.List: %w", err)
	}

	pending := make([]*entity.ImageRecord, 0, limit)
	for _, rec := range all {
		if rec.DownloadedS3Path == "" || rec.OriginalS3Path != "" {
			continue
		}
		if rec.AvoidResizeUntil != nil && rec.AvoidResizeUntil.After(now) {
			continue
		}

		pending = append(pending, rec)
		if len(pending) == limit {
			break
		}
	}

	return pending, nil
}
