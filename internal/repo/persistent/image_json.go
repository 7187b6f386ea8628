package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hikari-systems/image-service/internal/entity"
	"github.com/hikari-systems/image-service/pkg/types/errs"
)

// ImageRecordRepo stores one {id}.json document per image under a base
// path. Writes replace the whole document; a version stamp rejects
// stale writers.
type ImageRecordRepo struct {
	parentPath string

	mu sync.Mutex
}

func NewImageRecordRepo(parentPath string) (*ImageRecordRepo, error) {
	if err := os.MkdirAll(parentPath, 0o755); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - New - os.MkdirAll: %w", err)
	}

	return &ImageRecordRepo{parentPath: parentPath}, nil
}

func (r *ImageRecordRepo) path(id string) string {
	return filepath.Join(r.parentPath, id+".json")
}

func (r *ImageRecordRepo) Get(ctx context.Context, id string) (*entity.ImageRecord, error) {
	raw, err := os.ReadFile(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ImageRecordRepo - Get - id=%s: %w", id, errs.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - Get - os.ReadFile: %w", err)
	}

	rec := &entity.ImageRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - Get - json.Unmarshal: %w", err)
	}

	return rec, nil
}

// Upsert writes the full document, generating an id when absent. The
// caller's version must match the stored one; on mismatch the write is
// rejected with ErrVersionConflict so a lost update is detected rather
// than silently absorbed.
func (r *ImageRecordRepo) Upsert(ctx context.Context, rec *entity.ImageRecord) (*entity.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *rec
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	current, err := r.Get(ctx, out.ID)
	switch {
	case errors.Is(err, errs.ErrRecordNotFound):
		// fresh document
	case err != nil:
		return nil, fmt.Errorf("ImageRecordRepo - Upsert - r.Get: %w", err)
	case current.Version != out.Version:
		return nil, fmt.Errorf("ImageRecordRepo - Upsert - id=%s stored=%d given=%d: %w",
			out.ID, current.Version, out.Version, errs.ErrVersionConflict)
	}

	out.Version++

	raw, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - Upsert - json.Marshal: %w", err)
	}

	// write-then-rename keeps readers from ever seeing a torn document
	tmp := r.path(out.ID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - Upsert - os.WriteFile: %w", err)
	}
	if err := os.Rename(tmp, r.path(out.ID)); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - Upsert - os.Rename: %w", err)
	}

	return &out, nil
}

// List reads every stored document. Unparsable files are skipped so a
// single corrupt document cannot take the listing down.
func (r *ImageRecordRepo) List(ctx context.Context) ([]*entity.ImageRecord, error) {
	entries, err := os.ReadDir(r.parentPath)
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - List - os.ReadDir: %w", err)
	}

	records := make([]*entity.ImageRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		rec, err := r.Get(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}
