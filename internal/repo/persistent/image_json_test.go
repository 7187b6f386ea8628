package persistent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hikari-systems/image-service/internal/entity"
	"github.com/hikari-systems/image-service/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*ImageRecordRepo, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := NewImageRecordRepo(dir)
	require.NoError(t, err)

	return repo, dir
}

func TestUpsertGeneratesIDAndWritesDocument(t *testing.T) {
	repo, dir := newTestRepo(t)

	stored, err := repo.Upsert(context.Background(), &entity.ImageRecord{Category: "avatar"})
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, int64(1), stored.Version)

	_, err = os.Stat(filepath.Join(dir, stored.ID+".json"))
	require.NoError(t, err)
}

func TestGetRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	stored, err := repo.Upsert(context.Background(), &entity.ImageRecord{
		ID:               "img-1",
		Category:         "avatar",
		SourceURL:        "https://example.com/cat.jpg",
		DownloadedS3Path: "avatar-img-1.jpg",
		OriginalS3Path:   "avatar-img-1-original.png",
		ResizedFiles: []entity.ScaledImage{
			{Size: "thumb", S3Path: "avatar-img-1-thumb.png"},
		},
		CreatedAt: &now,
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), "img-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestGetMissingRecord(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestUpsertFromGetSucceeds(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Upsert(context.Background(), &entity.ImageRecord{ID: "img-2", Category: "avatar"})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), "img-2")
	require.NoError(t, err)

	got.Category = "banner"
	updated, err := repo.Upsert(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, "banner", updated.Category)
	assert.Equal(t, int64(2), updated.Version)
}

func TestUpsertRejectsStaleVersion(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.Upsert(context.Background(), &entity.ImageRecord{ID: "img-3"})
	require.NoError(t, err)

	// a second writer updates the record
	_, err = repo.Upsert(context.Background(), first)
	require.NoError(t, err)

	// the first writer tries again with its now-stale copy
	_, err = repo.Upsert(context.Background(), first)
	require.ErrorIs(t, err, errs.ErrVersionConflict)
}

func TestUpsertReplacesWholeDocument(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Upsert(context.Background(), &entity.ImageRecord{
		ID:        "img-4",
		SourceURL: "https://example.com/a.png",
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), "img-4")
	require.NoError(t, err)

	got.SourceURL = ""
	got.DownloadedS3Path = "image-img-4.png"
	_, err = repo.Upsert(context.Background(), got)
	require.NoError(t, err)

	reread, err := repo.Get(context.Background(), "img-4")
	require.NoError(t, err)
	assert.Empty(t, reread.SourceURL)
	assert.Equal(t, "image-img-4.png", reread.DownloadedS3Path)
}

func TestListSkipsForeignFiles(t *testing.T) {
	repo, dir := newTestRepo(t)

	_, err := repo.Upsert(context.Background(), &entity.ImageRecord{ID: "img-5"})
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), &entity.ImageRecord{ID: "img-6"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
