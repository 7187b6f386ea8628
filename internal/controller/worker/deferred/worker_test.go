package deferred

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hikari-systems/image-service/internal/dto"
	"github.com/hikari-systems/image-service/internal/entity"
	"github.com/hikari-systems/image-service/internal/usecase"
	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	mu sync.Mutex

	pending []*entity.ImageRecord

	transcoded   []string
	transcodeErr error
}

var _ usecase.ImageUseCase = (*fakeUseCase)(nil)

func (f *fakeUseCase) ListPendingTranscodes(_ context.Context, _ time.Time, limit int) ([]*entity.ImageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}

	return f.pending, nil
}

func (f *fakeUseCase) FullTranscode(_ context.Context, rec *entity.ImageRecord) (*dto.TranscodeOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.transcodeErr != nil {
		return nil, f.transcodeErr
	}

	f.transcoded = append(f.transcoded, rec.ID)
	f.pending = nil

	return &dto.TranscodeOutcome{Record: rec}, nil
}

func (f *fakeUseCase) transcodedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.transcoded...)
}

func (f *fakeUseCase) Ingest(_ context.Context, _ dto.IngestInput) (*dto.TranscodeOutcome, error) {
	return nil, nil
}

func (f *fakeUseCase) Get(_ context.Context, _ string) (*entity.ImageRecord, error) {
	return nil, errs.ErrRecordNotFound
}

func (f *fakeUseCase) Descriptor(_ context.Context, _ string) (*dto.ImageDescriptor, error) {
	return nil, errs.ErrRecordNotFound
}

func (f *fakeUseCase) VariantURL(_ context.Context, _, _ string) (string, error) {
	return "", errs.ErrRecordNotFound
}

func TestWorkerTranscodesPendingRecords(t *testing.T) {
	img := &fakeUseCase{
		pending: []*entity.ImageRecord{
			{ID: "img-1", DownloadedS3Path: "image-img-1.png"},
			{ID: "img-2", DownloadedS3Path: "image-img-2.png"},
		},
	}

	w := New(img, logger.New("error"), 10*time.Millisecond, 10)
	require.NoError(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(img.transcodedIDs()) == 2
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))

	assert.ElementsMatch(t, []string{"img-1", "img-2"}, img.transcodedIDs())
}

func TestWorkerSurvivesVersionConflicts(t *testing.T) {
	img := &fakeUseCase{
		pending:      []*entity.ImageRecord{{ID: "img-1", DownloadedS3Path: "image-img-1.png"}},
		transcodeErr: errs.ErrVersionConflict,
	}

	w := New(img, logger.New("error"), 10*time.Millisecond, 10)
	require.NoError(t, w.Start(context.Background()))

	// a couple of poll cycles with nothing but conflicts
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))

	assert.Empty(t, img.transcodedIDs())
}

func TestWorkerStartTwice(t *testing.T) {
	w := New(&fakeUseCase{}, logger.New("error"), time.Hour, 10)
	require.NoError(t, w.Start(context.Background()))
	require.Error(t, w.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))
}

func TestWorkerShutdownBeforeStart(t *testing.T) {
	w := New(&fakeUseCase{}, logger.New("error"), time.Hour, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))
}
