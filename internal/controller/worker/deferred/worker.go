package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hikari-systems/image-service/internal/usecase"
	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/types/errs"
)

// Worker picks up records that were ingested in deferred mode (fetched
// but never transcoded) and runs the full transcode on them once their
// resize hold, if any, has passed.
type Worker struct {
	img    usecase.ImageUseCase
	logger logger.Interface

	pollInterval time.Duration
	batchSize    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(img usecase.ImageUseCase, l logger.Interface, pollInterval time.Duration, batchSize int) *Worker {
	return &Worker{
		img:          img,
		logger:       l,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("deferred Worker - Start - worker already started")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.processBatch(w.ctx)
			}
		}
	}()

	return nil
}

func (w *Worker) processBatch(ctx context.Context) {
	pending, err := w.img.ListPendingTranscodes(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		w.logger.Error(fmt.Errorf("deferred Worker - processBatch - w.img.ListPendingTranscodes: %w", err))

		return
	}

	for _, rec := range pending {
		if ctx.Err() != nil {
			return
		}

		if _, err := w.img.FullTranscode(ctx, rec); err != nil {
			// a concurrent transcode of the same id won the write;
			// the record will not show up as pending again
			if errors.Is(err, errs.ErrVersionConflict) {
				w.logger.Debug("deferred Worker - processBatch - lost transcode race for id=%s", rec.ID)

				continue
			}

			w.logger.Error(fmt.Errorf("deferred Worker - processBatch - w.img.FullTranscode id=%s: %w", rec.ID, err))
		}
	}
}

func (w *Worker) Shutdown(ctx context.Context) error {
	if !w.started.Load() {
		return nil
	}

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})

	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
