package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hikari-systems/image-service/pkg/logger"
)

const defaultContentType = "application/octet-stream"

// Downloader fetches remote images to local disk. The body is streamed
// straight to the destination file, so downloads larger than memory
// are fine.
type Downloader struct {
	client *http.Client
	logger logger.Interface
}

func NewDownloader(l logger.Interface) *Downloader {
	return &Downloader{
		client: &http.Client{},
		logger: l,
	}
}

// Fetch GETs url into destPath+extension and returns the final local
// path plus the response content type. Any non-2xx status is an error.
func (d *Downloader) Fetch(ctx context.Context, url, destPath, extension string) (string, string, error) {
	fullDest := destPath + extension

	d.logger.Debug("Downloader - Fetch - downloading %s to %s", url, fullDest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("Downloader - Fetch - http.NewRequestWithContext: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("Downloader - Fetch - d.client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", fmt.Errorf("Downloader - Fetch - %s: status=%d", url, resp.StatusCode)
	}

	out, err := os.Create(fullDest)
	if err != nil {
		return "", "", fmt.Errorf("Downloader - Fetch - os.Create: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(fullDest)

		return "", "", fmt.Errorf("Downloader - Fetch - io.Copy: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(fullDest)

		return "", "", fmt.Errorf("Downloader - Fetch - out.Close: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = defaultContentType
	}

	return fullDest, mimeType, nil
}
