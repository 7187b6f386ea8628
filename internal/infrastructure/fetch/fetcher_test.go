package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchStreamsBodyToDisk(t *testing.T) {
	payload := []byte("fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "download")

	localPath, mimeType, err := NewDownloader(logger.New("error")).Fetch(context.Background(), srv.URL, dest, ".png")
	require.NoError(t, err)

	assert.Equal(t, dest+".png", localPath)
	assert.Equal(t, "image/png", mimeType)

	got, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetchDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "download")

	_, mimeType, err := NewDownloader(logger.New("error")).Fetch(context.Background(), srv.URL, dest, ".bin")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mimeType)
}

func TestFetchRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "download")

	_, _, err := NewDownloader(logger.New("error")).Fetch(context.Background(), srv.URL, dest, ".png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")

	_, statErr := os.Stat(dest + ".png")
	assert.Error(t, statErr)
}

func TestFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "download")

	_, _, err := NewDownloader(logger.New("error")).Fetch(ctx, srv.URL, dest, ".png")
	require.Error(t, err)
}
