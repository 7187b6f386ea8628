package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfileYAML = `
processing: inline
original:
  extension: .png
  mimeType: image/png
sizeKeys: [thumb, large]
scalingSets:
  avatar: [thumb, large]
  banner: [large]
sizes:
  thumb:
    width: 64
    height: 64
    extension: .png
    mimeType: image/png
    extraArgs: "-strip"
  large:
    width: 512
    height: 512
    extension: .jpg
    mimeType: image/jpeg
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resize.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, testProfileYAML))
	require.NoError(t, err)

	assert.False(t, p.Deferred())
	assert.Equal(t, ".png", p.Original.Extension)

	thumb, ok := p.Size("thumb")
	require.True(t, ok)
	assert.Equal(t, 64, thumb.Width)
	assert.Equal(t, "-strip", thumb.ExtraArgs)
}

func TestSizesForFallsBackToDefault(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, testProfileYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"thumb", "large"}, p.SizesFor("avatar"))
	assert.Equal(t, []string{"large"}, p.SizesFor("banner"))
	assert.Equal(t, []string{"thumb", "large"}, p.SizesFor("unknown"))
	assert.Equal(t, []string{"thumb", "large"}, p.SizesFor(""))
}

func TestSizesForIsCaseInsensitive(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, testProfileYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"large"}, p.SizesFor("Banner"))
}

func TestCategoriesSorted(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, testProfileYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"avatar", "banner"}, p.Categories())
}

func TestLoadProfileRejectsUnknownSizeKey(t *testing.T) {
	broken := `
original:
  extension: .png
  mimeType: image/png
sizeKeys: [missing]
sizes: {}
`
	_, err := LoadProfile(writeProfile(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoadProfileRejectsIncompleteSize(t *testing.T) {
	broken := `
original:
  extension: .png
  mimeType: image/png
sizeKeys: [thumb]
sizes:
  thumb:
    width: 64
`
	_, err := LoadProfile(writeProfile(t, broken))
	require.Error(t, err)
}

func TestDeferredProfile(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, `
processing: deferred
original:
  extension: .png
  mimeType: image/png
`))
	require.NoError(t, err)
	assert.True(t, p.Deferred())
}
