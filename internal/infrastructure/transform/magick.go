package transform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/tmpfile"
)

// MagickTransformer shells out to ImageMagick. Memory and pixel-map
// limits bound what a malformed or adversarial input can consume, and
// every invocation runs under a timeout so a wedged convert cannot pin
// a request forever.
type MagickTransformer struct {
	bin            string
	memoryLimitMiB int
	mapLimitMiB    int
	timeout        time.Duration

	logger logger.Interface
}

func NewMagick(bin string, memoryLimitMiB, mapLimitMiB int, timeout time.Duration, l logger.Interface) *MagickTransformer {
	return &MagickTransformer{
		bin:            bin,
		memoryLimitMiB: memoryLimitMiB,
		mapLimitMiB:    mapLimitMiB,
		timeout:        timeout,
		logger:         l,
	}
}

func (t *MagickTransformer) Transform(ctx context.Context, sourcePath string, width, height int, extraArgs, outExt string) (string, error) {
	destPath := tmpfile.Name(outExt)

	args := []string{
		"-limit", "memory", fmt.Sprintf("%dMiB", t.memoryLimitMiB),
		"-limit", "map", fmt.Sprintf("%dMiB", t.mapLimitMiB),
	}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}
	if width > 0 || height > 0 {
		args = append(args, "-resize", geometry(width, height))
	}
	args = append(args, sourcePath, destPath)

	execCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.logger.Debug("MagickTransformer - Transform - converting %s to %s", sourcePath, destPath)

	out, err := exec.CommandContext(execCtx, t.bin, args...).CombinedOutput()
	if err != nil {
		os.Remove(destPath)

		return "", fmt.Errorf("MagickTransformer - Transform - %s %s: %w: %s",
			t.bin, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	return destPath, nil
}

func geometry(width, height int) string {
	switch {
	case width > 0 && height > 0:
		return fmt.Sprintf("%dx%d", width, height)
	case width > 0:
		return fmt.Sprintf("%dx", width)
	default:
		return fmt.Sprintf("x%d", height)
	}
}
