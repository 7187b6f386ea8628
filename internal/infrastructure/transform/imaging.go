package transform

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/hikari-systems/image-service/pkg/tmpfile"
)

// ImagingTransformer is the in-process engine, used when no ImageMagick
// binary is configured. extraArgs only makes sense for the external
// tool and is ignored here.
type ImagingTransformer struct{}

func NewImaging() *ImagingTransformer {
	return &ImagingTransformer{}
}

func (t *ImagingTransformer) Transform(ctx context.Context, sourcePath string, width, height int, extraArgs, outExt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("ImagingTransformer - Transform: %w", err)
	}

	img, err := imaging.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("ImagingTransformer - Transform - imaging.Open: %w", err)
	}

	// matches ImageMagick -resize WxH: fit within the box, keep aspect
	switch {
	case width > 0 && height > 0:
		img = imaging.Fit(img, width, height, imaging.Lanczos)
	case width > 0:
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	case height > 0:
		img = imaging.Resize(img, 0, height, imaging.Lanczos)
	}

	destPath := tmpfile.Name(outExt)
	if err := imaging.Save(img, destPath); err != nil {
		return "", fmt.Errorf("ImagingTransformer - Transform - imaging.Save: %w", err)
	}

	return destPath, nil
}
