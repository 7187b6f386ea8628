package infrastructure

import "context"

type (
	// ImageTransformer resizes/re-encodes an image into a fresh temp
	// file and returns its path. Width/height <= 0 leave that axis
	// unconstrained; both unconstrained means a plain normalize pass.
	// The caller owns cleanup of source and output files.
	ImageTransformer interface {
		Transform(ctx context.Context, sourcePath string, width, height int, extraArgs, outExt string) (string, error)
	}

	// SVGSanitizer strips scripting and unsafe markup from a vector
	// image, writing the clean copy to a fresh temp file. No output
	// file is produced on failure.
	SVGSanitizer interface {
		Sanitize(ctx context.Context, sourcePath string) (string, error)
	}

	// RemoteFetcher downloads a URL to destPath+extension and reports
	// the resolved content type.
	RemoteFetcher interface {
		Fetch(ctx context.Context, url, destPath, extension string) (localPath, mimeType string, err error)
	}

	// URLSigner turns a storage key into a publicly fetchable,
	// possibly time-limited, URL.
	URLSigner interface {
		SignedURL(ctx context.Context, key string) (string, error)
	}
)
