package entity

import "time"

// ScaledImage is one size-specific rendition of an image.
type ScaledImage struct {
	Size   string `json:"size"`
	S3Path string `json:"s3Path"`
}

// ImageRecord is the persisted descriptor for one logical image and
// its derivatives. JSON field names are the service's wire format and
// the on-disk document format, so they must stay stable.
type ImageRecord struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`

	SourceURL        string        `json:"sourceUrl,omitempty"`
	DownloadedS3Path string        `json:"downloadedS3Path,omitempty"`
	OriginalS3Path   string        `json:"originalS3Path,omitempty"`
	ResizedFiles     []ScaledImage `json:"resizedFiles,omitempty"`

	// AvoidResizeUntil is a scheduling hint for the deferred worker;
	// the orchestrator itself only carries it through.
	AvoidResizeUntil *time.Time `json:"avoidResizeUntil,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`

	// Version is bumped by the record store on every write and used to
	// reject stale overwrites.
	Version int64 `json:"version,omitempty"`
}

// ResizedFor returns the first stored derivative with the given size
// key.
func (r *ImageRecord) ResizedFor(size string) (ScaledImage, bool) {
	for _, f := range r.ResizedFiles {
		if f.Size == size {
			return f, true
		}
	}

	return ScaledImage{}, false
}
