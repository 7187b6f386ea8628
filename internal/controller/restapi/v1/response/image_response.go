package response

import (
	"github.com/hikari-systems/image-service/internal/dto"
	"github.com/hikari-systems/image-service/internal/entity"
)

type Error struct {
	Error string `json:"error"`
}

// Image is the upload/transcode response: the stored record plus the
// names of any sizes that could not be generated.
type Image struct {
	entity.ImageRecord
	FailedSizes []string `json:"failedSizes,omitempty"`
}

func NewImage(out *dto.TranscodeOutcome) Image {
	resp := Image{ImageRecord: *out.Record}

	for _, f := range out.FailedSizes {
		resp.FailedSizes = append(resp.FailedSizes, f.Size)
	}

	return resp
}
