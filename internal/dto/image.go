package dto

import "github.com/hikari-systems/image-service/internal/entity"

// IngestInput describes one raw image arriving either as an upload or
// as downloaded remote bytes.
type IngestInput struct {
	LocalPath string
	Extension string
	MimeType  string
	Category  string
	SourceURL string

	// ForceImmediate transcodes inline even when the profile says
	// deferred.
	ForceImmediate bool

	// Existing, when set, makes the ingest overwrite that record
	// instead of creating a fresh one.
	Existing *entity.ImageRecord
}

// SizeFailure reports one derivative that could not be generated.
type SizeFailure struct {
	Size string
	Err  error
}

// TranscodeOutcome carries the stored record plus any per-size
// failures. Successful derivatives are persisted even when some sizes
// failed.
type TranscodeOutcome struct {
	Record      *entity.ImageRecord
	FailedSizes []SizeFailure
}

// ImageDescriptor is a record with its resolved public original URL.
type ImageDescriptor struct {
	*entity.ImageRecord
	OriginalFileURL string `json:"originalFileUrl"`
}
