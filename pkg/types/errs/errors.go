package errs

import "errors"

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
	ErrNoImageSource   = errors.New("no downloaded s3 path and no source url")
	ErrNoUsableImage   = errors.New("no usable image data")
	ErrUnknownSizeKey  = errors.New("unknown size key")
)
