package upload

import "errors"

var (
	// ErrTooLarge indicates the request body exceeded the configured ceiling.
	ErrTooLarge = errors.New("upload.too_large")

	// ErrMalformedBody indicates the multipart body could not be parsed.
	ErrMalformedBody = errors.New("upload.malformed_body")

	// ErrNoFile indicates the expected file field was absent.
	ErrNoFile = errors.New("upload.no_file")

	// ErrStaging indicates a failure writing to the staging area.
	ErrStaging = errors.New("upload.staging_failed")
)
