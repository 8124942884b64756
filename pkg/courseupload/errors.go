package courseupload

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrCredentialsNotConfigured indicates server-side login credentials
	// are missing from configuration. Fatal; never retried.
	ErrCredentialsNotConfigured = errors.New("login credentials not configured")

	// ErrLoginRejected indicates the course service rejected a login attempt
	ErrLoginRejected = errors.New("login rejected")

	// ErrRecordNotFound indicates a file record was not found
	ErrRecordNotFound = errors.New("file record not found")

	// ErrEmptyBatch indicates an upload batch contained no files
	ErrEmptyBatch = errors.New("upload batch contains no files")
)

// UpstreamError represents a non-success response from the course service or
// the object store. It carries the upstream HTTP status and body so the
// failure can be diagnosed by the caller; the pipeline never retries these.
type UpstreamError struct {
	Stage      UploadStage
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream failure at stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("upstream failure at stage %s: status %d: %s", e.Stage, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UploadError wraps a failure of one file's pipeline run with the file name
// and the stage that failed.
type UploadError struct {
	FileName string
	Stage    UploadStage
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed at stage %s: %v", e.FileName, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
