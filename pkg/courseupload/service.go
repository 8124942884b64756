package courseupload

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the course-upload library
type Service interface {
	// UploadBatch drives each file through the upload pipeline: path
	// derivation, credential fetch, object-store write, course-service
	// registration, optional course attachment, metadata persistence.
	// Files are independent; the outcome slice is index-aligned with the
	// request and reports per-file failures.
	UploadBatch(ctx context.Context, req UploadBatchRequest) ([]UploadOutcome, error)

	// GetAuthToken returns a usable platform token, logging in and caching
	// the result when no cached token exists or force is set
	GetAuthToken(ctx context.Context, force bool) (string, error)

	// Login authenticates caller-supplied credentials against the platform
	Login(ctx context.Context, loginName, password string) (string, error)

	// CompleteUpload registers a file whose bytes the caller already wrote
	// to the object store, optionally attaches it to a course, and records it
	CompleteUpload(ctx context.Context, req CompleteUploadRequest) (*FileRecord, error)

	// PublishContent attaches previously registered content to a course
	PublishContent(ctx context.Context, authToken, contentID, courseID string) error

	// ListFiles returns recorded files, newest first
	ListFiles(ctx context.Context, req ListFilesRequest) ([]*FileRecord, error)

	// DeleteFile removes a file record by id; deleting an unknown id is a
	// no-op
	DeleteFile(ctx context.Context, id uuid.UUID) error
}
