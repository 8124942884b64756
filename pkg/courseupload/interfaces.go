package courseupload

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// CourseClient defines the interface to the course-management platform. It
// owns login tokens, issues path-scoped storage credentials, and catalogues
// uploaded content.
type CourseClient interface {
	// Login exchanges login credentials for an opaque bearer token
	Login(ctx context.Context, loginName, password string) (string, error)

	// UploadToken issues a temporary storage credential scoped to remotePath
	UploadToken(ctx context.Context, authToken, remotePath string) (*StorageCredential, error)

	// NotifyUpload registers a stored object with the course service and
	// returns the opaque content identifier
	NotifyUpload(ctx context.Context, authToken string, n Notification) (string, error)

	// Publish attaches previously registered content to a course
	Publish(ctx context.Context, authToken, contentID, courseID string) (string, error)
}

// Notification describes a completed object-store write for registration
// with the course service.
type Notification struct {
	Title    string
	Size     int64
	URL      string
	TypeHint string // extension-derived, e.g. "png"
}

// Uploader performs the object-store PUT for one file. Implementations
// differ in trust model: the signed variant authorizes via a derived request
// signature, the query-token variant asks the store to trust the security
// token directly.
type Uploader interface {
	Upload(ctx context.Context, cred *StorageCredential, remotePath, contentType string, size int64, body io.Reader) (string, error)
}

// SessionCache defines the short-TTL key/value cache used to avoid repeated
// logins. Implementations must treat expired entries as absent.
type SessionCache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// Repository defines the interface for file record persistence
type Repository interface {
	// Insert persists a file record
	Insert(ctx context.Context, record *FileRecord) error

	// List returns records matching the filter, newest first
	List(ctx context.Context, filter ListFilter) ([]*FileRecord, error)

	// Delete removes the record with the given id. Deleting an id that does
	// not exist is a no-op, not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilter restricts List results.
type ListFilter struct {
	// MimePrefix, when set, matches records whose mime type starts with the
	// prefix (e.g. "image/").
	MimePrefix string
}
