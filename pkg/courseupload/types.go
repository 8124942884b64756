package courseupload

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// UploadStage is the domain type for per-file pipeline states.
type UploadStage string

// Upload stage constants (typed). A file moves through these strictly in
// order; a failure freezes the file at the stage that failed.
const (
	StagePending            UploadStage = "pending"
	StagePathAssigned       UploadStage = "path_assigned"
	StageCredentialAcquired UploadStage = "credential_acquired"
	StageStored             UploadStage = "stored"
	StageNotified           UploadStage = "notified"
	StagePublished          UploadStage = "published"
	StageRecorded           UploadStage = "recorded"
)

// StorageCredential is a temporary, single-path scoped credential issued by
// the course service for one object-store write. It is never persisted and
// is discarded after the upload attempt it was fetched for.
type StorageCredential struct {
	AccessKey     string `json:"ak"`
	SecretKey     string `json:"sk"`
	SecurityToken string `json:"securitytoken"`
	Endpoint      string `json:"endpoint"`
	Bucket        string `json:"bucket"`
	Domain        string `json:"domain"`
}

// UploadFile describes one file admitted to the pipeline. Immutable once
// admitted; Body is consumed exactly once during the store step.
type UploadFile struct {
	Name     string
	Size     int64
	MimeType string
	Body     io.Reader
}

// FileRecord is the durable catalog entry linking a stored object to its
// course-service content identifier. Created only after the object is stored
// and the course service has acknowledged registration.
type FileRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	URL       string    `json:"url"`
	ContentID string    `json:"content_id"`
	CourseID  string    `json:"course_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadOutcome reports the result of one file in a batch. Outcomes are
// index-aligned with the batch input. Err is non-nil when the pipeline
// failed before the record was written; PublishErr is non-nil when the asset
// was catalogued but could not be attached to the requested course.
type UploadOutcome struct {
	Name       string      `json:"name"`
	URL        string      `json:"url,omitempty"`
	ContentID  string      `json:"content_id,omitempty"`
	Stage      UploadStage `json:"stage"`
	Record     *FileRecord `json:"record,omitempty"`
	Err        error       `json:"-"`
	PublishErr error       `json:"-"`
}

// Ok reports whether the file reached the recorded stage.
func (o UploadOutcome) Ok() bool {
	return o.Err == nil
}
