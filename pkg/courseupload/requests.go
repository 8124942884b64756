package courseupload

// Request/Response DTOs

// UploadBatchRequest contains parameters for uploading a batch of files.
// Files are uploaded independently; one file's failure does not abort the
// others.
type UploadBatchRequest struct {
	// Files to upload, in caller order
	Files []UploadFile

	// CourseID, when set, attaches each catalogued file to the course
	CourseID string

	// AuthToken, when set, is used as-is instead of the broker's cached
	// server-side token
	AuthToken string
}

// CompleteUploadRequest contains parameters for registering a file whose
// bytes were already written to the object store by the caller.
type CompleteUploadRequest struct {
	FileName  string
	FileURL   string
	FileSize  int64
	CourseID  string
	AuthToken string
}

// ListFilesRequest contains parameters for listing file records
type ListFilesRequest struct {
	// Type filters records by kind; currently only "image" is recognized
	Type string
}
