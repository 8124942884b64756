// Package api exposes the upload service over HTTP. The handlers are a thin
// layer: request decoding, auth-header plumbing and error mapping only.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-upload/pkg/courseupload"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory
const maxUploadMemory = 32 << 20 // 32 MiB

// FilesHandler handles file upload and management API endpoints
type FilesHandler struct {
	service         courseupload.Service
	defaultCourseID string
}

// NewFilesHandler creates a new files handler. defaultCourseID, when
// non-empty, is used for uploads that do not carry their own course id.
func NewFilesHandler(service courseupload.Service, defaultCourseID string) *FilesHandler {
	return &FilesHandler{
		service:         service,
		defaultCourseID: defaultCourseID,
	}
}

// Routes returns the router for file endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Post("/complete", h.Complete)
	r.Post("/publish", h.Publish)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)
	return r
}

// UploadedFileResponse is one entry of the batch upload response
type UploadedFileResponse struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	ContentID string `json:"content_id,omitempty"`
	Stage     string `json:"stage"`
	Error     string `json:"error,omitempty"`
	// PublishError is set when the file was catalogued but could not be
	// attached to the requested course
	PublishError string `json:"publish_error,omitempty"`
}

// Upload accepts a multipart batch under the "files" field and drives each
// file through the upload pipeline. Partial failure yields 207.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		renderError(w, r, http.StatusBadRequest, courseupload.ErrEmptyBatch)
		return
	}

	courseID := r.FormValue("courseId")
	if courseID == "" {
		courseID = h.defaultCourseID
	}

	var files []courseupload.UploadFile
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			renderError(w, r, http.StatusBadRequest, err)
			return
		}
		defer f.Close()
		files = append(files, courseupload.UploadFile{
			Name:     fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Body:     f,
		})
	}

	outcomes, err := h.service.UploadBatch(r.Context(), courseupload.UploadBatchRequest{
		Files:     files,
		CourseID:  courseID,
		AuthToken: bearerToken(r),
	})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := make([]UploadedFileResponse, len(outcomes))
	failed := false
	for i, out := range outcomes {
		resp[i] = UploadedFileResponse{
			Name:      out.Name,
			URL:       out.URL,
			ContentID: out.ContentID,
			Stage:     string(out.Stage),
		}
		if out.Err != nil {
			failed = true
			resp[i].Error = out.Err.Error()
		}
		if out.PublishErr != nil {
			resp[i].PublishError = out.PublishErr.Error()
		}
	}

	if failed {
		render.Status(r, http.StatusMultiStatus)
	}
	render.JSON(w, r, map[string]interface{}{"files": resp})
}

// CompleteRequest registers bytes the browser already wrote to the store
type CompleteRequest struct {
	AuthToken string `json:"authToken,omitempty"`
	FileName  string `json:"fileName"`
	FileURL   string `json:"fileUrl"`
	FileSize  int64  `json:"fileSize"`
	CourseID  string `json:"courseId,omitempty"`
}

func (h *FilesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.FileName == "" || req.FileURL == "" {
		renderError(w, r, http.StatusBadRequest, errors.New("fileName and fileUrl are required"))
		return
	}

	authToken := req.AuthToken
	if authToken == "" {
		authToken = bearerToken(r)
	}

	record, err := h.service.CompleteUpload(r.Context(), courseupload.CompleteUploadRequest{
		FileName:  req.FileName,
		FileURL:   req.FileURL,
		FileSize:  req.FileSize,
		CourseID:  req.CourseID,
		AuthToken: authToken,
	})
	if err != nil && record == nil {
		renderServiceError(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"contentId": record.ContentID,
		"fileUrl":   record.URL,
	}
	if err != nil {
		// Catalogued but unattached
		resp["publishError"] = err.Error()
	}
	render.JSON(w, r, resp)
}

// PublishRequest attaches registered content to a course
type PublishRequest struct {
	ContentID string `json:"contentId"`
	CourseID  string `json:"courseId"`
}

func (h *FilesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.ContentID == "" || req.CourseID == "" {
		renderError(w, r, http.StatusBadRequest, errors.New("contentId and courseId are required"))
		return
	}

	if err := h.service.PublishContent(r.Context(), bearerToken(r), req.ContentID, req.CourseID); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListFiles(r.Context(), courseupload.ListFilesRequest{
		Type: r.URL.Query().Get("type"),
	})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*courseupload.FileRecord{}
	}
	render.JSON(w, r, map[string]interface{}{"files": records})
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, errors.New("invalid file id"))
		return
	}

	if err := h.service.DeleteFile(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

// bearerToken extracts the caller-supplied platform token, tolerating the
// Bearer prefix browsers add
func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

// renderServiceError maps the error taxonomy onto HTTP statuses: missing
// configuration and rejected logins are the caller's problem, upstream
// failures are gateway errors, everything else is internal.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *courseupload.UpstreamError
	switch {
	case errors.Is(err, courseupload.ErrCredentialsNotConfigured):
		renderError(w, r, http.StatusInternalServerError, err)
	case errors.Is(err, courseupload.ErrLoginRejected):
		renderError(w, r, http.StatusUnauthorized, err)
	case errors.As(err, &ue):
		renderError(w, r, http.StatusBadGateway, err)
	default:
		slog.Error("request failed", "err", err)
		renderError(w, r, http.StatusInternalServerError, err)
	}
}
