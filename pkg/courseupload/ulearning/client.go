// Package ulearning is the HTTP client for the course-management platform:
// login, storage-credential issuance, content registration and course
// attachment.
package ulearning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tendant/course-upload/pkg/courseupload"
)

const (
	// DefaultBaseURL is the production course-service API host
	DefaultBaseURL = "https://courseapi.ulearning.cn"

	// DefaultOrigin is the browser origin the platform expects on API calls
	DefaultOrigin = "https://courseweb.ulearning.cn"

	// tokenSuccessCode is the business-level success code embedded in the
	// 200 body of the upload-token endpoint
	tokenSuccessCode = 1
)

// Config options for the course-service client
type Config struct {
	BaseURL string
	Origin  string
	Timeout time.Duration
	// HTTPClient overrides the default transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client implements courseupload.CourseClient against the platform HTTP API
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
}

// New creates a course-service client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		origin:  cfg.Origin,
		http:    httpClient,
	}
}

type loginResponse struct {
	Authorization string `json:"authorization"`
}

// Login exchanges login credentials for an opaque bearer token
func (c *Client) Login(ctx context.Context, loginName, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"loginName": loginName,
		"password":  password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", courseupload.ErrLoginRejected, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if lr.Authorization == "" {
		return "", fmt.Errorf("%w: no authorization in response", courseupload.ErrLoginRejected)
	}
	return lr.Authorization, nil
}

type uploadTokenResponse struct {
	Code    int                             `json:"code"`
	Message string                          `json:"message"`
	Result  *courseupload.StorageCredential `json:"result"`
}

// UploadToken issues a temporary storage credential scoped to remotePath.
// A 200 response still fails when the embedded business code is not the
// success value.
func (c *Client) UploadToken(ctx context.Context, authToken, remotePath string) (*courseupload.StorageCredential, error) {
	endpoint := c.baseURL + "/obs/uploadToken?path=" + url.QueryEscape(remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setPlatformHeaders(req, authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &courseupload.UpstreamError{Stage: courseupload.StageCredentialAcquired, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(courseupload.StageCredentialAcquired, resp)
	}

	var tr uploadTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &courseupload.UpstreamError{Stage: courseupload.StageCredentialAcquired, StatusCode: resp.StatusCode, Err: err}
	}
	if tr.Code != tokenSuccessCode || tr.Result == nil {
		return nil, &courseupload.UpstreamError{
			Stage:      courseupload.StageCredentialAcquired,
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("code %d: %s", tr.Code, tr.Message),
		}
	}
	return tr.Result, nil
}

type notifyRequest struct {
	Title       string `json:"title"`
	Type        int    `json:"type"`
	Status      int    `json:"status"`
	ContentSize int64  `json:"contentSize"`
	Location    string `json:"location"`
	MimeType    string `json:"mimeType"`
	IsView      int    `json:"isView"`
	Remark2     int    `json:"remark2"`
	Remark3     int    `json:"remark3"`
}

// NotifyUpload registers a stored object with the course service. The
// response body is opaque and returned verbatim as the content identifier.
func (c *Client) NotifyUpload(ctx context.Context, authToken string, n courseupload.Notification) (string, error) {
	body, err := json.Marshal(notifyRequest{
		Title:       n.Title,
		Type:        1,
		Status:      2,
		ContentSize: n.Size,
		Location:    n.URL,
		MimeType:    n.TypeHint,
		IsView:      0,
		Remark2:     1,
		Remark3:     0,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/course/content/upload?lang=zh", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setPlatformHeaders(req, authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &courseupload.UpstreamError{Stage: courseupload.StageNotified, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError(courseupload.StageNotified, resp)
	}

	contentID, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &courseupload.UpstreamError{Stage: courseupload.StageNotified, StatusCode: resp.StatusCode, Err: err}
	}
	return string(contentID), nil
}

type publishRequest struct {
	OcID       string         `json:"ocId"`
	ContentIDs []publishEntry `json:"contentIds"`
	ParentID   int            `json:"parentId"`
}

type publishEntry struct {
	ID        *int `json:"id"`
	ContentID int  `json:"contentId"`
	LocalType int  `json:"localType"`
}

// Publish attaches previously registered content to a course
func (c *Client) Publish(ctx context.Context, authToken, contentID, courseID string) (string, error) {
	numericID, err := strconv.Atoi(contentID)
	if err != nil {
		return "", fmt.Errorf("content id %q is not numeric: %w", contentID, err)
	}

	body, err := json.Marshal(publishRequest{
		OcID:       courseID,
		ContentIDs: []publishEntry{{ID: nil, ContentID: numericID, LocalType: 0}},
		ParentID:   0,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/course/content?lang=zh", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setPlatformHeaders(req, authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &courseupload.UpstreamError{Stage: courseupload.StagePublished, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError(courseupload.StagePublished, resp)
	}

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &courseupload.UpstreamError{Stage: courseupload.StagePublished, StatusCode: resp.StatusCode, Err: err}
	}
	return string(result), nil
}

// setPlatformHeaders attaches the bearer token and the browser origin
// headers the platform checks on authenticated calls.
func (c *Client) setPlatformHeaders(req *http.Request, authToken string) {
	req.Header.Set("Authorization", authToken)
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Referer", c.origin+"/")
}

func upstreamError(stage courseupload.UploadStage, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &courseupload.UpstreamError{
		Stage:      stage,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
