package obs_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-upload/pkg/courseupload"
	"github.com/tendant/course-upload/pkg/courseupload/obs"
)

// roundTripFunc lets tests intercept the outbound PUT without a network
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func fakeClient(status int, body string, capture **http.Request) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		*capture = r
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}
}

func testCredential() *courseupload.StorageCredential {
	return &courseupload.StorageCredential{
		AccessKey:     "AKIA",
		SecretKey:     "SECRET",
		SecurityToken: "TOKEN",
		Endpoint:      "obs.cn-north-4.myhuaweicloud.com",
		Bucket:        "course-media",
		Domain:        "https://cdn.example.com",
	}
}

func TestSignedUpload(t *testing.T) {
	var got *http.Request
	u := obs.NewSignedUploader("cn-north-4")
	u.HTTP = fakeClient(http.StatusOK, "", &got)
	u.Now = func() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) }

	url, err := u.Upload(context.Background(), testCredential(),
		"resources/web/1736899200000.png", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resources/web/1736899200000.png", url)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "course-media.obs.cn-north-4.myhuaweicloud.com", got.URL.Host)
	assert.Equal(t, "/resources/web/1736899200000.png", got.URL.Path)
	assert.Equal(t, "20250115T000000Z", got.Header.Get("x-amz-date"))
	assert.Equal(t, "TOKEN", got.Header.Get("x-amz-security-token"))
	assert.Equal(t, "UNSIGNED-PAYLOAD", got.Header.Get("x-amz-content-sha256"))
	assert.Equal(t, "image/png", got.Header.Get("Content-Type"))
	assert.Equal(t, int64(4), got.ContentLength)

	auth := got.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIA/20250115/cn-north-4/s3/aws4_request"))
	assert.Contains(t, auth, "SignedHeaders=host;x-amz-date;x-amz-security-token")
	assert.Contains(t, auth, "Signature=")
}

func TestSignedUploadNon2xx(t *testing.T) {
	var got *http.Request
	u := obs.NewSignedUploader("")
	u.HTTP = fakeClient(http.StatusForbidden, "<Error>AccessDenied</Error>", &got)

	_, err := u.Upload(context.Background(), testCredential(),
		"resources/web/1.png", "image/png", 1, strings.NewReader("x"))

	var ue *courseupload.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, courseupload.StageStored, ue.Stage)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Contains(t, ue.Body, "AccessDenied")
}

func TestQueryTokenUpload(t *testing.T) {
	var got *http.Request
	u := obs.NewQueryTokenUploader()
	u.HTTP = fakeClient(http.StatusOK, "", &got)

	url, err := u.Upload(context.Background(), testCredential(),
		"resources/web/2.pdf", "", 3, strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resources/web/2.pdf", url)

	require.NotNil(t, got)
	assert.Equal(t, "TOKEN", got.URL.Query().Get("x-obs-security-token"))
	assert.Equal(t, "public-read", got.Header.Get("x-obs-acl"))
	assert.Equal(t, "application/octet-stream", got.Header.Get("Content-Type"))

	// This variant skips the signer entirely
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("x-amz-date"))
}

func TestQueryTokenUploadNon2xx(t *testing.T) {
	var got *http.Request
	u := obs.NewQueryTokenUploader()
	u.HTTP = fakeClient(http.StatusServiceUnavailable, "busy", &got)

	_, err := u.Upload(context.Background(), testCredential(), "p", "", 1, strings.NewReader("x"))

	var ue *courseupload.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
	assert.Equal(t, "busy", ue.Body)
}

func TestPublicURLTrimsDomainSlash(t *testing.T) {
	cred := testCredential()
	cred.Domain = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/resources/web/1.png", obs.PublicURL(cred, "resources/web/1.png"))
}
