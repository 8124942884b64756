// Package obs writes file bodies to the object store with the temporary
// credentials issued by the course service.
//
// Two trust models coexist: SignedUploader authorizes the PUT with a derived
// request signature, QueryTokenUploader passes the security token in the
// query string and relies on the store trusting it directly. Both upload the
// full body in one request and return the public URL of the stored object.
package obs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/course-upload/pkg/courseupload"
	"github.com/tendant/course-upload/pkg/courseupload/signer"
)

// DefaultRegion is the region the platform issues credentials for
const DefaultRegion = "cn-north-4"

// Strategy names accepted by configuration
const (
	StrategySigned     = "signed"
	StrategyQueryToken = "query-token"
)

// SignedUploader performs a fully signed PUT: x-amz-date, the security
// token, the UNSIGNED-PAYLOAD marker and the Authorization value produced by
// the signer.
type SignedUploader struct {
	Region string
	HTTP   *http.Client
	// Now supplies the signing timestamp; defaults to time.Now
	Now func() time.Time
}

// NewSignedUploader creates a signed-PUT uploader for the given region
func NewSignedUploader(region string) *SignedUploader {
	if region == "" {
		region = DefaultRegion
	}
	return &SignedUploader{Region: region}
}

func (u *SignedUploader) Upload(ctx context.Context, cred *courseupload.StorageCredential, remotePath, contentType string, size int64, body io.Reader) (string, error) {
	endpoint := fmt.Sprintf("https://%s.%s/%s", cred.Bucket, cred.Endpoint, remotePath)

	now := time.Now()
	if u.Now != nil {
		now = u.Now()
	}

	authorization, err := signer.Sign(http.MethodPut, endpoint, signer.Credentials{
		AccessKey:     cred.AccessKey,
		SecretKey:     cred.SecretKey,
		SecurityToken: cred.SecurityToken,
	}, u.Region, now)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return "", err
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("x-amz-date", signer.AmzDate(now))
	req.Header.Set("x-amz-security-token", cred.SecurityToken)
	req.Header.Set("x-amz-content-sha256", "UNSIGNED-PAYLOAD")
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", orOctetStream(contentType))

	if err := u.do(req); err != nil {
		return "", err
	}
	return PublicURL(cred, remotePath), nil
}

func (u *SignedUploader) do(req *http.Request) error {
	return doPut(u.HTTP, req)
}

// QueryTokenUploader performs an unsigned PUT carrying the security token in
// the query string, with public-read asserted via the store's ACL header.
// The signer is not involved in this variant.
type QueryTokenUploader struct {
	HTTP *http.Client
}

// NewQueryTokenUploader creates a query-token uploader
func NewQueryTokenUploader() *QueryTokenUploader {
	return &QueryTokenUploader{}
}

func (u *QueryTokenUploader) Upload(ctx context.Context, cred *courseupload.StorageCredential, remotePath, contentType string, size int64, body io.Reader) (string, error) {
	endpoint := fmt.Sprintf("https://%s.%s/%s?x-obs-security-token=%s",
		cred.Bucket, cred.Endpoint, remotePath, url.QueryEscape(cred.SecurityToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return "", err
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("x-obs-acl", "public-read")
	req.Header.Set("Content-Type", orOctetStream(contentType))

	if err := doPut(u.HTTP, req); err != nil {
		return "", err
	}
	return PublicURL(cred, remotePath), nil
}

// PublicURL returns the public address of a stored object
func PublicURL(cred *courseupload.StorageCredential, remotePath string) string {
	return strings.TrimRight(cred.Domain, "/") + "/" + remotePath
}

func doPut(client *http.Client, req *http.Request) error {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &courseupload.UpstreamError{Stage: courseupload.StageStored, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &courseupload.UpstreamError{
			Stage:      courseupload.StageStored,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return nil
}

func orOctetStream(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
