// Package signer derives AWS Signature Version 4 authorization values for
// object-store PUT requests authorized by temporary credentials.
//
// The output must match the store-side verifier byte for byte: the payload
// is never hashed (UNSIGNED-PAYLOAD mode) and exactly three headers are
// signed, in fixed order: host, x-amz-date, x-amz-security-token. No network
// access; for fixed inputs the result is fully deterministic.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	algorithm       = "AWS4-HMAC-SHA256"
	service         = "s3"
	requestType     = "aws4_request"
	signedHeaders   = "host;x-amz-date;x-amz-security-token"
	unsignedPayload = "UNSIGNED-PAYLOAD"
)

// Credentials is the temporary access/secret/session-token triple issued for
// a single upload.
type Credentials struct {
	AccessKey     string
	SecretKey     string
	SecurityToken string
}

// AmzDate formats ts as the fully numeric UTC timestamp carried in the
// x-amz-date header and folded into the signature.
func AmzDate(ts time.Time) string {
	return ts.UTC().Format("20060102T150405Z")
}

// Sign computes the Authorization header value for one request. The query
// string of rawURL is ignored: only the path is part of the canonical
// request. Sign fails only on a malformed URL, which is a programming error
// rather than a runtime condition.
func Sign(method, rawURL string, creds Credentials, region string, ts time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("malformed url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("malformed url %q: missing host", rawURL)
	}

	amzDate := AmzDate(ts)
	dateStamp := amzDate[:8]

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	canonicalHeaders := "host:" + u.Hostname() + "\n" +
		"x-amz-date:" + amzDate + "\n" +
		"x-amz-security-token:" + creds.SecurityToken + "\n"

	canonicalRequest := strings.Join([]string{
		method,
		path,
		"", // canonical query string: path-only signing
		canonicalHeaders,
		signedHeaders,
		unsignedPayload,
	}, "\n")

	hashed := sha256.Sum256([]byte(canonicalRequest))
	scope := dateStamp + "/" + region + "/" + service + "/" + requestType

	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		hex.EncodeToString(hashed[:]),
	}, "\n")

	key := signingKey(creds.SecretKey, dateStamp, region)
	signature := hex.EncodeToString(hmacSHA256(key, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, creds.AccessKey, scope, signedHeaders, signature), nil
}

// signingKey derives the per-date, per-region signing key through the four
// chained HMAC operations of the V4 scheme.
func signingKey(secretKey, dateStamp, region string) []byte {
	k := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	k = hmacSHA256(k, region)
	k = hmacSHA256(k, service)
	return hmacSHA256(k, requestType)
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
