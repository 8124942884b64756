package courseupload_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/course-upload/pkg/courseupload"
)

func TestUpstreamErrorMessage(t *testing.T) {
	err := &courseupload.UpstreamError{
		Stage:      courseupload.StageStored,
		StatusCode: 403,
		Body:       "AccessDenied",
	}
	assert.Contains(t, err.Error(), "stored")
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &courseupload.UpstreamError{Stage: courseupload.StageNotified, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUploadErrorWrapsStage(t *testing.T) {
	inner := &courseupload.UpstreamError{Stage: courseupload.StageStored, StatusCode: 500, Body: "boom"}
	err := &courseupload.UploadError{FileName: "a.png", Stage: courseupload.StageStored, Err: inner}

	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "stored")

	var ue *courseupload.UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, 500, ue.StatusCode)
}
