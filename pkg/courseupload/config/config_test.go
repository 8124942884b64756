package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-upload/pkg/courseupload/obs"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, obs.StrategySigned, cfg.UploadStrategy)
	assert.Equal(t, obs.DefaultRegion, cfg.Region)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ServerConfig)
		expectError bool
	}{
		{"defaults are valid", func(c *ServerConfig) {}, false},
		{"empty port", func(c *ServerConfig) { c.Port = "" }, true},
		{"bad database type", func(c *ServerConfig) { c.DatabaseType = "sqlite" }, true},
		{"postgres without url", func(c *ServerConfig) { c.DatabaseType = "postgres" }, true},
		{"postgres with url", func(c *ServerConfig) {
			c.DatabaseType = "postgres"
			c.DatabaseURL = "postgres://localhost/files"
		}, false},
		{"bad strategy", func(c *ServerConfig) { c.UploadStrategy = "multipart" }, true},
		{"query-token strategy", func(c *ServerConfig) { c.UploadStrategy = obs.StrategyQueryToken }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildServiceMemory(t *testing.T) {
	cfg := defaults()
	cfg.LoginName = "svc"
	cfg.Password = "pw"

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildUploaderStrategies(t *testing.T) {
	cfg := defaults()

	u, err := cfg.buildUploader()
	require.NoError(t, err)
	assert.IsType(t, &obs.SignedUploader{}, u)

	cfg.UploadStrategy = obs.StrategyQueryToken
	u, err = cfg.buildUploader()
	require.NoError(t, err)
	assert.IsType(t, &obs.QueryTokenUploader{}, u)
}
