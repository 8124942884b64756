// Package config builds a running courseupload.Service from declarative
// server configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/course-upload/pkg/courseupload"
	cachememory "github.com/tendant/course-upload/pkg/courseupload/cache/memory"
	"github.com/tendant/course-upload/pkg/courseupload/obs"
	"github.com/tendant/course-upload/pkg/courseupload/remotepath"
	repomemory "github.com/tendant/course-upload/pkg/courseupload/repo/memory"
	repopg "github.com/tendant/course-upload/pkg/courseupload/repo/postgres"
	"github.com/tendant/course-upload/pkg/courseupload/ulearning"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DatabaseType:   "memory",
		UploadStrategy: obs.StrategySigned,
		Region:         obs.DefaultRegion,
		PathPrefix:     remotepath.DefaultPrefix,
		CourseAPIBase:  ulearning.DefaultBaseURL,
		CourseOrigin:   ulearning.DefaultOrigin,
		TokenTTL:       courseupload.DefaultTokenTTL,
		RequestTimeout: 30 * time.Second,
		MaxConcurrency: courseupload.DefaultMaxConcurrency,
	}
}

// ServerConfig represents server configuration for the course-upload service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"

	// Course-service configuration
	CourseAPIBase string `env:"COURSE_API_BASE"`
	CourseOrigin  string `env:"COURSE_ORIGIN"`
	LoginName     string `env:"COURSE_LOGIN_NAME"`
	Password      string `env:"COURSE_PASSWORD"`

	// Upload configuration
	UploadStrategy  string        `env:"UPLOAD_STRATEGY" env-default:"signed"` // "signed", "query-token"
	Region          string        `env:"OBS_REGION"`
	PathPrefix      string        `env:"UPLOAD_PATH_PREFIX"`
	DefaultCourseID string        `env:"DEFAULT_COURSE_ID"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	MaxConcurrency  int           `env:"MAX_CONCURRENT_UPLOADS"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.UploadStrategy != obs.StrategySigned && c.UploadStrategy != obs.StrategyQueryToken {
		return fmt.Errorf("upload_strategy must be %q or %q", obs.StrategySigned, obs.StrategyQueryToken)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(ctx context.Context) (courseupload.Service, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	client := ulearning.New(ulearning.Config{
		BaseURL: c.CourseAPIBase,
		Origin:  c.CourseOrigin,
		Timeout: c.RequestTimeout,
	})

	uploader, err := c.buildUploader()
	if err != nil {
		return nil, fmt.Errorf("failed to build uploader: %w", err)
	}

	paths := remotepath.NewUniqueGenerator()
	if c.PathPrefix != "" {
		paths.Prefix = c.PathPrefix
	}

	return courseupload.New(
		courseupload.WithCourseClient(client),
		courseupload.WithUploader(uploader),
		courseupload.WithRepository(repo),
		courseupload.WithSessionCache(cachememory.New()),
		courseupload.WithPathGenerator(paths),
		courseupload.WithLoginCredentials(c.LoginName, c.Password),
		courseupload.WithTokenTTL(c.TokenTTL),
		courseupload.WithMaxConcurrency(c.MaxConcurrency),
	)
}

func (c *ServerConfig) buildRepository(ctx context.Context) (courseupload.Repository, error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	case "memory":
		return repomemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) buildUploader() (courseupload.Uploader, error) {
	switch c.UploadStrategy {
	case obs.StrategySigned:
		return obs.NewSignedUploader(c.Region), nil
	case obs.StrategyQueryToken:
		return obs.NewQueryTokenUploader(), nil
	default:
		return nil, fmt.Errorf("unsupported upload strategy: %s", c.UploadStrategy)
	}
}
