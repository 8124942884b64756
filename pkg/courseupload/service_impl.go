package courseupload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/course-upload/pkg/courseupload/remotepath"
)

// DefaultMaxConcurrency bounds how many files of one batch upload at once
const DefaultMaxConcurrency = 4

// service implements the Service interface
type service struct {
	client     CourseClient
	uploader   Uploader
	repository Repository
	cache      SessionCache
	paths      remotepath.Generator
	login      LoginCredentials
	tokenTTL   time.Duration
	maxConc    int

	broker *credentialBroker
	now    func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithCourseClient sets the course-service client
func WithCourseClient(client CourseClient) Option {
	return func(s *service) { s.client = client }
}

// WithUploader sets the object-store upload strategy
func WithUploader(uploader Uploader) Option {
	return func(s *service) { s.uploader = uploader }
}

// WithRepository sets the file record repository
func WithRepository(repo Repository) Option {
	return func(s *service) { s.repository = repo }
}

// WithSessionCache sets the cache used for auth tokens
func WithSessionCache(cache SessionCache) Option {
	return func(s *service) { s.cache = cache }
}

// WithPathGenerator sets the remote path derivation strategy
func WithPathGenerator(g remotepath.Generator) Option {
	return func(s *service) { s.paths = g }
}

// WithLoginCredentials sets the platform account used for server-side logins
func WithLoginCredentials(loginName, password string) Option {
	return func(s *service) { s.login = LoginCredentials{LoginName: loginName, Password: password} }
}

// WithTokenTTL overrides how long fetched auth tokens are cached
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *service) { s.tokenTTL = ttl }
}

// WithMaxConcurrency bounds parallel uploads within one batch
func WithMaxConcurrency(n int) Option {
	return func(s *service) { s.maxConc = n }
}

// WithClock overrides the service's notion of time (tests)
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		maxConc: DefaultMaxConcurrency,
		now:     time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.client == nil {
		return nil, fmt.Errorf("course client is required")
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.paths == nil {
		s.paths = remotepath.NewRecommendedGenerator()
	}
	if s.maxConc <= 0 {
		s.maxConc = DefaultMaxConcurrency
	}

	s.broker = newCredentialBroker(s.client, s.cache, s.login, s.tokenTTL)
	return s, nil
}

func (s *service) Login(ctx context.Context, loginName, password string) (string, error) {
	return s.client.Login(ctx, loginName, password)
}

func (s *service) GetAuthToken(ctx context.Context, force bool) (string, error) {
	return s.broker.authToken(ctx, force)
}

func (s *service) UploadBatch(ctx context.Context, req UploadBatchRequest) ([]UploadOutcome, error) {
	if len(req.Files) == 0 {
		return nil, ErrEmptyBatch
	}

	authToken := req.AuthToken
	if authToken == "" {
		token, err := s.broker.authToken(ctx, false)
		if err != nil {
			return nil, err
		}
		authToken = token
	}

	outcomes := make([]UploadOutcome, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConc)
	for i := range req.Files {
		i := i
		g.Go(func() error {
			outcomes[i] = s.uploadOne(gctx, authToken, req.Files[i], req.CourseID)
			return nil
		})
	}
	g.Wait()

	return outcomes, nil
}

// uploadOne runs the per-file state machine. Steps execute strictly in
// order; the first failure freezes the outcome at that stage. A publish
// failure after successful registration does not unwind: the record is still
// written and the failure is surfaced separately.
func (s *service) uploadOne(ctx context.Context, authToken string, file UploadFile, courseID string) UploadOutcome {
	outcome := UploadOutcome{Name: file.Name, Stage: StagePending}

	fail := func(stage UploadStage, err error) UploadOutcome {
		outcome.Stage = stage
		outcome.Err = &UploadError{FileName: file.Name, Stage: stage, Err: err}
		return outcome
	}

	// Path derivation
	path := s.paths.GenerateKey(file.Name, s.now())
	outcome.Stage = StagePathAssigned

	// Credential fetch, scoped to the derived path
	cred, err := s.broker.storageCredential(ctx, authToken, path)
	if err != nil {
		return fail(StageCredentialAcquired, err)
	}
	outcome.Stage = StageCredentialAcquired

	// Object-store write
	publicURL, err := s.uploader.Upload(ctx, cred, path, file.MimeType, file.Size, file.Body)
	if err != nil {
		return fail(StageStored, err)
	}
	outcome.Stage = StageStored
	outcome.URL = publicURL

	// Course-service registration
	contentID, err := s.client.NotifyUpload(ctx, authToken, Notification{
		Title:    file.Name,
		Size:     file.Size,
		URL:      publicURL,
		TypeHint: remotepath.TypeHint(file.Name),
	})
	if err != nil {
		// The object is stored but uncatalogued; no compensating delete
		return fail(StageNotified, err)
	}
	outcome.Stage = StageNotified
	outcome.ContentID = contentID

	// Optional course attachment. A failure here is surfaced but does not
	// prevent the record: the asset exists and is catalogued, just
	// unattached.
	recordCourseID := ""
	if courseID != "" {
		if _, err := s.client.Publish(ctx, authToken, contentID, courseID); err != nil {
			outcome.PublishErr = err
		} else {
			outcome.Stage = StagePublished
			recordCourseID = courseID
		}
	}

	record := &FileRecord{
		ID:        uuid.New(),
		Name:      file.Name,
		Size:      file.Size,
		MimeType:  file.MimeType,
		URL:       publicURL,
		ContentID: contentID,
		CourseID:  recordCourseID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repository.Insert(ctx, record); err != nil {
		return fail(StageRecorded, err)
	}
	outcome.Stage = StageRecorded
	outcome.Record = record
	return outcome
}

func (s *service) CompleteUpload(ctx context.Context, req CompleteUploadRequest) (*FileRecord, error) {
	authToken := req.AuthToken
	if authToken == "" {
		token, err := s.broker.authToken(ctx, false)
		if err != nil {
			return nil, err
		}
		authToken = token
	}

	contentID, err := s.client.NotifyUpload(ctx, authToken, Notification{
		Title:    req.FileName,
		Size:     req.FileSize,
		URL:      req.FileURL,
		TypeHint: remotepath.TypeHint(req.FileName),
	})
	if err != nil {
		return nil, err
	}

	recordCourseID := ""
	var publishErr error
	if req.CourseID != "" {
		if _, err := s.client.Publish(ctx, authToken, contentID, req.CourseID); err != nil {
			publishErr = err
		} else {
			recordCourseID = req.CourseID
		}
	}

	record := &FileRecord{
		ID:        uuid.New(),
		Name:      req.FileName,
		Size:      req.FileSize,
		URL:       req.FileURL,
		ContentID: contentID,
		CourseID:  recordCourseID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repository.Insert(ctx, record); err != nil {
		return nil, err
	}
	if publishErr != nil {
		return record, publishErr
	}
	return record, nil
}

func (s *service) PublishContent(ctx context.Context, authToken, contentID, courseID string) error {
	if authToken == "" {
		token, err := s.broker.authToken(ctx, false)
		if err != nil {
			return err
		}
		authToken = token
	}
	_, err := s.client.Publish(ctx, authToken, contentID, courseID)
	return err
}

func (s *service) ListFiles(ctx context.Context, req ListFilesRequest) ([]*FileRecord, error) {
	filter := ListFilter{}
	if strings.EqualFold(req.Type, "image") {
		filter.MimePrefix = "image/"
	}
	return s.repository.List(ctx, filter)
}

func (s *service) DeleteFile(ctx context.Context, id uuid.UUID) error {
	return s.repository.Delete(ctx, id)
}
