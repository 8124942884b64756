package courseupload

import (
	"context"
	"time"
)

// authTokenKey is the session-cache key holding the server-side bearer token
const authTokenKey = "auth_token"

// DefaultTokenTTL is how long a fetched auth token is cached. Deliberately
// shorter than the platform's own expiry so a cached token is always still
// usable when handed out.
const DefaultTokenTTL = 12 * time.Hour

// LoginCredentials are the platform account the service logs in with when no
// caller-supplied token is present.
type LoginCredentials struct {
	LoginName string
	Password  string
}

// credentialBroker supplies a valid auth token and, per destination path, a
// temporary storage credential. Tokens are cached in the injected session
// cache; storage credentials are fetched fresh for every upload and never
// cached. A duplicate concurrent login is harmless: tokens are
// interchangeable within their validity window, last writer wins.
type credentialBroker struct {
	client   CourseClient
	cache    SessionCache
	login    LoginCredentials
	tokenTTL time.Duration
}

func newCredentialBroker(client CourseClient, cache SessionCache, login LoginCredentials, ttl time.Duration) *credentialBroker {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &credentialBroker{
		client:   client,
		cache:    cache,
		login:    login,
		tokenTTL: ttl,
	}
}

// authToken returns a usable bearer token. Unless forced, a cached token is
// returned without any network call.
func (b *credentialBroker) authToken(ctx context.Context, force bool) (string, error) {
	if !force && b.cache != nil {
		if token, ok := b.cache.Get(authTokenKey); ok {
			return token, nil
		}
	}

	if b.login.LoginName == "" || b.login.Password == "" {
		return "", ErrCredentialsNotConfigured
	}

	token, err := b.client.Login(ctx, b.login.LoginName, b.login.Password)
	if err != nil {
		return "", err
	}

	if b.cache != nil {
		b.cache.Set(authTokenKey, token, b.tokenTTL)
	}
	return token, nil
}

// storageCredential fetches a temporary credential scoped to remotePath
func (b *credentialBroker) storageCredential(ctx context.Context, authToken, remotePath string) (*StorageCredential, error) {
	return b.client.UploadToken(ctx, authToken, remotePath)
}
