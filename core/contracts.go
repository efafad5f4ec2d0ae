package core

import (
	"context"
	"time"

	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the runtime.
type Logger = glog.Logger

// LoggerProvider resolves named loggers.
type LoggerProvider = glog.LoggerProvider

// TokenStore is a versioned key-value store with optimistic concurrency.
// Version 0 on Put means "create"; any other expected version must match
// the stored version exactly or the write is rejected.
type TokenStore interface {
	// Get returns the stored value and its current version. found is false
	// when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, version int64, found bool, err error)
	// Put writes value when the stored version equals expectedVersion.
	// It returns false, without error, on a version conflict.
	Put(ctx context.Context, key string, value []byte, expectedVersion int64) (bool, error)
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// PaginationStyle declares how a provider pages list responses.
type PaginationStyle string

const (
	PaginationOffset PaginationStyle = "offset"
	PaginationCursor PaginationStyle = "cursor"
)

// ProviderProfile describes the fixed API surface of one provider.
type ProviderProfile struct {
	ID              string
	BaseURL         string
	RequiredHeaders map[string]string
	Pagination      PaginationStyle
	MaxPageSize     int
	RequestTimeout  time.Duration
	Scopes          []string
}

// Clone returns a deep copy of the profile.
func (p ProviderProfile) Clone() ProviderProfile {
	dup := p
	if p.RequiredHeaders != nil {
		dup.RequiredHeaders = make(map[string]string, len(p.RequiredHeaders))
		for key, value := range p.RequiredHeaders {
			dup.RequiredHeaders[key] = value
		}
	}
	dup.Scopes = cloneStrings(p.Scopes)
	return dup
}

// BeginAuthRequest asks a provider to build an authorization URL.
type BeginAuthRequest struct {
	UserID        string
	Scopes        []string
	State         string
	CodeChallenge string
	RedirectURI   string
}

// BeginAuthResult carries the URL the end user must visit.
type BeginAuthResult struct {
	AuthorizeURL string
	Metadata     map[string]any
}

// ExchangeRequest trades an authorization code for tokens.
type ExchangeRequest struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
}

// RefreshRequest trades a refresh token for a new grant.
type RefreshRequest struct {
	RefreshToken string
	Scopes       []string
}

// RevokeRequest invalidates tokens at the provider.
type RevokeRequest struct {
	AccessToken  string
	RefreshToken string
}

// TokenGrant is the provider-side result of an exchange or refresh.
type TokenGrant struct {
	TokenType    string
	AccessToken  string
	RefreshToken string
	Scopes       []string
	ExpiresAt    *time.Time
	Metadata     map[string]any
}

// Provider implements one OAuth2 integration.
type Provider interface {
	ID() string
	Profile() ProviderProfile
	BeginAuth(ctx context.Context, req BeginAuthRequest) (BeginAuthResult, error)
	Exchange(ctx context.Context, req ExchangeRequest) (TokenGrant, error)
	Refresh(ctx context.Context, req RefreshRequest) (TokenGrant, error)
	Revoke(ctx context.Context, req RevokeRequest) error
}

// Registry indexes providers by ID.
type Registry interface {
	Register(provider Provider) error
	Get(id string) (Provider, error)
	List() []string
}

// ActiveToken is the caller-facing projection of a usable credential.
// It never includes the refresh token.
type ActiveToken struct {
	TokenType   string
	AccessToken string
	Scopes      []string
	ExpiresAt   *time.Time
}

// TokenSource yields valid access tokens for a user and provider. The
// broker is the canonical implementation.
type TokenSource interface {
	GetValidToken(ctx context.Context, userID, providerID string) (ActiveToken, error)
}

// TokenInvalidator marks a stored credential expired after the provider
// rejected its access token. Implemented by the broker; clients report
// business-call 401s through it.
type TokenInvalidator interface {
	MarkCredentialExpired(ctx context.Context, userID, providerID string) error
}

// AuthRequestStore persists pending authorization round-trips.
type AuthRequestStore interface {
	Save(ctx context.Context, req *AuthorizationRequest) error
	Get(ctx context.Context, id string) (*AuthorizationRequest, error)
	// ConsumeState atomically claims the pending request bound to state,
	// so a callback can be processed at most once.
	ConsumeState(ctx context.Context, state string) (*AuthorizationRequest, error)
	Update(ctx context.Context, req *AuthorizationRequest) error
}

// CredentialCodec serializes credentials before they reach the TokenStore,
// so stores only ever hold opaque bytes.
type CredentialCodec interface {
	Format() string
	Version() int
	Encode(credential *Credential) ([]byte, error)
	Decode(payload []byte) (*Credential, error)
}

// TransportRequest is a provider-agnostic outbound HTTP request.
type TransportRequest struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
	// MaxResponseBodyBytes overrides the adapter's response body cap.
	MaxResponseBodyBytes int64
}

// TransportResponse is the raw result of a transport call.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter executes transport requests. Implementations must not
// retry; retry policy belongs to the resilient client.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Signer attaches credentials to an outbound request.
type Signer interface {
	Sign(ctx context.Context, req *TransportRequest, token ActiveToken) error
}

// RateLimitKey identifies one provider-side rate-limit bucket.
type RateLimitKey struct {
	ProviderID string
	UserID     string
	BucketKey  string
}

// ProviderResponseMeta summarizes a provider response for rate-limit
// accounting.
type ProviderResponseMeta struct {
	StatusCode int
	Headers    map[string]string
	RetryAfter *time.Duration
	Metadata   map[string]any
}

// RateLimitPolicy guards outbound calls for one provider bucket.
type RateLimitPolicy interface {
	BeforeCall(ctx context.Context, key RateLimitKey) error
	AfterCall(ctx context.Context, key RateLimitKey, res ProviderResponseMeta) error
}

// MetricsRecorder receives operational counters and histograms.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// FieldsLogger is a logger that accepts structured fields.
type FieldsLogger = glog.FieldsLogger
