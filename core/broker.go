package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Broker owns the authorization lifecycle: it starts user authorization
// round-trips, completes callbacks, and hands out valid access tokens,
// refreshing behind a single flight when needed. Raw tokens never leave
// the broker except as ActiveToken projections.
type Broker struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	tokenStore       TokenStore
	requestStore     AuthRequestStore
	refreshScheduler RefreshBackoffScheduler
	registry         Registry
	codec            CredentialCodec
	signer           Signer
	clock            func() time.Time

	refreshGroup singleflight.Group
}

const credentialPutMaxAttempts = 3

// NewBroker builds a broker from runtime config plus options. Stores
// default to the in-memory implementations.
func NewBroker(runtime Config, options ...Option) (*Broker, error) {
	builder := defaultBrokerBuilder(runtime)
	for _, option := range options {
		if option != nil {
			option(&builder)
		}
	}
	if builder.tokenStore == nil {
		builder.tokenStore = NewMemoryTokenStore()
	}
	if builder.requestStore == nil {
		builder.requestStore = NewMemoryAuthRequestStore()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, fmt.Errorf("core: load config: %w", err)
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, fmt.Errorf("core: resolve config: %w", err)
	}

	if builder.refreshScheduler == nil {
		builder.refreshScheduler = ExponentialBackoffScheduler{
			Initial: resolved.Refresh.InitialBackoff,
			Max:     resolved.Refresh.MaxBackoff,
		}
	}

	return &Broker{
		config:           resolved,
		logger:           builder.logger,
		loggerProvider:   builder.loggerProvider,
		metricsRecorder:  builder.metricsRecorder,
		errorFactory:     builder.errorFactory,
		errorMapper:      builder.errorMapper,
		tokenStore:       builder.tokenStore,
		requestStore:     builder.requestStore,
		refreshScheduler: builder.refreshScheduler,
		registry:         builder.registry,
		codec:            builder.credentialCodec,
		signer:           builder.signer,
		clock:            builder.clock,
	}, nil
}

// Config returns the resolved broker configuration.
func (b *Broker) Config() Config {
	if b == nil {
		return Config{}
	}
	return b.config
}

// Registry exposes the provider registry for registration at wire-up time.
func (b *Broker) Registry() Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

// Signer returns the request signer configured for this broker.
func (b *Broker) Signer() Signer {
	if b == nil {
		return nil
	}
	return b.signer
}

// StartAuthorizationRequest begins an authorization round-trip.
type StartAuthorizationRequest struct {
	UserID     string
	ProviderID string
	Scopes     []string
}

// CompleteCallbackRequest carries the provider callback parameters.
type CompleteCallbackRequest struct {
	State            string
	Code             string
	ErrorCode        string
	ErrorDescription string
	RedirectURI      string
}

// StartAuthorization creates a pending request and returns the URL the end
// user must visit.
func (b *Broker) StartAuthorization(ctx context.Context, req StartAuthorizationRequest) (result *AuthorizationRequest, err error) {
	if b == nil {
		return nil, fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		b.observeOperation(ctx, startedAt, "start_authorization", err, map[string]any{
			"user_id":     req.UserID,
			"provider_id": req.ProviderID,
		})
	}()

	userID := strings.TrimSpace(req.UserID)
	providerID := strings.TrimSpace(req.ProviderID)
	if userID == "" {
		return nil, b.mapError(b.errorFactory("user id is required", goerrors.CategoryBadInput))
	}
	if providerID == "" {
		return nil, b.mapError(b.errorFactory("provider id is required", goerrors.CategoryBadInput))
	}

	provider, err := b.resolveProvider(providerID)
	if err != nil {
		return nil, b.mapError(err)
	}

	state, err := GenerateOAuthState()
	if err != nil {
		return nil, b.mapError(err)
	}
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, b.mapError(err)
	}

	scopes := normalizeScopes(req.Scopes)
	if len(scopes) == 0 {
		scopes = provider.Profile().Scopes
	} else if rejected := scopesOutsideProfile(scopes, provider.Profile().Scopes); len(rejected) > 0 {
		return nil, b.mapError(NewInvalidScopeError(providerID, rejected))
	}

	begin, err := provider.BeginAuth(ctx, BeginAuthRequest{
		UserID:        userID,
		Scopes:        scopes,
		State:         state,
		CodeChallenge: CodeChallengeS256(verifier),
	})
	if err != nil {
		return nil, b.mapError(err)
	}

	now := b.now()
	record := &AuthorizationRequest{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProviderID:   providerID,
		Status:       AuthorizationStatusPending,
		AuthorizeURL: begin.AuthorizeURL,
		State:        state,
		CodeVerifier: verifier,
		Scopes:       cloneStrings(scopes),
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(DefaultAuthorizationTTL),
	}
	if err := b.requestStore.Save(ctx, record); err != nil {
		return nil, b.mapError(err)
	}
	return record.Clone(), nil
}

// PollAuthorization returns the current status of a pending request,
// expiring it when its TTL has passed.
func (b *Broker) PollAuthorization(ctx context.Context, requestID string) (*AuthorizationRequest, error) {
	if b == nil {
		return nil, fmt.Errorf("core: broker is nil")
	}
	record, err := b.requestStore.Get(ctx, requestID)
	if err != nil {
		return nil, b.mapError(err)
	}
	now := b.now()
	if record.Status == AuthorizationStatusPending && now.After(record.ExpiresAt) {
		if err := record.TransitionTo(AuthorizationStatusExpired, now); err == nil {
			if updateErr := b.requestStore.Update(ctx, record); updateErr != nil {
				b.logError(ctx, "expire authorization request", map[string]any{
					"request_id": record.ID,
					"error":      updateErr.Error(),
				})
			}
		}
	}
	return record.Clone(), nil
}

// WaitForCompletion blocks until the request settles or the timeout lapses.
// A zero timeout uses the configured default.
func (b *Broker) WaitForCompletion(ctx context.Context, requestID string, timeout time.Duration) (*AuthorizationRequest, error) {
	if b == nil {
		return nil, fmt.Errorf("core: broker is nil")
	}
	if timeout <= 0 {
		timeout = b.config.Wait.Timeout
	}
	deadline := b.now().Add(timeout)

	for {
		record, err := b.PollAuthorization(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if record.Settled() {
			return record, nil
		}
		if !b.now().Before(deadline) {
			return nil, b.mapError(NewAuthorizationTimeoutError(requestID))
		}
		if err := waitWithContext(ctx, b.config.Wait.PollInterval); err != nil {
			return nil, b.mapError(err)
		}
	}
}

// CompleteCallback consumes the state parameter, exchanges the code, and
// persists the resulting credential. Replayed callbacks fail because the
// state is single use.
func (b *Broker) CompleteCallback(ctx context.Context, req CompleteCallbackRequest) (credential *Credential, err error) {
	if b == nil {
		return nil, fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		fields := map[string]any{}
		if credential != nil {
			fields["provider_id"] = credential.ProviderID
			fields["user_id"] = credential.UserID
		}
		b.observeOperation(ctx, startedAt, "complete_callback", err, fields)
	}()

	record, err := b.requestStore.ConsumeState(ctx, req.State)
	if err != nil {
		return nil, b.mapError(err)
	}
	now := b.now()
	if record.Status != AuthorizationStatusPending {
		return nil, b.mapError(b.errorFactory("oauth state already settled", goerrors.CategoryAuth).
			WithTextCode(RuntimeErrorStateInvalid))
	}
	if now.After(record.ExpiresAt) {
		b.settleRequest(ctx, record, AuthorizationStatusExpired, "authorization window elapsed")
		return nil, b.mapError(b.errorFactory("oauth state expired", goerrors.CategoryAuth).
			WithTextCode(RuntimeErrorStateInvalid))
	}
	if strings.TrimSpace(req.ErrorCode) != "" {
		reason := strings.TrimSpace(req.ErrorCode + " " + req.ErrorDescription)
		b.settleRequest(ctx, record, AuthorizationStatusFailed, reason)
		return nil, b.mapError(b.errorFactory("authorization denied: "+reason, goerrors.CategoryAuth))
	}

	provider, err := b.resolveProvider(record.ProviderID)
	if err != nil {
		return nil, b.mapError(err)
	}
	grant, err := provider.Exchange(ctx, ExchangeRequest{
		Code:         req.Code,
		CodeVerifier: record.CodeVerifier,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		b.settleRequest(ctx, record, AuthorizationStatusFailed, "code exchange failed")
		return nil, b.mapError(err)
	}

	credential = b.credentialFromGrant(record.UserID, record.ProviderID, record.Scopes, grant)
	if _, err = b.putCredential(ctx, credential); err != nil {
		return nil, b.mapError(err)
	}
	b.settleRequest(ctx, record, AuthorizationStatusCompleted, "")
	return credential.Clone(), nil
}

// GetValidToken returns an access token that is valid for at least the
// configured safety margin, refreshing behind a single flight when the
// stored credential is expiring. When no usable credential exists it
// returns the authorization-required signal carrying a fresh authorize URL.
func (b *Broker) GetValidToken(ctx context.Context, userID, providerID string) (token ActiveToken, err error) {
	if b == nil {
		return ActiveToken{}, fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		b.observeOperation(ctx, startedAt, "get_valid_token", err, map[string]any{
			"user_id":     userID,
			"provider_id": providerID,
		})
	}()

	userID = strings.TrimSpace(userID)
	providerID = strings.TrimSpace(providerID)
	if userID == "" || providerID == "" {
		return ActiveToken{}, b.mapError(b.errorFactory("user id and provider id are required", goerrors.CategoryBadInput))
	}

	credential, _, found, err := b.loadCredential(ctx, userID, providerID)
	if err != nil {
		return ActiveToken{}, b.mapError(err)
	}

	state := TokenStateMissing
	if found {
		state = ResolveTokenState(b.now(), credential, b.config.Token.SafetyMargin)
	}
	switch state {
	case TokenStateValid:
		return activeTokenFromCredential(credential), nil
	case TokenStateExpired:
		if credential.Refreshable() {
			refreshed, refreshErr := b.refreshSingleFlight(ctx, userID, providerID)
			if refreshErr != nil {
				return ActiveToken{}, b.mapError(refreshErr)
			}
			return activeTokenFromCredential(refreshed), nil
		}
	}
	return ActiveToken{}, b.authorizationRequired(ctx, userID, providerID)
}

// MarkCredentialExpired records that the provider rejected the stored
// access token, so the next GetValidToken refreshes or re-authorizes
// instead of replaying it. Missing or already-dead credentials are a
// no-op; losing a write race means another caller already replaced the
// credential.
func (b *Broker) MarkCredentialExpired(ctx context.Context, userID, providerID string) (err error) {
	if b == nil {
		return fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		b.observeOperation(ctx, startedAt, "mark_credential_expired", err, map[string]any{
			"user_id":     userID,
			"provider_id": providerID,
		})
	}()

	userID = strings.TrimSpace(userID)
	providerID = strings.TrimSpace(providerID)
	if userID == "" || providerID == "" {
		return b.mapError(b.errorFactory("user id and provider id are required", goerrors.CategoryBadInput))
	}

	credential, version, found, err := b.loadCredential(ctx, userID, providerID)
	if err != nil {
		return b.mapError(err)
	}
	if !found || credential.Status != CredentialStatusActive {
		return nil
	}
	expired := credential.Clone()
	if transitionErr := expired.TransitionTo(CredentialStatusExpired, b.now()); transitionErr != nil {
		return b.mapError(transitionErr)
	}
	if _, putErr := b.putCredentialAt(ctx, expired, version); putErr != nil {
		if isVersionConflict(putErr) {
			return nil
		}
		return b.mapError(putErr)
	}
	return nil
}

// Refresh forces a refresh of the stored credential, retrying transient
// provider failures up to the configured attempt budget.
func (b *Broker) Refresh(ctx context.Context, userID, providerID string) (credential *Credential, err error) {
	if b == nil {
		return nil, fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		b.observeOperation(ctx, startedAt, "refresh", err, map[string]any{
			"user_id":     userID,
			"provider_id": providerID,
		})
	}()
	return b.refreshSingleFlight(ctx, userID, providerID)
}

// Revoke invalidates the stored credential, best-effort revoking at the
// provider first.
func (b *Broker) Revoke(ctx context.Context, userID, providerID string) (err error) {
	if b == nil {
		return fmt.Errorf("core: broker is nil")
	}
	startedAt := b.now()
	defer func() {
		b.observeOperation(ctx, startedAt, "revoke", err, map[string]any{
			"user_id":     userID,
			"provider_id": providerID,
		})
	}()

	credential, _, found, err := b.loadCredential(ctx, userID, providerID)
	if err != nil {
		return b.mapError(err)
	}
	if !found {
		return nil
	}
	if provider, resolveErr := b.resolveProvider(providerID); resolveErr == nil {
		if revokeErr := provider.Revoke(ctx, RevokeRequest{
			AccessToken:  credential.AccessToken,
			RefreshToken: credential.RefreshToken,
		}); revokeErr != nil {
			b.logError(ctx, "provider revoke failed", map[string]any{
				"provider_id": providerID,
				"user_id":     userID,
				"error":       revokeErr.Error(),
			})
		}
	}
	if err := b.tokenStore.Delete(ctx, credentialKey(userID, providerID)); err != nil {
		return b.mapError(err)
	}
	return nil
}

// refreshSingleFlight collapses concurrent refreshes for the same user and
// provider into one provider call. The shared refresh runs on a context
// detached from the caller so one caller's cancellation cannot abort a
// refresh other callers are waiting on.
func (b *Broker) refreshSingleFlight(ctx context.Context, userID, providerID string) (*Credential, error) {
	key := credentialKey(userID, providerID)
	result, err, _ := b.refreshGroup.Do(key, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.Refresh.Timeout)
		defer cancel()
		return b.runRefresh(refreshCtx, userID, providerID)
	})
	if err != nil {
		return nil, err
	}
	credential, ok := result.(*Credential)
	if !ok {
		return nil, b.errorFactory("unexpected refresh result", goerrors.CategoryInternal)
	}
	return credential, nil
}

func (b *Broker) runRefresh(ctx context.Context, userID, providerID string) (*Credential, error) {
	credential, version, found, err := b.loadCredential(ctx, userID, providerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, b.authorizationRequired(ctx, userID, providerID)
	}
	// Another flight may have refreshed while we queued.
	if ResolveTokenState(b.now(), credential, b.config.Token.SafetyMargin) == TokenStateValid {
		return credential, nil
	}
	if !credential.Refreshable() {
		return nil, b.authorizationRequired(ctx, userID, providerID)
	}

	provider, err := b.resolveProvider(providerID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= b.config.Refresh.MaxAttempts; attempt++ {
		grant, refreshErr := provider.Refresh(ctx, RefreshRequest{
			RefreshToken: credential.RefreshToken,
			Scopes:       credential.Scopes,
		})
		if refreshErr == nil {
			refreshed := b.applyGrant(credential, grant)
			stored, putErr := b.putCredentialAt(ctx, refreshed, version)
			if putErr != nil {
				return nil, putErr
			}
			return stored, nil
		}
		lastErr = refreshErr
		if isUnrecoverableRefreshError(refreshErr) {
			b.invalidateCredential(ctx, credential, version)
			return nil, NewRefreshFailedError(refreshErr, userID, providerID)
		}
		if attempt == b.config.Refresh.MaxAttempts {
			break
		}
		if waitErr := waitWithContext(ctx, b.refreshScheduler.NextDelay(attempt)); waitErr != nil {
			return nil, NewRefreshFailedError(waitErr, userID, providerID)
		}
	}
	return nil, NewRefreshFailedError(lastErr, userID, providerID)
}

// invalidateCredential marks the stored credential revoked so later calls
// short-circuit to the authorization-required signal.
func (b *Broker) invalidateCredential(ctx context.Context, credential *Credential, version int64) {
	dead := credential.Clone()
	if err := dead.TransitionTo(CredentialStatusRevoked, b.now()); err != nil {
		return
	}
	if _, err := b.putCredentialAt(ctx, dead, version); err != nil {
		b.logError(ctx, "invalidate credential", map[string]any{
			"provider_id": credential.ProviderID,
			"user_id":     credential.UserID,
			"error":       err.Error(),
		})
	}
}

func (b *Broker) authorizationRequired(ctx context.Context, userID, providerID string) error {
	started, err := b.StartAuthorization(ctx, StartAuthorizationRequest{
		UserID:     userID,
		ProviderID: providerID,
	})
	if err != nil {
		return err
	}
	return NewAuthorizationRequiredError(userID, providerID, started.AuthorizeURL)
}

func (b *Broker) loadCredential(ctx context.Context, userID, providerID string) (*Credential, int64, bool, error) {
	payload, version, found, err := b.tokenStore.Get(ctx, credentialKey(userID, providerID))
	if err != nil {
		return nil, 0, false, err
	}
	if !found {
		return nil, 0, false, nil
	}
	credential, err := b.codec.Decode(payload)
	if err != nil {
		return nil, 0, false, err
	}
	return credential, version, true, nil
}

// putCredential writes through the optimistic store, re-reading the current
// version on conflict.
func (b *Broker) putCredential(ctx context.Context, credential *Credential) (*Credential, error) {
	key := credentialKey(credential.UserID, credential.ProviderID)
	for attempt := 0; attempt < credentialPutMaxAttempts; attempt++ {
		_, version, _, err := b.tokenStore.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		stored, err := b.putCredentialAt(ctx, credential, version)
		if err == nil {
			return stored, nil
		}
		if !isVersionConflict(err) {
			return nil, err
		}
	}
	return nil, b.errorFactory("credential version conflict", goerrors.CategoryConflict).
		WithTextCode(RuntimeErrorVersionConflict)
}

// putCredentialAt writes at an exact expected version. On conflict it
// returns the freshly stored credential when that one is already usable,
// so a losing writer adopts the winner's result.
func (b *Broker) putCredentialAt(ctx context.Context, credential *Credential, expectedVersion int64) (*Credential, error) {
	key := credentialKey(credential.UserID, credential.ProviderID)
	payload, err := b.codec.Encode(credential)
	if err != nil {
		return nil, err
	}
	ok, err := b.tokenStore.Put(ctx, key, payload, expectedVersion)
	if err != nil {
		return nil, err
	}
	if ok {
		return credential, nil
	}
	current, _, found, err := b.loadCredential(ctx, credential.UserID, credential.ProviderID)
	if err == nil && found &&
		ResolveTokenState(b.now(), current, b.config.Token.SafetyMargin) == TokenStateValid {
		return current, nil
	}
	return nil, b.errorFactory("credential version conflict", goerrors.CategoryConflict).
		WithTextCode(RuntimeErrorVersionConflict)
}

func isVersionConflict(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == RuntimeErrorVersionConflict
}

func (b *Broker) credentialFromGrant(userID, providerID string, requestedScopes []string, grant TokenGrant) *Credential {
	now := b.now()
	scopes := grant.Scopes
	if len(scopes) == 0 {
		scopes = requestedScopes
	}
	return &Credential{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProviderID:   providerID,
		Status:       CredentialStatusActive,
		TokenType:    grant.TokenType,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		Scopes:       cloneStrings(scopes),
		ExpiresAt:    cloneTimePointer(grant.ExpiresAt),
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     cloneMetadata(grant.Metadata),
	}
}

// applyGrant merges a refresh grant over the prior credential, keeping the
// old refresh token when the provider did not rotate it.
func (b *Broker) applyGrant(prior *Credential, grant TokenGrant) *Credential {
	next := prior.Clone()
	next.Status = CredentialStatusActive
	next.AccessToken = grant.AccessToken
	if grant.TokenType != "" {
		next.TokenType = grant.TokenType
	}
	if grant.RefreshToken != "" {
		next.RefreshToken = grant.RefreshToken
	}
	if len(grant.Scopes) > 0 {
		next.Scopes = cloneStrings(grant.Scopes)
	}
	next.ExpiresAt = cloneTimePointer(grant.ExpiresAt)
	next.UpdatedAt = b.now()
	return next
}

func activeTokenFromCredential(credential *Credential) ActiveToken {
	return ActiveToken{
		TokenType:   credential.TokenType,
		AccessToken: credential.AccessToken,
		Scopes:      cloneStrings(credential.Scopes),
		ExpiresAt:   cloneTimePointer(credential.ExpiresAt),
	}
}

func (b *Broker) resolveProvider(providerID string) (Provider, error) {
	if b.registry == nil {
		return nil, b.errorFactory("provider registry is not configured", goerrors.CategoryInternal)
	}
	provider, err := b.registry.Get(providerID)
	if err != nil {
		return nil, b.errorFactory(fmt.Sprintf("provider %q not registered", providerID), goerrors.CategoryNotFound).
			WithTextCode(RuntimeErrorProviderNotFound)
	}
	return provider, nil
}

func (b *Broker) settleRequest(ctx context.Context, record *AuthorizationRequest, status AuthorizationStatus, reason string) {
	if err := record.TransitionTo(status, b.now()); err != nil {
		return
	}
	record.FailureReason = reason
	if err := b.requestStore.Update(ctx, record); err != nil {
		b.logError(ctx, "settle authorization request", map[string]any{
			"request_id": record.ID,
			"status":     string(status),
			"error":      err.Error(),
		})
	}
}

func (b *Broker) mapError(err error) error {
	if err == nil {
		return nil
	}
	if b.errorMapper == nil {
		return err
	}
	if mapped := b.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (b *Broker) now() time.Time {
	if b.clock == nil {
		return time.Now()
	}
	return b.clock()
}

func credentialKey(userID, providerID string) string {
	return "credential|" + strings.TrimSpace(userID) + "|" + strings.TrimSpace(providerID)
}

// normalizeScopes trims and lowercases, dropping empties.
func normalizeScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.ToLower(strings.TrimSpace(scope))
		if scope == "" {
			continue
		}
		out = append(out, scope)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// scopesOutsideProfile returns the requested scopes the provider does not
// offer. Requested scopes must already be normalized. A provider that
// declares no scopes accepts anything.
func scopesOutsideProfile(requested, offered []string) []string {
	if len(offered) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(offered))
	for _, scope := range offered {
		allowed[strings.ToLower(strings.TrimSpace(scope))] = true
	}
	var rejected []string
	for _, scope := range requested {
		if !allowed[scope] {
			rejected = append(rejected, scope)
		}
	}
	return rejected
}

var (
	_ TokenSource      = (*Broker)(nil)
	_ TokenInvalidator = (*Broker)(nil)
)
