// Package client is the resilient HTTP client used to call provider APIs.
// It injects bearer tokens and provider required headers, retries
// transient failures with capped exponential backoff and jitter, and
// decodes the data/meta response envelope.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

// Config wires a client to one provider profile for one end user.
type Config struct {
	Profile   core.ProviderProfile
	UserID    string
	Tokens    core.TokenSource
	Adapter   core.TransportAdapter
	Signer    core.Signer
	Retry     RetryPolicy
	RateLimit core.RateLimitPolicy
	Logger    core.Logger
	// Sleep is replaceable so tests can capture delays.
	Sleep func(ctx context.Context, delay time.Duration) error
	// Rand yields values in [0,1) for jitter.
	Rand func() float64
}

// ResilientClient executes provider calls on behalf of a single user.
type ResilientClient struct {
	profile   core.ProviderProfile
	userID    string
	tokens    core.TokenSource
	adapter   core.TransportAdapter
	signer    core.Signer
	retry     RetryPolicy
	rateLimit core.RateLimitPolicy
	logger    core.Logger
	sleep     func(ctx context.Context, delay time.Duration) error
	random    func() float64
}

// Request is one provider API call.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    any
}

// Paging carries the cursor links from the response envelope.
type Paging struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// Meta is the optional envelope metadata.
type Meta struct {
	Paging *Paging `json:"paging,omitempty"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta,omitempty"`
}

// Response is a decoded provider response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Data       json.RawMessage
	Meta       *Meta
	Body       []byte
}

func New(cfg Config) (*ResilientClient, error) {
	if strings.TrimSpace(cfg.Profile.ID) == "" {
		return nil, fmt.Errorf("client: provider profile id is required")
	}
	if strings.TrimSpace(cfg.Profile.BaseURL) == "" {
		return nil, fmt.Errorf("client: provider base url is required")
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		return nil, fmt.Errorf("client: user id is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("client: token source is required")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("client: transport adapter is required")
	}

	signer := cfg.Signer
	if signer == nil {
		signer = core.BearerTokenSigner{}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	random := cfg.Rand
	if random == nil {
		random = defaultRand
	}

	return &ResilientClient{
		profile:   cfg.Profile.Clone(),
		userID:    strings.TrimSpace(cfg.UserID),
		tokens:    cfg.Tokens,
		adapter:   cfg.Adapter,
		signer:    signer,
		retry:     cfg.Retry.withDefaults(),
		rateLimit: cfg.RateLimit,
		logger:    cfg.Logger,
		sleep:     sleep,
		random:    random,
	}, nil
}

// Profile returns the provider profile the client is bound to.
func (c *ResilientClient) Profile() core.ProviderProfile {
	if c == nil {
		return core.ProviderProfile{}
	}
	return c.profile.Clone()
}

func (c *ResilientClient) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *ResilientClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *ResilientClient) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *ResilientClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do executes the request with the configured retry policy. Retryable
// statuses and network failures are re-attempted with capped exponential
// backoff plus jitter; a Retry-After header overrides the computed delay.
// Non-retryable statuses surface immediately as typed errors.
func (c *ResilientClient) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := c.tokens.GetValidToken(ctx, c.userID, c.profile.ID)
	if err != nil {
		return nil, err
	}

	transportReq, err := c.buildTransportRequest(req, token)
	if err != nil {
		return nil, err
	}

	limitKey := core.RateLimitKey{
		ProviderID: c.profile.ID,
		UserID:     c.userID,
		BucketKey:  strings.TrimSpace(req.Path),
	}
	if c.rateLimit != nil {
		if err := c.rateLimit.BeforeCall(ctx, limitKey); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		res, callErr := c.adapter.Do(ctx, transportReq)
		if callErr != nil {
			if !isNetworkError(callErr) {
				return nil, callErr
			}
			lastErr = callErr
			if attempt == c.retry.MaxAttempts {
				break
			}
			if sleepErr := c.sleep(ctx, c.retry.Delay(attempt, c.random)); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		if c.rateLimit != nil {
			if afterErr := c.rateLimit.AfterCall(ctx, limitKey, core.ProviderResponseMeta{
				StatusCode: res.StatusCode,
				Headers:    res.Headers,
				Metadata:   res.Metadata,
			}); afterErr != nil {
				c.logWarn(ctx, "rate limit state update failed", afterErr)
			}
		}

		if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices {
			return decodeResponse(res)
		}
		if !c.retry.retryableStatus(res.StatusCode) {
			if res.StatusCode == http.StatusUnauthorized {
				c.invalidateToken(ctx)
			}
			return nil, statusError(res)
		}
		lastErr = statusError(res)
		if attempt == c.retry.MaxAttempts {
			break
		}
		delay := c.retry.Delay(attempt, c.random)
		if override, ok := retryAfterDelay(res.Headers, time.Now().UTC()); ok {
			delay = override
		}
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, lastErr
}

// invalidateToken tells the token source its credential is dead after a
// provider 401, so the next call refreshes or re-authorizes instead of
// replaying the rejected token until its natural expiry.
func (c *ResilientClient) invalidateToken(ctx context.Context) {
	invalidator, ok := c.tokens.(core.TokenInvalidator)
	if !ok {
		return
	}
	if err := invalidator.MarkCredentialExpired(ctx, c.userID, c.profile.ID); err != nil {
		c.logWarn(ctx, "credential invalidation failed", err)
	}
}

func (c *ResilientClient) buildTransportRequest(req Request, token core.ActiveToken) (core.TransportRequest, error) {
	path := strings.TrimSpace(req.Path)
	requestURL := strings.TrimRight(c.profile.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	headers := map[string]string{}
	for key, value := range c.profile.RequiredHeaders {
		headers[key] = value
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}

	var body []byte
	switch typed := req.Body.(type) {
	case nil:
	case []byte:
		body = typed
	case json.RawMessage:
		body = typed
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return core.TransportRequest{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "client: encode request body").
				WithTextCode(core.RuntimeErrorBadInput)
		}
		body = encoded
	}

	transportReq := core.TransportRequest{
		Method:  req.Method,
		URL:     requestURL,
		Query:   req.Query,
		Headers: headers,
		Body:    body,
		Timeout: c.profile.RequestTimeout,
	}
	if err := c.signer.Sign(context.Background(), &transportReq, token); err != nil {
		return core.TransportRequest{}, err
	}
	return transportReq, nil
}

func decodeResponse(res core.TransportResponse) (*Response, error) {
	out := &Response{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Body:       res.Body,
	}
	if len(res.Body) == 0 {
		return out, nil
	}
	var parsed envelope
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "client: decode response envelope").
			WithTextCode(core.RuntimeErrorProviderFailure).
			WithMetadata(map[string]any{"status_code": res.StatusCode})
	}
	out.Data = parsed.Data
	out.Meta = parsed.Meta
	return out, nil
}

func (c *ResilientClient) logWarn(ctx context.Context, message string, err error) {
	if c == nil || c.logger == nil {
		return
	}
	logger := c.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Warn(message, "provider_id", c.profile.ID, "error", err.Error())
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
