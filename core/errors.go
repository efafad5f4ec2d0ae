package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	RuntimeErrorBadInput              = "RUNTIME_BAD_INPUT"
	RuntimeErrorInvalidScope          = "RUNTIME_INVALID_SCOPE"
	RuntimeErrorProviderNotFound      = "RUNTIME_PROVIDER_NOT_FOUND"
	RuntimeErrorAuthorizationRequired = "RUNTIME_AUTHORIZATION_REQUIRED"
	RuntimeErrorAuthorizationTimeout  = "RUNTIME_AUTHORIZATION_TIMEOUT"
	RuntimeErrorAuthenticationFailed  = "RUNTIME_AUTHENTICATION_FAILED"
	RuntimeErrorPermissionDenied      = "RUNTIME_PERMISSION_DENIED"
	RuntimeErrorRefreshFailed         = "RUNTIME_REFRESH_FAILED"
	RuntimeErrorStateInvalid          = "RUNTIME_OAUTH_STATE_INVALID"
	RuntimeErrorVersionConflict       = "RUNTIME_VERSION_CONFLICT"
	RuntimeErrorRateLimited           = "RUNTIME_RATE_LIMITED"
	RuntimeErrorProviderFailure       = "RUNTIME_PROVIDER_FAILURE"
	RuntimeErrorNetwork               = "RUNTIME_NETWORK_ERROR"
	RuntimeErrorInvalidPagination     = "RUNTIME_INVALID_PAGINATION"
	RuntimeErrorInternal              = "RUNTIME_INTERNAL_ERROR"
)

const authorizeURLMetadataKey = "authorize_url"

// NewAuthorizationRequiredError signals that the caller must send the end
// user through the authorization flow. It is control flow, not a fault:
// dispatchers translate it into an authorization_required outcome.
func NewAuthorizationRequiredError(userID, providerID, authorizeURL string) *goerrors.Error {
	return goerrors.New("authorization required", goerrors.CategoryAuth).
		WithTextCode(RuntimeErrorAuthorizationRequired).
		WithCode(http.StatusUnauthorized).
		WithMetadata(map[string]any{
			"user_id":               userID,
			"provider_id":           providerID,
			authorizeURLMetadataKey: authorizeURL,
		})
}

// IsAuthorizationRequired reports whether err is the authorization-required
// control signal.
func IsAuthorizationRequired(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == RuntimeErrorAuthorizationRequired
}

// AuthorizationRequiredURL extracts the authorize URL carried by an
// authorization-required error.
func AuthorizationRequiredURL(err error) (string, bool) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != RuntimeErrorAuthorizationRequired {
		return "", false
	}
	url, _ := richErr.Metadata[authorizeURLMetadataKey].(string)
	return url, url != ""
}

// NewAuthorizationTimeoutError signals that WaitForCompletion gave up before
// the end user finished the flow.
func NewAuthorizationTimeoutError(requestID string) *goerrors.Error {
	return goerrors.New("authorization did not complete in time", goerrors.CategoryOperation).
		WithTextCode(RuntimeErrorAuthorizationTimeout).
		WithCode(http.StatusRequestTimeout).
		WithMetadata(map[string]any{"request_id": requestID})
}

// IsAuthorizationTimeout reports whether err is an authorization timeout.
func IsAuthorizationTimeout(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == RuntimeErrorAuthorizationTimeout
}

// NewRefreshFailedError signals that a refresh failed after the broker
// exhausted its retry budget or hit an unrecoverable provider response.
func NewRefreshFailedError(cause error, userID, providerID string) *goerrors.Error {
	// Wrap clones a rich cause, category included. A dead refresh is an
	// auth fault no matter what broke it.
	err := goerrors.Wrap(cause, goerrors.CategoryAuth, "credential refresh failed")
	err.Category = goerrors.CategoryAuth
	return err.
		WithTextCode(RuntimeErrorRefreshFailed).
		WithCode(http.StatusUnauthorized).
		WithMetadata(map[string]any{
			"user_id":     userID,
			"provider_id": providerID,
		})
}

// NewInvalidScopeError rejects an authorization request asking for scopes
// the provider does not offer.
func NewInvalidScopeError(providerID string, scopes []string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("scopes not offered by provider %q: %s", providerID, strings.Join(scopes, ", ")),
		goerrors.CategoryBadInput,
	).
		WithTextCode(RuntimeErrorInvalidScope).
		WithCode(http.StatusBadRequest).
		WithMetadata(map[string]any{
			"provider_id": providerID,
			"scopes":      scopes,
		})
}

// IsRefreshFailed reports whether err is a terminal refresh failure.
func IsRefreshFailed(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == RuntimeErrorRefreshFailed
}

func runtimeErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureRuntimeErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "provider") && strings.Contains(msg, "not registered"):
		return newRuntimeError(err.Error(), goerrors.CategoryNotFound, RuntimeErrorProviderNotFound)
	case strings.Contains(msg, "oauth callback state"), strings.Contains(msg, "oauth state"):
		return newRuntimeError(err.Error(), goerrors.CategoryAuth, RuntimeErrorStateInvalid)
	case strings.Contains(msg, "version conflict"), strings.Contains(msg, "version mismatch"):
		return newRuntimeError(err.Error(), goerrors.CategoryConflict, RuntimeErrorVersionConflict)
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return newRuntimeError(err.Error(), goerrors.CategoryRateLimit, RuntimeErrorRateLimited)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newRuntimeError(err.Error(), goerrors.CategoryBadInput, RuntimeErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureRuntimeErrorEnvelope(mapped)
}

func newRuntimeError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureRuntimeErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureRuntimeErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = runtimeHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultRuntimeTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultRuntimeTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return RuntimeErrorBadInput
	case goerrors.CategoryNotFound:
		return RuntimeErrorProviderNotFound
	// The authorization-required code is a broker-minted control signal;
	// plain auth failures must never default into it.
	case goerrors.CategoryAuth:
		return RuntimeErrorAuthenticationFailed
	case goerrors.CategoryAuthz:
		return RuntimeErrorPermissionDenied
	case goerrors.CategoryConflict:
		return RuntimeErrorVersionConflict
	case goerrors.CategoryRateLimit:
		return RuntimeErrorRateLimited
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return RuntimeErrorProviderFailure
	default:
		return RuntimeErrorInternal
	}
}

func runtimeHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
