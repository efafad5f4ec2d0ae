package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// networkError marks a connection-level failure: retryable, but a
// different kind than an HTTP status from the provider.
func networkError(source error, method, requestURL string) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "transport: execute http request").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.RuntimeErrorNetwork).
		WithMetadata(map[string]any{
			"adapter": KindREST,
			"method":  method,
			"url":     requestURL,
		})
}

// IsNetworkError reports whether err came from a connection-level failure
// rather than an HTTP response.
func IsNetworkError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == core.RuntimeErrorNetwork
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.RuntimeErrorBadInput
	case goerrors.CategoryAuth:
		return core.RuntimeErrorAuthenticationFailed
	case goerrors.CategoryAuthz:
		return core.RuntimeErrorPermissionDenied
	case goerrors.CategoryRateLimit:
		return core.RuntimeErrorRateLimited
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return core.RuntimeErrorProviderFailure
	default:
		return core.RuntimeErrorInternal
	}
}
