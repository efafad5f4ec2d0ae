package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

// statusError converts a non-success provider response into a typed error.
func statusError(res core.TransportResponse) error {
	message := responseMessage(res.Body)
	metadata := map[string]any{"status_code": res.StatusCode}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return newStatusError("provider rejected credentials", message, goerrors.CategoryAuth,
			core.RuntimeErrorAuthenticationFailed, res.StatusCode, metadata)
	case res.StatusCode == http.StatusForbidden:
		// A 403 is never re-authorizable; a new grant would carry the
		// same permissions.
		return newStatusError("provider denied permission", message, goerrors.CategoryAuthz,
			core.RuntimeErrorPermissionDenied, res.StatusCode, metadata)
	case res.StatusCode == http.StatusNotFound:
		return newStatusError("resource not found", message, goerrors.CategoryNotFound,
			core.RuntimeErrorProviderFailure, res.StatusCode, metadata)
	case res.StatusCode == http.StatusUnprocessableEntity:
		return newStatusError("provider rejected request data", message, goerrors.CategoryValidation,
			core.RuntimeErrorBadInput, res.StatusCode, metadata)
	case res.StatusCode == http.StatusTooManyRequests:
		return newStatusError("provider rate limit exceeded", message, goerrors.CategoryRateLimit,
			core.RuntimeErrorRateLimited, res.StatusCode, metadata)
	case res.StatusCode >= http.StatusInternalServerError:
		return newStatusError("provider server error", message, goerrors.CategoryExternal,
			core.RuntimeErrorProviderFailure, res.StatusCode, metadata)
	default:
		return newStatusError("provider request failed", message, goerrors.CategoryOperation,
			core.RuntimeErrorProviderFailure, res.StatusCode, metadata)
	}
}

func newStatusError(
	summary string,
	detail string,
	category goerrors.Category,
	textCode string,
	statusCode int,
	metadata map[string]any,
) error {
	message := summary
	if detail != "" {
		message = fmt.Sprintf("%s: %s", summary, detail)
	}
	return goerrors.New(message, category).
		WithCode(statusCode).
		WithTextCode(textCode).
		WithMetadata(metadata)
}

// responseMessage pulls a human-readable message out of a provider error
// body, trying the shapes Clio and similar APIs use.
func responseMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}
	if nested, ok := decoded["error"].(map[string]any); ok {
		if message, ok := nested["message"].(string); ok {
			return strings.TrimSpace(message)
		}
	}
	if message, ok := decoded["message"].(string); ok {
		return strings.TrimSpace(message)
	}
	if message, ok := decoded["error"].(string); ok {
		return strings.TrimSpace(message)
	}
	return ""
}
