package dispatch

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

// toolErrorFrom collapses a Go error into the stable {kind, message}
// shape. Messages are taken from the error as-is; bearer tokens never
// reach error messages upstream, so nothing here needs scrubbing.
func toolErrorFrom(err error) ToolError {
	if err == nil {
		return ToolError{Kind: KindInternal, Message: "tool execution failed"}
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ToolError{Kind: KindInternal, Message: err.Error()}
	}

	kind := kindForError(richErr)
	message := strings.TrimSpace(richErr.Message)
	if message == "" {
		message = err.Error()
	}
	return ToolError{Kind: kind, Message: message}
}

func kindForError(richErr *goerrors.Error) string {
	switch richErr.TextCode {
	case core.RuntimeErrorNetwork:
		return KindNetworkError
	case core.RuntimeErrorRefreshFailed:
		return KindAuth
	case core.RuntimeErrorInvalidPagination:
		return KindInvalidInput
	}
	switch richErr.Category {
	case goerrors.CategoryValidation:
		return KindValidationFailed
	case goerrors.CategoryBadInput:
		return KindInvalidInput
	case goerrors.CategoryAuth:
		return KindAuth
	case goerrors.CategoryAuthz:
		return KindPermissionDenied
	case goerrors.CategoryNotFound:
		return KindNotFound
	case goerrors.CategoryRateLimit:
		return KindRateLimited
	case goerrors.CategoryConflict:
		return KindConflict
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return KindProviderError
	default:
		return KindInternal
	}
}
