package dispatch

const (
	OutcomeSuccess               = "success"
	OutcomeError                 = "error"
	OutcomeAuthorizationRequired = "authorization_required"
)

// Error kinds surfaced to the model. Stable strings, not Go errors.
const (
	KindInvalidInput     = "invalid_input"
	KindValidationFailed = "validation_error"
	KindAuth             = "auth_error"
	KindPermissionDenied = "permission_denied"
	KindNotFound         = "not_found"
	KindRateLimited      = "rate_limited"
	KindProviderError    = "provider_error"
	KindNetworkError     = "network_error"
	KindConflict         = "conflict"
	KindInternal         = "internal_error"
)

// ToolError is the typed error shape inside an error outcome.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the single envelope a tool invocation produces.
type Result struct {
	Outcome      string
	Data         any
	Error        *ToolError
	AuthorizeURL string
}

// Payload renders the outcome as the wire shape handed back to the agent.
func (r Result) Payload() map[string]any {
	switch r.Outcome {
	case OutcomeAuthorizationRequired:
		return map[string]any{
			"authorization_required": true,
			"url":                    r.AuthorizeURL,
		}
	case OutcomeError:
		toolErr := r.Error
		if toolErr == nil {
			toolErr = &ToolError{Kind: KindInternal, Message: "tool execution failed"}
		}
		return map[string]any{
			"error": map[string]any{
				"kind":    toolErr.Kind,
				"message": toolErr.Message,
			},
		}
	default:
		return map[string]any{"data": r.Data}
	}
}

func successResult(data any) Result {
	return Result{Outcome: OutcomeSuccess, Data: data}
}

func errorResult(kind, message string) Result {
	return Result{Outcome: OutcomeError, Error: &ToolError{Kind: kind, Message: message}}
}

func authorizationRequiredResult(url string) Result {
	return Result{Outcome: OutcomeAuthorizationRequired, AuthorizeURL: url}
}
