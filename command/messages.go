package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/dispatch"
)

const (
	TypeStartAuthorization = "runtime.command.authorization.start"
	TypeWaitAuthorization  = "runtime.command.authorization.wait"
	TypeCompleteCallback   = "runtime.command.callback.complete"
	TypeRefresh            = "runtime.command.refresh"
	TypeRevoke             = "runtime.command.revoke"
	TypeInvokeTool         = "runtime.command.tool.invoke"
)

type StartAuthorizationMessage struct {
	Request core.StartAuthorizationRequest
}

func (StartAuthorizationMessage) Type() string { return TypeStartAuthorization }

func (m StartAuthorizationMessage) Validate() error {
	if strings.TrimSpace(m.Request.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	return nil
}

type WaitAuthorizationMessage struct {
	RequestID string
	Timeout   time.Duration
}

func (WaitAuthorizationMessage) Type() string { return TypeWaitAuthorization }

func (m WaitAuthorizationMessage) Validate() error {
	if strings.TrimSpace(m.RequestID) == "" {
		return fmt.Errorf("command: request id is required")
	}
	if m.Timeout < 0 {
		return fmt.Errorf("command: timeout must not be negative")
	}
	return nil
}

type CompleteCallbackMessage struct {
	Request core.CompleteCallbackRequest
}

func (CompleteCallbackMessage) Type() string { return TypeCompleteCallback }

func (m CompleteCallbackMessage) Validate() error {
	if strings.TrimSpace(m.Request.State) == "" {
		return fmt.Errorf("command: callback state is required")
	}
	if strings.TrimSpace(m.Request.Code) == "" && strings.TrimSpace(m.Request.ErrorCode) == "" {
		return fmt.Errorf("command: callback code or error code is required")
	}
	return nil
}

type RefreshMessage struct {
	UserID     string
	ProviderID string
}

func (RefreshMessage) Type() string { return TypeRefresh }

func (m RefreshMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	if strings.TrimSpace(m.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	return nil
}

type RevokeMessage struct {
	UserID     string
	ProviderID string
}

func (RevokeMessage) Type() string { return TypeRevoke }

func (m RevokeMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	if strings.TrimSpace(m.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	return nil
}

type InvokeToolMessage struct {
	Invocation dispatch.Invocation
}

func (InvokeToolMessage) Type() string { return TypeInvokeTool }

func (m InvokeToolMessage) Validate() error {
	if strings.TrimSpace(m.Invocation.Tool) == "" {
		return fmt.Errorf("command: tool name is required")
	}
	if strings.TrimSpace(m.Invocation.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	return nil
}
