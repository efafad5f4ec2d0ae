package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"

	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/dispatch"
)

// AuthorizationService is the broker surface the commands mutate through.
type AuthorizationService interface {
	StartAuthorization(ctx context.Context, req core.StartAuthorizationRequest) (*core.AuthorizationRequest, error)
	WaitForCompletion(ctx context.Context, requestID string, timeout time.Duration) (*core.AuthorizationRequest, error)
	CompleteCallback(ctx context.Context, req core.CompleteCallbackRequest) (*core.Credential, error)
	Refresh(ctx context.Context, userID, providerID string) (*core.Credential, error)
	Revoke(ctx context.Context, userID, providerID string) error
}

// ToolService executes agent tool invocations.
type ToolService interface {
	Dispatch(ctx context.Context, inv dispatch.Invocation) dispatch.Result
}

type StartAuthorizationCommand struct {
	service AuthorizationService
}

func NewStartAuthorizationCommand(service AuthorizationService) *StartAuthorizationCommand {
	return &StartAuthorizationCommand{service: service}
}

func (c *StartAuthorizationCommand) Execute(ctx context.Context, msg StartAuthorizationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	out, err := c.service.StartAuthorization(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type WaitAuthorizationCommand struct {
	service AuthorizationService
}

func NewWaitAuthorizationCommand(service AuthorizationService) *WaitAuthorizationCommand {
	return &WaitAuthorizationCommand{service: service}
}

func (c *WaitAuthorizationCommand) Execute(ctx context.Context, msg WaitAuthorizationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	out, err := c.service.WaitForCompletion(ctx, msg.RequestID, msg.Timeout)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompleteCallbackCommand struct {
	service AuthorizationService
}

func NewCompleteCallbackCommand(service AuthorizationService) *CompleteCallbackCommand {
	return &CompleteCallbackCommand{service: service}
}

func (c *CompleteCallbackCommand) Execute(ctx context.Context, msg CompleteCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	out, err := c.service.CompleteCallback(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RefreshCommand struct {
	service AuthorizationService
}

func NewRefreshCommand(service AuthorizationService) *RefreshCommand {
	return &RefreshCommand{service: service}
}

func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refresh service is required")
	}
	out, err := c.service.Refresh(ctx, msg.UserID, msg.ProviderID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeCommand struct {
	service AuthorizationService
}

func NewRevokeCommand(service AuthorizationService) *RevokeCommand {
	return &RevokeCommand{service: service}
}

func (c *RevokeCommand) Execute(ctx context.Context, msg RevokeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revoke service is required")
	}
	return c.service.Revoke(ctx, msg.UserID, msg.ProviderID)
}

type InvokeToolCommand struct {
	service ToolService
}

func NewInvokeToolCommand(service ToolService) *InvokeToolCommand {
	return &InvokeToolCommand{service: service}
}

func (c *InvokeToolCommand) Execute(ctx context.Context, msg InvokeToolMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: tool service is required")
	}
	storeResult(ctx, c.service.Dispatch(ctx, msg.Invocation))
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
