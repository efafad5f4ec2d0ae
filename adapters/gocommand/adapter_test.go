package gocommand

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-command"

	runtimecommand "github.com/sznchanda/arcade-ai/command"
	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/dispatch"
)

type okMessage struct{}

func (okMessage) Type() string { return "runtime.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "runtime.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "runtime.command.test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer subscription.Unsubscribe()

	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestRegisterRuntimeCommands(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	started := 0
	dispatched := 0

	auth := stubAuthService{
		startFn: func(_ context.Context, req core.StartAuthorizationRequest) (*core.AuthorizationRequest, error) {
			started++
			if req.ProviderID != "clio" {
				t.Fatalf("unexpected provider %q", req.ProviderID)
			}
			return &core.AuthorizationRequest{ID: "req_1"}, nil
		},
	}
	tools := stubTools{
		dispatchFn: func(_ context.Context, inv dispatch.Invocation) dispatch.Result {
			dispatched++
			return dispatch.Result{Outcome: dispatch.OutcomeSuccess}
		},
	}

	subscriptions, err := RegisterRuntimeCommands(adapter, auth, tools)
	if err != nil {
		t.Fatalf("register runtime commands: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if len(subscriptions) != 6 {
		t.Fatalf("expected 6 subscriptions, got %d", len(subscriptions))
	}

	if err := Dispatch(context.Background(), runtimecommand.StartAuthorizationMessage{
		Request: core.StartAuthorizationRequest{UserID: "user-1", ProviderID: "clio"},
	}); err != nil {
		t.Fatalf("dispatch start authorization: %v", err)
	}
	if started != 1 {
		t.Fatalf("expected start authorization execution count=1, got %d", started)
	}

	if err := Dispatch(context.Background(), runtimecommand.InvokeToolMessage{
		Invocation: dispatch.Invocation{Tool: "clio.get_matter", UserID: "user-1"},
	}); err != nil {
		t.Fatalf("dispatch invoke tool: %v", err)
	}
	if dispatched != 1 {
		t.Fatalf("expected tool dispatch count=1, got %d", dispatched)
	}
}

func TestRegisterRuntimeCommandsRequiresServices(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())

	if _, err := RegisterRuntimeCommands(nil, stubAuthService{}, stubTools{}); err == nil {
		t.Fatalf("expected error for nil adapter")
	}
	if _, err := RegisterRuntimeCommands(adapter, nil, stubTools{}); err == nil {
		t.Fatalf("expected error for nil authorization service")
	}
	if _, err := RegisterRuntimeCommands(adapter, stubAuthService{}, nil); err == nil {
		t.Fatalf("expected error for nil tool service")
	}
}

type stubAuthService struct {
	startFn func(ctx context.Context, req core.StartAuthorizationRequest) (*core.AuthorizationRequest, error)
}

func (s stubAuthService) StartAuthorization(ctx context.Context, req core.StartAuthorizationRequest) (*core.AuthorizationRequest, error) {
	if s.startFn == nil {
		return nil, fmt.Errorf("start authorization not configured")
	}
	return s.startFn(ctx, req)
}

func (s stubAuthService) WaitForCompletion(context.Context, string, time.Duration) (*core.AuthorizationRequest, error) {
	return nil, fmt.Errorf("wait for completion not configured")
}

func (s stubAuthService) CompleteCallback(context.Context, core.CompleteCallbackRequest) (*core.Credential, error) {
	return nil, fmt.Errorf("complete callback not configured")
}

func (s stubAuthService) Refresh(context.Context, string, string) (*core.Credential, error) {
	return nil, fmt.Errorf("refresh not configured")
}

func (s stubAuthService) Revoke(context.Context, string, string) error {
	return fmt.Errorf("revoke not configured")
}

type stubTools struct {
	dispatchFn func(ctx context.Context, inv dispatch.Invocation) dispatch.Result
}

func (s stubTools) Dispatch(ctx context.Context, inv dispatch.Invocation) dispatch.Result {
	if s.dispatchFn == nil {
		return dispatch.Result{}
	}
	return s.dispatchFn(ctx, inv)
}

var _ runtimecommand.AuthorizationService = stubAuthService{}
var _ runtimecommand.ToolService = stubTools{}
