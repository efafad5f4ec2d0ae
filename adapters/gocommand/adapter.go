// Package gocommand bridges the runtime's commands onto the go-command
// registry and dispatcher so hosts can drive authorization and tool
// execution through their existing command bus.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	runtimecommand "github.com/sznchanda/arcade-ai/command"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeCommandFunc[T any](handler command.CommandFunc[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(handler, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// RegisterRuntimeCommands wires every runtime command onto the registry
// and dispatcher. Returned subscriptions unhook the handlers again.
func RegisterRuntimeCommands(
	adapter *RegistryAdapter,
	auth runtimecommand.AuthorizationService,
	tools runtimecommand.ToolService,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if auth == nil {
		return nil, fmt.Errorf("gocommand: authorization service is required")
	}
	if tools == nil {
		return nil, fmt.Errorf("gocommand: tool service is required")
	}

	var subscriptions []commanddispatcher.Subscription
	unsubscribeAll := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}

	register := func(subscribe func() (commanddispatcher.Subscription, error)) error {
		subscription, err := subscribe()
		if err != nil {
			unsubscribeAll()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewStartAuthorizationCommand(auth), runnerOpts...)
	}); err != nil {
		return nil, err
	}
	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewWaitAuthorizationCommand(auth), runnerOpts...)
	}); err != nil {
		return nil, err
	}
	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewCompleteCallbackCommand(auth), runnerOpts...)
	}); err != nil {
		return nil, err
	}
	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewRefreshCommand(auth), runnerOpts...)
	}); err != nil {
		return nil, err
	}
	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewRevokeCommand(auth), runnerOpts...)
	}); err != nil {
		return nil, err
	}
	if err := register(func() (commanddispatcher.Subscription, error) {
		return RegisterAndSubscribe(adapter, runtimecommand.NewInvokeToolCommand(tools), runnerOpts...)
	}); err != nil {
		return nil, err
	}

	return subscriptions, nil
}
