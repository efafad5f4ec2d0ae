package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/client"
	"github.com/sznchanda/arcade-ai/core"
)

// Invocation is one tool call requested by the agent on behalf of a user.
type Invocation struct {
	Tool   string
	UserID string
	Args   json.RawMessage
}

// Call is what a handler receives: decoded arguments plus a client
// already bound to the invoking user and the tool's provider.
type Call struct {
	Tool   string
	UserID string
	Args   Args
	Client *client.ResilientClient
}

// Handler executes one tool. Returned data must already be serializable
// with decimal values rendered as exact strings.
type Handler func(ctx context.Context, call *Call) (any, error)

// Tool binds a name to a provider and a handler.
type Tool struct {
	Name        string
	ProviderID  string
	Description string
	Handler     Handler
}

// Config wires the dispatcher to the broker and transport stack.
type Config struct {
	Broker    *core.Broker
	Adapter   core.TransportAdapter
	RateLimit core.RateLimitPolicy
	Retry     client.RetryPolicy
	Logger    core.Logger
}

// Dispatcher routes invocations to registered tools.
type Dispatcher struct {
	broker    *core.Broker
	adapter   core.TransportAdapter
	rateLimit core.RateLimitPolicy
	retry     client.RetryPolicy
	logger    core.Logger

	mu    sync.RWMutex
	tools map[string]Tool
}

func New(cfg Config) (*Dispatcher, error) {
	if cfg.Broker == nil {
		return nil, fmt.Errorf("dispatch: broker is required")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("dispatch: transport adapter is required")
	}
	return &Dispatcher{
		broker:    cfg.Broker,
		adapter:   cfg.Adapter,
		rateLimit: cfg.RateLimit,
		retry:     cfg.Retry,
		logger:    cfg.Logger,
		tools:     map[string]Tool{},
	}, nil
}

// Register adds a tool; duplicate names are rejected.
func (d *Dispatcher) Register(tool Tool) error {
	if d == nil {
		return fmt.Errorf("dispatch: dispatcher is nil")
	}
	name := normalizeToolName(tool.Name)
	if name == "" {
		return fmt.Errorf("dispatch: tool name is required")
	}
	if strings.TrimSpace(tool.ProviderID) == "" {
		return fmt.Errorf("dispatch: tool %q requires a provider id", name)
	}
	if tool.Handler == nil {
		return fmt.Errorf("dispatch: tool %q requires a handler", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tools[name]; exists {
		return fmt.Errorf("dispatch: tool %q already registered", name)
	}
	tool.Name = name
	d.tools[name] = tool
	return nil
}

// RegisterAll registers every tool, stopping at the first failure.
func (d *Dispatcher) RegisterAll(tools []Tool) error {
	for _, tool := range tools {
		if err := d.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// Tools returns registered tool names sorted ascending.
func (d *Dispatcher) Tools() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.tools))
	for name := range d.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch executes one invocation. Every path reduces to one of three
// outcomes; no Go error escapes to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Result {
	if d == nil {
		return errorResult(KindInternal, "dispatcher is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	name := normalizeToolName(inv.Tool)
	if name == "" {
		return errorResult(KindInvalidInput, "tool name is required")
	}
	userID := strings.TrimSpace(inv.UserID)
	if userID == "" {
		return errorResult(KindInvalidInput, "user id is required")
	}

	args, err := decodeArgs(inv.Args)
	if err != nil {
		return errorResult(KindInvalidInput, "arguments must be a JSON object")
	}

	tool, ok := d.toolFor(name)
	if !ok {
		return errorResult(KindNotFound, fmt.Sprintf("unknown tool %q", name))
	}

	toolClient, err := d.clientFor(tool, userID)
	if err != nil {
		return d.reduce(ctx, tool, userID, err)
	}

	data, err := tool.Handler(ctx, &Call{
		Tool:   tool.Name,
		UserID: userID,
		Args:   args,
		Client: toolClient,
	})
	if err != nil {
		return d.reduce(ctx, tool, userID, err)
	}
	return successResult(data)
}

func (d *Dispatcher) reduce(ctx context.Context, tool Tool, userID string, err error) Result {
	if core.IsAuthorizationRequired(err) {
		if url, ok := core.AuthorizationRequiredURL(err); ok {
			return authorizationRequiredResult(url)
		}
		return errorResult(KindAuth, "authorization required but no authorize url was issued")
	}
	toolErr := toolErrorFrom(err)
	d.logWarn(ctx, tool, userID, toolErr, err)
	return Result{Outcome: OutcomeError, Error: &toolErr}
}

func (d *Dispatcher) clientFor(tool Tool, userID string) (*client.ResilientClient, error) {
	provider, err := d.broker.Registry().Get(tool.ProviderID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "dispatch: resolve tool provider").
			WithTextCode(core.RuntimeErrorProviderNotFound).
			WithMetadata(map[string]any{"tool": tool.Name, "provider_id": tool.ProviderID})
	}
	return client.New(client.Config{
		Profile:   provider.Profile(),
		UserID:    userID,
		Tokens:    d.broker,
		Adapter:   d.adapter,
		Signer:    d.broker.Signer(),
		Retry:     d.retry,
		RateLimit: d.rateLimit,
		Logger:    d.logger,
	})
}

func (d *Dispatcher) toolFor(name string) (Tool, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tool, ok := d.tools[name]
	return tool, ok
}

func (d *Dispatcher) logWarn(ctx context.Context, tool Tool, userID string, toolErr ToolError, err error) {
	if d == nil || d.logger == nil {
		return
	}
	logger := d.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Warn("tool invocation failed",
		"tool", tool.Name,
		"provider_id", tool.ProviderID,
		"user_id", userID,
		"kind", toolErr.Kind,
		"error", err.Error(),
	)
}

func normalizeToolName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
