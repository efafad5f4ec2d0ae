// Package arcade assembles the credential broker, resilient client
// stack, and tool dispatcher into one runtime an agent host can embed.
package arcade

import (
	"fmt"

	"github.com/sznchanda/arcade-ai/client"
	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/dispatch"
	"github.com/sznchanda/arcade-ai/providers/clio"
	"github.com/sznchanda/arcade-ai/ratelimit"
	cliotools "github.com/sznchanda/arcade-ai/tools/clio"
	"github.com/sznchanda/arcade-ai/transport"
)

// Config assembles a runtime. Zero values fall back to in-memory
// stores, the REST transport, and default retry settings.
type Config struct {
	// Clio enables the Clio provider and its tool set.
	Clio *clio.Config

	// Broker holds runtime overrides layered over loaded config.
	Broker core.Config

	// BrokerOptions forward to core.NewBroker (stores, logger, metrics).
	BrokerOptions []core.Option

	// Adapter overrides the default REST transport adapter.
	Adapter core.TransportAdapter

	// RateLimitStore overrides the in-memory rate-limit state store.
	RateLimitStore ratelimit.StateStore

	Retry  client.RetryPolicy
	Logger core.Logger
}

// Runtime is the assembled broker plus dispatcher.
type Runtime struct {
	Broker     *core.Broker
	Dispatcher *dispatch.Dispatcher
	Transports *transport.Registry
	RateLimit  *ratelimit.AdaptivePolicy
}

func New(cfg Config) (*Runtime, error) {
	broker, err := core.NewBroker(cfg.Broker, cfg.BrokerOptions...)
	if err != nil {
		return nil, err
	}

	if cfg.Clio != nil {
		clioProvider, err := clio.New(*cfg.Clio)
		if err != nil {
			return nil, err
		}
		if err := broker.Registry().Register(clioProvider); err != nil {
			return nil, err
		}
	}

	transports := transport.NewDefaultRegistry()
	adapter := cfg.Adapter
	if adapter == nil {
		resolved, ok := transports.Get(transport.KindREST)
		if !ok {
			return nil, fmt.Errorf("arcade: rest transport adapter is not registered")
		}
		adapter = resolved
	} else if _, ok := transports.Get(adapter.Kind()); !ok {
		if err := transports.Register(adapter); err != nil {
			return nil, err
		}
	}

	stateStore := cfg.RateLimitStore
	if stateStore == nil {
		stateStore = ratelimit.NewMemoryStateStore()
	}
	rateLimit := ratelimit.NewAdaptivePolicy(stateStore)

	dispatcher, err := dispatch.New(dispatch.Config{
		Broker:    broker,
		Adapter:   adapter,
		RateLimit: rateLimit,
		Retry:     cfg.Retry,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Clio != nil {
		if err := dispatcher.RegisterAll(cliotools.Tools()); err != nil {
			return nil, err
		}
	}

	return &Runtime{
		Broker:     broker,
		Dispatcher: dispatcher,
		Transports: transports,
		RateLimit:  rateLimit,
	}, nil
}
