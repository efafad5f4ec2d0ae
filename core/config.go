package core

import (
	"fmt"
	"time"
)

// Config carries tunables for the authorization broker.
type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name" json:"service_name"`
	Token       TokenConfig   `koanf:"token" mapstructure:"token" json:"token"`
	Refresh     RefreshConfig `koanf:"refresh" mapstructure:"refresh" json:"refresh"`
	Wait        WaitConfig    `koanf:"wait" mapstructure:"wait" json:"wait"`
}

// TokenConfig controls token freshness decisions.
type TokenConfig struct {
	// SafetyMargin is subtracted from the token expiry when deciding
	// whether a token may still be handed out.
	SafetyMargin time.Duration `koanf:"safety_margin" mapstructure:"safety_margin" json:"safety_margin"`
}

// RefreshConfig bounds the broker-level refresh retry loop.
type RefreshConfig struct {
	MaxAttempts    int           `koanf:"max_attempts" mapstructure:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff" mapstructure:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff" mapstructure:"max_backoff" json:"max_backoff"`
	Timeout        time.Duration `koanf:"timeout" mapstructure:"timeout" json:"timeout"`
}

// WaitConfig controls WaitForCompletion polling.
type WaitConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" mapstructure:"poll_interval" json:"poll_interval"`
	Timeout      time.Duration `koanf:"timeout" mapstructure:"timeout" json:"timeout"`
}

// DefaultConfig returns the broker defaults.
func DefaultConfig() Config {
	return Config{
		ServiceName: "arcade-runtime",
		Token: TokenConfig{
			SafetyMargin: DefaultTokenSafetyMargin,
		},
		Refresh: RefreshConfig{
			MaxAttempts:    defaultRefreshMaxAttempts,
			InitialBackoff: defaultRefreshInitialBackoff,
			MaxBackoff:     defaultRefreshMaxBackoff,
			Timeout:        defaultRefreshTimeout,
		},
		Wait: WaitConfig{
			PollInterval: defaultWaitPollInterval,
			Timeout:      defaultWaitTimeout,
		},
	}
}

// Validate rejects configurations the broker cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("core: config is nil")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Token.SafetyMargin < 0 {
		return fmt.Errorf("core: token.safety_margin must not be negative")
	}
	if c.Refresh.MaxAttempts < 1 {
		return fmt.Errorf("core: refresh.max_attempts must be at least 1")
	}
	if c.Refresh.InitialBackoff <= 0 {
		return fmt.Errorf("core: refresh.initial_backoff must be positive")
	}
	if c.Refresh.MaxBackoff < c.Refresh.InitialBackoff {
		return fmt.Errorf("core: refresh.max_backoff must be >= refresh.initial_backoff")
	}
	if c.Wait.PollInterval <= 0 {
		return fmt.Errorf("core: wait.poll_interval must be positive")
	}
	if c.Wait.Timeout <= 0 {
		return fmt.Errorf("core: wait.timeout must be positive")
	}
	return nil
}
