package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type brokerBuilder struct {
	runtimeConfig    Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	tokenStore       TokenStore
	requestStore     AuthRequestStore
	refreshScheduler RefreshBackoffScheduler
	registry         Registry
	credentialCodec  CredentialCodec
	signer           Signer
	clock            func() time.Time
}

type Option func(*brokerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *brokerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *brokerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *brokerBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *brokerBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *brokerBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *brokerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *brokerBuilder) {
		b.optionsResolver = resolver
	}
}

func WithTokenStore(store TokenStore) Option {
	return func(b *brokerBuilder) {
		b.tokenStore = store
	}
}

func WithAuthRequestStore(store AuthRequestStore) Option {
	return func(b *brokerBuilder) {
		b.requestStore = store
	}
}

func WithRefreshBackoffScheduler(scheduler RefreshBackoffScheduler) Option {
	return func(b *brokerBuilder) {
		b.refreshScheduler = scheduler
	}
}

func WithRegistry(registry Registry) Option {
	return func(b *brokerBuilder) {
		b.registry = registry
	}
}

func WithCredentialCodec(codec CredentialCodec) Option {
	return func(b *brokerBuilder) {
		b.credentialCodec = codec
	}
}

func WithSigner(signer Signer) Option {
	return func(b *brokerBuilder) {
		b.signer = signer
	}
}

// WithClock overrides the broker's time source.
func WithClock(clock func() time.Time) Option {
	return func(b *brokerBuilder) {
		b.clock = clock
	}
}

func defaultBrokerBuilder(runtime Config) brokerBuilder {
	loggerProvider, logger := glog.Resolve("runtime", nil, nil)
	return brokerBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		registry:        NewProviderRegistry(),
		credentialCodec: JSONCredentialCodec{},
		signer:          BearerTokenSigner{},
		clock:           time.Now,
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return runtimeErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Token.SafetyMargin > 0 {
		layer["token"] = map[string]any{
			"safety_margin": cfg.Token.SafetyMargin,
		}
	}
	if includeZero || cfg.Refresh != (RefreshConfig{}) {
		refresh := map[string]any{}
		if includeZero || cfg.Refresh.MaxAttempts > 0 {
			refresh["max_attempts"] = cfg.Refresh.MaxAttempts
		}
		if includeZero || cfg.Refresh.InitialBackoff > 0 {
			refresh["initial_backoff"] = cfg.Refresh.InitialBackoff
		}
		if includeZero || cfg.Refresh.MaxBackoff > 0 {
			refresh["max_backoff"] = cfg.Refresh.MaxBackoff
		}
		if includeZero || cfg.Refresh.Timeout > 0 {
			refresh["timeout"] = cfg.Refresh.Timeout
		}
		layer["refresh"] = refresh
	}
	if includeZero || cfg.Wait != (WaitConfig{}) {
		wait := map[string]any{}
		if includeZero || cfg.Wait.PollInterval > 0 {
			wait["poll_interval"] = cfg.Wait.PollInterval
		}
		if includeZero || cfg.Wait.Timeout > 0 {
			wait["timeout"] = cfg.Wait.Timeout
		}
		layer["wait"] = wait
	}
	return layer
}
