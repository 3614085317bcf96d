// Package learning provides the scoped activation context for automatic
// memory integration. SDK calls made with a context produced by With (or
// inside Run) are captured and enriched by the interception framework;
// calls made outside any scope are untouched.
package learning

import (
	"context"
	"sync"

	"github.com/agentic-learning/go-sdk/gateway"
)

// DefaultAgent is the agent name used when Config.Agent is empty.
const DefaultAgent = "letta_agent"

// Config is the activation configuration visible to interceptors for the
// duration of one scope.
type Config struct {
	// Agent is the memory agent conversations are recorded against.
	// Defaults to DefaultAgent.
	Agent string

	// Client is the memory-service gateway. When nil, the process-wide
	// default client is used (see SetDefaultClient).
	Client gateway.Client

	// CaptureOnly disables memory injection into outgoing requests while
	// still persisting conversation turns.
	CaptureOnly bool

	// Memory lists the memory blocks configured when the agent is
	// auto-created. Defaults to ["human"].
	Memory []string

	// Model optionally selects the model for agent auto-creation.
	Model string
}

type ctxKey struct{}

// With returns a context carrying cfg. The configuration is visible to any
// interceptor invoked with the returned context (or a descendant of it) and
// to nothing else: unrelated contexts and goroutines are isolated.
func With(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the innermost configuration carried by ctx.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ctxKey{}).(Config)
	return cfg, ok
}

// Run executes work inside a learning scope. The scope ends when work
// returns, whether normally or with an error.
func Run(ctx context.Context, cfg Config, work func(context.Context) error) error {
	return work(With(ctx, cfg))
}

// --- process-wide fallback slot ---

var (
	slotMu     sync.Mutex
	slot       *Config
	slotActive bool
)

// Activate sets the process-wide activation slot for callers that cannot
// thread a context. It returns a restore function that must be called when
// the unit of work ends; the restore puts back whatever was active before
// and is safe to call more than once.
//
// The slot is shared by every flow in the process: do not keep two
// independent activations outstanding at once. Prefer With/Run.
func Activate(cfg Config) (restore func()) {
	slotMu.Lock()
	prev, prevActive := slot, slotActive
	c := cfg
	slot, slotActive = &c, true
	slotMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			slotMu.Lock()
			slot, slotActive = prev, prevActive
			slotMu.Unlock()
		})
	}
}

// fromSlot returns the process-wide configuration, if one is active.
func fromSlot() (Config, bool) {
	slotMu.Lock()
	defer slotMu.Unlock()
	if !slotActive || slot == nil {
		return Config{}, false
	}
	return *slot, true
}

// Resolve returns the configuration an interceptor should act under: the
// context scope when present, otherwise the process-wide slot, otherwise
// nothing. Agent and Client defaults are applied so callers get a usable
// configuration.
func Resolve(ctx context.Context) (Config, bool) {
	cfg, ok := FromContext(ctx)
	if !ok {
		cfg, ok = fromSlot()
	}
	if !ok {
		return Config{}, false
	}
	if cfg.Agent == "" {
		cfg.Agent = DefaultAgent
	}
	if cfg.Client == nil {
		cfg.Client = DefaultClient()
	}
	return cfg, true
}

// --- default gateway client ---

var (
	clientMu      sync.Mutex
	defaultClient gateway.Client
)

// SetDefaultClient sets the gateway used by scopes whose Config.Client is
// nil. Passing nil resets to the lazily-created REST client.
func SetDefaultClient(c gateway.Client) {
	clientMu.Lock()
	defaultClient = c
	clientMu.Unlock()
}

// DefaultClient returns the process-wide gateway client, creating a REST
// client from the environment on first use.
func DefaultClient() gateway.Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	if defaultClient == nil {
		defaultClient = gateway.NewREST()
	}
	return defaultClient
}
