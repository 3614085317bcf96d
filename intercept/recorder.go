package intercept

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/agentic-learning/go-sdk/core"
	"github.com/agentic-learning/go-sdk/gateway"
	"github.com/agentic-learning/go-sdk/learning"
)

// memoryContextTTL bounds how long a retrieved memory context is reused
// before asking the gateway again.
const memoryContextTTL = time.Minute

// recorder is the bridge between interception and the memory gateway. It
// retrieves memory context for injection (cached) and persists completed
// turns asynchronously so the caller's request latency is unaffected.
type recorder struct {
	wg    sync.WaitGroup
	cache *ristretto.Cache
}

func newRecorder() *recorder {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		// The config above is static; NewCache only fails on a bad config.
		panic(err)
	}
	return &recorder{cache: cache}
}

// memoryContext returns the agent's memory context for injection. Lookups
// hit a short-TTL cache keyed by agent name; only non-empty contexts are
// cached so a freshly created memory becomes visible on the next call.
func (r *recorder) memoryContext(ctx context.Context, cfg learning.Config) (string, error) {
	if v, ok := r.cache.Get(cfg.Agent); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	memCtx, err := cfg.Client.Memory().Context(ctx, cfg.Agent)
	if err != nil {
		return "", err
	}
	if memCtx != "" {
		r.cache.SetWithTTL(cfg.Agent, memCtx, int64(len(memCtx)), memoryContextTTL)
	}
	return memCtx, nil
}

// persist records one completed exchange in the background. Failures are
// logged and swallowed: recording must never disturb the caller's request.
func (r *recorder) persist(cfg learning.Config, provider, model, userText, assistantText string) {
	if userText == "" && assistantText == "" {
		return
	}
	if cfg.Client == nil {
		return
	}

	var turns []core.Turn
	if userText != "" {
		turns = append(turns, core.Turn{Role: core.RoleUser, Content: userText})
	}
	if assistantText != "" {
		turns = append(turns, core.Turn{Role: core.RoleAssistant, Content: assistantText})
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// Detached from the request context: the caller's request is done
		// and its cancellation must not abort the recording.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := r.ensureAgent(ctx, cfg); err != nil {
			core.Debugf("[RECORD] ensure agent %q: %v", cfg.Agent, err)
			return
		}

		err := cfg.Client.Messages().Capture(ctx, gateway.CaptureRequest{
			Agent:    cfg.Agent,
			Provider: provider,
			Model:    model,
			Turns:    turns,
		})
		if err != nil {
			core.Debugf("[RECORD] capture for %q: %v", cfg.Agent, err)
		}
	}()
}

// ensureAgent creates the agent on first use.
func (r *recorder) ensureAgent(ctx context.Context, cfg learning.Config) error {
	agent, err := cfg.Client.Agents().Retrieve(ctx, cfg.Agent)
	if err != nil {
		return err
	}
	if agent != nil {
		return nil
	}

	memory := cfg.Memory
	if len(memory) == 0 {
		memory = []string{"human"}
	}
	_, err = cfg.Client.Agents().Create(ctx, gateway.CreateAgentParams{
		Name:   cfg.Agent,
		Memory: memory,
		Model:  cfg.Model,
	})
	return err
}

// flush blocks until all in-flight background recordings are done.
func (r *recorder) flush() {
	r.wg.Wait()
}
