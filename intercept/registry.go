package intercept

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/agentic-learning/go-sdk/core"
)

// Interceptor is one installable provider integration. Implementations are
// registered by provider packages at import time.
type Interceptor interface {
	// Provider names the integration ("anthropic", "openai", "gemini").
	Provider() string

	// Available reports whether the integration can be installed in this
	// process. Unavailable integrations are skipped, not failed.
	Available() bool

	Install() error
	Uninstall() error
}

// Registry tracks the provider integrations of one interception domain:
// which are registered, which are installed, and which request shapes are
// currently claimed. The zero value is not usable; use NewRegistry or
// DefaultRegistry.
type Registry struct {
	mu       sync.Mutex
	variants []func(*Registry) Interceptor
	active   []Interceptor
	patched  map[string]bool
	descs    map[string]Descriptor
	rec      *recorder

	// installDefault makes InstallAll swap http.DefaultTransport, which is
	// the behavior of the default registry. Private registries leave the
	// process transport alone and are wired explicitly via Transport or
	// WrapClient.
	installDefault bool
}

// NewRegistry returns an empty registry that does not touch the process-wide
// transport. Callers wire it into clients explicitly.
func NewRegistry() *Registry {
	return &Registry{
		patched: make(map[string]bool),
		descs:   make(map[string]Descriptor),
		rec:     newRecorder(),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry that provider packages
// register into. Installing it swaps http.DefaultTransport.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.installDefault = true
	})
	return defaultRegistry
}

// Register adds an interceptor constructor. The constructor runs during
// InstallAll so registration itself can never fail.
func (r *Registry) Register(build func(*Registry) Interceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants = append(r.variants, build)
}

// InstallAll installs every registered interceptor that is available.
// One integration failing or panicking does not prevent the others from
// installing. It returns the provider names that were installed; calling it
// again is a no-op for already-installed providers.
func (r *Registry) InstallAll() []string {
	r.mu.Lock()
	variants := make([]func(*Registry) Interceptor, len(r.variants))
	copy(variants, r.variants)
	r.mu.Unlock()

	var installed []string
	for _, build := range variants {
		name, err := r.installOne(build)
		if err != nil {
			core.Debugf("[INTERCEPT] install: %v", err)
			continue
		}
		if name != "" {
			installed = append(installed, name)
		}
	}
	return installed
}

// installOne isolates one integration's install, converting a panic into an
// error so a broken integration cannot take down the install pass.
func (r *Registry) installOne(build func(*Registry) Interceptor) (name string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic: %v", name, p)
		}
	}()

	in := build(r)
	name = in.Provider()
	if !in.Available() {
		return "", nil
	}
	if err := in.Install(); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	r.mu.Lock()
	r.active = append(r.active, in)
	r.mu.Unlock()
	return name, nil
}

// UninstallAll reverses every active install, restoring untouched behavior.
// It tolerates interceptors that were never installed and is safe to call
// more than once.
func (r *Registry) UninstallAll() {
	r.mu.Lock()
	active := r.active
	r.active = nil
	r.mu.Unlock()

	for _, in := range active {
		if err := in.Uninstall(); err != nil {
			core.Debugf("[INTERCEPT] uninstall %s: %v", in.Provider(), err)
		}
	}
	r.rec.flush()
}

// MarkPatched records that key has been patched. It returns false when the
// key was already marked, which is how double-installation is prevented.
func (r *Registry) MarkPatched(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.patched[key] {
		return false
	}
	r.patched[key] = true
	return true
}

// Unmark clears a patch mark so the key can be installed again.
func (r *Registry) Unmark(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.patched, key)
}

// enable starts claiming requests that match d.
func (r *Registry) enable(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descs[d.Provider] = d
}

// disable stops claiming requests for the named provider.
func (r *Registry) disable(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.descs, provider)
}

// enabledCount reports how many descriptors are currently claiming requests.
func (r *Registry) enabledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.descs)
}

// match returns the descriptor claiming req, if any. Host matches win over
// path matches so two providers sharing a path suffix resolve to the one the
// request is actually addressed to.
func (r *Registry) match(req *http.Request) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pathHit *Descriptor
	for name := range r.descs {
		d := r.descs[name]
		if !d.matchesPath(req) {
			continue
		}
		if d.matchesHost(req) {
			return d, true
		}
		if pathHit == nil {
			hit := d
			pathHit = &hit
		}
	}
	if pathHit != nil {
		return *pathHit, true
	}
	return Descriptor{}, false
}

// Flush blocks until this registry's in-flight background recordings are
// persisted.
func (r *Registry) Flush() {
	r.rec.flush()
}

// Flush blocks until the default registry's in-flight background recordings
// are persisted. Call it before process exit in short-lived programs.
func Flush() {
	DefaultRegistry().Flush()
}
