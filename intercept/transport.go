package intercept

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/agentic-learning/go-sdk/core"
	"github.com/agentic-learning/go-sdk/learning"
)

// bypassKey marks a request already handled by a Transport so nested
// transports pass it through untouched. At most one layer ever acts on a
// request, no matter how clients and transports are stacked.
type bypassKey struct{}

func withBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

func bypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}

// Transport is the interception layer. It wraps a base http.RoundTripper
// and, for requests that carry an active learning scope and match an
// enabled provider descriptor, injects memory context into the outgoing
// body and records the exchange afterwards. Everything else passes through
// byte-for-byte.
type Transport struct {
	base http.RoundTripper
	reg  *Registry
}

// NewTransport wraps base with interception driven by reg. A nil base means
// http.DefaultTransport at call time.
func NewTransport(base http.RoundTripper, reg *Registry) *Transport {
	return &Transport{base: base, reg: reg}
}

func (t *Transport) roundTripBase(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if bypassed(ctx) {
		return t.roundTripBase(req)
	}

	cfg, ok := learning.Resolve(ctx)
	if !ok {
		return t.roundTripBase(req)
	}
	desc, ok := t.reg.match(req)
	if !ok {
		return t.roundTripBase(req)
	}
	if req.Body == nil {
		return t.roundTripBase(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	userText := UserText(&desc, body)
	model := gjson.GetBytes(body, "model").String()

	outBody := body
	if !cfg.CaptureOnly && cfg.Client != nil {
		// Injection is best-effort: a gateway outage or an unexpected body
		// shape sends the request through unmodified.
		memCtx, err := t.reg.rec.memoryContext(ctx, cfg)
		switch {
		case err != nil:
			core.Debugf("[INTERCEPT] memory context for %q: %v", cfg.Agent, err)
		case memCtx != "":
			injected, err := injectMemory(&desc, body, memCtx)
			if err != nil {
				core.Debugf("[INTERCEPT] inject %s: %v", desc.Provider, err)
			} else {
				outBody = injected
			}
		}
	}

	out := req.Clone(withBypass(ctx))
	out.Body = io.NopCloser(bytes.NewReader(outBody))
	out.ContentLength = int64(len(outBody))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(outBody)), nil
	}

	resp, err := t.roundTripBase(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	if isEventStream(resp) {
		resp.Body = newStreamRecorder(resp.Body, desc.Chunks, func(assistant string) {
			t.reg.rec.persist(cfg, desc.Provider, model, userText, assistant)
		})
		return resp, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	assistant := AssistantText(&desc, respBody)
	t.reg.rec.persist(cfg, desc.Provider, model, userText, assistant)
	return resp, nil
}

func isEventStream(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	return strings.HasPrefix(strings.TrimSpace(ct), "text/event-stream")
}

// --- process-wide transport swap ---

var (
	installMu      sync.Mutex
	savedTransport http.RoundTripper
	defaultSwapped bool
)

// InstallDefault swaps http.DefaultTransport for an intercepting Transport
// driven by reg. Every client that relies on the default transport is
// covered, including SDK clients constructed before the swap. Idempotent.
func InstallDefault(reg *Registry) {
	installMu.Lock()
	defer installMu.Unlock()
	if defaultSwapped {
		return
	}
	savedTransport = http.DefaultTransport
	http.DefaultTransport = NewTransport(savedTransport, reg)
	defaultSwapped = true
}

// RestoreDefault puts back the transport that InstallDefault replaced. Safe
// to call when nothing was installed.
func RestoreDefault() {
	installMu.Lock()
	defer installMu.Unlock()
	if !defaultSwapped {
		return
	}
	http.DefaultTransport = savedTransport
	savedTransport = nil
	defaultSwapped = false
}

// WrapClient adds interception to a single http.Client, leaving the process
// default transport alone. The returned restore function puts the client's
// original transport back and is safe to call more than once.
func WrapClient(c *http.Client, reg *Registry) (restore func()) {
	orig := c.Transport
	c.Transport = NewTransport(orig, reg)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.Transport = orig
		})
	}
}

// RoundTripWith runs one request through reg's interception logic with next
// as the underlying transport. It is the hook for SDK middleware chains
// (provider packages expose typed helpers built on it).
func RoundTripWith(reg *Registry, req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	t := &Transport{base: roundTripFunc(next), reg: reg}
	return t.RoundTrip(req)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
