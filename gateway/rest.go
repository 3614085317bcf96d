package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/agentic-learning/go-sdk/core"
)

const (
	// DefaultBaseURL is the default memory-service endpoint.
	DefaultBaseURL = "https://api.letta.com"

	// APIKeyEnv is the environment variable holding the bearer token.
	APIKeyEnv = "LETTA_API_KEY"

	defaultTimeout = 30 * time.Second
)

// REST is the HTTP implementation of Client.
type REST struct {
	baseURL string
	token   string
	http    *http.Client

	mu  sync.RWMutex
	ids map[string]string // agent name -> id

	agents   *restAgents
	messages *restMessages
	memory   *restMemory
}

// RESTOption configures the REST client.
type RESTOption func(*REST)

// WithBaseURL overrides the service endpoint.
func WithBaseURL(u string) RESTOption {
	return func(r *REST) {
		r.baseURL = u
	}
}

// WithToken sets the bearer token explicitly instead of reading LETTA_API_KEY.
func WithToken(token string) RESTOption {
	return func(r *REST) {
		r.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *REST) {
		r.http = c
	}
}

// NewREST creates a REST gateway client.
func NewREST(opts ...RESTOption) *REST {
	r := &REST{
		baseURL: DefaultBaseURL,
		token:   os.Getenv(APIKeyEnv),
		http:    &http.Client{Timeout: defaultTimeout},
		ids:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.agents = &restAgents{rest: r}
	r.messages = &restMessages{rest: r}
	r.memory = &restMemory{rest: r}
	return r
}

func (r *REST) Agents() AgentService     { return r.agents }
func (r *REST) Messages() MessageService { return r.messages }
func (r *REST) Memory() MemoryService    { return r.memory }

// agentID resolves an agent name to its service ID, returning "" when the
// agent does not exist. Resolutions are cached for the client's lifetime.
func (r *REST) agentID(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	id, ok := r.ids[name]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	ag, err := r.agents.Retrieve(ctx, name)
	if err != nil {
		return "", err
	}
	if ag == nil {
		return "", nil
	}

	r.mu.Lock()
	r.ids[name] = ag.ID
	r.mu.Unlock()
	return ag.ID, nil
}

// do performs one JSON round trip against the service.
func (r *REST) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- agents ---

type restAgents struct {
	rest *REST
}

func (a *restAgents) Create(ctx context.Context, params CreateAgentParams) (*Agent, error) {
	var ag Agent
	if err := a.rest.do(ctx, http.MethodPost, "/v1/agents", params, &ag); err != nil {
		return nil, err
	}
	a.rest.mu.Lock()
	a.rest.ids[ag.Name] = ag.ID
	a.rest.mu.Unlock()
	return &ag, nil
}

func (a *restAgents) Retrieve(ctx context.Context, name string) (*Agent, error) {
	var agents []Agent
	path := "/v1/agents?name=" + url.QueryEscape(name)
	if err := a.rest.do(ctx, http.MethodGet, path, nil, &agents); err != nil {
		return nil, err
	}
	for i := range agents {
		if agents[i].Name == name {
			return &agents[i], nil
		}
	}
	return nil, nil
}

func (a *restAgents) Update(ctx context.Context, name string, params UpdateAgentParams) (*Agent, error) {
	id, err := a.rest.agentID(ctx, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("agent %q not found", name)
	}
	var ag Agent
	if err := a.rest.do(ctx, http.MethodPatch, "/v1/agents/"+id, params, &ag); err != nil {
		return nil, err
	}
	return &ag, nil
}

func (a *restAgents) Delete(ctx context.Context, name string) error {
	id, err := a.rest.agentID(ctx, name)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if err := a.rest.do(ctx, http.MethodDelete, "/v1/agents/"+id, nil, nil); err != nil {
		return err
	}
	a.rest.mu.Lock()
	delete(a.rest.ids, name)
	a.rest.mu.Unlock()
	return nil
}

func (a *restAgents) List(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := a.rest.do(ctx, http.MethodGet, "/v1/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// --- messages ---

type restMessages struct {
	rest *REST
}

func (m *restMessages) List(ctx context.Context, agent string, limit int) ([]core.Turn, error) {
	id, err := m.rest.agentID(ctx, agent)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	path := "/v1/agents/" + id + "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var turns []core.Turn
	if err := m.rest.do(ctx, http.MethodGet, path, nil, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (m *restMessages) Search(ctx context.Context, agent string, query string) ([]core.Turn, error) {
	id, err := m.rest.agentID(ctx, agent)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	var turns []core.Turn
	body := map[string]string{"query": query}
	if err := m.rest.do(ctx, http.MethodPost, "/v1/agents/"+id+"/messages/search", body, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// capturePayload is the wire shape of the capture endpoint: the request
// turns as sent to the provider plus the assistant response.
type capturePayload struct {
	Provider        string      `json:"provider"`
	Model           string      `json:"model,omitempty"`
	RequestMessages []core.Turn `json:"request_messages"`
	ResponseDict    *core.Turn  `json:"response_dict,omitempty"`
}

func (m *restMessages) Capture(ctx context.Context, req CaptureRequest) error {
	id, err := m.rest.agentID(ctx, req.Agent)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("agent %q not found", req.Agent)
	}

	payload := capturePayload{
		Provider:        req.Provider,
		Model:           req.Model,
		RequestMessages: []core.Turn{},
	}
	for i := range req.Turns {
		t := req.Turns[i]
		if t.Role == core.RoleAssistant {
			payload.ResponseDict = &t
		} else {
			payload.RequestMessages = append(payload.RequestMessages, t)
		}
	}

	return m.rest.do(ctx, http.MethodPost, "/v1/agents/"+id+"/messages/capture", payload, nil)
}

// --- memory ---

type restMemory struct {
	rest *REST
}

func (m *restMemory) Context(ctx context.Context, agent string) (string, error) {
	id, err := m.rest.agentID(ctx, agent)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", nil
	}
	var out struct {
		Value string `json:"value"`
	}
	if err := m.rest.do(ctx, http.MethodGet, "/v1/agents/"+id+"/context", nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (m *restMemory) Create(ctx context.Context, params CreateMemoryParams) error {
	id, err := m.rest.agentID(ctx, params.Agent)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("agent %q not found", params.Agent)
	}
	body := map[string]string{"label": params.Label, "value": params.Value}
	return m.rest.do(ctx, http.MethodPost, "/v1/agents/"+id+"/memory", body, nil)
}

func (m *restMemory) Search(ctx context.Context, agent string, query string) ([]core.Turn, error) {
	id, err := m.rest.agentID(ctx, agent)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	var turns []core.Turn
	body := map[string]string{"query": query}
	if err := m.rest.do(ctx, http.MethodPost, "/v1/agents/"+id+"/memory/search", body, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
