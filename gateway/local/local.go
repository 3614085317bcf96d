// Package local provides an embedded, in-process gateway implementation
// backed by chromem-go. It exists for development and tests: the full
// Client contract works without a network, including vector search over
// stored turns and memory values.
package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/agentic-learning/go-sdk/core"
	"github.com/agentic-learning/go-sdk/gateway"
)

const defaultListLimit = 50

// Client is the embedded gateway. Safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	db       *chromem.DB
	embedder Embedder
	agents   map[string]*agentState // by name

	agentsSvc   *localAgents
	messagesSvc *localMessages
	memorySvc   *localMemory
}

// agentState holds everything stored for one agent.
type agentState struct {
	agent    gateway.Agent
	turns    []core.Turn
	memories []gateway.CreateMemoryParams

	msgCol *chromem.Collection
	msgN   int
	memCol *chromem.Collection
	memN   int
}

// Option configures the local client.
type Option func(*Client)

// WithEmbedder replaces the default hash embedder.
func WithEmbedder(e Embedder) Option {
	return func(c *Client) {
		c.embedder = e
	}
}

// New creates an empty local gateway.
func New(opts ...Option) *Client {
	c := &Client{
		db:       chromem.NewDB(),
		embedder: NewHashEmbedder(),
		agents:   make(map[string]*agentState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.agentsSvc = &localAgents{c: c}
	c.messagesSvc = &localMessages{c: c}
	c.memorySvc = &localMemory{c: c}
	return c
}

func (c *Client) Agents() gateway.AgentService     { return c.agentsSvc }
func (c *Client) Messages() gateway.MessageService { return c.messagesSvc }
func (c *Client) Memory() gateway.MemoryService    { return c.memorySvc }

// get returns the agent state for a name, or nil.
func (c *Client) get(name string) *agentState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agents[name]
}

// addDoc embeds text and stores it in a collection.
func (c *Client) addDoc(ctx context.Context, col *chromem.Collection, id, text string, meta map[string]string) error {
	embedding, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	return col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
		Metadata:  meta,
	})
}

// query embeds the query text and returns up to limit similar documents.
func (c *Client) query(ctx context.Context, col *chromem.Collection, stored int, text string, limit int) ([]chromem.Result, error) {
	if stored == 0 {
		return nil, nil
	}
	if limit > stored {
		limit = stored
	}
	embedding, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return col.QueryEmbedding(ctx, embedding, limit, nil, nil)
}

// --- agents ---

type localAgents struct {
	c *Client
}

func (a *localAgents) Create(ctx context.Context, params gateway.CreateAgentParams) (*gateway.Agent, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	a.c.mu.Lock()
	defer a.c.mu.Unlock()

	if st, ok := a.c.agents[params.Name]; ok {
		ag := st.agent
		return &ag, nil
	}

	id := uuid.New().String()
	msgCol, err := a.c.db.CreateCollection("agent_"+id+"_messages", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create messages collection: %w", err)
	}
	memCol, err := a.c.db.CreateCollection("agent_"+id+"_memory", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create memory collection: %w", err)
	}

	st := &agentState{
		agent: gateway.Agent{
			ID:     id,
			Name:   params.Name,
			Memory: params.Memory,
			Model:  params.Model,
		},
		msgCol: msgCol,
		memCol: memCol,
	}
	a.c.agents[params.Name] = st

	ag := st.agent
	return &ag, nil
}

func (a *localAgents) Retrieve(ctx context.Context, name string) (*gateway.Agent, error) {
	st := a.c.get(name)
	if st == nil {
		return nil, nil
	}
	ag := st.agent
	return &ag, nil
}

func (a *localAgents) Update(ctx context.Context, name string, params gateway.UpdateAgentParams) (*gateway.Agent, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()

	st, ok := a.c.agents[name]
	if !ok {
		return nil, fmt.Errorf("agent %q not found", name)
	}
	if params.Memory != nil {
		st.agent.Memory = params.Memory
	}
	if params.Model != "" {
		st.agent.Model = params.Model
	}
	ag := st.agent
	return &ag, nil
}

func (a *localAgents) Delete(ctx context.Context, name string) error {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	delete(a.c.agents, name)
	return nil
}

func (a *localAgents) List(ctx context.Context) ([]gateway.Agent, error) {
	a.c.mu.RLock()
	defer a.c.mu.RUnlock()

	agents := make([]gateway.Agent, 0, len(a.c.agents))
	for _, st := range a.c.agents {
		agents = append(agents, st.agent)
	}
	return agents, nil
}

// --- messages ---

type localMessages struct {
	c *Client
}

func (m *localMessages) List(ctx context.Context, agent string, limit int) ([]core.Turn, error) {
	st := m.c.get(agent)
	if st == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	m.c.mu.RLock()
	defer m.c.mu.RUnlock()

	turns := st.turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]core.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *localMessages) Search(ctx context.Context, agent string, query string) ([]core.Turn, error) {
	st := m.c.get(agent)
	if st == nil {
		return nil, nil
	}

	m.c.mu.RLock()
	col, stored := st.msgCol, st.msgN
	m.c.mu.RUnlock()

	results, err := m.c.query(ctx, col, stored, query, defaultListLimit)
	if err != nil {
		return nil, err
	}

	turns := make([]core.Turn, 0, len(results))
	for _, res := range results {
		turns = append(turns, core.Turn{
			Role:    core.Role(res.Metadata["role"]),
			Content: res.Content,
		})
	}
	return turns, nil
}

func (m *localMessages) Capture(ctx context.Context, req gateway.CaptureRequest) error {
	st := m.c.get(req.Agent)
	if st == nil {
		return fmt.Errorf("agent %q not found", req.Agent)
	}

	for _, t := range req.Turns {
		if t.Content == "" {
			continue
		}

		m.c.mu.Lock()
		st.turns = append(st.turns, t)
		st.msgN++
		col := st.msgCol
		m.c.mu.Unlock()

		meta := map[string]string{
			"role":     string(t.Role),
			"provider": req.Provider,
			"model":    req.Model,
		}
		if err := m.c.addDoc(ctx, col, uuid.New().String(), t.Content, meta); err != nil {
			return fmt.Errorf("store turn: %w", err)
		}
	}
	return nil
}

// --- memory ---

type localMemory struct {
	c *Client
}

func (m *localMemory) Context(ctx context.Context, agent string) (string, error) {
	st := m.c.get(agent)
	if st == nil {
		return "", nil
	}

	m.c.mu.RLock()
	defer m.c.mu.RUnlock()

	var parts []string
	for _, entry := range st.memories {
		if entry.Label != "" {
			parts = append(parts, entry.Label+": "+entry.Value)
		} else {
			parts = append(parts, entry.Value)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (m *localMemory) Create(ctx context.Context, params gateway.CreateMemoryParams) error {
	st := m.c.get(params.Agent)
	if st == nil {
		return fmt.Errorf("agent %q not found", params.Agent)
	}

	m.c.mu.Lock()
	st.memories = append(st.memories, params)
	st.memN++
	col := st.memCol
	m.c.mu.Unlock()

	meta := map[string]string{"label": params.Label}
	return m.c.addDoc(ctx, col, uuid.New().String(), params.Value, meta)
}

func (m *localMemory) Search(ctx context.Context, agent string, query string) ([]core.Turn, error) {
	st := m.c.get(agent)
	if st == nil {
		return nil, nil
	}

	m.c.mu.RLock()
	col, stored := st.memCol, st.memN
	m.c.mu.RUnlock()

	results, err := m.c.query(ctx, col, stored, query, defaultListLimit)
	if err != nil {
		return nil, err
	}

	turns := make([]core.Turn, 0, len(results))
	for _, res := range results {
		turns = append(turns, core.Turn{
			Role:    core.RoleAssistant,
			Content: res.Content,
		})
	}
	return turns, nil
}
