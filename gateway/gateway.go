package gateway

import (
	"context"

	"github.com/agentic-learning/go-sdk/core"
)

// Agent is the remote memory agent that a learning scope records against.
type Agent struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Memory []string `json:"memory,omitempty"`
	Model  string   `json:"model,omitempty"`
}

// CreateAgentParams configures agent auto-creation.
type CreateAgentParams struct {
	Name   string   `json:"name"`
	Memory []string `json:"memory,omitempty"`
	Model  string   `json:"model,omitempty"`
}

// UpdateAgentParams carries the mutable agent fields.
type UpdateAgentParams struct {
	Memory []string `json:"memory,omitempty"`
	Model  string   `json:"model,omitempty"`
}

// CreateMemoryParams stores one labeled memory value for an agent.
type CreateMemoryParams struct {
	Agent string `json:"agent"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// CaptureRequest persists one logical exchange: the user turn(s) that were
// sent and the assistant turn that came back, plus provider metadata.
type CaptureRequest struct {
	Agent    string      `json:"agent"`
	Provider string      `json:"provider"`
	Model    string      `json:"model,omitempty"`
	Turns    []core.Turn `json:"turns"`
}

// AgentService manages agents by name.
type AgentService interface {
	Create(ctx context.Context, params CreateAgentParams) (*Agent, error)

	// Retrieve returns the agent with the given name, or (nil, nil) when
	// no such agent exists.
	Retrieve(ctx context.Context, name string) (*Agent, error)

	Update(ctx context.Context, name string, params UpdateAgentParams) (*Agent, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Agent, error)
}

// MessageService manages the conversation turns stored for an agent.
type MessageService interface {
	// List returns the most recent stored turns, oldest first. limit <= 0
	// means the service default.
	List(ctx context.Context, agent string, limit int) ([]core.Turn, error)

	Search(ctx context.Context, agent string, query string) ([]core.Turn, error)

	// Capture persists one exchange. Interceptors call this asynchronously;
	// failures must never reach the instrumented caller.
	Capture(ctx context.Context, req CaptureRequest) error
}

// MemoryService exposes the agent's long-term memory.
type MemoryService interface {
	// Context returns the formatted memory context for prompt injection,
	// or "" when the agent has no memory yet.
	Context(ctx context.Context, agent string) (string, error)

	Create(ctx context.Context, params CreateMemoryParams) error
	Search(ctx context.Context, agent string, query string) ([]core.Turn, error)
}

// Client is the memory-service gateway consumed by the interception
// framework. The framework treats it as opaque: implementations may talk to
// a remote service (REST) or run fully in-process (local).
type Client interface {
	Agents() AgentService
	Messages() MessageService
	Memory() MemoryService
}
