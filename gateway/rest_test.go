package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentic-learning/go-sdk/core"
	"github.com/agentic-learning/go-sdk/gateway"
)

// fakeService is a minimal stand-in for the memory service HTTP API.
type fakeService struct {
	agents   map[string]gateway.Agent // by id
	captures []map[string]interface{}
	contexts map[string]string // by id
	lastAuth string
}

func newFakeService() *fakeService {
	return &fakeService{
		agents:   make(map[string]gateway.Agent),
		contexts: make(map[string]string),
	}
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/agents", func(w http.ResponseWriter, r *http.Request) {
		s.lastAuth = r.Header.Get("Authorization")
		var params gateway.CreateAgentParams
		json.NewDecoder(r.Body).Decode(&params)
		ag := gateway.Agent{ID: "id-" + params.Name, Name: params.Name, Memory: params.Memory, Model: params.Model}
		s.agents[ag.ID] = ag
		json.NewEncoder(w).Encode(ag)
	})

	mux.HandleFunc("GET /v1/agents", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		var out []gateway.Agent
		for _, ag := range s.agents {
			if name == "" || ag.Name == name {
				out = append(out, ag)
			}
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("DELETE /v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		delete(s.agents, r.PathValue("id"))
	})

	mux.HandleFunc("POST /v1/agents/{id}/messages/capture", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		payload["agent_id"] = r.PathValue("id")
		s.captures = append(s.captures, payload)
	})

	mux.HandleFunc("GET /v1/agents/{id}/context", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"value": s.contexts[r.PathValue("id")]})
	})

	mux.HandleFunc("POST /v1/agents/{id}/memory", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		s.contexts[r.PathValue("id")] = body["label"] + ": " + body["value"]
	})

	return mux
}

func newTestREST(t *testing.T, s *fakeService) *gateway.REST {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	return gateway.NewREST(gateway.WithBaseURL(srv.URL), gateway.WithToken("test-token"))
}

func TestRESTAgentLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newFakeService()
	client := newTestREST(t, svc)

	ag, err := client.Agents().Create(ctx, gateway.CreateAgentParams{Name: "test-1", Memory: []string{"human"}})
	if err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}
	if ag.ID == "" || ag.Name != "test-1" {
		t.Errorf("Unexpected agent: %+v", ag)
	}
	if svc.lastAuth != "Bearer test-token" {
		t.Errorf("Expected bearer token, got %q", svc.lastAuth)
	}

	got, err := client.Agents().Retrieve(ctx, "test-1")
	if err != nil {
		t.Fatalf("Failed to retrieve agent: %v", err)
	}
	if got == nil || got.ID != ag.ID {
		t.Errorf("Retrieve returned %+v, want %+v", got, ag)
	}

	missing, err := client.Agents().Retrieve(ctx, "nobody")
	if err != nil {
		t.Fatalf("Retrieve of missing agent failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing agent, got %+v", missing)
	}

	if err := client.Agents().Delete(ctx, "test-1"); err != nil {
		t.Fatalf("Failed to delete agent: %v", err)
	}
}

func TestRESTCaptureSplitsTurns(t *testing.T) {
	ctx := context.Background()
	svc := newFakeService()
	client := newTestREST(t, svc)

	if _, err := client.Agents().Create(ctx, gateway.CreateAgentParams{Name: "test-1"}); err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}

	err := client.Messages().Capture(ctx, gateway.CaptureRequest{
		Agent:    "test-1",
		Provider: "anthropic",
		Model:    "claude-sonnet-4-5",
		Turns: []core.Turn{
			{Role: core.RoleUser, Content: "What is my name?"},
			{Role: core.RoleAssistant, Content: "Your name is Bob."},
		},
	})
	if err != nil {
		t.Fatalf("Failed to capture: %v", err)
	}

	if len(svc.captures) != 1 {
		t.Fatalf("Expected 1 capture, got %d", len(svc.captures))
	}
	payload := svc.captures[0]
	if payload["provider"] != "anthropic" {
		t.Errorf("Expected provider anthropic, got %v", payload["provider"])
	}

	reqMsgs, ok := payload["request_messages"].([]interface{})
	if !ok || len(reqMsgs) != 1 {
		t.Fatalf("Expected 1 request message, got %v", payload["request_messages"])
	}
	respDict, ok := payload["response_dict"].(map[string]interface{})
	if !ok || respDict["content"] != "Your name is Bob." {
		t.Errorf("Expected assistant turn in response_dict, got %v", payload["response_dict"])
	}
}

func TestRESTCaptureUnknownAgent(t *testing.T) {
	svc := newFakeService()
	client := newTestREST(t, svc)

	err := client.Messages().Capture(context.Background(), gateway.CaptureRequest{
		Agent: "nobody",
		Turns: []core.Turn{{Role: core.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Expected error capturing for an unknown agent")
	}
}

func TestRESTMemoryContext(t *testing.T) {
	ctx := context.Background()
	svc := newFakeService()
	client := newTestREST(t, svc)

	if _, err := client.Agents().Create(ctx, gateway.CreateAgentParams{Name: "test-1"}); err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}

	// No memory yet.
	memCtx, err := client.Memory().Context(ctx, "test-1")
	if err != nil {
		t.Fatalf("Failed to fetch context: %v", err)
	}
	if memCtx != "" {
		t.Errorf("Expected empty context, got %q", memCtx)
	}

	err = client.Memory().Create(ctx, gateway.CreateMemoryParams{Agent: "test-1", Label: "human", Value: "User's name is Bob."})
	if err != nil {
		t.Fatalf("Failed to create memory: %v", err)
	}

	memCtx, err = client.Memory().Context(ctx, "test-1")
	if err != nil {
		t.Fatalf("Failed to fetch context: %v", err)
	}
	if memCtx != "human: User's name is Bob." {
		t.Errorf("Unexpected context: %q", memCtx)
	}

	// Unknown agents have no context and no error.
	memCtx, err = client.Memory().Context(ctx, "nobody")
	if err != nil || memCtx != "" {
		t.Errorf("Expected empty context for unknown agent, got %q err=%v", memCtx, err)
	}
}
