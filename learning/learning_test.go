package learning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentic-learning/go-sdk/learning"
)

func TestWithAndFromContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := learning.FromContext(ctx); ok {
		t.Fatal("Expected no config on a fresh context")
	}

	ctx = learning.With(ctx, learning.Config{Agent: "helper"})
	cfg, ok := learning.FromContext(ctx)
	if !ok {
		t.Fatal("Expected config after With")
	}
	if cfg.Agent != "helper" {
		t.Errorf("Expected agent helper, got %q", cfg.Agent)
	}
}

func TestNestedScopesInnermostWins(t *testing.T) {
	ctx := learning.With(context.Background(), learning.Config{Agent: "outer"})
	inner := learning.With(ctx, learning.Config{Agent: "inner"})

	cfg, _ := learning.FromContext(inner)
	if cfg.Agent != "inner" {
		t.Errorf("Expected inner scope to win, got %q", cfg.Agent)
	}

	// The outer context is untouched.
	cfg, _ = learning.FromContext(ctx)
	if cfg.Agent != "outer" {
		t.Errorf("Expected outer context to keep its config, got %q", cfg.Agent)
	}
}

func TestRunScopesTheWork(t *testing.T) {
	var seen string
	err := learning.Run(context.Background(), learning.Config{Agent: "runner"}, func(ctx context.Context) error {
		cfg, ok := learning.FromContext(ctx)
		if !ok {
			t.Fatal("Expected config inside Run")
		}
		seen = cfg.Agent
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if seen != "runner" {
		t.Errorf("Expected agent runner inside Run, got %q", seen)
	}
}

func TestRunPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := learning.Run(context.Background(), learning.Config{}, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Expected Run to return the work's error, got %v", err)
	}
}

func TestActivateAndRestore(t *testing.T) {
	restore := learning.Activate(learning.Config{Agent: "global"})

	cfg, ok := learning.Resolve(context.Background())
	if !ok {
		t.Fatal("Expected slot config to resolve")
	}
	if cfg.Agent != "global" {
		t.Errorf("Expected agent global, got %q", cfg.Agent)
	}

	restore()
	if _, ok := learning.Resolve(context.Background()); ok {
		t.Fatal("Expected no config after restore")
	}

	// Restore is safe to call again.
	restore()
}

func TestActivateNestedRestoresPrevious(t *testing.T) {
	restoreOuter := learning.Activate(learning.Config{Agent: "outer"})
	restoreInner := learning.Activate(learning.Config{Agent: "inner"})

	cfg, _ := learning.Resolve(context.Background())
	if cfg.Agent != "inner" {
		t.Errorf("Expected inner activation, got %q", cfg.Agent)
	}

	restoreInner()
	cfg, ok := learning.Resolve(context.Background())
	if !ok || cfg.Agent != "outer" {
		t.Errorf("Expected outer activation back, got %q ok=%v", cfg.Agent, ok)
	}

	restoreOuter()
	if _, ok := learning.Resolve(context.Background()); ok {
		t.Fatal("Expected no config after both restores")
	}
}

func TestResolveContextWinsOverSlot(t *testing.T) {
	restore := learning.Activate(learning.Config{Agent: "slot"})
	defer restore()

	ctx := learning.With(context.Background(), learning.Config{Agent: "scoped"})
	cfg, _ := learning.Resolve(ctx)
	if cfg.Agent != "scoped" {
		t.Errorf("Expected context scope to win over slot, got %q", cfg.Agent)
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	ctx := learning.With(context.Background(), learning.Config{})
	cfg, ok := learning.Resolve(ctx)
	if !ok {
		t.Fatal("Expected config to resolve")
	}
	if cfg.Agent != learning.DefaultAgent {
		t.Errorf("Expected default agent %q, got %q", learning.DefaultAgent, cfg.Agent)
	}
	if cfg.Client == nil {
		t.Error("Expected a default client")
	}
}

func TestGoroutineIsolation(t *testing.T) {
	ctx := learning.With(context.Background(), learning.Config{Agent: "parent"})

	done := make(chan bool, 1)
	go func() {
		// A goroutine that does not receive the scoped context sees nothing.
		_, ok := learning.FromContext(context.Background())
		done <- ok
	}()
	if <-done {
		t.Error("Expected unrelated goroutine to see no config")
	}

	done2 := make(chan string, 1)
	go func(ctx context.Context) {
		cfg, _ := learning.FromContext(ctx)
		done2 <- cfg.Agent
	}(ctx)
	if agent := <-done2; agent != "parent" {
		t.Errorf("Expected goroutine with the scoped context to see parent, got %q", agent)
	}
}
