// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai abstracts the Generative AI APIs behind a single Backend
// interface so the scorer and the eligibility explainer can share
// implementations and tests can supply mocks.
// See docs/ARCHITECTURE.md § AI Backends.
package ai

import (
	"context"
	"fmt"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// Message is one turn of a conversation sent to a backend.
type Message struct {
	// Role is "user" or "assistant".
	Role    string
	Content string
}

// Request holds one structured-output completion request. Callers state
// the JSON contract in the prompt; backends that support enforced JSON
// output (Gemini) additionally request it at the API level.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Backend produces one completion. Implementations exist for the Claude
// and Gemini APIs, per the Strategy pattern.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// New returns the Backend selected by cfg.Provider.
func New(cfg types.AIConfig) (Backend, error) {
	switch cfg.Provider {
	case "claude", "":
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model}, nil
	case "gemini":
		return &GeminiBackend{APIKey: cfg.APIKey, Model: cfg.Model}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
