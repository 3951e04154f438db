package agents

import (
	"context"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
)

// Adapter wraps one content-producing capability behind a uniform contract.
// history is the conversation before the current user turn; implementations
// must not mutate it.
type Adapter interface {
	// Responder returns the identity this adapter serves.
	Responder() routing.Responder
	// Respond handles the input and returns the response text.
	Respond(ctx context.Context, input string, history []llm.Message) (string, error)
}

// Registry maps responder identities to their adapters. Injected into the
// executor at startup; no ambient global state.
type Registry struct {
	adapters map[routing.Responder]Adapter
}

// NewRegistry creates a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[routing.Responder]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Responder()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter for a responder.
func (r *Registry) Get(responder routing.Responder) (Adapter, bool) {
	a, ok := r.adapters[responder]
	return a, ok
}
