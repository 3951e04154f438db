// Package agents provides the responder adapters: uniform wrappers around
// the external capabilities the router can dispatch to.
package agents

import "github.com/nakamo-io/supportflow/ai/core/llm"

// Thread is an ordered sequence of conversation turns, owned by the caller
// and passed into the core for context. Mutation is append-only: the
// orchestrator appends one user turn at dispatch start and one assistant
// turn at completion. Not safe for uncoordinated concurrent mutation;
// callers must serialize requests per thread.
type Thread struct {
	turns []llm.Message
}

// NewThread creates an empty conversation thread.
func NewThread() *Thread {
	return &Thread{}
}

// AddUserTurn appends a user turn.
func (t *Thread) AddUserTurn(text string) {
	t.turns = append(t.turns, llm.UserMessage(text))
}

// AddAssistantTurn appends an assistant turn.
func (t *Thread) AddAssistantTurn(text string) {
	t.turns = append(t.turns, llm.AssistantMessage(text))
}

// Turns returns a copy of all turns in order.
func (t *Thread) Turns() []llm.Message {
	out := make([]llm.Message, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Thread) Len() int {
	return len(t.turns)
}
