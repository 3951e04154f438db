package agents

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
)

const directSystemPrompt = `You are a helpful customer support assistant for Nakamo.
Answer the user directly and concisely. If the question is outside your
knowledge, say so honestly instead of guessing. Keep a friendly,
professional tone.`

const greetingSystemPrompt = `You are a friendly customer support assistant for Nakamo.
The user is greeting you or making small talk. Reply warmly in one or two
sentences and offer to help with support questions, weather lookups, or
questions about AI ethics.`

// DirectHandler answers in the orchestrator's own voice, without delegating
// to a specialized responder. It also serves as the fallback content source
// when every delegate fails.
type DirectHandler struct {
	model llm.Service
}

// NewDirectHandler creates a direct handler backed by the given model.
func NewDirectHandler(model llm.Service) *DirectHandler {
	return &DirectHandler{model: model}
}

// Responder implements Adapter.
func (h *DirectHandler) Responder() routing.Responder {
	return routing.ResponderDirect
}

// Respond implements Adapter. Short greetings get a lighter prompt.
func (h *DirectHandler) Respond(ctx context.Context, input string, history []llm.Message) (string, error) {
	prompt := directSystemPrompt
	if c := routing.Classify(input); c.IsGreeting {
		prompt = greetingSystemPrompt
	}
	reply, _, err := h.model.Chat(ctx, llm.FormatMessages(prompt, input, history))
	if err != nil {
		return "", errors.Wrap(err, "direct response failed")
	}
	return reply, nil
}
