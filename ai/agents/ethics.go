package agents

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
)

const ethicsSystemPrompt = `You are an expert on AI ethics. You answer questions about
bias and fairness in machine learning systems, algorithmic accountability,
human dependence on AI, responsible AI practice, and AI governance.

Ground your answers in established frameworks and give balanced,
practical perspectives. When a question touches on ongoing debate, present
the major positions rather than picking a side. Stay within the AI ethics
domain; if asked about something else, say it is outside your expertise.`

// DomainExpert answers AI-ethics questions with a specialized system prompt.
type DomainExpert struct {
	model llm.Service
}

// NewDomainExpert creates the AI-ethics responder.
func NewDomainExpert(model llm.Service) *DomainExpert {
	return &DomainExpert{model: model}
}

// Responder implements Adapter.
func (e *DomainExpert) Responder() routing.Responder {
	return routing.ResponderDomainExpert
}

// Respond implements Adapter.
func (e *DomainExpert) Respond(ctx context.Context, input string, history []llm.Message) (string, error) {
	reply, _, err := e.model.Chat(ctx, llm.FormatMessages(ethicsSystemPrompt, input, history))
	if err != nil {
		return "", errors.Wrap(err, "ethics expert failed")
	}
	return reply, nil
}
