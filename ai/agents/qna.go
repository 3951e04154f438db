package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
	"github.com/nakamo-io/supportflow/store"
)

const qnaTopK = 3

const qnaSystemPrompt = `You are a customer support assistant for Nakamo. Answer the
user's question using the knowledge base articles provided below. Prefer
the articles over your own assumptions; if they don't cover the question,
say so and give your best general guidance.

Knowledge base articles:
%s`

const qnaNoContextPrompt = `You are a customer support assistant for Nakamo. No knowledge
base article matched this question. Answer from general support experience
and suggest contacting support@nakamo.io if the issue needs account access.`

// Searcher finds knowledge base documents relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]store.ScoredDocument, error)
}

// KnowledgeQA answers support questions grounded in the knowledge base.
// Retrieval failures degrade to an answer without context rather than
// failing the request.
type KnowledgeQA struct {
	model  llm.Service
	search Searcher
	logger *slog.Logger
}

// NewKnowledgeQA creates the knowledge base responder.
func NewKnowledgeQA(model llm.Service, search Searcher, logger *slog.Logger) *KnowledgeQA {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeQA{model: model, search: search, logger: logger}
}

// Responder implements Adapter.
func (q *KnowledgeQA) Responder() routing.Responder {
	return routing.ResponderKnowledgeQA
}

// Respond implements Adapter.
func (q *KnowledgeQA) Respond(ctx context.Context, input string, history []llm.Message) (string, error) {
	prompt := qnaNoContextPrompt
	if q.search != nil {
		docs, err := q.search.Search(ctx, input, qnaTopK)
		if err != nil {
			q.logger.Warn("knowledge base search failed, answering without context", "error", err)
		} else if len(docs) > 0 {
			prompt = fmt.Sprintf(qnaSystemPrompt, formatArticles(docs))
		}
	}

	reply, _, err := q.model.Chat(ctx, llm.FormatMessages(prompt, input, history))
	if err != nil {
		return "", errors.Wrap(err, "knowledge QA failed")
	}
	return reply, nil
}

func formatArticles(docs []store.ScoredDocument) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s", i+1, d.Document.Title, d.Document.Category, d.Document.Content)
	}
	return b.String()
}
