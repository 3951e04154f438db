package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nakamo-io/supportflow/ai/core/llm"
)

const synthesisPrompt = `You are combining answers from several specialized assistants
into one reply for the user. Merge the sections below into a single
coherent answer: remove repetition, keep every distinct fact, and do not
mention the assistants or that multiple sources were involved.

User question: %s

%s`

// Synthesizer merges multiple responder results into one answer. It is
// total: when the model is unavailable it falls back to a deterministic
// merge, so callers always get text back for at least one success.
type Synthesizer struct {
	model  llm.Service
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer backed by the given model.
func NewSynthesizer(model llm.Service, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{model: model, logger: logger}
}

// Synthesize combines the successful responses into one answer. Failed
// responses only contribute a short notice; with no successes at all the
// result is empty and the caller must fall back.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, responses []AgentResponse) string {
	ok := successes(responses)
	if len(ok) == 0 {
		return ""
	}
	if len(ok) == 1 && len(responses) == 1 {
		return ok[0].Response
	}

	var sections strings.Builder
	for _, r := range ok {
		fmt.Fprintf(&sections, "[%s]\n%s\n\n", r.Responder.DisplayName(), r.Response)
	}
	if failed := failures(responses); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, r := range failed {
			names[i] = r.Responder.DisplayName()
		}
		fmt.Fprintf(&sections, "Note: the following sources were unavailable: %s. Mention briefly that part of the answer could not be retrieved.\n", strings.Join(names, ", "))
	}

	reply, _, err := s.model.Chat(ctx, []llm.Message{
		llm.UserMessage(fmt.Sprintf(synthesisPrompt, input, sections.String())),
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		s.logger.Warn("model synthesis failed, using deterministic merge", "error", err)
		return simpleMerge(ok)
	}
	return reply
}

// simpleMerge is the deterministic fallback: one success verbatim,
// several as titled sections.
func simpleMerge(ok []AgentResponse) string {
	if len(ok) == 1 {
		return ok[0].Response
	}
	parts := make([]string, len(ok))
	for i, r := range ok {
		parts[i] = fmt.Sprintf("## %s\n\n%s", r.Responder.DisplayName(), r.Response)
	}
	return strings.Join(parts, "\n\n")
}
