package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/agents"
	"github.com/nakamo-io/supportflow/ai/metrics"
	"github.com/nakamo-io/supportflow/ai/routing"
)

// Orchestrator is the request entry point: classify, decide, execute,
// and keep the conversation thread current.
type Orchestrator struct {
	policy   routing.Policy
	executor *Executor
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New wires the orchestrator.
func New(policy routing.Policy, executor *Executor, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{policy: policy, executor: executor, metrics: m, logger: logger}
}

// HandleRequest routes input to responders and returns the final answer.
// The user turn is appended to the thread before dispatch and the
// assistant turn after; on error the thread keeps the user turn so a
// retry has the full context. An error means no responder path produced
// any content at all.
func (o *Orchestrator) HandleRequest(ctx context.Context, input string, thread *agents.Thread) (string, error) {
	start := time.Now()
	logger := o.logger.With("trace_id", shortuuid.New())

	c := routing.Classify(input)
	decision := o.policy.Decide(ctx, input, c)
	logger.Info("routing decision",
		"responders", decision.Responders,
		"multi_agent", decision.IsMultiAgent,
		"email_format", c.IsEmailFormat,
		"reasoning", decision.Reasoning)

	history := thread.Turns()
	thread.AddUserTurn(input)

	out, err := o.executor.Execute(ctx, input, decision, history)
	if err != nil {
		logger.Error("request failed", "error", err, "duration", time.Since(start))
		return "", errors.Wrap(err, "handle request")
	}

	thread.AddAssistantTurn(out)
	if o.metrics != nil {
		o.metrics.ObserveRequest(time.Since(start))
	}
	logger.Info("request complete", "duration", time.Since(start))
	return out, nil
}
