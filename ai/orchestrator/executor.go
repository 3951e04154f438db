package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nakamo-io/supportflow/ai/agents"
	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/metrics"
	"github.com/nakamo-io/supportflow/ai/planner"
	"github.com/nakamo-io/supportflow/ai/routing"
)

// Execution shapes, recorded as the "shape" metric label.
const (
	shapeSingle           = "single"
	shapeEmailOnly        = "email_only"
	shapeContentThenEmail = "content_then_email"
	shapeMultiAgent       = "multi_agent"
	shapePlanning         = "planning"
)

// When nothing upstream produced content for an email reply, the formatter
// still needs something to send.
const emailAckContent = "Thank you for your message. Our team has received it and will follow up shortly."

// Config bounds responder execution.
type Config struct {
	// ResponderTimeout caps each individual responder call.
	ResponderTimeout time.Duration
	// MaxParallel caps concurrent responder calls during fan-out.
	MaxParallel int
}

// DefaultConfig matches the standard deployment profile.
func DefaultConfig() Config {
	return Config{
		ResponderTimeout: 60 * time.Second,
		MaxParallel:      4,
	}
}

// Executor runs a routing decision to completion. Partial failures are
// tolerated wherever any responder succeeded; only total failure surfaces
// as an error.
type Executor struct {
	registry  *agents.Registry
	direct    *agents.DirectHandler
	formatter *agents.EmailFormatter
	planner   planner.Planner
	synth     *Synthesizer
	metrics   *metrics.Metrics
	cfg       Config
	logger    *slog.Logger
}

// NewExecutor wires the executor. registry holds the content adapters;
// direct and formatter are held separately because they back the fallback
// paths.
func NewExecutor(registry *agents.Registry, direct *agents.DirectHandler,
	formatter *agents.EmailFormatter, p planner.Planner, synth *Synthesizer,
	m *metrics.Metrics, cfg Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ResponderTimeout <= 0 {
		cfg.ResponderTimeout = DefaultConfig().ResponderTimeout
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultConfig().MaxParallel
	}
	return &Executor{
		registry:  registry,
		direct:    direct,
		formatter: formatter,
		planner:   p,
		synth:     synth,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Execute runs the decision and returns the final answer text.
func (e *Executor) Execute(ctx context.Context, input string, d routing.Decision, history []llm.Message) (string, error) {
	switch {
	case d.Includes(routing.ResponderPlanning):
		return e.runPlanning(ctx, input, history)
	case len(d.Responders) == 1 && d.Responders[0] == routing.ResponderEmailFormatter:
		return e.runEmailOnly(ctx, input, history)
	case d.Includes(routing.ResponderEmailFormatter):
		return e.runContentThenEmail(ctx, input, d, history)
	case len(d.Responders) == 1:
		return e.runSingle(ctx, input, d.Responders[0], history)
	default:
		return e.runMultiAgent(ctx, input, d, history)
	}
}

// runSingle calls one responder and falls back to the direct handler when
// it fails.
func (e *Executor) runSingle(ctx context.Context, input string, r routing.Responder, history []llm.Message) (string, error) {
	e.countShape(shapeSingle)

	resp := e.call(ctx, r, input, history)
	if resp.Success {
		return resp.Response, nil
	}
	e.logger.Warn("responder failed, answering directly", "responder", r, "error", resp.Err)

	out, err := e.callDirect(ctx, input, history)
	if err != nil {
		return "", errors.Wrapf(err, "responder %s and direct fallback both failed", r)
	}
	return out, nil
}

// runEmailOnly handles email-format input that needs no specialist: the
// direct handler drafts the content and the formatter wraps it.
func (e *Executor) runEmailOnly(ctx context.Context, input string, history []llm.Message) (string, error) {
	e.countShape(shapeEmailOnly)

	content, err := e.callDirect(ctx, input, history)
	if err != nil {
		e.logger.Warn("direct content for email failed, sending acknowledgment", "error", err)
		content = emailAckContent
	}
	info := agents.ExtractCustomerInfo(input)
	return e.formatter.Format(ctx, content, info), nil
}

// runContentThenEmail is the two-phase workflow: content responders run in
// parallel, their results are combined, and the formatter wraps the
// combined content exactly once. Formatter problems never lose content.
func (e *Executor) runContentThenEmail(ctx context.Context, input string, d routing.Decision, history []llm.Message) (string, error) {
	e.countShape(shapeContentThenEmail)

	content := d.ContentResponders()
	responses := e.fanOut(ctx, input, content, history)

	var combined string
	switch ok := successes(responses); len(ok) {
	case 0:
		e.logger.Warn("all content responders failed for email request", "responders", content)
		out, err := e.callDirect(ctx, input, history)
		if err != nil {
			out = emailAckContent
		}
		combined = out
	case 1:
		combined = fmt.Sprintf("Question: %s\n\nAnswer: %s", strings.TrimSpace(input), ok[0].Response)
	default:
		parts := make([]string, len(ok))
		for i, r := range ok {
			parts[i] = fmt.Sprintf("**From %s:**\n%s", r.Responder.DisplayName(), r.Response)
		}
		combined = strings.Join(parts, "\n\n")
	}

	info := agents.ExtractCustomerInfo(input)
	return e.formatter.Format(ctx, combined, info), nil
}

// runMultiAgent fans out to every responder and synthesizes whatever came
// back. Only total failure falls through to the direct handler.
func (e *Executor) runMultiAgent(ctx context.Context, input string, d routing.Decision, history []llm.Message) (string, error) {
	e.countShape(shapeMultiAgent)

	responses := e.fanOut(ctx, input, d.Responders, history)
	if len(successes(responses)) == 0 {
		e.logger.Warn("all responders failed, answering directly", "responders", d.Responders)
		out, err := e.callDirect(ctx, input, history)
		if err != nil {
			return "", errors.Wrap(err, "all responders and direct fallback failed")
		}
		return out, nil
	}
	return e.synth.Synthesize(ctx, input, responses), nil
}

// runPlanning delegates to the planner; on failure the direct handler
// still gives the user an answer.
func (e *Executor) runPlanning(ctx context.Context, input string, history []llm.Message) (string, error) {
	e.countShape(shapePlanning)

	out, err := e.planner.Run(ctx, input)
	if err == nil && strings.TrimSpace(out) != "" {
		return out, nil
	}
	e.logger.Warn("planner failed, answering directly", "error", err)

	out, err = e.callDirect(ctx, input, history)
	if err != nil {
		return "", errors.Wrap(err, "planner and direct fallback both failed")
	}
	return out, nil
}

// fanOut runs the responders concurrently, bounded by MaxParallel, and
// returns one AgentResponse per responder in decision order.
func (e *Executor) fanOut(ctx context.Context, input string, responders []routing.Responder, history []llm.Message) []AgentResponse {
	responses := make([]AgentResponse, len(responders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallel)
	for i, r := range responders {
		i, r := i, r
		g.Go(func() error {
			responses[i] = e.call(gctx, r, input, history)
			return nil
		})
	}
	// Goroutines never return errors; failures live in the responses.
	_ = g.Wait()
	return responses
}

// call invokes one responder with the per-call timeout and records its
// metrics. It never returns an error: failures become failed responses.
func (e *Executor) call(ctx context.Context, r routing.Responder, input string, history []llm.Message) AgentResponse {
	adapter, ok := e.registry.Get(r)
	if !ok {
		return AgentResponse{Responder: r, Err: "no adapter registered"}
	}

	cctx, cancel := context.WithTimeout(ctx, e.cfg.ResponderTimeout)
	defer cancel()

	start := time.Now()
	out, err := adapter.Respond(cctx, input, history)
	elapsed := time.Since(start)

	resp := AgentResponse{Responder: r, Duration: elapsed}
	switch {
	case err != nil:
		resp.Err = err.Error()
	case strings.TrimSpace(out) == "":
		resp.Err = "responder returned no content"
	default:
		resp.Success = true
		resp.Response = out
	}

	if e.metrics != nil {
		e.metrics.ObserveResponder(string(r), elapsed, resp.Success)
	}
	if !resp.Success {
		e.logger.Warn("responder call failed", "responder", r, "duration", elapsed, "error", resp.Err)
	} else {
		e.logger.Debug("responder call succeeded", "responder", r, "duration", elapsed)
	}
	return resp
}

func (e *Executor) callDirect(ctx context.Context, input string, history []llm.Message) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.cfg.ResponderTimeout)
	defer cancel()
	return e.direct.Respond(cctx, input, history)
}

func (e *Executor) countShape(shape string) {
	if e.metrics != nil {
		e.metrics.CountDecision(shape)
	}
}
