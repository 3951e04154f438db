// Package planner handles tasks too open-ended for single-responder
// routing: it decomposes the request, works the steps, and writes up the
// result.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/llm"
)

// Planner runs a multi-step task end to end and returns the final report.
type Planner interface {
	Run(ctx context.Context, task string) (string, error)
}

const maxPlanSteps = 5

const planPrompt = `You are a task planner. Break the task below into at most %d
concrete, self-contained research or analysis steps. Output one step per
line, numbered "1.", "2.", and so on. No preamble, no commentary.

Task: %s`

const stepPrompt = `You are working through a multi-step task.

Overall task: %s

Findings so far:
%s

Current step: %s

Carry out the current step and report your findings concisely.`

const reportPrompt = `You completed a multi-step task. Write the final answer for the
user: coherent, well organized, no meta commentary about steps or process.

Task: %s

Step findings:
%s`

// LLMPlanner is the model-backed Planner: plan, execute steps in order,
// then synthesize a report. Each phase reuses the same model.
type LLMPlanner struct {
	model  llm.Service
	logger *slog.Logger
}

// New creates a model-backed planner.
func New(model llm.Service, logger *slog.Logger) *LLMPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMPlanner{model: model, logger: logger}
}

// Run implements Planner.
func (p *LLMPlanner) Run(ctx context.Context, task string) (string, error) {
	start := time.Now()

	steps, err := p.plan(ctx, task)
	if err != nil {
		return "", errors.Wrap(err, "plan task")
	}
	p.logger.Info("task planned", "steps", len(steps))

	var findings []string
	for i, step := range steps {
		finding, err := p.executeStep(ctx, task, step, findings)
		if err != nil {
			p.logger.Warn("plan step failed, continuing", "step", i+1, "error", err)
			continue
		}
		findings = append(findings, fmt.Sprintf("Step %d (%s):\n%s", i+1, step, finding))
	}
	if len(findings) == 0 {
		return "", errors.New("no plan step produced findings")
	}

	report, err := p.report(ctx, task, findings)
	if err != nil {
		// The findings themselves are still a usable answer.
		p.logger.Warn("final report failed, returning raw findings", "error", err)
		report = strings.Join(findings, "\n\n")
	}
	p.logger.Info("task complete", "steps", len(steps), "duration", time.Since(start))
	return report, nil
}

func (p *LLMPlanner) plan(ctx context.Context, task string) ([]string, error) {
	reply, _, err := p.model.Chat(ctx, []llm.Message{
		llm.UserMessage(fmt.Sprintf(planPrompt, maxPlanSteps, task)),
	})
	if err != nil {
		return nil, err
	}

	var steps []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Strip "1." style numbering.
		if i := strings.Index(line, "."); i > 0 && i <= 2 {
			if _, numeric := parseStepNumber(line[:i]); numeric {
				line = strings.TrimSpace(line[i+1:])
			}
		}
		if line != "" {
			steps = append(steps, line)
		}
		if len(steps) == maxPlanSteps {
			break
		}
	}
	if len(steps) == 0 {
		// Degenerate plan: treat the whole task as one step.
		steps = []string{task}
	}
	return steps, nil
}

func parseStepNumber(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, s != ""
}

func (p *LLMPlanner) executeStep(ctx context.Context, task, step string, findings []string) (string, error) {
	prior := "none yet"
	if len(findings) > 0 {
		prior = strings.Join(findings, "\n\n")
	}
	reply, _, err := p.model.Chat(ctx, []llm.Message{
		llm.UserMessage(fmt.Sprintf(stepPrompt, task, prior, step)),
	})
	return reply, err
}

func (p *LLMPlanner) report(ctx context.Context, task string, findings []string) (string, error) {
	reply, _, err := p.model.Chat(ctx, []llm.Message{
		llm.UserMessage(fmt.Sprintf(reportPrompt, task, strings.Join(findings, "\n\n"))),
	})
	return reply, err
}
