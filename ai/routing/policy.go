package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/internal/strutil"
)

// PolicyConfig configures the classifier policy.
type PolicyConfig struct {
	// ComplexityMinWords is the minimum word count for planning-mode
	// escalation (default: 10).
	ComplexityMinWords int
	// ComplexityKeywords overrides the default complexity keyword list.
	ComplexityKeywords []string
}

// DefaultPolicyConfig returns a PolicyConfig with the stock thresholds.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		ComplexityMinWords: 10,
		ComplexityKeywords: defaultComplexityKeywords,
	}
}

// ClassifierPolicy is the richer strategy. It first asks whether the request
// is a complex multi-step task: if so (and only for non-email input) it
// escalates to planning mode. Otherwise it asks the routing model for a JSON
// decision and falls back to the keyword ladder whenever that call fails or
// returns unparseable output. The fallback path can never error.
type ClassifierPolicy struct {
	llm llm.Service
	cfg PolicyConfig
}

// NewClassifierPolicy creates the classifier policy with injected
// collaborators.
func NewClassifierPolicy(llmService llm.Service, cfg PolicyConfig) *ClassifierPolicy {
	if cfg.ComplexityMinWords <= 0 {
		cfg.ComplexityMinWords = 10
	}
	if len(cfg.ComplexityKeywords) == 0 {
		cfg.ComplexityKeywords = defaultComplexityKeywords
	}
	return &ClassifierPolicy{llm: llmService, cfg: cfg}
}

// Decide implements Policy.
func (p *ClassifierPolicy) Decide(ctx context.Context, input string, c Classification) Decision {
	// Planning mode must never receive email-formatted content: its own
	// completion could look like a new email and re-trigger email
	// classification indefinitely. Email requests go through direct routing
	// only, with the formatter strictly last.
	if p.isComplexTask(input, c) {
		slog.Info("routing: complex task, escalating to planning mode",
			"input", strutil.Truncate(input, 50),
			"word_count", c.WordCount)
		return Decision{
			Responders:   []Responder{ResponderPlanning},
			IsMultiAgent: true,
			Reasoning:    "complex multi-step task suitable for planning mode",
			Primary:      ResponderPlanning,
		}
	}

	decision, err := p.routeWithModel(ctx, input)
	if err != nil {
		slog.Warn("routing: model routing failed, using rule fallback",
			"error", err,
			"input", strutil.Truncate(input, 50))
		return ruleFallback(c)
	}

	return p.normalize(decision, c)
}

// isComplexTask reports whether the input should escalate to planning mode:
// long enough, carries a complexity keyword, and is not email-formatted.
func (p *ClassifierPolicy) isComplexTask(input string, c Classification) bool {
	if c.IsEmailFormat {
		return false
	}
	if c.WordCount <= p.cfg.ComplexityMinWords {
		return false
	}
	lower := strings.ToLower(input)
	for _, kw := range p.cfg.ComplexityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// routeWithModel asks the routing model for a JSON decision.
func (p *ClassifierPolicy) routeWithModel(ctx context.Context, input string) (Decision, error) {
	prompt := buildRoutingPrompt(input)
	raw, _, err := p.llm.Chat(ctx, []llm.Message{llm.UserMessage(prompt)})
	if err != nil {
		return Decision{}, fmt.Errorf("routing model call: %w", err)
	}
	decision, err := decodeDecision(raw)
	if err != nil {
		return Decision{}, err
	}
	slog.Debug("routing: model decision",
		"responders", decision.Responders,
		"multi_agent", decision.IsMultiAgent,
		"reasoning", decision.Reasoning)
	return decision, nil
}

// normalize enforces the email pairing invariant on a decoded decision:
// email-format requests always end with the formatter, after exactly one
// content responder.
func (p *ClassifierPolicy) normalize(d Decision, c Classification) Decision {
	if !c.IsEmailFormat {
		return d
	}
	var content Responder
	if picks := d.ContentResponders(); len(picks) > 0 {
		content = picks[0]
	} else {
		content, _ = ladderContent(c)
	}
	return Decision{
		Responders:   []Responder{content, ResponderEmailFormatter},
		IsMultiAgent: true,
		Reasoning:    d.Reasoning,
		Primary:      content,
	}
}

// buildRoutingPrompt creates the prompt for the routing model.
func buildRoutingPrompt(input string) string {
	return fmt.Sprintf(`Analyze this user request and determine which agents should handle it:

User request: %q

Available agents:
- weather: weather conditions, forecasts, temperature, climate
- ai_ethics: AI ethics, bias, human-AI dependency, AI governance
- qna: customer support, technical help, product information
- support_email: professional email formatting (use with one content agent)
- direct: casual conversation, greetings, general knowledge

Email formatting logic:
- If the request needs EMAIL FORMAT (email indicators like "Subject:", "Dear", formal language), use TWO agents: one content agent (weather, ai_ethics, qna, or direct) followed by support_email.
- Otherwise use a single agent.

Return a JSON object with exactly this format:
{"agents_to_call": ["agent_name"], "reasoning": "brief explanation", "is_multi_agent": false, "primary_agent": "agent_name"}

Examples:
- "What's the weather in Paris?" -> {"agents_to_call": ["weather"], "reasoning": "weather query", "is_multi_agent": false, "primary_agent": "weather"}
- "Subject: Weather Request\nDear Support,\nWhat's the weather in Paris?" -> {"agents_to_call": ["weather", "support_email"], "reasoning": "weather query requiring email format", "is_multi_agent": true, "primary_agent": "weather"}

Always respond with valid JSON only.`, input)
}
