package routing

import "context"

// Policy converts a classification into a routing decision.
// Implementations are total: they always return a decision with at least one
// responder and never surface an error to the caller.
type Policy interface {
	Decide(ctx context.Context, input string, c Classification) Decision
}

// LadderPolicy is the keyword-priority strategy: an ordered ladder evaluated
// top to bottom, first match wins, no backtracking. Evaluation order is part
// of the contract: higher-priority topics always win ties.
type LadderPolicy struct{}

// NewLadderPolicy creates the keyword-priority policy.
func NewLadderPolicy() *LadderPolicy {
	return &LadderPolicy{}
}

// Decide walks the ladder. Email format outranks every topic; the executor
// handles the "formatter needs content" special case.
func (p *LadderPolicy) Decide(_ context.Context, _ string, c Classification) Decision {
	if c.IsEmailFormat {
		return Decision{
			Responders:   []Responder{ResponderEmailFormatter},
			IsMultiAgent: false,
			Reasoning:    "email-format request",
			Primary:      ResponderEmailFormatter,
		}
	}
	content, reasoning := ladderContent(c)
	return Decision{
		Responders:   []Responder{content},
		IsMultiAgent: false,
		Reasoning:    reasoning,
		Primary:      content,
	}
}

// ladderContent selects the single content responder for a classification
// using the shared keyword ladder. Both policies rely on it, so the priority
// order lives in exactly one place.
func ladderContent(c Classification) (Responder, string) {
	switch {
	case c.Score(TopicWeather) >= 2:
		return ResponderWeather, "weather keywords detected"
	case c.Score(TopicEthics) >= 2:
		return ResponderDomainExpert, "ai ethics keywords detected"
	case c.Score(TopicSupport) >= 2,
		c.Score(TopicSupport) >= 1 && c.HasQuestionWords:
		return ResponderKnowledgeQA, "support keywords detected"
	case c.Score(TopicWeather) >= 1:
		return ResponderWeather, "weak weather keyword match"
	case c.Score(TopicEthics) >= 1:
		return ResponderDomainExpert, "weak ai ethics keyword match"
	default:
		return ResponderDirect, "no responder keywords found, handling directly"
	}
}

// ruleFallback is the deterministic decision used whenever the classifier
// policy's LLM call fails or returns unparseable output. It mirrors the
// ladder, with the email pairing applied: email-format requests get exactly
// one content responder followed by the formatter.
func ruleFallback(c Classification) Decision {
	content, reasoning := ladderContent(c)
	if c.IsEmailFormat {
		return Decision{
			Responders:   []Responder{content, ResponderEmailFormatter},
			IsMultiAgent: true,
			Reasoning:    reasoning + ", email format required",
			Primary:      content,
		}
	}
	return Decision{
		Responders:   []Responder{content},
		IsMultiAgent: false,
		Reasoning:    reasoning,
		Primary:      content,
	}
}
