package routing

import "strings"

// Responder identifies one of the fixed set of handlers the orchestrator can
// delegate to. The set is closed: dispatch switches over it exhaustively, so
// an unknown name is a decode-time error rather than a runtime surprise.
type Responder string

const (
	// ResponderKnowledgeQA answers support questions from the knowledge base.
	ResponderKnowledgeQA Responder = "qna"
	// ResponderDomainExpert covers AI ethics and governance questions.
	ResponderDomainExpert Responder = "ai_ethics"
	// ResponderWeather looks up current weather for a location.
	ResponderWeather Responder = "weather"
	// ResponderEmailFormatter renders content as a professional support email.
	// It needs content: routed alone, the executor manufactures content first.
	ResponderEmailFormatter Responder = "support_email"
	// ResponderDirect is the orchestrator's own voice, the fallback for
	// casual conversation and for any batch where everything else failed.
	ResponderDirect Responder = "direct"
	// ResponderPlanning delegates to the opaque multi-step planner.
	ResponderPlanning Responder = "planning"
)

// contentResponders are the responders that can produce content for the
// content-then-email workflow, in ladder priority order.
var contentResponders = []Responder{
	ResponderWeather, ResponderDomainExpert, ResponderKnowledgeQA, ResponderDirect,
}

// ParseResponder maps a wire name to a Responder.
func ParseResponder(name string) (Responder, bool) {
	switch Responder(strings.TrimSpace(strings.ToLower(name))) {
	case ResponderKnowledgeQA:
		return ResponderKnowledgeQA, true
	case ResponderDomainExpert:
		return ResponderDomainExpert, true
	case ResponderWeather:
		return ResponderWeather, true
	case ResponderEmailFormatter:
		return ResponderEmailFormatter, true
	case ResponderDirect:
		return ResponderDirect, true
	case ResponderPlanning:
		return ResponderPlanning, true
	}
	return "", false
}

// DisplayName returns a human heading for the responder ("ai_ethics" ->
// "Ai Ethics"), used for labeled sections in merged replies.
func (r Responder) DisplayName() string {
	parts := strings.Split(string(r), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// IsContent reports whether the responder produces content (everything except
// the email formatter).
func (r Responder) IsContent() bool {
	return r != ResponderEmailFormatter
}

// Decision is the outcome of policy evaluation: which responders to invoke,
// in order, and in what shape. Created fresh per request, never mutated.
type Decision struct {
	// Responders is the ordered, non-empty list of responders to invoke.
	Responders []Responder
	// IsMultiAgent is true iff more than one responder, or planning mode.
	IsMultiAgent bool
	// Reasoning is diagnostic only; never used for control flow.
	Reasoning string
	// Primary selects the dominant voice when only one content result exists.
	Primary Responder
}

// Includes reports whether the decision contains the given responder.
func (d Decision) Includes(r Responder) bool {
	for _, got := range d.Responders {
		if got == r {
			return true
		}
	}
	return false
}

// ContentResponders returns the decision's responders excluding the email
// formatter, preserving order.
func (d Decision) ContentResponders() []Responder {
	out := make([]Responder, 0, len(d.Responders))
	for _, r := range d.Responders {
		if r.IsContent() {
			out = append(out, r)
		}
	}
	return out
}
