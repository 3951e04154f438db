package routing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decisionWire is the JSON shape the routing model is asked to produce.
type decisionWire struct {
	AgentsToCall []string `json:"agents_to_call"`
	Reasoning    string   `json:"reasoning"`
	IsMultiAgent bool     `json:"is_multi_agent"`
	PrimaryAgent string   `json:"primary_agent"`
}

// decodeDecision parses a model response into a Decision. It is a fallible
// decode step: any structural problem (no JSON object, bad JSON, no agents,
// unknown agent name, planning mode selected by the model) is an error, and
// the caller recovers with the deterministic ladder.
func decodeDecision(raw string) (Decision, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Decision{}, fmt.Errorf("no JSON object in routing response")
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return Decision{}, fmt.Errorf("parse routing JSON: %w", err)
	}
	if len(wire.AgentsToCall) == 0 {
		return Decision{}, fmt.Errorf("routing response selects no agents")
	}

	responders := make([]Responder, 0, len(wire.AgentsToCall))
	for _, name := range wire.AgentsToCall {
		r, ok := ParseResponder(name)
		if !ok {
			return Decision{}, fmt.Errorf("unknown agent %q in routing response", name)
		}
		if r == ResponderPlanning {
			// Planning mode is a policy-level escalation, never something
			// the routing model may select.
			return Decision{}, fmt.Errorf("routing response selected planning mode")
		}
		responders = append(responders, r)
	}

	primary := responders[0]
	if p, ok := ParseResponder(wire.PrimaryAgent); ok && p != ResponderPlanning {
		primary = p
	}

	reasoning := wire.Reasoning
	if reasoning == "" {
		reasoning = "model routing decision"
	}

	return Decision{
		Responders:   responders,
		IsMultiAgent: wire.IsMultiAgent || len(responders) > 1,
		Reasoning:    reasoning,
		Primary:      primary,
	}, nil
}
