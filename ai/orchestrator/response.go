// Package orchestrator ties routing decisions to responder execution:
// fan-out, the content-then-email workflow, planning delegation, and
// synthesis of partial results.
package orchestrator

import (
	"time"

	"github.com/nakamo-io/supportflow/ai/routing"
)

// AgentResponse records the outcome of one responder call. Success is
// false exactly when Response is empty and Err carries the reason; a call
// that returned no usable content counts as failed.
type AgentResponse struct {
	Responder routing.Responder
	Response  string
	Duration  time.Duration
	Success   bool
	Err       string
}

func successes(responses []AgentResponse) []AgentResponse {
	var out []AgentResponse
	for _, r := range responses {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

func failures(responses []AgentResponse) []AgentResponse {
	var out []AgentResponse
	for _, r := range responses {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
