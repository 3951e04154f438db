package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakamo-io/supportflow/ai/core/llm"
)

// fakeLLM returns a canned response or error for every Chat call.
type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message) (string, *llm.CallStats, error) {
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.response, &llm.CallStats{}, nil
}

func TestClassifierPolicy_PlanningEscalation(t *testing.T) {
	model := &fakeLLM{}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "please compare and analyze multiple different frameworks for building agents and evaluate several options in detail"
	c := Classify(input)
	require.Greater(t, c.WordCount, 10)

	d := policy.Decide(context.Background(), input, c)
	assert.Equal(t, []Responder{ResponderPlanning}, d.Responders)
	assert.True(t, d.IsMultiAgent)
	assert.Zero(t, model.calls, "planning escalation never calls the routing model")
}

func TestClassifierPolicy_EmailNeverEscalatesToPlanning(t *testing.T) {
	// Complexity keywords and length alone would escalate, but the email
	// guard blocks planning mode unconditionally.
	model := &fakeLLM{err: errors.New("model down")}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "Subject: Research Request\nDear Support,\nPlease compare and analyze multiple different vendor options and evaluate several pricing tiers for our account."
	c := Classify(input)
	require.True(t, c.IsEmailFormat)
	require.Greater(t, c.WordCount, 10)

	d := policy.Decide(context.Background(), input, c)
	assert.False(t, d.Includes(ResponderPlanning))
	assert.Equal(t, ResponderEmailFormatter, d.Responders[len(d.Responders)-1],
		"email requests end with the formatter")
}

func TestClassifierPolicy_ModelDecision(t *testing.T) {
	model := &fakeLLM{response: `{"agents_to_call": ["weather"], "reasoning": "weather query", "is_multi_agent": false, "primary_agent": "weather"}`}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "What's the weather in Paris?"
	d := policy.Decide(context.Background(), input, Classify(input))
	assert.Equal(t, []Responder{ResponderWeather}, d.Responders)
	assert.False(t, d.IsMultiAgent)
	assert.Equal(t, ResponderWeather, d.Primary)
}

func TestClassifierPolicy_ModelDecisionInFencedBlock(t *testing.T) {
	model := &fakeLLM{response: "```json\n{\"agents_to_call\": [\"qna\"], \"reasoning\": \"support question\", \"is_multi_agent\": false, \"primary_agent\": \"qna\"}\n```"}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "How do I reset my password?"
	d := policy.Decide(context.Background(), input, Classify(input))
	assert.Equal(t, []Responder{ResponderKnowledgeQA}, d.Responders)
}

func TestClassifierPolicy_FallbackOnModelError(t *testing.T) {
	model := &fakeLLM{err: errors.New("rate limited")}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "what is the weather forecast for tomorrow"
	d := policy.Decide(context.Background(), input, Classify(input))
	require.NotEmpty(t, d.Responders)
	assert.Equal(t, []Responder{ResponderWeather}, d.Responders)
}

func TestClassifierPolicy_FallbackOnGarbageOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no JSON at all", "I think the weather agent should handle this."},
		{"malformed JSON", `{"agents_to_call": ["weather",}`},
		{"empty agent list", `{"agents_to_call": [], "reasoning": "?"}`},
		{"unknown agent", `{"agents_to_call": ["time_travel_agent"]}`},
		{"model picked planning", `{"agents_to_call": ["planning"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewClassifierPolicy(&fakeLLM{response: tt.response}, DefaultPolicyConfig())
			input := "how do I fix this login problem"
			d := policy.Decide(context.Background(), input, Classify(input))
			require.NotEmpty(t, d.Responders, "fallback must always produce a decision")
			assert.Equal(t, []Responder{ResponderKnowledgeQA}, d.Responders)
		})
	}
}

func TestClassifierPolicy_EmailPairingNormalized(t *testing.T) {
	// The model answered with only a content responder for an email-format
	// request; the policy appends the formatter.
	model := &fakeLLM{response: `{"agents_to_call": ["weather"], "reasoning": "weather query", "is_multi_agent": false, "primary_agent": "weather"}`}
	policy := NewClassifierPolicy(model, DefaultPolicyConfig())

	input := "Subject: Weather Request\nDear Support,\nWhat's the weather in Paris?"
	c := Classify(input)
	require.True(t, c.IsEmailFormat)

	d := policy.Decide(context.Background(), input, c)
	assert.Equal(t, []Responder{ResponderWeather, ResponderEmailFormatter}, d.Responders)
	assert.True(t, d.IsMultiAgent)
	assert.Equal(t, ResponderWeather, d.Primary)
}

func TestDecodeDecision_Valid(t *testing.T) {
	d, err := decodeDecision(`Here you go: {"agents_to_call": ["weather", "support_email"], "reasoning": "weather email", "is_multi_agent": true, "primary_agent": "weather"}`)
	require.NoError(t, err)
	assert.Equal(t, []Responder{ResponderWeather, ResponderEmailFormatter}, d.Responders)
	assert.True(t, d.IsMultiAgent)
	assert.Equal(t, ResponderWeather, d.Primary)
	assert.Equal(t, "weather email", d.Reasoning)
}

func TestDecodeDecision_MultiAgentImpliedByCount(t *testing.T) {
	d, err := decodeDecision(`{"agents_to_call": ["qna", "ai_ethics"], "is_multi_agent": false}`)
	require.NoError(t, err)
	assert.True(t, d.IsMultiAgent, "more than one responder implies multi-agent")
}

func TestResponderDisplayName(t *testing.T) {
	assert.Equal(t, "Ai Ethics", ResponderDomainExpert.DisplayName())
	assert.Equal(t, "Support Email", ResponderEmailFormatter.DisplayName())
	assert.Equal(t, "Qna", ResponderKnowledgeQA.DisplayName())
}
