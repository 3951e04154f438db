package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderPolicy_Decide(t *testing.T) {
	policy := NewLadderPolicy()

	tests := []struct {
		name      string
		input     string
		want      []Responder
		wantMulti bool
	}{
		{
			name:  "email format wins over everything",
			input: "Subject: Weather Request\nDear Support,\nWhat's the weather in Paris?",
			want:  []Responder{ResponderEmailFormatter},
		},
		{
			name:  "strong weather match",
			input: "what is the weather forecast for tomorrow",
			want:  []Responder{ResponderWeather},
		},
		{
			name:  "strong ethics match",
			input: "tell me about algorithmic bias in hiring systems",
			want:  []Responder{ResponderDomainExpert},
		},
		{
			name:  "support with question word",
			input: "how do I fix this login problem",
			want:  []Responder{ResponderKnowledgeQA},
		},
		{
			name:  "weak weather fallback",
			input: "nice temperature today",
			want:  []Responder{ResponderWeather},
		},
		{
			name:  "default direct",
			input: "tell me a good story",
			want:  []Responder{ResponderDirect},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.input)
			d := policy.Decide(context.Background(), tt.input, c)
			require.NotEmpty(t, d.Responders, "decisions never route to nothing")
			assert.Equal(t, tt.want, d.Responders)
			assert.Equal(t, tt.wantMulti, d.IsMultiAgent)
			assert.NotEmpty(t, d.Reasoning)
		})
	}
}

func TestLadderPolicy_PriorityIsOrderSensitive(t *testing.T) {
	policy := NewLadderPolicy()

	// Two or more keywords from both topics, in both insertion orders:
	// weather always outranks ethics.
	inputs := []string{
		"the weather forecast shows algorithmic bias somehow",
		"algorithmic bias aside, rain and snow in the weather forecast",
	}
	for _, input := range inputs {
		c := Classify(input)
		require.GreaterOrEqual(t, c.Score(TopicWeather), 2)
		require.GreaterOrEqual(t, c.Score(TopicEthics), 2)
		d := policy.Decide(context.Background(), input, c)
		assert.Equal(t, []Responder{ResponderWeather}, d.Responders, "input: %s", input)
	}
}

func TestRuleFallback_EmailPairing(t *testing.T) {
	c := Classify("Subject: Weather Request\nDear Support,\nWhat's the weather in Paris?")
	require.True(t, c.IsEmailFormat)

	d := ruleFallback(c)
	assert.Equal(t, []Responder{ResponderWeather, ResponderEmailFormatter}, d.Responders)
	assert.True(t, d.IsMultiAgent)
	assert.Equal(t, ResponderWeather, d.Primary)
}

func TestRuleFallback_EmailWithoutTopicUsesDirect(t *testing.T) {
	c := Classify("Dear team,\nI just wanted to say hello to everyone.\nBest regards,\nBob")
	require.True(t, c.IsEmailFormat)

	d := ruleFallback(c)
	assert.Equal(t, []Responder{ResponderDirect, ResponderEmailFormatter}, d.Responders)
}
