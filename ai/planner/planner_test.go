package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakamo-io/supportflow/ai/core/llm"
)

// scriptedModel returns queued responses in order, then repeats the last.
type scriptedModel struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedModel) Chat(_ context.Context, _ []llm.Message) (string, *llm.CallStats, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", nil, s.errs[i]
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], &llm.CallStats{}, nil
}

func TestLLMPlanner_Run(t *testing.T) {
	model := &scriptedModel{responses: []string{
		"1. Gather vendor data\n2. Compare pricing",
		"Vendor data gathered.",
		"Pricing compared.",
		"Final report: vendor B wins.",
	}}
	p := New(model, nil)

	out, err := p.Run(context.Background(), "compare vendors")
	require.NoError(t, err)
	assert.Equal(t, "Final report: vendor B wins.", out)
	assert.Equal(t, 4, model.calls, "one plan call, two steps, one report")
}

func TestLLMPlanner_SkipsFailedSteps(t *testing.T) {
	model := &scriptedModel{
		responses: []string{
			"1. Step one\n2. Step two",
			"",
			"Step two findings.",
			"Report built from what survived.",
		},
		errs: []error{nil, errors.New("step one blew up"), nil, nil},
	}
	p := New(model, nil)

	out, err := p.Run(context.Background(), "do a thing")
	require.NoError(t, err)
	assert.Equal(t, "Report built from what survived.", out)
}

func TestLLMPlanner_AllStepsFailed(t *testing.T) {
	model := &scriptedModel{
		responses: []string{"1. Only step"},
		errs:      []error{nil, errors.New("down")},
	}
	p := New(model, nil)

	_, err := p.Run(context.Background(), "do a thing")
	assert.Error(t, err)
}

func TestLLMPlanner_DegeneratePlanBecomesOneStep(t *testing.T) {
	model := &scriptedModel{responses: []string{
		"",
		"Whole-task findings.",
		"Report.",
	}}
	p := New(model, nil)

	out, err := p.Run(context.Background(), "do a thing")
	require.NoError(t, err)
	assert.Equal(t, "Report.", out)
}

func TestPlanParsing_CapsSteps(t *testing.T) {
	model := &scriptedModel{responses: []string{
		"1. a\n2. b\n3. c\n4. d\n5. e\n6. f\n7. g",
	}}
	p := New(model, nil)

	steps, err := p.plan(context.Background(), "big task")
	require.NoError(t, err)
	assert.Len(t, steps, maxPlanSteps)
	assert.Equal(t, "a", steps[0])
	assert.Equal(t, "e", steps[len(steps)-1])
}
