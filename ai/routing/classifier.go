// Package routing decides which responders handle a user request.
//
// The package is split the way the layered router in the original system was:
// a pure classifier derives signals from the raw text, and a policy turns the
// signals into a RoutingDecision. Two policies exist: the keyword-priority
// ladder and the classifier+planner strategy that may escalate to planning
// mode or ask an LLM for a JSON decision, falling back to the ladder whenever
// that call fails.
package routing

import "strings"

// Classification holds the signals derived from one input text.
// It is purely a function of the text: no side effects, no persisted state.
type Classification struct {
	IsEmailFormat    bool
	TopicScores      map[Topic]int
	HasQuestionWords bool
	WordCount        int
	IsGreeting       bool
}

// Score returns the match score for a topic, zero when absent.
func (c Classification) Score(t Topic) int {
	return c.TopicScores[t]
}

// Classify derives routing signals from raw input text.
// Total: never fails; absence of matches yields zero scores.
func Classify(text string) Classification {
	lower := strings.ToLower(text)

	scores := make(map[Topic]int, len(topicKeywords))
	for topic, keywords := range topicKeywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		scores[topic] = score
	}

	c := Classification{
		IsEmailFormat: matchesEmailFormat(lower),
		TopicScores:   scores,
		WordCount:     len(strings.Fields(text)),
	}

	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			c.HasQuestionWords = true
			break
		}
	}

	trimmed := strings.TrimSpace(lower)
	if c.WordCount <= 4 {
		for _, g := range greetingPrefixes {
			if strings.HasPrefix(trimmed, g) {
				c.IsGreeting = true
				break
			}
		}
	}

	return c
}

// matchesEmailFormat reports whether the lowercased text matches any of the
// email-format patterns.
func matchesEmailFormat(lower string) bool {
	for _, p := range emailPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
