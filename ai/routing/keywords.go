package routing

import "regexp"

// Topic is a routing topic scored by the classifier.
type Topic string

const (
	TopicWeather  Topic = "weather"
	TopicEthics   Topic = "ai_ethics"
	TopicSupport  Topic = "support"
	TopicChitChat Topic = "chit_chat"
	TopicFacts    Topic = "simple_facts"
)

// topicKeywords is the single keyword table shared by both routing strategies.
// Matching is substring containment over the lowercased input, not tokenized;
// overlapping keywords may double count. This is deliberate: tightening it
// would change routing outcomes for borderline inputs.
var topicKeywords = map[Topic][]string{
	TopicWeather: {
		"weather", "temperature", "forecast", "rain", "snow",
		"sunny", "cloudy", "climate",
	},
	TopicEthics: {
		"ai ethics", "bias", "fairness", "human dependence",
		"algorithmic", "responsible ai", "ai governance",
	},
	TopicSupport: {
		"support", "help", "problem", "issue", "error",
		"question", "account", "billing", "invoice",
	},
	TopicChitChat: {
		"chat", "conversation", "joke", "creative", "story",
	},
	TopicFacts: {
		"what is", "who is", "define", "meaning of",
	},
}

// defaultComplexityKeywords mark multi-step tasks that escalate to planning
// mode when the input is also long enough and not email-formatted.
var defaultComplexityKeywords = []string{
	"compare", "analyze", "research", "investigate", "study", "examine",
	"evaluate", "assess", "report", "comprehensive", "detailed",
	"multiple", "various", "different", "both", "all", "several",
}

// questionWords trigger the hasQuestionWords signal.
var questionWords = []string{"what", "how", "why", "when", "where", "who", "?"}

// greetingPrefixes mark short conversational openers.
var greetingPrefixes = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"thanks", "thank you",
}

// emailPatterns detect email-formatted input. Any single match flips
// isEmailFormat; the set mirrors the support mailbox heuristics.
var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`subject\s*:`),
	regexp.MustCompile(`dear\s+\w+`),
	regexp.MustCompile(`hello\s+\w+`),
	regexp.MustCompile(`hi\s+\w+`),
	regexp.MustCompile(`to\s*:`),
	regexp.MustCompile(`from\s*:`),
	regexp.MustCompile(`@\w+\.\w+`), // email address
	regexp.MustCompile(`best\s+regards`),
	regexp.MustCompile(`sincerely`),
	regexp.MustCompile(`thank\s+you\s+for\s+contacting`),
	regexp.MustCompile(`we\s+received\s+your\s+email`),
}
