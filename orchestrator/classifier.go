package orchestrator

import "strings"

// Category labels the kind of work a request asks for. Every category
// maps to one registered agent.
type Category string

const (
	// CategoryAnalytics covers KPI and financial analysis requests.
	CategoryAnalytics Category = "analytics"
	// CategoryDocumentation covers summaries, reports and file questions.
	CategoryDocumentation Category = "documentation"
	// CategoryCommunication covers emails and other outbound messages.
	CategoryCommunication Category = "communication"
	// CategoryResearch covers market and competitor questions.
	CategoryResearch Category = "research"
	// CategoryGeneral is the catch-all for everything else.
	CategoryGeneral Category = "general"
)

// rule binds a category to its routing keywords. Rules are scored in
// order and earlier rules win ties.
type rule struct {
	category Category
	keywords []string
}

func defaultRules() []rule {
	return []rule{
		{CategoryAnalytics, []string{"kpi", "profit", "margin", "conversion", "financial", "analysis"}},
		{CategoryDocumentation, []string{"summarize", "summary", "report", "sop", "documentation", "markdown", "file"}},
		{CategoryCommunication, []string{"email", "mail", "meeting", "message"}},
		{CategoryResearch, []string{"research", "market", "competitor", "google"}},
	}
}

// Classifier maps free-form input to a category by counting keyword
// hits. Classification is pure string work, no model call, so the same
// input always lands on the same category.
type Classifier struct {
	rules []rule
}

// NewClassifier returns a classifier over the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify scores the input against every rule and returns the category
// with the most keyword hits. Ties keep the earlier rule; zero hits fall
// through to CategoryGeneral.
func (c *Classifier) Classify(input string) Category {
	lowered := strings.ToLower(input)

	best := CategoryGeneral
	bestScore := 0

	for _, r := range c.rules {
		score := 0
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = r.category
			bestScore = score
		}
	}

	return best
}
