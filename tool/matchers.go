package tool

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Matcher maps free-form input to a tool invocation. Match returns the
// argument map for the tool when the input qualifies.
type Matcher struct {
	// Tool is the name of the tool to invoke on a match.
	Tool string

	// Priority orders matchers, lower runs first.
	Priority int

	// Match inspects the input and builds the tool arguments.
	Match func(input string) (map[string]interface{}, bool)
}

// FirstMatch runs the matchers in priority order and returns the first
// hit. The allowed filter restricts which tools may fire; nil allows
// every tool. Equal priorities keep their slice order, so the result
// is deterministic for a given input.
func FirstMatch(matchers []Matcher, input string, allowed func(tool string) bool) (string, map[string]interface{}, bool) {
	ordered := make([]Matcher, len(matchers))
	copy(ordered, matchers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, m := range ordered {
		if allowed != nil && !allowed(m.Tool) {
			continue
		}
		if args, ok := m.Match(input); ok {
			return m.Tool, args, true
		}
	}

	return "", nil, false
}

// DefaultMatchers returns the built-in matcher table for the five
// bundled tools.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Tool: "compute_kpi", Priority: 10, Match: matchKPI},
		{Tool: "summarize_text", Priority: 20, Match: matchSummarize},
		{Tool: "extract_json", Priority: 30, Match: matchJSON},
		{Tool: "draft_email", Priority: 40, Match: matchEmail},
		{Tool: "read_file", Priority: 50, Match: matchReadFile},
	}
}

var (
	kpiKeywordRe = regexp.MustCompile(`(?i)\b(kpi|kpis|profit|margin|conversion|conversions|metrics)\b`)
	kpiFigureRe  = regexp.MustCompile(`(?i)\b(revenue|sales|cost|costs|expense|expenses|spend|visits|traffic|leads|conversions|customers)\b\s*[=:]?\s*\$?(-?\d+(?:,\d{3})*(?:\.\d+)?)`)
	summarizeRe  = regexp.MustCompile(`(?i)\b(summarize|summarise|summary|tl;dr)\b`)
	jsonRe       = regexp.MustCompile(`(?i)\bjson\b`)
	emailRe      = regexp.MustCompile(`(?i)\b(email|e-mail)\b`)
	readFileRe   = regexp.MustCompile(`(?i)\bread\s+(?:the\s+)?file\s+(\S+)`)
)

// matchKPI fires on a KPI keyword combined with at least one labeled
// figure. Figures the input does not mention default to zero, which
// the tool reports as a division error rather than guessing.
func matchKPI(input string) (map[string]interface{}, bool) {
	if !kpiKeywordRe.MatchString(input) {
		return nil, false
	}

	figures := parseKPIFigures(input)
	if len(figures) == 0 {
		return nil, false
	}

	args := map[string]interface{}{
		"revenue":     0.0,
		"cost":        0.0,
		"visits":      0.0,
		"conversions": 0.0,
	}
	for key, value := range figures {
		args[key] = value
	}

	return args, true
}

func matchSummarize(input string) (map[string]interface{}, bool) {
	if !summarizeRe.MatchString(input) {
		return nil, false
	}

	return map[string]interface{}{"text": input}, true
}

func matchJSON(input string) (map[string]interface{}, bool) {
	if !jsonRe.MatchString(input) {
		return nil, false
	}

	return map[string]interface{}{"text": input}, true
}

func matchEmail(input string) (map[string]interface{}, bool) {
	if !emailRe.MatchString(input) {
		return nil, false
	}

	return map[string]interface{}{"topic": input}, true
}

func matchReadFile(input string) (map[string]interface{}, bool) {
	m := readFileRe.FindStringSubmatch(input)
	if m == nil {
		return nil, false
	}

	path := strings.TrimRight(m[1], ".,;:!?")
	if path == "" {
		return nil, false
	}

	return map[string]interface{}{"path": path}, true
}

// parseKPIFigures pulls labeled figures out of the input, mapping
// legacy labels (sales, expenses, leads, customers) onto the canonical
// argument names. When a label repeats, the last occurrence wins.
func parseKPIFigures(input string) map[string]float64 {
	figures := make(map[string]float64)

	for _, m := range kpiFigureRe.FindAllStringSubmatch(input, -1) {
		key := canonicalKPIKey(m[1])
		if key == "" {
			continue
		}

		raw := strings.ReplaceAll(m[2], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		figures[key] = value
	}

	return figures
}

func canonicalKPIKey(label string) string {
	switch strings.ToLower(label) {
	case "revenue", "sales":
		return "revenue"
	case "cost", "costs", "expense", "expenses", "spend":
		return "cost"
	case "visits", "traffic", "leads":
		return "visits"
	case "conversions", "customers":
		return "conversions"
	}

	return ""
}
