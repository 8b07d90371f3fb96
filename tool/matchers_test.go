package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch_RoutesByKeyword(t *testing.T) {
	matchers := DefaultMatchers()

	tests := []struct {
		input string
		tool  string
		ok    bool
	}{
		{"Compute KPI for revenue=1000 cost=600 visits=50 conversions=5", "compute_kpi", true},
		{"Please summarize this quarterly report for me", "summarize_text", true},
		{"TL;DR the meeting notes please", "summarize_text", true},
		{`extract the json from this blob {"a": 1}`, "extract_json", true},
		{"Draft an email about the product launch", "draft_email", true},
		{"read file notes.txt", "read_file", true},
		{"Could you read the file data/report.csv?", "read_file", true},
		{"hello there", "", false},
		{"what are our KPIs?", "", false},
	}

	for _, tt := range tests {
		tool, _, ok := FirstMatch(matchers, tt.input, nil)
		assert.Equal(t, tt.ok, ok, "input: %s", tt.input)
		assert.Equal(t, tt.tool, tool, "input: %s", tt.input)
	}
}

func TestFirstMatch_IsDeterministic(t *testing.T) {
	matchers := DefaultMatchers()
	input := "summarize the json status email"

	first, _, ok := FirstMatch(matchers, input, nil)
	assert.True(t, ok)

	for i := 0; i < 20; i++ {
		tool, _, ok := FirstMatch(matchers, input, nil)
		assert.True(t, ok)
		assert.Equal(t, first, tool)
	}

	// Summarize outranks the JSON and email matchers.
	assert.Equal(t, "summarize_text", first)
}

func TestFirstMatch_AllowedFilter(t *testing.T) {
	matchers := DefaultMatchers()
	input := "summarize the json status email"

	allowed := func(tool string) bool { return tool == "extract_json" }

	tool, args, ok := FirstMatch(matchers, input, allowed)
	assert.True(t, ok)
	assert.Equal(t, "extract_json", tool)
	assert.Equal(t, input, args["text"])

	none := func(string) bool { return false }
	_, _, ok = FirstMatch(matchers, input, none)
	assert.False(t, ok)
}

func TestMatchKPI_ParsesFigures(t *testing.T) {
	args, ok := matchKPI("kpi check: revenue=1000 cost=600 visits=50 conversions=5")
	assert.True(t, ok)
	assert.Equal(t, 1000.0, args["revenue"])
	assert.Equal(t, 600.0, args["cost"])
	assert.Equal(t, 50.0, args["visits"])
	assert.Equal(t, 5.0, args["conversions"])
}

func TestMatchKPI_LegacyLabels(t *testing.T) {
	args, ok := matchKPI("profit from sales=100 expenses=40 leads=10 customers=2")
	assert.True(t, ok)
	assert.Equal(t, 100.0, args["revenue"])
	assert.Equal(t, 40.0, args["cost"])
	assert.Equal(t, 10.0, args["visits"])
	assert.Equal(t, 2.0, args["conversions"])
}

func TestMatchKPI_LastLabelWins(t *testing.T) {
	args, ok := matchKPI("margin for revenue=100 revenue=250 cost=40")
	assert.True(t, ok)
	assert.Equal(t, 250.0, args["revenue"])
}

func TestMatchKPI_MissingFiguresDefaultToZero(t *testing.T) {
	args, ok := matchKPI("profit for revenue=100 cost=40")
	assert.True(t, ok)
	assert.Equal(t, 0.0, args["visits"])
	assert.Equal(t, 0.0, args["conversions"])
}

func TestMatchKPI_KeywordWithoutFigures(t *testing.T) {
	_, ok := matchKPI("how do you define a conversion margin?")
	assert.False(t, ok)
}

func TestMatchKPI_CurrencyAndThousands(t *testing.T) {
	args, ok := matchKPI("kpi revenue: $12,000 cost: $7,500 visits: 300 conversions: 12")
	assert.True(t, ok)
	assert.Equal(t, 12000.0, args["revenue"])
	assert.Equal(t, 7500.0, args["cost"])
}

func TestMatchReadFile_ExtractsPath(t *testing.T) {
	args, ok := matchReadFile("please read the file data/q3-report.txt.")
	assert.True(t, ok)
	assert.Equal(t, "data/q3-report.txt", args["path"])

	_, ok = matchReadFile("read this carefully")
	assert.False(t, ok)
}
