package tool

import (
	"math"

	"github.com/attachehq/attache/internal/util"
)

// KPIArgs are the figures the compute_kpi tool operates on.
type KPIArgs struct {
	Revenue     float64 `json:"revenue" description:"Total revenue for the period"`
	Cost        float64 `json:"cost" description:"Total cost for the period"`
	Visits      float64 `json:"visits" description:"Total visits for the period"`
	Conversions float64 `json:"conversions" description:"Visits that converted"`
}

// KPIReport is the payload of a successful compute_kpi call. Figures
// are rounded to four decimal places. AvgRevenuePerConversion is
// omitted when there were no conversions.
type KPIReport struct {
	Revenue                 float64 `json:"revenue"`
	Cost                    float64 `json:"cost"`
	Profit                  float64 `json:"profit"`
	Margin                  float64 `json:"margin"`
	ConversionRate          float64 `json:"conversion_rate"`
	AvgRevenuePerConversion float64 `json:"avg_revenue_per_conversion,omitempty"`
}

// KPITool computes profit, margin and conversion rate from raw
// business figures. Ratios with a zero denominator fail with a
// DIVISION_BY_ZERO error instead of producing NaN or Inf.
type KPITool struct {
	name        string
	description string
	schema      map[string]interface{}
}

var _ Tool = (*KPITool)(nil)

// NewKPITool creates the compute_kpi tool.
func NewKPITool() *KPITool {
	return &KPITool{
		name:        "compute_kpi",
		description: "Computes profit, margin and conversion rate from revenue, cost, visits and conversions.",
		schema:      util.CreateSchema(KPIArgs{}),
	}
}

// Name returns the tool identifier.
func (t *KPITool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *KPITool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *KPITool) Parameters() map[string]interface{} {
	return t.schema
}

// Call computes the report. All four figures are required; the
// registry rejects calls with missing or non-numeric arguments before
// they reach here.
func (t *KPITool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	revenue := numberArg(args, "revenue")
	cost := numberArg(args, "cost")
	visits := numberArg(args, "visits")
	conversions := numberArg(args, "conversions")

	if revenue == 0 {
		return nil, NewToolError(t.name, "margin is undefined: revenue is zero", CodeDivisionByZero)
	}

	if visits == 0 {
		return nil, NewToolError(t.name, "conversion rate is undefined: visits is zero", CodeDivisionByZero)
	}

	profit := revenue - cost

	report := &KPIReport{
		Revenue:        revenue,
		Cost:           cost,
		Profit:         round4(profit),
		Margin:         round4(profit / revenue),
		ConversionRate: round4(conversions / visits),
	}

	if conversions > 0 {
		report.AvgRevenuePerConversion = round4(revenue / conversions)
	}

	return report, nil
}

// numberArg coerces a validated "number" argument to float64. The
// schema admits any Go numeric kind, JSON input arrives as float64.
func numberArg(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}

	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
