package dto

import (
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/application/usecase/analytics"
)

// Live stream message types.
const (
	LiveMessageAnalytics = "analytics"
	LiveMessageError     = "error"
)

// AnalyticsQuery holds the query parameters for the analytics views.
type AnalyticsQuery struct {
	Range string `form:"range"`
}

// WindowResponse is the reporting window in YYYY-MM-DD form.
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MonthlyBucketResponse is one month of the income/expense chart.
type MonthlyBucketResponse struct {
	Label    string `json:"label"`
	Period   string `json:"period"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

// CategoryShareResponse is one slice of the category chart.
type CategoryShareResponse struct {
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	SharePercent int64  `json:"share_percent"`
}

// SavingsPointResponse is one month of the savings chart.
type SavingsPointResponse struct {
	Label  string `json:"label"`
	Period string `json:"period"`
	Amount string `json:"amount"`
}

// TotalsResponse sums the window.
type TotalsResponse struct {
	Expenses string `json:"expenses"`
	Income   string `json:"income"`
}

// AnalyticsResponse represents the analytics page data.
type AnalyticsResponse struct {
	Range             string                  `json:"range"`
	Window            WindowResponse          `json:"window"`
	MonthlySeries     []MonthlyBucketResponse `json:"monthly_series"`
	CategoryBreakdown []CategoryShareResponse `json:"category_breakdown"`
	SavingsSeries     []SavingsPointResponse  `json:"savings_series"`
	Totals            TotalsResponse          `json:"totals"`
	SkippedRecords    int                     `json:"skipped_records"`
}

// StatResponse is one summary card.
type StatResponse struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Delta string `json:"delta"`
}

// MonthlyOverviewResponse summarises the current month.
type MonthlyOverviewResponse struct {
	Label           string `json:"label"`
	MonthlyExpenses string `json:"monthly_expenses"`
	MonthlySavings  string `json:"monthly_savings"`
	MonthlyIncome   string `json:"monthly_income"`
	MonthlyBudget   string `json:"monthly_budget"`
	RemainingBudget string `json:"remaining_budget"`
}

// SummaryStatsResponse represents the summary cards and the month overview.
type SummaryStatsResponse struct {
	Stats          []StatResponse          `json:"stats"`
	Overview       MonthlyOverviewResponse `json:"overview"`
	SkippedRecords int                     `json:"skipped_records"`
}

// LiveMessage is one frame of the live analytics stream.
type LiveMessage struct {
	Type  string             `json:"type"`
	Data  *AnalyticsResponse `json:"data,omitempty"`
	Error *ErrorResponse     `json:"error,omitempty"`
}

// ToAnalyticsResponse converts computed analytics to the DTO.
func ToAnalyticsResponse(selector string, result analytics.Analytics, skipped int) AnalyticsResponse {
	monthly := make([]MonthlyBucketResponse, 0, len(result.MonthlySeries))
	for _, bucket := range result.MonthlySeries {
		monthly = append(monthly, MonthlyBucketResponse{
			Label:    bucket.Label,
			Period:   bucket.Period(),
			Income:   money(bucket.Income),
			Expenses: money(bucket.Expenses),
		})
	}

	breakdown := make([]CategoryShareResponse, 0, len(result.CategoryBreakdown))
	for _, share := range result.CategoryBreakdown {
		breakdown = append(breakdown, CategoryShareResponse{
			Category:     string(share.Category),
			Amount:       money(share.Amount),
			SharePercent: share.SharePercent,
		})
	}

	savings := make([]SavingsPointResponse, 0, len(result.SavingsSeries))
	for _, point := range result.SavingsSeries {
		savings = append(savings, SavingsPointResponse{
			Label:  point.Label,
			Period: point.Period,
			Amount: money(point.Amount),
		})
	}

	return AnalyticsResponse{
		Range: selector,
		Window: WindowResponse{
			Start: result.Window.Start.Format("2006-01-02"),
			End:   result.Window.End.Format("2006-01-02"),
		},
		MonthlySeries:     monthly,
		CategoryBreakdown: breakdown,
		SavingsSeries:     savings,
		Totals: TotalsResponse{
			Expenses: money(result.TotalExpenses),
			Income:   money(result.TotalIncome),
		},
		SkippedRecords: skipped,
	}
}

// ToSummaryStatsResponse converts summary output to the DTO.
func ToSummaryStatsResponse(output *analytics.GetSummaryStatsOutput) SummaryStatsResponse {
	list := output.Stats.List()
	stats := make([]StatResponse, 0, len(list))
	for _, stat := range list {
		stats = append(stats, StatResponse{Title: stat.Title, Value: stat.Value, Delta: stat.Delta})
	}

	return SummaryStatsResponse{
		Stats: stats,
		Overview: MonthlyOverviewResponse{
			Label:           output.Overview.Label,
			MonthlyExpenses: money(output.Overview.MonthlyExpenses),
			MonthlySavings:  money(output.Overview.MonthlySavings),
			MonthlyIncome:   money(output.Overview.MonthlyIncome),
			MonthlyBudget:   money(output.MonthlyBudget),
			RemainingBudget: money(output.RemainingBudget),
		},
		SkippedRecords: output.SkippedRecords,
	}
}

func money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
