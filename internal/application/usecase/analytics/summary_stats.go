package analytics

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// Stat titles as displayed on the dashboard.
const (
	StatTotalExpenses      = "Total Expenses"
	StatMonthlyExpenses    = "Monthly Expenses"
	StatAveragePerPurchase = "Average Per Purchase"
	StatTotalPurchases     = "Total Purchases"
)

const zeroDelta = "0%"

// SummaryFigures are the raw numbers behind the summary stats.
type SummaryFigures struct {
	TotalExpenses         decimal.Decimal
	MonthlyExpenses       decimal.Decimal
	PreviousMonthExpenses decimal.Decimal
	AveragePerPurchase    decimal.Decimal
	PurchaseCount         int
	// MonthOverMonthChange is nil when the previous month had no expenses.
	MonthOverMonthChange *decimal.Decimal
}

// Stat is one formatted summary value.
type Stat struct {
	Title string
	Value string
	Delta string
}

// SummaryStats holds the four dashboard stats, ready for display.
type SummaryStats struct {
	TotalExpenses      Stat
	MonthlyExpenses    Stat
	AveragePerPurchase Stat
	TotalPurchases     Stat
}

// List returns the stats in display order.
func (s SummaryStats) List() []Stat {
	return []Stat{s.TotalExpenses, s.MonthlyExpenses, s.AveragePerPurchase, s.TotalPurchases}
}

// ComputeSummaryFigures totals lifetime and current-month spending relative to now.
// Income entries never count as purchases.
func ComputeSummaryFigures(records []entity.Record, now time.Time) SummaryFigures {
	currentStart := monthStart(now)
	nextStart := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	figures := SummaryFigures{
		TotalExpenses:         decimal.Zero,
		MonthlyExpenses:       decimal.Zero,
		PreviousMonthExpenses: decimal.Zero,
	}

	for _, record := range records {
		if !isUsable(record) || record.IsIncome() {
			continue
		}

		figures.TotalExpenses = figures.TotalExpenses.Add(record.Amount)
		figures.PurchaseCount++

		at := record.Timestamp.In(now.Location())
		switch {
		case !at.Before(currentStart) && at.Before(nextStart):
			figures.MonthlyExpenses = figures.MonthlyExpenses.Add(record.Amount)
		case !at.Before(previousStart) && at.Before(currentStart):
			figures.PreviousMonthExpenses = figures.PreviousMonthExpenses.Add(record.Amount)
		}
	}

	divisor := figures.PurchaseCount
	if divisor < 1 {
		divisor = 1
	}
	figures.AveragePerPurchase = figures.TotalExpenses.Div(decimal.NewFromInt(int64(divisor)))

	if !figures.PreviousMonthExpenses.IsZero() {
		change := figures.MonthlyExpenses.Sub(figures.PreviousMonthExpenses).
			Div(figures.PreviousMonthExpenses).
			Mul(hundred)
		figures.MonthOverMonthChange = &change
	}

	return figures
}

// ComputeSummaryStats formats the summary figures for display: currency with two
// decimals and the month-over-month change with one decimal, or "0%" when there is
// nothing to compare against.
func ComputeSummaryStats(records []entity.Record, now time.Time) SummaryStats {
	return FormatSummaryStats(ComputeSummaryFigures(records, now))
}

// FormatSummaryStats renders already computed figures.
func FormatSummaryStats(figures SummaryFigures) SummaryStats {
	delta := zeroDelta
	if figures.MonthOverMonthChange != nil {
		delta = FormatPercent(*figures.MonthOverMonthChange)
	}

	return SummaryStats{
		TotalExpenses:      Stat{Title: StatTotalExpenses, Value: FormatCurrency(figures.TotalExpenses), Delta: delta},
		MonthlyExpenses:    Stat{Title: StatMonthlyExpenses, Value: FormatCurrency(figures.MonthlyExpenses), Delta: delta},
		AveragePerPurchase: Stat{Title: StatAveragePerPurchase, Value: FormatCurrency(figures.AveragePerPurchase), Delta: zeroDelta},
		TotalPurchases:     Stat{Title: StatTotalPurchases, Value: strconv.Itoa(figures.PurchaseCount), Delta: zeroDelta},
	}
}

// FormatCurrency renders an amount as dollars with two decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(percent decimal.Decimal) string {
	return percent.StringFixed(1) + "%"
}

// MonthlyOverview splits the current month into spending and money put aside.
// Savings-category records count as savings here, not as spending.
type MonthlyOverview struct {
	Label           string
	MonthlyExpenses decimal.Decimal
	MonthlySavings  decimal.Decimal
	MonthlyIncome   decimal.Decimal
}

// ComputeMonthlyOverview totals the calendar month containing now.
func ComputeMonthlyOverview(records []entity.Record, now time.Time) MonthlyOverview {
	start := monthStart(now)
	end := start.AddDate(0, 1, 0)

	overview := MonthlyOverview{
		Label:           monthAbbreviations[start.Month()],
		MonthlyExpenses: decimal.Zero,
		MonthlySavings:  decimal.Zero,
		MonthlyIncome:   decimal.Zero,
	}

	for _, record := range records {
		if !isUsable(record) {
			continue
		}
		at := record.Timestamp.In(now.Location())
		if at.Before(start) || !at.Before(end) {
			continue
		}

		switch {
		case record.IsIncome():
			overview.MonthlyIncome = overview.MonthlyIncome.Add(record.Amount)
		case record.Category == entity.CategorySavings:
			overview.MonthlySavings = overview.MonthlySavings.Add(record.Amount)
		default:
			overview.MonthlyExpenses = overview.MonthlyExpenses.Add(record.Amount)
		}
	}

	return overview
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
