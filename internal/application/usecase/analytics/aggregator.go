// Package analytics turns a user's record set into the monthly, category and summary
// views shown on the analytics pages.
package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/domain/entity"
	"github.com/money-tracker/backend/internal/domain/valueobject"
)

var monthAbbreviations = map[time.Month]string{
	time.January:   "Jan",
	time.February:  "Feb",
	time.March:     "Mar",
	time.April:     "Apr",
	time.May:       "May",
	time.June:      "Jun",
	time.July:      "Jul",
	time.August:    "Aug",
	time.September: "Sep",
	time.October:   "Oct",
	time.November:  "Nov",
	time.December:  "Dec",
}

var hundred = decimal.NewFromInt(100)

// MonthlyBucket holds one calendar month of income and expenses.
type MonthlyBucket struct {
	Year     int
	Month    time.Month
	Label    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Period returns the bucket key as YYYY-MM.
func (b MonthlyBucket) Period() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}

// CategoryTotals maps a category to the expenses recorded under it.
type CategoryTotals map[entity.Category]decimal.Decimal

// Total sums every category.
func (t CategoryTotals) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range t {
		total = total.Add(amount)
	}
	return total
}

// CategoryShare is a category's part of total expenses.
type CategoryShare struct {
	Category     entity.Category
	Amount       decimal.Decimal
	SharePercent int64
}

// SavingsPoint is income minus expenses for one month.
type SavingsPoint struct {
	Label  string
	Period string
	Amount decimal.Decimal
}

// Analytics bundles the three views computed over one reporting window.
type Analytics struct {
	Window            valueobject.ReportingWindow
	MonthlySeries     []MonthlyBucket
	CategoryBreakdown []CategoryShare
	SavingsSeries     []SavingsPoint
	TotalExpenses     decimal.Decimal
	TotalIncome       decimal.Decimal
}

type monthKey struct {
	year  int
	month time.Month
}

// ComputeMonthlySeries builds one bucket per calendar month of window, seeded with
// baseIncome, and folds every in-window record into its month. Buckets are keyed by
// year and month so windows longer than a year never merge two Marches.
func ComputeMonthlySeries(records []entity.Record, window valueobject.ReportingWindow, baseIncome decimal.Decimal) ([]MonthlyBucket, CategoryTotals) {
	if baseIncome.IsNegative() {
		baseIncome = decimal.Zero
	}

	months := window.Months()
	series := make([]MonthlyBucket, len(months))
	index := make(map[monthKey]int, len(months))
	for i, start := range months {
		series[i] = MonthlyBucket{
			Year:     start.Year(),
			Month:    start.Month(),
			Label:    monthAbbreviations[start.Month()],
			Income:   baseIncome,
			Expenses: decimal.Zero,
		}
		index[monthKey{year: start.Year(), month: start.Month()}] = i
	}

	totals := make(CategoryTotals)
	loc := window.Start.Location()
	for _, record := range records {
		if !isUsable(record) || !window.Contains(record.Timestamp) {
			continue
		}

		at := record.Timestamp.In(loc)
		i, ok := index[monthKey{year: at.Year(), month: at.Month()}]
		if !ok {
			continue
		}

		if record.IsIncome() {
			series[i].Income = series[i].Income.Add(record.Amount)
			continue
		}
		series[i].Expenses = series[i].Expenses.Add(record.Amount)
		totals[record.Category] = totals[record.Category].Add(record.Amount)
	}

	return series, totals
}

// ComputeCategoryBreakdown converts category totals into whole-number percentages of
// totalExpenses, in display order. Every share is zero when totalExpenses is not positive.
// Independent rounding means shares may not add up to exactly 100.
func ComputeCategoryBreakdown(totals CategoryTotals, totalExpenses decimal.Decimal) []CategoryShare {
	breakdown := make([]CategoryShare, 0, len(totals))
	for _, category := range entity.Categories {
		amount, ok := totals[category]
		if !ok {
			continue
		}

		var share int64
		if totalExpenses.IsPositive() {
			share = amount.Mul(hundred).Div(totalExpenses).Round(0).IntPart()
		}

		breakdown = append(breakdown, CategoryShare{
			Category:     category,
			Amount:       amount,
			SharePercent: share,
		})
	}
	return breakdown
}

// ComputeSavingsSeries returns income minus expenses per bucket. Values may be negative.
func ComputeSavingsSeries(series []MonthlyBucket) []SavingsPoint {
	savings := make([]SavingsPoint, len(series))
	for i, bucket := range series {
		savings[i] = SavingsPoint{
			Label:  bucket.Label,
			Period: bucket.Period(),
			Amount: bucket.Income.Sub(bucket.Expenses),
		}
	}
	return savings
}

// Compute runs the monthly, category and savings computations for one window.
func Compute(records []entity.Record, window valueobject.ReportingWindow, baseIncome decimal.Decimal) Analytics {
	series, totals := ComputeMonthlySeries(records, window, baseIncome)
	totalExpenses := totals.Total()

	totalIncome := decimal.Zero
	for _, bucket := range series {
		totalIncome = totalIncome.Add(bucket.Income)
	}

	return Analytics{
		Window:            window,
		MonthlySeries:     series,
		CategoryBreakdown: ComputeCategoryBreakdown(totals, totalExpenses),
		SavingsSeries:     ComputeSavingsSeries(series),
		TotalExpenses:     totalExpenses,
		TotalIncome:       totalIncome,
	}
}

// isUsable rejects records that bypassed decoding with values aggregation cannot use.
func isUsable(record entity.Record) bool {
	return !record.Timestamp.IsZero() && !record.Amount.IsNegative()
}
