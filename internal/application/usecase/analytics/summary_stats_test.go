package analytics

import (
	"testing"
	"time"

	"github.com/money-tracker/backend/internal/domain/entity"
)

func TestComputeSummaryStats(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		records         []entity.Record
		expectedTotal   string
		expectedMonthly string
		expectedAverage string
		expectedCount   string
		expectedDelta   string
	}{
		{
			name:            "no records",
			records:         nil,
			expectedTotal:   "$0.00",
			expectedMonthly: "$0.00",
			expectedAverage: "$0.00",
			expectedCount:   "0",
			expectedDelta:   "0%",
		},
		{
			name: "previous month empty",
			records: []entity.Record{
				expense("300", entity.CategoryFood, at(2024, time.March, 2)),
			},
			expectedTotal:   "$300.00",
			expectedMonthly: "$300.00",
			expectedAverage: "$300.00",
			expectedCount:   "1",
			expectedDelta:   "0%",
		},
		{
			name: "fifty percent increase",
			records: []entity.Record{
				expense("150", entity.CategoryFood, at(2024, time.March, 2)),
				expense("100", entity.CategoryFood, at(2024, time.February, 14)),
			},
			expectedTotal:   "$250.00",
			expectedMonthly: "$150.00",
			expectedAverage: "$125.00",
			expectedCount:   "2",
			expectedDelta:   "50.0%",
		},
		{
			name: "decrease and income ignored",
			records: []entity.Record{
				expense("25", entity.CategoryFood, at(2024, time.March, 2)),
				expense("100", entity.CategoryFood, at(2024, time.February, 14)),
				expense("10", entity.CategoryOther, at(2023, time.June, 1)),
				income("5000", at(2024, time.March, 1)),
			},
			expectedTotal:   "$135.00",
			expectedMonthly: "$25.00",
			expectedAverage: "$45.00",
			expectedCount:   "3",
			expectedDelta:   "-75.0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeSummaryStats(tt.records, now)

			if stats.TotalExpenses.Value != tt.expectedTotal {
				t.Errorf("expected total %s, got %s", tt.expectedTotal, stats.TotalExpenses.Value)
			}
			if stats.MonthlyExpenses.Value != tt.expectedMonthly {
				t.Errorf("expected monthly %s, got %s", tt.expectedMonthly, stats.MonthlyExpenses.Value)
			}
			if stats.AveragePerPurchase.Value != tt.expectedAverage {
				t.Errorf("expected average %s, got %s", tt.expectedAverage, stats.AveragePerPurchase.Value)
			}
			if stats.TotalPurchases.Value != tt.expectedCount {
				t.Errorf("expected count %s, got %s", tt.expectedCount, stats.TotalPurchases.Value)
			}
			if stats.MonthlyExpenses.Delta != tt.expectedDelta {
				t.Errorf("expected delta %s, got %s", tt.expectedDelta, stats.MonthlyExpenses.Delta)
			}
			if stats.AveragePerPurchase.Delta != "0%" || stats.TotalPurchases.Delta != "0%" {
				t.Errorf("expected flat deltas for average and count, got %s and %s",
					stats.AveragePerPurchase.Delta, stats.TotalPurchases.Delta)
			}
		})
	}
}

func TestComputeSummaryFigures_JanuaryComparesWithDecember(t *testing.T) {
	now := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	records := []entity.Record{
		expense("80", entity.CategoryFood, at(2024, time.January, 5)),
		expense("40", entity.CategoryFood, at(2023, time.December, 28)),
		expense("999", entity.CategoryFood, at(2023, time.January, 28)),
	}

	figures := ComputeSummaryFigures(records, now)

	if !figures.PreviousMonthExpenses.Equal(dec("40")) {
		t.Errorf("expected December expenses of 40, got %s", figures.PreviousMonthExpenses)
	}
	if figures.MonthOverMonthChange == nil || !figures.MonthOverMonthChange.Equal(dec("100")) {
		t.Errorf("expected 100%% change, got %v", figures.MonthOverMonthChange)
	}
}

func TestComputeSummaryFigures_ZeroPreviousHasNoChange(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	records := []entity.Record{expense("300", entity.CategoryFood, at(2024, time.March, 1))}

	figures := ComputeSummaryFigures(records, now)

	if figures.MonthOverMonthChange != nil {
		t.Errorf("expected no change value, got %s", figures.MonthOverMonthChange)
	}
}

func TestSummaryStats_ListOrder(t *testing.T) {
	stats := ComputeSummaryStats(nil, time.Now())
	titles := []string{StatTotalExpenses, StatMonthlyExpenses, StatAveragePerPurchase, StatTotalPurchases}

	for i, stat := range stats.List() {
		if stat.Title != titles[i] {
			t.Errorf("position %d: expected %s, got %s", i, titles[i], stat.Title)
		}
	}
}

func TestComputeMonthlyOverview_SeparatesSavings(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	records := []entity.Record{
		expense("120", entity.CategoryFood, at(2024, time.March, 3)),
		expense("200", entity.CategorySavings, at(2024, time.March, 4)),
		expense("60", entity.CategoryFood, at(2024, time.February, 4)),
		income("900", at(2024, time.March, 1)),
	}

	overview := ComputeMonthlyOverview(records, now)

	if overview.Label != "Mar" {
		t.Errorf("expected label Mar, got %s", overview.Label)
	}
	if !overview.MonthlyExpenses.Equal(dec("120")) {
		t.Errorf("expected expenses 120, got %s", overview.MonthlyExpenses)
	}
	if !overview.MonthlySavings.Equal(dec("200")) {
		t.Errorf("expected savings 200, got %s", overview.MonthlySavings)
	}
	if !overview.MonthlyIncome.Equal(dec("900")) {
		t.Errorf("expected income 900, got %s", overview.MonthlyIncome)
	}
}
