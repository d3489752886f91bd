package ai

import (
	"fmt"
	"math"
	"strings"
)

const (
	budgetWarningPercent = 75
	topCategoriesLimit   = 3

	noMonthlyDataInsight = "No expenses recorded for this month yet. Start tracking your spending to get personalized insights!"
)

// GenerateInsights формирует наблюдения по расходам текущего месяца относительно бюджета.
func (s *Service) GenerateInsights(expenses []Expense, budget Budget) []string {
	today := s.today()
	monthly := MonthlySpending(expenses, today.Year(), today.Month())

	top, ok := monthly.Top()
	if !ok {
		return []string{noMonthlyDataInsight}
	}

	insights := make([]string, 0, 4)
	insights = append(insights, fmt.Sprintf(
		"Your highest spending category this month is %s at $%.2f (%d%% of total spending).",
		top.Category, top.Amount, roundPercent(top.Amount, monthly.Total),
	))

	if allocation, exists := budget.BudgetCategories[string(top.Category)]; exists && allocation.Allocated > 0 {
		usage := roundPercent(top.Amount, allocation.Allocated)
		if usage > budgetWarningPercent {
			insights = append(insights, fmt.Sprintf(
				"⚠️ You've used %d%% of your %s budget. Consider monitoring your spending in this category.",
				usage, top.Category,
			))
		} else {
			insights = append(insights, fmt.Sprintf(
				"✅ You're doing well with your %s budget, using only %d%% so far.",
				top.Category, usage,
			))
		}
	}

	if monthly.NonZeroCategories() > 1 {
		ranked := monthly.Ranked()
		if len(ranked) > topCategoriesLimit {
			ranked = ranked[:topCategoriesLimit]
		}

		names := make([]string, 0, len(ranked))
		for _, entry := range ranked {
			names = append(names, string(entry.Category))
		}
		insights = append(insights, fmt.Sprintf("Your top 3 spending categories are: %s.", strings.Join(names, ", ")))
	}

	dailyAverage := monthly.Total / float64(today.Day())
	insights = append(insights, fmt.Sprintf("Your daily average spending this month is $%.2f.", dailyAverage))

	return insights
}

func roundPercent(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
