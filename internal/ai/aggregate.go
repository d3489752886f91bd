package ai

import (
	"sort"
	"strings"
	"time"

	"example.com/finance-tracker/backend/internal/models"
)

// Spending сумма расходов в целом и по категориям.
// order хранит порядок первого появления категории, чтобы сравнения были детерминированными.
type Spending struct {
	Total      float64
	ByCategory map[models.Category]float64
	order      []models.Category
}

type CategoryAmount struct {
	Category models.Category
	Amount   float64
}

// Summarize суммирует расходы, для которых keep возвращает true. nil означает все расходы.
func Summarize(expenses []Expense, keep func(Expense) bool) Spending {
	spending := Spending{ByCategory: make(map[models.Category]float64)}

	for _, expense := range expenses {
		if keep != nil && !keep(expense) {
			continue
		}

		spending.Total += expense.Amount
		if _, seen := spending.ByCategory[expense.Category]; !seen {
			spending.order = append(spending.order, expense.Category)
		}
		spending.ByCategory[expense.Category] += expense.Amount
	}

	return spending
}

// MonthlySpending суммирует расходы за календарный месяц без учета часовых поясов.
func MonthlySpending(expenses []Expense, year int, month time.Month) Spending {
	return Summarize(expenses, func(expense Expense) bool {
		date, ok := parseDate(expense.Date)
		return ok && date.Year() == year && date.Month() == month
	})
}

// Empty сообщает, что ни один расход не попал в выборку.
func (s Spending) Empty() bool {
	return len(s.order) == 0
}

// Top возвращает категорию с наибольшей суммой. При равенстве побеждает встреченная раньше.
func (s Spending) Top() (CategoryAmount, bool) {
	if s.Empty() {
		return CategoryAmount{}, false
	}

	top := CategoryAmount{Category: s.order[0], Amount: s.ByCategory[s.order[0]]}
	for _, category := range s.order[1:] {
		if amount := s.ByCategory[category]; amount > top.Amount {
			top = CategoryAmount{Category: category, Amount: amount}
		}
	}

	return top, true
}

// Ranked возвращает категории по убыванию суммы, равные остаются в порядке появления.
func (s Spending) Ranked() []CategoryAmount {
	ranked := make([]CategoryAmount, 0, len(s.order))
	for _, category := range s.order {
		ranked = append(ranked, CategoryAmount{Category: category, Amount: s.ByCategory[category]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})

	return ranked
}

// NonZeroCategories считает категории с ненулевой суммой.
func (s Spending) NonZeroCategories() int {
	count := 0
	for _, category := range s.order {
		if s.ByCategory[category] != 0 {
			count++
		}
	}
	return count
}

// parseDate разбирает YYYY-MM-DD; допускает полную ISO-строку, берется только дата.
func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > len(dateLayout) {
		trimmed = trimmed[:len(dateLayout)]
	}

	date, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}

	return date, true
}
