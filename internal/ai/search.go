package ai

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"example.com/finance-tracker/backend/internal/models"
)

var (
	aboveAmountRegex = regexp.MustCompile(`(?:above|over)\s+\$?(\d+(?:\.\d+)?)`)
	belowAmountRegex = regexp.MustCompile(`(?:below|under)\s+\$?(\d+(?:\.\d+)?)`)
)

var searchStopWords = map[string]struct{}{
	"show":     {},
	"me":       {},
	"all":      {},
	"expenses": {},
	"last":     {},
	"week":     {},
	"month":    {},
	"above":    {},
	"below":    {},
	"over":     {},
	"under":    {},
}

// Search фильтрует расходы по запросу на естественном языке.
// Результат всегда подпоследовательность входа с сохранением порядка.
func (s *Service) Search(query string, expenses []Expense) []Expense {
	lower := strings.ToLower(query)
	today := s.today()

	filtered := make([]Expense, len(expenses))
	copy(filtered, expenses)

	switch {
	case strings.Contains(lower, "last week"):
		since := today.AddDate(0, 0, -7)
		filtered = filterExpenses(filtered, onOrAfter(since))
	case strings.Contains(lower, "last month"):
		since := subtractMonthClamped(today)
		filtered = filterExpenses(filtered, onOrAfter(since))
	case strings.Contains(lower, "today"):
		filtered = filterExpenses(filtered, func(expense Expense) bool {
			date, ok := parseDate(expense.Date)
			return ok && date.Equal(today)
		})
	}

	if threshold, ok := matchThreshold(aboveAmountRegex, lower); ok {
		filtered = filterExpenses(filtered, func(expense Expense) bool {
			return expense.Amount > threshold
		})
	}

	if threshold, ok := matchThreshold(belowAmountRegex, lower); ok {
		filtered = filterExpenses(filtered, func(expense Expense) bool {
			return expense.Amount < threshold
		})
	}

	if category, ok := mentionedCategory(lower); ok {
		filtered = filterExpenses(filtered, func(expense Expense) bool {
			return expense.Category == category
		})
	}

	if terms := searchTerms(lower); len(terms) > 0 {
		filtered = filterExpenses(filtered, func(expense Expense) bool {
			description := strings.ToLower(expense.Description)
			category := strings.ToLower(string(expense.Category))
			for _, term := range terms {
				if strings.Contains(description, term) || strings.Contains(category, term) {
					return true
				}
			}
			return false
		})
	}

	return filtered
}

func filterExpenses(expenses []Expense, keep func(Expense) bool) []Expense {
	out := expenses[:0]
	for _, expense := range expenses {
		if keep(expense) {
			out = append(out, expense)
		}
	}
	return out
}

func onOrAfter(since time.Time) func(Expense) bool {
	return func(expense Expense) bool {
		date, ok := parseDate(expense.Date)
		return ok && !date.Before(since)
	}
}

// subtractMonthClamped отнимает месяц, прижимая день к длине предыдущего месяца (31 марта -> 28/29 февраля).
func subtractMonthClamped(day time.Time) time.Time {
	firstOfPrevious := time.Date(day.Year(), day.Month()-1, 1, 0, 0, 0, 0, day.Location())
	lastDay := firstOfPrevious.AddDate(0, 1, -1).Day()

	target := day.Day()
	if target > lastDay {
		target = lastDay
	}

	return time.Date(firstOfPrevious.Year(), firstOfPrevious.Month(), target, 0, 0, 0, 0, day.Location())
}

func matchThreshold(pattern *regexp.Regexp, query string) (float64, bool) {
	match := pattern.FindStringSubmatch(query)
	if len(match) < 2 {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// mentionedCategory ищет названную категорию; other не учитывается как слово запроса.
func mentionedCategory(query string) (models.Category, bool) {
	for _, category := range models.Categories {
		if category == models.CategoryOther {
			continue
		}
		if strings.Contains(query, string(category)) {
			return category, true
		}
	}
	return "", false
}

func searchTerms(query string) []string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, stop := searchStopWords[field]; stop {
			continue
		}
		terms = append(terms, field)
	}
	return terms
}
