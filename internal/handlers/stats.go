package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/repository"
)

const (
	defaultStatsMonths = 6
	maxStatsMonths     = 24
)

type StatsHandler struct {
	Stats    StatsStore
	Expenses ExpenseStore
	Budgets  BudgetStore
	Now      func() time.Time
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(stats StatsStore, expenses ExpenseStore, budgets BudgetStore) *StatsHandler {
	return &StatsHandler{
		Stats:    stats,
		Expenses: expenses,
		Budgets:  budgets,
		Now:      time.Now,
	}
}

type CategorySpendingItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  int     `json:"percent"`
}

type OverviewResponse struct {
	Month           string                 `json:"month"`
	TotalSpent      float64                `json:"totalSpent"`
	ExpenseCount    int                    `json:"expenseCount"`
	TotalBudget     float64                `json:"totalBudget"`
	Remaining       float64                `json:"remaining"`
	DailyAverage    float64                `json:"dailyAverage"`
	TopCategory     *CategorySpendingItem  `json:"topCategory,omitempty"`
	ByCategory      []CategorySpendingItem `json:"byCategory"`
	BudgetAvailable bool                   `json:"budgetAvailable"`
}

type MonthlyTotalItem struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type MonthlyTotalsResponse struct {
	Months []MonthlyTotalItem `json:"months"`
}

// Overview возвращает сводку расходов текущего месяца.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	now := h.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	stored, err := h.Expenses.List(ctx, userID, repository.ExpenseFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		return serverError(c)
	}

	spending := ai.MonthlySpending(toAIExpenses(stored), now.Year(), now.Month())
	response := OverviewResponse{
		Month:        monthStart.Format("2006-01"),
		TotalSpent:   spending.Total,
		ExpenseCount: len(stored),
		DailyAverage: spending.Total / float64(now.Day()),
		ByCategory:   make([]CategorySpendingItem, 0),
	}

	for _, item := range spending.Ranked() {
		response.ByCategory = append(response.ByCategory, CategorySpendingItem{
			Category: item.Category.String(),
			Amount:   item.Amount,
			Percent:  percentOf(item.Amount, spending.Total),
		})
	}
	if top, ok := spending.Top(); ok {
		response.TopCategory = &CategorySpendingItem{
			Category: top.Category.String(),
			Amount:   top.Amount,
			Percent:  percentOf(top.Amount, spending.Total),
		}
	}

	budget, err := h.Budgets.Get(ctx, userID)
	switch {
	case err == nil:
		response.BudgetAvailable = true
		response.TotalBudget = budget.TotalBudget
		response.Remaining = budget.TotalBudget - spending.Total
	case !errors.Is(err, repository.ErrNotFound):
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Monthly возвращает суммы расходов по месяцам.
func (h *StatsHandler) Monthly(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	months, err := queryInt(c, "months", defaultStatsMonths, 1, maxStatsMonths)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.Stats.MonthlyTotals(c.Request().Context(), userID, months)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid months")
		}
		return serverError(c)
	}

	response := make([]MonthlyTotalItem, 0, len(items))
	for _, item := range items {
		response = append(response, MonthlyTotalItem{
			Month: item.Month.Format("2006-01"),
			Total: item.Total,
			Count: item.Count,
		})
	}

	return c.JSON(http.StatusOK, MonthlyTotalsResponse{Months: response})
}

// ByCategory возвращает суммы по категориям за период from..to включительно.
func (h *StatsHandler) ByCategory(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	now := h.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if filter.From != nil {
		from = *filter.From
	}
	if filter.To != nil {
		to = *filter.To
	}
	if to.Before(from) {
		return badRequest(c, "to must not be before from")
	}

	totals, err := h.Stats.CategoryTotals(c.Request().Context(), userID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return serverError(c)
	}

	var sum float64
	for _, total := range totals {
		sum += total.Total
	}

	response := make([]CategorySpendingItem, 0, len(totals))
	for _, total := range totals {
		response = append(response, CategorySpendingItem{
			Category: total.Category.String(),
			Amount:   total.Total,
			Percent:  percentOf(total.Total, sum),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"from":       from.Format(dateLayout),
		"to":         to.Format(dateLayout),
		"categories": response,
	})
}

func percentOf(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(part/whole*100 + 0.5)
}
