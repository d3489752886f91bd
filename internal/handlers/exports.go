package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

const (
	exportTypeExpenses = "expenses"
	exportTypeBudget   = "budget"
)

type ExportHandler struct {
	Expenses ExpenseStore
	Budgets  BudgetStore
	Now      func() time.Time
}

// NewExportHandler создает обработчик выгрузок.
func NewExportHandler(expenses ExpenseStore, budgets BudgetStore) *ExportHandler {
	return &ExportHandler{Expenses: expenses, Budgets: budgets, Now: time.Now}
}

type ExpenseExport struct {
	ExportedAt string            `json:"exportedAt"`
	Count      int               `json:"count"`
	Total      float64           `json:"total"`
	Expenses   []ExpenseResponse `json:"expenses"`
	Budget     *BudgetResponse   `json:"budget,omitempty"`
}

// ExportJSON выгружает расходы и бюджет в JSON-файл.
func (h *ExportHandler) ExportJSON(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	expenses, err := h.Expenses.List(ctx, userID, filter)
	if err != nil {
		return serverError(c)
	}

	export := ExpenseExport{
		ExportedAt: h.Now().UTC().Format(timeLayout),
		Count:      len(expenses),
		Total:      sumExpenses(expenses),
		Expenses:   toExpenseResponses(expenses),
	}

	budget, err := h.Budgets.Get(ctx, userID)
	switch {
	case err == nil:
		response := toBudgetResponse(budget)
		export.Budget = &response
	case !errors.Is(err, repository.ErrNotFound):
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+h.filename("json")+"\"")
	return c.JSON(http.StatusOK, export)
}

// ExportCSV выгружает расходы (type=expenses) или категории бюджета (type=budget) в CSV.
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeExpenses
	}

	ctx := c.Request().Context()
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeExpenses:
		filter, err := parseExpenseFilter(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		expenses, err := h.Expenses.List(ctx, userID, filter)
		if err != nil {
			return serverError(c)
		}
		if err := writeExpensesCSV(writer, expenses); err != nil {
			return serverError(c)
		}
	case exportTypeBudget:
		budget, err := h.Budgets.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(c, "no budget found")
			}
			return serverError(c)
		}
		if err := writeBudgetCSV(writer, budget); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+h.filename(exportType+".csv")+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) filename(suffix string) string {
	return "expenses-" + h.Now().UTC().Format(dateLayout) + "." + suffix
}

func writeExpensesCSV(writer *csv.Writer, expenses []models.Expense) error {
	header := []string{"id", "date", "amount", "category", "description", "ai_generated"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, expense := range expenses {
		record := []string{
			expense.ID.String(),
			expense.Date.Format(dateLayout),
			formatAmount(expense.Amount),
			expense.Category.String(),
			expense.Description,
			strconv.FormatBool(expense.AIGenerated),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeBudgetCSV(writer *csv.Writer, budget models.Budget) error {
	header := []string{"category", "allocated", "spent", "remaining"}
	if err := writer.Write(header); err != nil {
		return err
	}

	names := make([]string, 0, len(budget.Categories))
	for name := range budget.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		category := budget.Categories[name]
		record := []string{
			name,
			formatAmount(category.Allocated),
			formatAmount(category.Spent),
			formatAmount(category.Allocated - category.Spent),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Write([]string{"total", formatAmount(budget.TotalBudget), "", ""})
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func sumExpenses(expenses []models.Expense) float64 {
	var total float64
	for _, expense := range expenses {
		total += expense.Amount
	}
	return total
}
