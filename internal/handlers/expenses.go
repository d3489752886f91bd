package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/notifications"
	"example.com/finance-tracker/backend/internal/repository"
)

const (
	expenseCreated = "created"
	expenseUpdated = "updated"
	expenseDeleted = "deleted"
)

// Categorizer подбирает категорию по описанию расхода.
type Categorizer interface {
	Categorize(description string) ai.CategoryResult
}

type ExpenseHandler struct {
	Expenses    ExpenseStore
	Budgets     BudgetStore
	Categorizer Categorizer
	Notifier    Publisher
	Now         func() time.Time
}

// NewExpenseHandler создает обработчик расходов.
func NewExpenseHandler(expenses ExpenseStore, budgets BudgetStore, categorizer Categorizer, notifier Publisher) *ExpenseHandler {
	return &ExpenseHandler{
		Expenses:    expenses,
		Budgets:     budgets,
		Categorizer: categorizer,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

type CreateExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"required,max=500"`
	Category    string  `json:"category" validate:"omitempty,category"`
	Date        string  `json:"date" validate:"omitempty,isodate"`
	AIGenerated bool    `json:"aiGenerated"`
}

type UpdateExpenseRequest struct {
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Description *string  `json:"description" validate:"omitempty,min=1,max=500"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Date        *string  `json:"date" validate:"omitempty,isodate"`
	AIGenerated *bool    `json:"aiGenerated"`
}

type ExpenseResponse struct {
	ID          uuid.UUID `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	AIGenerated bool      `json:"aiGenerated"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// List возвращает расходы пользователя с фильтрами from, to и category.
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := h.Expenses.List(c.Request().Context(), userID, filter)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// Get возвращает один расход.
func (h *ExpenseHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	expense, err := h.Expenses.Get(c.Request().Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Create сохраняет расход. Без категории она подбирается автоматически,
// сумма добавляется к потраченному в категории бюджета.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return badRequest(c, errValidation.Error())
	}

	input := repository.ExpenseInput{
		Amount:      req.Amount,
		Description: description,
		AIGenerated: req.AIGenerated,
	}

	if req.Date == "" {
		input.Date = startOfDay(h.Now())
	} else {
		day, err := parseDay(req.Date)
		if err != nil {
			return badRequest(c, err.Error())
		}
		input.Date = day
	}

	if category, ok := models.ParseCategory(req.Category); ok {
		input.Category = category
	} else {
		input.Category = h.Categorizer.Categorize(description).Category
		input.AIGenerated = true
	}

	ctx := c.Request().Context()
	expense, err := h.Expenses.Create(ctx, userID, input)
	if err != nil {
		return serverError(c)
	}

	h.publishExpenseChange(userID, expenseCreated, expense)
	h.trackBudget(ctx, userID, expense)

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// Update частично обновляет расход: незаданные поля сохраняются.
func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req UpdateExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	current, err := h.Expenses.Get(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	input, err := mergeExpense(current, req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expense, err := h.Expenses.Update(ctx, userID, expenseID, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	h.publishExpenseChange(userID, expenseUpdated, expense)
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Delete удаляет расход.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	if err := h.Expenses.Delete(c.Request().Context(), userID, expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	h.publishExpenseChange(userID, expenseDeleted, models.Expense{ID: expenseID})
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *ExpenseHandler) trackBudget(ctx context.Context, userID uuid.UUID, expense models.Expense) {
	category, err := h.Budgets.AddSpent(ctx, userID, expense.Category.String(), expense.Amount)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("budget spent update failed",
				slog.String("user_id", userID.String()),
				slog.String("category", expense.Category.String()),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	alert, ok := notifications.CheckBudget(expense.Category.String(), category.Spent, category.Allocated)
	if !ok || h.Notifier == nil {
		return
	}

	slog.Info("budget alert raised",
		slog.String("user_id", userID.String()),
		slog.String("category", alert.Category),
		slog.String("level", alert.Level),
		slog.Int("percentage", alert.Percentage),
	)
	h.Notifier.Publish(userID, notifications.Event{Type: notifications.EventBudgetAlert, Data: alert})
}

func (h *ExpenseHandler) publishExpenseChange(userID uuid.UUID, action string, expense models.Expense) {
	if h.Notifier == nil {
		return
	}

	h.Notifier.Publish(userID, notifications.Event{
		Type: notifications.EventExpenseChanged,
		Data: notifications.ExpenseChange{
			Action:    action,
			ExpenseID: expense.ID.String(),
			Category:  expense.Category.String(),
		},
	})
}

func mergeExpense(current models.Expense, req UpdateExpenseRequest) (repository.ExpenseInput, error) {
	input := repository.ExpenseInput{
		Amount:      current.Amount,
		Description: current.Description,
		Category:    current.Category,
		Date:        current.Date,
		AIGenerated: current.AIGenerated,
	}

	if req.Amount != nil {
		input.Amount = *req.Amount
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return input, errValidation
		}
		input.Description = description
	}
	if req.Category != nil {
		category, ok := models.ParseCategory(*req.Category)
		if !ok {
			return input, errValidation
		}
		if category != current.Category {
			input.AIGenerated = false
		}
		input.Category = category
	}
	if req.Date != nil {
		day, err := parseDay(*req.Date)
		if err != nil {
			return input, err
		}
		input.Date = day
	}
	if req.AIGenerated != nil {
		input.AIGenerated = *req.AIGenerated
	}

	return input, nil
}

func parseExpenseFilter(c echo.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		from, err := parseDay(raw)
		if err != nil {
			return filter, errors.New("invalid from")
		}
		filter.From = &from
	}

	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		to, err := parseDay(raw)
		if err != nil {
			return filter, errors.New("invalid to")
		}
		filter.To = &to
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, errors.New("to must not be before from")
	}

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			return filter, errors.New("invalid category")
		}
		filter.Category = &category
	}

	return filter, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func toExpenseResponse(expense models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Category:    expense.Category.String(),
		Date:        expense.Date.Format(dateLayout),
		AIGenerated: expense.AIGenerated,
		CreatedAt:   expense.CreatedAt.Format(timeLayout),
		UpdatedAt:   expense.UpdatedAt.Format(timeLayout),
	}
}

func toExpenseResponses(expenses []models.Expense) []ExpenseResponse {
	response := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		response = append(response, toExpenseResponse(expense))
	}
	return response
}

// toAIExpenses переводит сохраненные расходы в формат помощника.
func toAIExpenses(expenses []models.Expense) []ai.Expense {
	result := make([]ai.Expense, 0, len(expenses))
	for _, expense := range expenses {
		result = append(result, ai.Expense{
			ID:          ai.ExpenseID(expense.ID.String()),
			Amount:      expense.Amount,
			Description: expense.Description,
			Category:    expense.Category,
			Date:        expense.Date.Format(dateLayout),
			AIGenerated: expense.AIGenerated,
		})
	}
	return result
}
