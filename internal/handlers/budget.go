package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

type BudgetHandler struct {
	Budgets BudgetStore
}

// NewBudgetHandler создает обработчик бюджета.
func NewBudgetHandler(budgets BudgetStore) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets}
}

type BudgetCategoryRequest struct {
	Allocated float64 `json:"allocated" validate:"gte=0"`
	Spent     float64 `json:"spent" validate:"gte=0"`
}

type BudgetRequest struct {
	TotalBudget      float64                          `json:"totalBudget" validate:"gte=0"`
	BudgetCategories map[string]BudgetCategoryRequest `json:"budgetCategories" validate:"omitempty,max=50,dive,keys,required,max=50,endkeys"`
}

type UpdateBudgetCategoryRequest struct {
	Category  string   `json:"category" validate:"required,max=50"`
	Allocated *float64 `json:"allocated" validate:"omitempty,gte=0"`
	Spent     *float64 `json:"spent" validate:"omitempty,gte=0"`
}

type BudgetResponse struct {
	ID               uuid.UUID                        `json:"id"`
	TotalBudget      float64                          `json:"totalBudget"`
	TotalSpent       float64                          `json:"totalSpent"`
	BudgetCategories map[string]models.BudgetCategory `json:"budgetCategories"`
	CreatedAt        string                           `json:"createdAt"`
	UpdatedAt        string                           `json:"updatedAt"`
}

// Get возвращает бюджет пользователя.
func (h *BudgetHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	budget, err := h.Budgets.Get(c.Request().Context(), userID)
	if err != nil {
		return h.budgetError(c, err)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// Create создает бюджет, если его еще нет.
func (h *BudgetHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	budget, err := h.Budgets.Create(c.Request().Context(), userID, req.TotalBudget, toBudgetCategories(req.BudgetCategories))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "budget already exists")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// Replace заменяет общий лимит и все категории.
func (h *BudgetHandler) Replace(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	budget, err := h.Budgets.Replace(c.Request().Context(), userID, req.TotalBudget, toBudgetCategories(req.BudgetCategories))
	if err != nil {
		return h.budgetError(c, err)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateCategory меняет лимит или потраченное одной категории.
// Незаданные поля берутся из текущего значения.
func (h *BudgetHandler) UpdateCategory(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateBudgetCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	name := normalizeBudgetCategory(req.Category)
	if name == "" {
		return badRequest(c, errValidation.Error())
	}

	ctx := c.Request().Context()
	budget, err := h.Budgets.Get(ctx, userID)
	if err != nil {
		return h.budgetError(c, err)
	}

	category := budget.Categories[name]
	if req.Allocated != nil {
		category.Allocated = *req.Allocated
	}
	if req.Spent != nil {
		category.Spent = *req.Spent
	}

	budget, err = h.Budgets.UpsertCategory(ctx, userID, name, category)
	if err != nil {
		return h.budgetError(c, err)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteCategory удаляет категорию бюджета.
func (h *BudgetHandler) DeleteCategory(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	name := normalizeBudgetCategory(c.Param("category"))
	if name == "" {
		return badRequest(c, "invalid category")
	}

	budget, err := h.Budgets.DeleteCategory(c.Request().Context(), userID, name)
	if err != nil {
		return h.budgetError(c, err)
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// Delete удаляет бюджет целиком.
func (h *BudgetHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.Budgets.Delete(c.Request().Context(), userID); err != nil {
		return h.budgetError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Budget deleted"})
}

func (h *BudgetHandler) budgetError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, "no budget found")
	}
	return serverError(c)
}

func normalizeBudgetCategory(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func toBudgetCategories(values map[string]BudgetCategoryRequest) map[string]models.BudgetCategory {
	categories := make(map[string]models.BudgetCategory, len(values))
	for name, value := range values {
		normalized := normalizeBudgetCategory(name)
		if normalized == "" {
			continue
		}
		categories[normalized] = models.BudgetCategory{Allocated: value.Allocated, Spent: value.Spent}
	}
	return categories
}

func toBudgetResponse(budget models.Budget) BudgetResponse {
	categories := budget.Categories
	if categories == nil {
		categories = map[string]models.BudgetCategory{}
	}

	var spent float64
	for _, category := range categories {
		spent += category.Spent
	}

	return BudgetResponse{
		ID:               budget.ID,
		TotalBudget:      budget.TotalBudget,
		TotalSpent:       spent,
		BudgetCategories: categories,
		CreatedAt:        budget.CreatedAt.Format(timeLayout),
		UpdatedAt:        budget.UpdatedAt.Format(timeLayout),
	}
}

// toAIBudget переводит сохраненный бюджет в формат помощника.
func toAIBudget(budget models.Budget) ai.Budget {
	categories := make(map[string]ai.BudgetCategory, len(budget.Categories))
	for name, category := range budget.Categories {
		categories[name] = ai.BudgetCategory{Allocated: category.Allocated, Spent: category.Spent}
	}
	return ai.Budget{TotalBudget: budget.TotalBudget, BudgetCategories: categories}
}
