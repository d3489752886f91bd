package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-tracker/backend/internal/handlers"
	"example.com/finance-tracker/backend/internal/models"
)

// TestCreateBudget проверяет создание бюджета и конфликт при повторе.
func TestCreateBudget(t *testing.T) {
	e := newTestEcho()
	handler := handlers.NewBudgetHandler(newFakeBudgets())
	userID := uuid.New()
	body := `{"totalBudget": 5000, "budgetCategories": {" Food ": {"allocated": 3000, "spent": 120}, "rent": {"allocated": 1500}}}`

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/budget", body, userID)
	require.NoError(t, handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response handlers.BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.InDelta(t, 5000.0, response.TotalBudget, 1e-9)
	assert.InDelta(t, 120.0, response.TotalSpent, 1e-9)
	assert.Equal(t, map[string]models.BudgetCategory{
		"food": {Allocated: 3000, Spent: 120},
		"rent": {Allocated: 1500},
	}, response.BudgetCategories)

	c, rec = newJSONContext(e, http.MethodPost, "/api/v1/budget", body, userID)
	require.NoError(t, handler.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestCreateBudgetValidation проверяет отрицательные суммы.
func TestCreateBudgetValidation(t *testing.T) {
	e := newTestEcho()
	handler := handlers.NewBudgetHandler(newFakeBudgets())

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/budget", `{"totalBudget": -1}`, uuid.New())
	require.NoError(t, handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/api/v1/budget", `{"totalBudget": 10, "budgetCategories": {"food": {"allocated": -5}}}`, uuid.New())
	require.NoError(t, handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestBudgetNotFound проверяет 404 без бюджета.
func TestBudgetNotFound(t *testing.T) {
	e := newTestEcho()
	handler := handlers.NewBudgetHandler(newFakeBudgets())

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/budget", "", uuid.New())
	require.NoError(t, handler.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newJSONContext(e, http.MethodPut, "/api/v1/budget/category", `{"category": "food", "allocated": 10}`, uuid.New())
	require.NoError(t, handler.UpdateCategory(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newJSONContext(e, http.MethodDelete, "/api/v1/budget", "", uuid.New())
	require.NoError(t, handler.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestUpdateBudgetCategory проверяет слияние частичного обновления категории.
func TestUpdateBudgetCategory(t *testing.T) {
	e := newTestEcho()
	budgets := newFakeBudgets()
	handler := handlers.NewBudgetHandler(budgets)
	userID := uuid.New()

	_, err := budgets.Create(context.Background(), userID, 1000, map[string]models.BudgetCategory{
		"food": {Allocated: 300, Spent: 80},
	})
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/budget/category", `{"category": "FOOD", "allocated": 400}`, userID)
	require.NoError(t, handler.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BudgetCategory{Allocated: 400, Spent: 80}, budgets.budgets[userID].Categories["food"])

	c, rec = newJSONContext(e, http.MethodPut, "/api/v1/budget/category", `{"category": "gym", "spent": 15}`, userID)
	require.NoError(t, handler.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BudgetCategory{Spent: 15}, budgets.budgets[userID].Categories["gym"])
}

// TestDeleteBudgetCategory проверяет удаление категории по параметру пути.
func TestDeleteBudgetCategory(t *testing.T) {
	e := newTestEcho()
	budgets := newFakeBudgets()
	handler := handlers.NewBudgetHandler(budgets)
	userID := uuid.New()

	_, err := budgets.Create(context.Background(), userID, 1000, map[string]models.BudgetCategory{
		"food":     {Allocated: 300},
		"shopping": {Allocated: 200},
	})
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/budget/category/Shopping", "", userID)
	c.SetParamNames("category")
	c.SetParamValues("Shopping")
	require.NoError(t, handler.DeleteCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response handlers.BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, map[string]models.BudgetCategory{"food": {Allocated: 300}}, response.BudgetCategories)
}

// TestDeleteBudget проверяет ответ об удалении бюджета.
func TestDeleteBudget(t *testing.T) {
	e := newTestEcho()
	budgets := newFakeBudgets()
	handler := handlers.NewBudgetHandler(budgets)
	userID := uuid.New()

	_, err := budgets.Create(context.Background(), userID, 100, nil)
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/budget", "", userID)
	require.NoError(t, handler.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Budget deleted"}`, rec.Body.String())
	assert.Empty(t, budgets.budgets)
}
