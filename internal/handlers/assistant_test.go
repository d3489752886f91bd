package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/handlers"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

type recordingAssistant struct {
	expenses []ai.Expense
	budget   ai.Budget
	chat     ai.ChatContext
}

func (a *recordingAssistant) Categorize(string) ai.CategoryResult {
	return ai.CategoryResult{Category: models.CategoryShopping, Confidence: 0.33}
}

func (a *recordingAssistant) GenerateInsights(expenses []ai.Expense, budget ai.Budget) []string {
	a.expenses = expenses
	a.budget = budget
	return []string{"insight"}
}

func (a *recordingAssistant) Respond(_ string, chat ai.ChatContext) string {
	a.chat = chat
	return "reply"
}

func (a *recordingAssistant) ProcessVoiceInput(string) ai.VoiceResult {
	return ai.VoiceResult{Amount: 5, Description: "Voice expense", Category: models.CategoryOther, Success: true}
}

func (a *recordingAssistant) Search(_ string, expenses []ai.Expense) []ai.Expense {
	a.expenses = expenses
	return expenses
}

func (a *recordingAssistant) Predict(expenses []ai.Expense, _ string) ai.Forecast {
	a.expenses = expenses
	return ai.Forecast{Total: 42, ByCategory: map[string]float64{"food": 42}, Confidence: 0.3}
}

type failingExpenses struct {
	fakeExpenses
}

func (f *failingExpenses) List(context.Context, uuid.UUID, repository.ExpenseFilter) ([]models.Expense, error) {
	return nil, errors.New("connection reset")
}

// TestInsightsFromStoredData проверяет загрузку сохраненных расходов и бюджета.
func TestInsightsFromStoredData(t *testing.T) {
	e := newTestEcho()
	expenses := &fakeExpenses{}
	budgets := newFakeBudgets()
	log := &fakeRequestLog{}
	assistant := &recordingAssistant{}
	handler := handlers.NewAssistantHandler(assistant, expenses, budgets, log)
	userID := uuid.New()

	_, err := expenses.Create(context.Background(), userID, repository.ExpenseInput{
		Amount:      18.5,
		Description: "Pizza",
		Category:    models.CategoryFood,
		Date:        time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = budgets.Create(context.Background(), userID, 900, map[string]models.BudgetCategory{"food": {Allocated: 300}})
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/insights", `{}`, userID)
	require.NoError(t, handler.Insights(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"insights": ["insight"]}`, rec.Body.String())

	require.Len(t, assistant.expenses, 1)
	assert.Equal(t, "2024-04-02", assistant.expenses[0].Date)
	assert.Equal(t, models.CategoryFood, assistant.expenses[0].Category)
	assert.InDelta(t, 900.0, assistant.budget.TotalBudget, 1e-9)
	assert.Equal(t, ai.BudgetCategory{Allocated: 300}, assistant.budget.BudgetCategories["food"])

	require.Len(t, log.entries, 1)
	assert.Equal(t, "insights", log.entries[0].RequestType)
	assert.True(t, log.entries[0].Success)
	assert.Equal(t, userID, log.entries[0].UserID)
}

// TestInsightsWithoutBudget проверяет пустой бюджет, если он не создан.
func TestInsightsWithoutBudget(t *testing.T) {
	e := newTestEcho()
	assistant := &recordingAssistant{}
	handler := handlers.NewAssistantHandler(assistant, &fakeExpenses{}, newFakeBudgets(), &fakeRequestLog{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/insights", `{"expenses": []}`, uuid.New())
	require.NoError(t, handler.Insights(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, assistant.expenses)
	assert.Equal(t, ai.Budget{}, assistant.budget)
}

// TestSearchProvidedExpenses проверяет, что переданные расходы важнее сохраненных.
func TestSearchProvidedExpenses(t *testing.T) {
	e := newTestEcho()
	assistant := &recordingAssistant{}
	handler := handlers.NewAssistantHandler(assistant, &failingExpenses{}, newFakeBudgets(), &fakeRequestLog{})
	body := `{"query": "coffee", "expenses": [{"id": 7, "amount": 4.5, "description": "Coffee", "category": "food", "date": "2024-01-14"}, {"id": "x", "amount": 3, "description": "Tip"}]}`

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/search", body, uuid.New())
	require.NoError(t, handler.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, assistant.expenses, 2)
	assert.Equal(t, ai.ExpenseID("7"), assistant.expenses[0].ID)
	assert.Equal(t, models.CategoryOther, assistant.expenses[1].Category)

	var response handlers.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Results, 2)
}

// TestPredictStoreFailure проверяет ответ и запись в журнал при ошибке хранилища.
func TestPredictStoreFailure(t *testing.T) {
	e := newTestEcho()
	log := &fakeRequestLog{}
	handler := handlers.NewAssistantHandler(&recordingAssistant{}, &failingExpenses{}, newFakeBudgets(), log)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/predict", `{"timeframe": "month"}`, uuid.New())
	require.NoError(t, handler.Predict(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Len(t, log.entries, 1)
	assert.False(t, log.entries[0].Success)
	require.NotNil(t, log.entries[0].ErrorMessage)
	assert.Equal(t, "connection reset", *log.entries[0].ErrorMessage)
	assert.Nil(t, log.entries[0].ResponsePayload)
}

// TestChatWithContext проверяет передачу контекста из запроса.
func TestChatWithContext(t *testing.T) {
	e := newTestEcho()
	assistant := &recordingAssistant{}
	handler := handlers.NewAssistantHandler(assistant, &failingExpenses{}, newFakeBudgets(), &fakeRequestLog{})
	body := `{"message": "how much budget left", "context": {"expenses": [{"amount": 10, "category": "food"}], "budget": {"totalBudget": 50}}}`

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/chat", body, uuid.New())
	require.NoError(t, handler.Chat(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response": "reply"}`, rec.Body.String())
	assert.Len(t, assistant.chat.Expenses, 1)
	assert.InDelta(t, 50.0, assistant.chat.Budget.TotalBudget, 1e-9)
}

// TestChatRequiresMessage проверяет валидацию сообщения.
func TestChatRequiresMessage(t *testing.T) {
	e := newTestEcho()
	log := &fakeRequestLog{}
	handler := handlers.NewAssistantHandler(&recordingAssistant{}, &fakeExpenses{}, newFakeBudgets(), log)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/chat", `{"message": ""}`, uuid.New())
	require.NoError(t, handler.Chat(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, log.entries)
}

// TestCategorizeAndVoice проверяет простые эндпоинты и их запись в журнал.
func TestCategorizeAndVoice(t *testing.T) {
	e := newTestEcho()
	log := &fakeRequestLog{}
	handler := handlers.NewAssistantHandler(&recordingAssistant{}, &fakeExpenses{}, newFakeBudgets(), log)
	userID := uuid.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/ai/categorize", `{"description": "new shoes"}`, userID)
	require.NoError(t, handler.Categorize(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"category": "shopping", "confidence": 0.33}`, rec.Body.String())

	c, rec = newJSONContext(e, http.MethodPost, "/api/v1/ai/voice", `{"transcript": "$5"}`, userID)
	require.NoError(t, handler.Voice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, log.entries, 2)
	assert.Equal(t, "categorize", log.entries[0].RequestType)
	assert.JSONEq(t, `{"description": "new shoes"}`, string(log.entries[0].RequestPayload))
	assert.Equal(t, "voice", log.entries[1].RequestType)
}
