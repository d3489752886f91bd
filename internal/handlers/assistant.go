package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/ai"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/repository"
)

const (
	assistantCategorize = "categorize"
	assistantInsights   = "insights"
	assistantChat       = "chat"
	assistantVoice      = "voice"
	assistantSearch     = "search"
	assistantPredict    = "predict"
)

// Assistant описывает правила помощника по расходам.
type Assistant interface {
	Categorize(description string) ai.CategoryResult
	GenerateInsights(expenses []ai.Expense, budget ai.Budget) []string
	Respond(message string, chat ai.ChatContext) string
	ProcessVoiceInput(transcript string) ai.VoiceResult
	Search(query string, expenses []ai.Expense) []ai.Expense
	Predict(expenses []ai.Expense, timeframe string) ai.Forecast
}

type AssistantHandler struct {
	Service  Assistant
	Expenses ExpenseStore
	Budgets  BudgetStore
	Log      AIRequestLogger
}

// NewAssistantHandler создает обработчик эндпоинтов помощника.
func NewAssistantHandler(service Assistant, expenses ExpenseStore, budgets BudgetStore, log AIRequestLogger) *AssistantHandler {
	return &AssistantHandler{
		Service:  service,
		Expenses: expenses,
		Budgets:  budgets,
		Log:      log,
	}
}

type AssistantExpense struct {
	ID          ai.ExpenseID `json:"id,omitempty"`
	Amount      float64      `json:"amount" validate:"gte=0"`
	Description string       `json:"description" validate:"max=500"`
	Category    string       `json:"category" validate:"omitempty,category"`
	Date        string       `json:"date" validate:"omitempty,isodate"`
	AIGenerated bool         `json:"aiGenerated"`
}

type AssistantBudgetCategory struct {
	Allocated float64 `json:"allocated" validate:"gte=0"`
	Spent     float64 `json:"spent" validate:"gte=0"`
}

type AssistantBudget struct {
	TotalBudget      float64                            `json:"totalBudget" validate:"gte=0"`
	BudgetCategories map[string]AssistantBudgetCategory `json:"budgetCategories" validate:"omitempty,dive"`
}

type CategorizeRequest struct {
	Description string `json:"description" validate:"max=500"`
}

type InsightsRequest struct {
	Expenses *[]AssistantExpense `json:"expenses" validate:"omitempty,max=5000,dive"`
	Budget   *AssistantBudget    `json:"budget"`
}

type ChatContextRequest struct {
	Expenses []AssistantExpense `json:"expenses" validate:"omitempty,max=5000,dive"`
	Budget   AssistantBudget    `json:"budget"`
}

type ChatRequest struct {
	Message string              `json:"message" validate:"required,max=1000"`
	Context *ChatContextRequest `json:"context"`
}

type VoiceRequest struct {
	Transcript string `json:"transcript" validate:"max=1000"`
}

type SearchRequest struct {
	Query    string              `json:"query" validate:"max=500"`
	Expenses *[]AssistantExpense `json:"expenses" validate:"omitempty,max=5000,dive"`
}

type PredictRequest struct {
	Expenses  *[]AssistantExpense `json:"expenses" validate:"omitempty,max=5000,dive"`
	Timeframe string              `json:"timeframe" validate:"max=20"`
}

type InsightsResponse struct {
	Insights []string `json:"insights"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SearchResponse struct {
	Results []ai.Expense `json:"results"`
}

type PredictResponse struct {
	Predictions ai.Forecast `json:"predictions"`
}

// Categorize подбирает категорию по описанию.
func (h *AssistantHandler) Categorize(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategorizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result := h.Service.Categorize(req.Description)
	h.logRequest(c.Request().Context(), userID, assistantCategorize, req, result, nil)
	return c.JSON(http.StatusOK, result)
}

// Insights формирует наблюдения по расходам текущего месяца.
func (h *AssistantHandler) Insights(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req InsightsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	expenses, err := h.resolveExpenses(ctx, userID, req.Expenses)
	if err != nil {
		h.logRequest(ctx, userID, assistantInsights, req, nil, err)
		return serverError(c)
	}

	budget, err := h.resolveBudget(ctx, userID, req.Budget)
	if err != nil {
		h.logRequest(ctx, userID, assistantInsights, req, nil, err)
		return serverError(c)
	}

	response := InsightsResponse{Insights: h.Service.GenerateInsights(expenses, budget)}
	h.logRequest(ctx, userID, assistantInsights, req, response, nil)
	return c.JSON(http.StatusOK, response)
}

// Chat отвечает на сообщение пользователя.
func (h *AssistantHandler) Chat(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	var chat ai.ChatContext
	if req.Context != nil {
		chat = ai.ChatContext{
			Expenses: toCoreExpenses(req.Context.Expenses),
			Budget:   toCoreBudget(req.Context.Budget),
		}
	} else {
		var err error
		if chat.Expenses, err = h.resolveExpenses(ctx, userID, nil); err == nil {
			chat.Budget, err = h.resolveBudget(ctx, userID, nil)
		}
		if err != nil {
			h.logRequest(ctx, userID, assistantChat, req, nil, err)
			return serverError(c)
		}
	}

	response := ChatResponse{Response: h.Service.Respond(req.Message, chat)}
	h.logRequest(ctx, userID, assistantChat, req, response, nil)
	return c.JSON(http.StatusOK, response)
}

// Voice разбирает голосовую фразу в черновик расхода.
func (h *AssistantHandler) Voice(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req VoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	result := h.Service.ProcessVoiceInput(req.Transcript)
	h.logRequest(c.Request().Context(), userID, assistantVoice, req, result, nil)
	return c.JSON(http.StatusOK, result)
}

// Search фильтрует расходы по запросу на естественном языке.
func (h *AssistantHandler) Search(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	expenses, err := h.resolveExpenses(ctx, userID, req.Expenses)
	if err != nil {
		h.logRequest(ctx, userID, assistantSearch, req, nil, err)
		return serverError(c)
	}

	response := SearchResponse{Results: h.Service.Search(req.Query, expenses)}
	h.logRequest(ctx, userID, assistantSearch, req, response, nil)
	return c.JSON(http.StatusOK, response)
}

// Predict прогнозирует расходы следующего месяца.
func (h *AssistantHandler) Predict(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req PredictRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	expenses, err := h.resolveExpenses(ctx, userID, req.Expenses)
	if err != nil {
		h.logRequest(ctx, userID, assistantPredict, req, nil, err)
		return serverError(c)
	}

	response := PredictResponse{Predictions: h.Service.Predict(expenses, req.Timeframe)}
	h.logRequest(ctx, userID, assistantPredict, req, response, nil)
	return c.JSON(http.StatusOK, response)
}

// resolveExpenses берет расходы из запроса, а если их нет, загружает сохраненные.
func (h *AssistantHandler) resolveExpenses(ctx context.Context, userID uuid.UUID, provided *[]AssistantExpense) ([]ai.Expense, error) {
	if provided != nil {
		return toCoreExpenses(*provided), nil
	}

	stored, err := h.Expenses.List(ctx, userID, repository.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	return toAIExpenses(stored), nil
}

func (h *AssistantHandler) resolveBudget(ctx context.Context, userID uuid.UUID, provided *AssistantBudget) (ai.Budget, error) {
	if provided != nil {
		return toCoreBudget(*provided), nil
	}

	stored, err := h.Budgets.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ai.Budget{}, nil
		}
		return ai.Budget{}, err
	}
	return toAIBudget(stored), nil
}

func (h *AssistantHandler) logRequest(ctx context.Context, userID uuid.UUID, requestType string, request, response interface{}, err error) {
	if h.Log == nil {
		return
	}

	entry := repository.AIRequestLog{
		UserID:      userID,
		RequestType: requestType,
		Success:     err == nil,
	}

	if payload, marshalErr := json.Marshal(request); marshalErr == nil {
		entry.RequestPayload = payload
	}
	if response != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			entry.ResponsePayload = payload
		}
	}
	if err != nil {
		message := err.Error()
		entry.ErrorMessage = &message
	}

	if logErr := h.Log.LogRequest(ctx, entry); logErr != nil {
		slog.Warn("assistant request log failed",
			slog.String("user_id", userID.String()),
			slog.String("request_type", requestType),
			slog.String("error", logErr.Error()),
		)
	}
}

func toCoreExpenses(values []AssistantExpense) []ai.Expense {
	expenses := make([]ai.Expense, 0, len(values))
	for _, value := range values {
		category, ok := models.ParseCategory(value.Category)
		if !ok {
			category = models.CategoryOther
		}
		expenses = append(expenses, ai.Expense{
			ID:          value.ID,
			Amount:      value.Amount,
			Description: value.Description,
			Category:    category,
			Date:        value.Date,
			AIGenerated: value.AIGenerated,
		})
	}
	return expenses
}

func toCoreBudget(value AssistantBudget) ai.Budget {
	categories := make(map[string]ai.BudgetCategory, len(value.BudgetCategories))
	for name, category := range value.BudgetCategories {
		categories[name] = ai.BudgetCategory{Allocated: category.Allocated, Spent: category.Spent}
	}
	return ai.Budget{TotalBudget: value.TotalBudget, BudgetCategories: categories}
}
