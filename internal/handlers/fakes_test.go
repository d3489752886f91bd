package handlers_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/notifications"
	"example.com/finance-tracker/backend/internal/repository"
	"example.com/finance-tracker/backend/internal/server"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]models.User)}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash, firstName, lastName string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return models.User{}, repository.ErrConflict
		}
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]models.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: make(map[uuid.UUID]models.RefreshToken)}
}

func (f *fakeTokens) Create(_ context.Context, token models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokens) GetByID(_ context.Context, id uuid.UUID) (models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[id]
	if !ok {
		return models.RefreshToken{}, repository.ErrNotFound
	}
	return token, nil
}

func (f *fakeTokens) Revoke(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[id]
	if !ok || token.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	f.tokens[id] = token
	return nil
}

func (f *fakeTokens) Rotate(ctx context.Context, oldID uuid.UUID, newToken models.RefreshToken) error {
	if err := f.Revoke(ctx, oldID); err != nil {
		return err
	}
	return f.Create(ctx, newToken)
}

type fakeExpenses struct {
	mu       sync.Mutex
	expenses []models.Expense
	created  []repository.ExpenseInput
}

func (f *fakeExpenses) List(_ context.Context, userID uuid.UUID, _ repository.ExpenseFilter) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Expense
	for _, expense := range f.expenses {
		if expense.UserID == userID {
			result = append(result, expense)
		}
	}
	return result, nil
}

func (f *fakeExpenses) Get(_ context.Context, userID, expenseID uuid.UUID) (models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, expense := range f.expenses {
		if expense.ID == expenseID && expense.UserID == userID {
			return expense, nil
		}
	}
	return models.Expense{}, repository.ErrNotFound
}

func (f *fakeExpenses) Create(_ context.Context, userID uuid.UUID, input repository.ExpenseInput) (models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, input)
	expense := models.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      input.Amount,
		Description: input.Description,
		Category:    input.Category,
		Date:        input.Date,
		AIGenerated: input.AIGenerated,
	}
	f.expenses = append(f.expenses, expense)
	return expense, nil
}

func (f *fakeExpenses) Update(_ context.Context, userID, expenseID uuid.UUID, input repository.ExpenseInput) (models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, expense := range f.expenses {
		if expense.ID == expenseID && expense.UserID == userID {
			expense.Amount = input.Amount
			expense.Description = input.Description
			expense.Category = input.Category
			expense.Date = input.Date
			expense.AIGenerated = input.AIGenerated
			f.expenses[i] = expense
			return expense, nil
		}
	}
	return models.Expense{}, repository.ErrNotFound
}

func (f *fakeExpenses) Delete(_ context.Context, userID, expenseID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, expense := range f.expenses {
		if expense.ID == expenseID && expense.UserID == userID {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeBudgets struct {
	mu      sync.Mutex
	budgets map[uuid.UUID]models.Budget
}

func newFakeBudgets() *fakeBudgets {
	return &fakeBudgets{budgets: make(map[uuid.UUID]models.Budget)}
}

func (f *fakeBudgets) Get(_ context.Context, userID uuid.UUID) (models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget, ok := f.budgets[userID]
	if !ok {
		return models.Budget{}, repository.ErrNotFound
	}
	return budget, nil
}

func (f *fakeBudgets) Create(_ context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.budgets[userID]; ok {
		return models.Budget{}, repository.ErrConflict
	}
	if categories == nil {
		categories = map[string]models.BudgetCategory{}
	}
	budget := models.Budget{ID: uuid.New(), UserID: userID, TotalBudget: totalBudget, Categories: categories}
	f.budgets[userID] = budget
	return budget, nil
}

func (f *fakeBudgets) Replace(_ context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget, ok := f.budgets[userID]
	if !ok {
		return models.Budget{}, repository.ErrNotFound
	}
	if categories == nil {
		categories = map[string]models.BudgetCategory{}
	}
	budget.TotalBudget = totalBudget
	budget.Categories = categories
	f.budgets[userID] = budget
	return budget, nil
}

func (f *fakeBudgets) UpsertCategory(_ context.Context, userID uuid.UUID, name string, category models.BudgetCategory) (models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget, ok := f.budgets[userID]
	if !ok {
		return models.Budget{}, repository.ErrNotFound
	}
	budget.Categories[name] = category
	return budget, nil
}

func (f *fakeBudgets) DeleteCategory(_ context.Context, userID uuid.UUID, name string) (models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget, ok := f.budgets[userID]
	if !ok {
		return models.Budget{}, repository.ErrNotFound
	}
	delete(budget.Categories, name)
	return budget, nil
}

func (f *fakeBudgets) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.budgets[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.budgets, userID)
	return nil
}

func (f *fakeBudgets) AddSpent(_ context.Context, userID uuid.UUID, name string, amount float64) (models.BudgetCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget, ok := f.budgets[userID]
	if !ok {
		return models.BudgetCategory{}, repository.ErrNotFound
	}
	category, ok := budget.Categories[name]
	if !ok {
		return models.BudgetCategory{}, repository.ErrNotFound
	}
	category.Spent += amount
	budget.Categories[name] = category
	return category, nil
}

type fakeRequestLog struct {
	mu      sync.Mutex
	entries []repository.AIRequestLog
}

func (f *fakeRequestLog) LogRequest(_ context.Context, entry repository.AIRequestLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, event notifications.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]string, 0, len(p.events))
	for _, event := range p.events {
		result = append(result, event.Type)
	}
	return result
}

// newTestEcho создает echo с тем же валидатором, что и сервер.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = server.NewValidator()
	return e
}

// newJSONContext готовит запрос с JSON-телом и, если задан, пользователем в контексте.
func newJSONContext(e *echo.Echo, method, target, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set(auth.ContextUserIDKey, userID)
	}
	return c, rec
}
