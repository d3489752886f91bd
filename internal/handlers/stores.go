package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/finance-tracker/backend/internal/models"
	"example.com/finance-tracker/backend/internal/notifications"
	"example.com/finance-tracker/backend/internal/repository"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token models.RefreshToken) error
	GetByID(ctx context.Context, id uuid.UUID) (models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	Rotate(ctx context.Context, oldID uuid.UUID, newToken models.RefreshToken) error
}

type ExpenseStore interface {
	List(ctx context.Context, userID uuid.UUID, filter repository.ExpenseFilter) ([]models.Expense, error)
	Get(ctx context.Context, userID, expenseID uuid.UUID) (models.Expense, error)
	Create(ctx context.Context, userID uuid.UUID, input repository.ExpenseInput) (models.Expense, error)
	Update(ctx context.Context, userID, expenseID uuid.UUID, input repository.ExpenseInput) (models.Expense, error)
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
}

type BudgetStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Budget, error)
	Create(ctx context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error)
	Replace(ctx context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error)
	UpsertCategory(ctx context.Context, userID uuid.UUID, name string, category models.BudgetCategory) (models.Budget, error)
	DeleteCategory(ctx context.Context, userID uuid.UUID, name string) (models.Budget, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	AddSpent(ctx context.Context, userID uuid.UUID, name string, amount float64) (models.BudgetCategory, error)
}

type StatsStore interface {
	MonthlyTotals(ctx context.Context, userID uuid.UUID, months int) ([]repository.MonthlyTotal, error)
	CategoryTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]repository.CategoryTotal, error)
}

type AIRequestLogger interface {
	LogRequest(ctx context.Context, log repository.AIRequestLog) error
}

type AdminStore interface {
	ListUsers(ctx context.Context, limit, offset int) ([]repository.AdminUser, error)
	CountUsers(ctx context.Context) (int, error)
	ListAIRequests(ctx context.Context, filter repository.AIRequestFilter, limit, offset int, includePayloads bool) ([]models.AIRequest, error)
	CountAIRequests(ctx context.Context, filter repository.AIRequestFilter) (int, error)
	UsageStats(ctx context.Context, days int) (repository.UsageStats, error)
}

// Publisher доставляет события SSE-подписчикам пользователя.
type Publisher interface {
	Publish(userID uuid.UUID, event notifications.Event)
}
