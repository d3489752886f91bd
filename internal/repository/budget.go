package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-tracker/backend/internal/models"
)

const budgetColumns = `id, user_id, total_budget, categories, created_at, updated_at`

type BudgetRepository struct {
	db *pgxpool.Pool
}

// NewBudgetRepository создает репозиторий бюджетов.
func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Get возвращает бюджет пользователя.
func (r *BudgetRepository) Get(ctx context.Context, userID uuid.UUID) (models.Budget, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE user_id = $1`,
		userID,
	)
	return scanBudget(row)
}

// Create создает бюджет. У пользователя может быть только один бюджет.
func (r *BudgetRepository) Create(ctx context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error) {
	payload, err := encodeCategories(categories)
	if err != nil {
		return models.Budget{}, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO budgets (id, user_id, total_budget, categories)
		 VALUES ($1, $2, $3, $4::jsonb)
		 RETURNING `+budgetColumns,
		uuid.New(), userID, totalBudget, payload,
	)

	budget, err := scanBudget(row)
	if err != nil && isUniqueViolation(err) {
		return budget, ErrConflict
	}
	return budget, err
}

// Replace заменяет общий лимит и все категории бюджета.
func (r *BudgetRepository) Replace(ctx context.Context, userID uuid.UUID, totalBudget float64, categories map[string]models.BudgetCategory) (models.Budget, error) {
	payload, err := encodeCategories(categories)
	if err != nil {
		return models.Budget{}, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE budgets
		 SET total_budget = $2,
		     categories = $3::jsonb,
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+budgetColumns,
		userID, totalBudget, payload,
	)
	return scanBudget(row)
}

// UpsertCategory добавляет или перезаписывает одну категорию бюджета.
func (r *BudgetRepository) UpsertCategory(ctx context.Context, userID uuid.UUID, name string, category models.BudgetCategory) (models.Budget, error) {
	payload, err := json.Marshal(category)
	if err != nil {
		return models.Budget{}, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE budgets
		 SET categories = jsonb_set(categories, ARRAY[$2::text], $3::jsonb, true),
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+budgetColumns,
		userID, name, string(payload),
	)
	return scanBudget(row)
}

// DeleteCategory удаляет категорию из бюджета. Отсутствующая категория не ошибка.
func (r *BudgetRepository) DeleteCategory(ctx context.Context, userID uuid.UUID, name string) (models.Budget, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE budgets
		 SET categories = categories - $2::text,
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+budgetColumns,
		userID, name,
	)
	return scanBudget(row)
}

// Delete удаляет бюджет пользователя.
func (r *BudgetRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddSpent увеличивает потраченную сумму категории под блокировкой строки.
// Возвращает ErrNotFound, если нет бюджета или такой категории в нем.
func (r *BudgetRepository) AddSpent(ctx context.Context, userID uuid.UUID, name string, amount float64) (models.BudgetCategory, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.BudgetCategory{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	budget, err := scanBudget(tx.QueryRow(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	))
	if err != nil {
		return models.BudgetCategory{}, err
	}

	category, ok := budget.Categories[name]
	if !ok {
		return models.BudgetCategory{}, ErrNotFound
	}
	category.Spent += amount
	budget.Categories[name] = category

	payload, err := encodeCategories(budget.Categories)
	if err != nil {
		return models.BudgetCategory{}, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE budgets
		 SET categories = $2::jsonb,
		     updated_at = NOW()
		 WHERE id = $1`,
		budget.ID, payload,
	); err != nil {
		return models.BudgetCategory{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.BudgetCategory{}, err
	}

	return category, nil
}

func scanBudget(row pgx.Row) (models.Budget, error) {
	var budget models.Budget
	var raw []byte

	err := row.Scan(&budget.ID, &budget.UserID, &budget.TotalBudget, &raw, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return budget, ErrNotFound
		}
		return budget, err
	}

	budget.Categories, err = decodeCategories(raw)
	return budget, err
}

func encodeCategories(categories map[string]models.BudgetCategory) (string, error) {
	if categories == nil {
		categories = map[string]models.BudgetCategory{}
	}

	payload, err := json.Marshal(categories)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeCategories(raw []byte) (map[string]models.BudgetCategory, error) {
	categories := map[string]models.BudgetCategory{}
	if len(raw) == 0 {
		return categories, nil
	}

	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
