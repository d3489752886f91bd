package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-tracker/backend/internal/models"
)

const expenseColumns = `id, user_id, amount, description, category, expense_date, ai_generated, created_at, updated_at`

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// ExpenseInput содержит изменяемые поля расхода.
type ExpenseInput struct {
	Amount      float64
	Description string
	Category    models.Category
	Date        time.Time
	AIGenerated bool
}

// ExpenseFilter ограничивает выборку расходов. Пустые поля не фильтруют.
type ExpenseFilter struct {
	From     *time.Time
	To       *time.Time
	Category *models.Category
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// List возвращает расходы пользователя, новые первыми.
func (r *ExpenseRepository) List(ctx context.Context, userID uuid.UUID, filter ExpenseFilter) ([]models.Expense, error) {
	where, args := buildExpenseWhere(userID, filter)
	query := fmt.Sprintf("SELECT %s FROM expenses%s ORDER BY expense_date DESC, created_at DESC", expenseColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Get возвращает расход пользователя.
func (r *ExpenseRepository) Get(ctx context.Context, userID, expenseID uuid.UUID) (models.Expense, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE id = $1 AND user_id = $2`,
		expenseID, userID,
	)
	return scanExpense(row)
}

// Create сохраняет новый расход.
func (r *ExpenseRepository) Create(ctx context.Context, userID uuid.UUID, input ExpenseInput) (models.Expense, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO expenses (id, user_id, amount, description, category, expense_date, ai_generated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+expenseColumns,
		uuid.New(), userID, input.Amount, input.Description, input.Category, input.Date, input.AIGenerated,
	)
	return scanExpense(row)
}

// Update заменяет поля расхода пользователя.
func (r *ExpenseRepository) Update(ctx context.Context, userID, expenseID uuid.UUID, input ExpenseInput) (models.Expense, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET amount = $3,
		     description = $4,
		     category = $5,
		     expense_date = $6,
		     ai_generated = $7,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+expenseColumns,
		expenseID, userID, input.Amount, input.Description, input.Category, input.Date, input.AIGenerated,
	)
	return scanExpense(row)
}

// Delete удаляет расход пользователя.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM expenses
		 WHERE id = $1 AND user_id = $2`,
		expenseID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanExpense(row pgx.Row) (models.Expense, error) {
	var expense models.Expense
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Amount,
		&expense.Description,
		&expense.Category,
		&expense.Date,
		&expense.AIGenerated,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense, ErrNotFound
		}
		return expense, err
	}
	return expense, nil
}

func buildExpenseWhere(userID uuid.UUID, filter ExpenseFilter) (string, []interface{}) {
	args := []interface{}{userID}
	clauses := []string{"user_id = $1"}

	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("expense_date >= $%d", len(args)))
	}

	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("expense_date <= $%d", len(args)))
	}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
