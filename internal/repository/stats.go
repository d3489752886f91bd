package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-tracker/backend/internal/models"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type MonthlyTotal struct {
	Month time.Time
	Total float64
	Count int
}

type CategoryTotal struct {
	Category models.Category
	Total    float64
	Count    int
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// MonthlyTotals возвращает суммы расходов за последние N месяцев с данными.
func (r *StatsRepository) MonthlyTotals(ctx context.Context, userID uuid.UUID, months int) ([]MonthlyTotal, error) {
	if months <= 0 {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('month', expense_date)::date AS month,
		        COALESCE(SUM(amount), 0) AS total,
		        COUNT(*)
		 FROM expenses
		 WHERE user_id = $1
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT $2`,
		userID, months,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]MonthlyTotal, 0)
	for rows.Next() {
		var row MonthlyTotal
		if err := rows.Scan(&row.Month, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}

// CategoryTotals возвращает суммы по категориям за полуинтервал [from, to).
func (r *StatsRepository) CategoryTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*)
		 FROM expenses
		 WHERE user_id = $1 AND expense_date >= $2 AND expense_date < $3
		 GROUP BY category
		 ORDER BY total DESC, category`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]CategoryTotal, 0)
	for rows.Next() {
		var row CategoryTotal
		if err := rows.Scan(&row.Category, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}
