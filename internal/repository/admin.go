package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-tracker/backend/internal/models"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AdminUser struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	ExpenseCount int
	CreatedAt    time.Time
}

type AIRequestFilter struct {
	UserID      *uuid.UUID
	Success     *bool
	RequestType *string
}

type TypeCount struct {
	RequestType string
	Count       int
	Failed      int
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type UsageStats struct {
	Users            int
	Expenses         int
	Budgets          int
	AIRequests       int
	AISuccess        int
	AIFail           int
	AIRequestsByType []TypeCount
	AIRequestsByDay  []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает пользователей с числом расходов, новые первыми.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name,
		        (SELECT COUNT(*) FROM expenses e WHERE e.user_id = u.id) AS expense_count,
		        u.created_at
		 FROM users u
		 ORDER BY u.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AdminUser, 0)
	for rows.Next() {
		var user AdminUser
		if err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.ExpenseCount, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListAIRequests возвращает журнал вызовов помощника с фильтрацией.
func (r *AdminRepository) ListAIRequests(ctx context.Context, filter AIRequestFilter, limit, offset int, includePayloads bool) ([]models.AIRequest, error) {
	where, args := buildAIRequestWhere(filter)

	columns := "id, user_id, request_type, NULL::jsonb, NULL::jsonb, success, error_message, created_at"
	if includePayloads {
		columns = "id, user_id, request_type, request_payload, response_payload, success, error_message, created_at"
	}

	query := fmt.Sprintf("SELECT %s FROM ai_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", columns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.AIRequest, 0)
	for rows.Next() {
		var record models.AIRequest
		var requestPayload, responsePayload []byte
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.RequestType,
			&requestPayload,
			&responsePayload,
			&record.Success,
			&record.ErrorMessage,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		record.RequestPayload = requestPayload
		record.ResponsePayload = responsePayload
		requests = append(requests, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// CountAIRequests возвращает количество записей журнала по фильтру.
func (r *AdminRepository) CountAIRequests(ctx context.Context, filter AIRequestFilter) (int, error) {
	where, args := buildAIRequestWhere(filter)

	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM ai_requests"+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users),
		        (SELECT COUNT(*) FROM expenses),
		        (SELECT COUNT(*) FROM budgets)`,
	).Scan(&stats.Users, &stats.Expenses, &stats.Budgets); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM ai_requests`,
	).Scan(&stats.AIRequests, &stats.AISuccess, &stats.AIFail); err != nil {
		return stats, err
	}

	typeRows, err := r.db.Query(ctx,
		`SELECT request_type, COUNT(*), COUNT(*) FILTER (WHERE NOT success)
		 FROM ai_requests
		 GROUP BY request_type
		 ORDER BY COUNT(*) DESC, request_type`,
	)
	if err != nil {
		return stats, err
	}
	defer typeRows.Close()

	stats.AIRequestsByType = make([]TypeCount, 0)
	for typeRows.Next() {
		var row TypeCount
		if err := typeRows.Scan(&row.RequestType, &row.Count, &row.Failed); err != nil {
			return stats, err
		}
		stats.AIRequestsByType = append(stats.AIRequestsByType, row)
	}
	if err := typeRows.Err(); err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	dayRows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM ai_requests
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}
	defer dayRows.Close()

	stats.AIRequestsByDay = make([]DailyCount, 0)
	for dayRows.Next() {
		var row DailyCount
		if err := dayRows.Scan(&row.Day, &row.Count); err != nil {
			return stats, err
		}
		stats.AIRequestsByDay = append(stats.AIRequestsByDay, row)
	}

	if err := dayRows.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

func buildAIRequestWhere(filter AIRequestFilter) (string, []interface{}) {
	clauses := make([]string, 0)
	args := make([]interface{}, 0)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}

	if filter.RequestType != nil {
		args = append(args, *filter.RequestType)
		clauses = append(clauses, fmt.Sprintf("request_type = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
