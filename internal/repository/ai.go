package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AIRepository struct {
	db *pgxpool.Pool
}

// AIRequestLog описывает один вызов помощника.
type AIRequestLog struct {
	UserID          uuid.UUID
	RequestType     string
	RequestPayload  []byte
	ResponsePayload []byte
	Success         bool
	ErrorMessage    *string
}

// NewAIRepository создает репозиторий журнала запросов к помощнику.
func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest сохраняет запись о вызове помощника.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (user_id, request_type, request_payload, response_payload, success, error_message)
		 VALUES ($1, $2, NULLIF($3, '')::jsonb, NULLIF($4, '')::jsonb, $5, $6)`,
		log.UserID,
		log.RequestType,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.Success,
		log.ErrorMessage,
	)
	return err
}
