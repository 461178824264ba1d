package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-crm/internal/domain"
)

// LogRepository manages the append-only communication trail. There is no
// update or delete: logs are immutable once written. Listings are ordered by
// created_at ascending with ties broken by insertion order, which response
// time reporting relies on.
type LogRepository interface {
	Create(ctx context.Context, log *domain.CommunicationLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.CommunicationLog, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.CommunicationLog, error)
	// FirstLogTimes returns, for every ticket with at least one log, the
	// timestamp of its earliest log entry.
	FirstLogTimes(ctx context.Context) (map[string]time.Time, error)
}

type logRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository returns a Postgres-backed implementation.
func NewLogRepository(pool *pgxpool.Pool) LogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) Create(ctx context.Context, log *domain.CommunicationLog) error {
	const query = `
        INSERT INTO communication_logs (ticket_id, customer_id, type, content, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		log.TicketID,
		log.CustomerID,
		log.Type,
		log.Content,
		log.CreatedAt,
	).Scan(&log.ID)
}

func (r *logRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.CommunicationLog, error) {
	const query = `
        SELECT id, ticket_id, customer_id, type, content, created_at
        FROM communication_logs WHERE ticket_id=$1 ORDER BY created_at ASC, seq ASC`
	return r.list(ctx, query, ticketID)
}

func (r *logRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CommunicationLog, error) {
	const query = `
        SELECT id, ticket_id, customer_id, type, content, created_at
        FROM communication_logs WHERE customer_id=$1 ORDER BY created_at ASC, seq ASC`
	return r.list(ctx, query, customerID)
}

func (r *logRepository) FirstLogTimes(ctx context.Context) (map[string]time.Time, error) {
	const query = `
        SELECT ticket_id, MIN(created_at)
        FROM communication_logs GROUP BY ticket_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]time.Time)
	for rows.Next() {
		var ticketID string
		var first time.Time
		if err := rows.Scan(&ticketID, &first); err != nil {
			return nil, err
		}
		result[ticketID] = first
	}
	return result, rows.Err()
}

func (r *logRepository) list(ctx context.Context, query string, arg any) ([]domain.CommunicationLog, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogs(rows)
}

func scanLogs(rows pgx.Rows) ([]domain.CommunicationLog, error) {
	var result []domain.CommunicationLog
	for rows.Next() {
		var log domain.CommunicationLog
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.CustomerID,
			&log.Type,
			&log.Content,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
