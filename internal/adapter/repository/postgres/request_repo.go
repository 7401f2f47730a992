package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// RequestRepository implements usecase.RequestRepository.
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

const requestColumns = `id, account_id, service_type, title, description, status, created_at`

// Create inserts a new service request within tx.
func (r *RequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.ServiceRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO service_requests (id, account_id, service_type, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		request.ID,
		request.AccountID,
		request.ServiceType,
		request.Title,
		request.Description,
		string(request.Status),
		request.CreatedAt,
	)

	return err
}

// GetByID retrieves a service request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1`

	return scanRequest(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a service request by ID with a FOR UPDATE lock.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ServiceRequest, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1 FOR UPDATE`

	return scanRequest(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus moves a request from one status to another only if it still
// holds the expected current status. It reports whether a row changed, so a
// stale caller observes false rather than clobbering a concurrent update.
func (r *RequestRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.RequestStatus) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE service_requests SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := pgxTx.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// ListOpen lists all requests in a non-terminal status, oldest first.
func (r *RequestRepository) ListOpen(ctx context.Context) ([]*domain.ServiceRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM service_requests
		WHERE status IN ($1, $2)
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, string(domain.StatusPending), string(domain.StatusInProgress))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByAccount retrieves an account's requests newest-first.
func (r *RequestRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ServiceRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM service_requests
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRequests(rows)
}

// CountByStatus returns per-status request counts for an account. Statuses
// with no requests are absent from the map.
func (r *RequestRepository) CountByStatus(ctx context.Context, accountID string) (map[domain.RequestStatus]int64, error) {
	query := `
		SELECT status, COUNT(*)
		FROM service_requests
		WHERE account_id = $1
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.RequestStatus(status)] = count
	}

	return counts, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var (
		request domain.ServiceRequest
		status  string
	)

	err := row.Scan(
		&request.ID,
		&request.AccountID,
		&request.ServiceType,
		&request.Title,
		&request.Description,
		&status,
		&request.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	request.Status = domain.RequestStatus(status)

	return &request, nil
}

func collectRequests(rows pgx.Rows) ([]*domain.ServiceRequest, error) {
	var requests []*domain.ServiceRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}
