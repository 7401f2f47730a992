package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. The
// credit_transactions table is append-only; there are no update or delete
// paths.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a transaction to the log within tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO credit_transactions (id, account_id, kind, description, amount, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		string(txn.Kind),
		txn.Description,
		txn.Amount,
		timePtrToDate(txn.ExpiryDate),
		txn.CreatedAt,
	)

	return err
}

// ListByAccount retrieves an account's transactions newest-first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, account_id, kind, description, amount, expiry_date, created_at
		FROM credit_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// SumByAccount returns the sum of all transaction amounts for an account.
// For a consistent account this equals the stored balance.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE account_id = $1
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&sum)

	return sum, err
}

// SumByAccountKind returns the sum of transaction amounts of one kind.
func (r *TransactionRepository) SumByAccountKind(ctx context.Context, accountID string, kind domain.TransactionKind) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE account_id = $1 AND kind = $2
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, accountID, string(kind)).Scan(&sum)

	return sum, err
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn    domain.Transaction
		kind   string
		expiry pgtype.Date
	)

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&kind,
		&txn.Description,
		&txn.Amount,
		&expiry,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Kind = domain.TransactionKind(kind)
	txn.ExpiryDate = dateToTimePtr(expiry)

	return &txn, nil
}
