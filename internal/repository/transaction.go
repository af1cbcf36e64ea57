package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/model"
)

// Common errors for transaction repository operations.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// value is stored as NUMERIC and exchanged as text so no precision is lost.
const transactionColumns = `id, user_id, type, category, value::text, date_transition, date, description, created_at, updated_at`

// CreateTransaction inserts a new transaction into the database.
func (r *Repository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, category, value, date_transition, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Category,
		tx.Value.String(),
		tx.DateTransition,
		tx.Date,
		tx.Description,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetTransactionByID retrieves a transaction by its ID.
func (r *Repository) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}

	return tx, nil
}

// ListTransactionsByUser returns every transaction owned by userID.
func (r *Repository) ListTransactionsByUser(ctx context.Context, userID string) ([]*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*model.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransaction overwrites the mutable fields of a transaction owned by tx.UserID.
// Concurrent updates are last-write-wins.
func (r *Repository) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $3, category = $4, value = $5::text::numeric, date_transition = $6,
		    date = $7, description = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Category,
		tx.Value.String(),
		tx.DateTransition,
		tx.Date,
		tx.Description,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// DeleteTransaction removes a transaction owned by userID.
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// CountTransactions returns the number of stored transactions.
func (r *Repository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// scanTransaction scans a single row into a Transaction model.
// Works for both pgx.Row and pgx.Rows.
func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		tx             model.Transaction
		txType         string
		value          string
		dateTransition *time.Time
	)

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&txType,
		&tx.Category,
		&value,
		&dateTransition,
		&tx.Date,
		&tx.Description,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = model.TransactionType(txType)
	tx.DateTransition = dateTransition
	tx.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse value %q: %w", value, err)
	}

	return &tx, nil
}
