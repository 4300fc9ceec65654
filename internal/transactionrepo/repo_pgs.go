// Package transactionrepo manages repository layer of transaction records.
package transactionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/dbpkg"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (owner, wallet_id, type, amount, currency, status, description)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, owner, wallet_id, type, amount, currency, status, description, created_at
`

// Create inserts the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.WalletID,
		arg.Type,
		arg.Amount,
		arg.Currency,
		arg.Status,
		arg.Description,
	)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Description,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_wallet_id_fkey":
				return t, domain.ErrWalletNotFound
			case "transactions_amount_check":
				return t, moneypkg.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, owner, wallet_id, type, amount, currency, status, description, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Description,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const updateStatusQuery = `
UPDATE transactions
SET status = $1
WHERE id = $2 AND status = 'pending'
RETURNING id, owner, wallet_id, type, amount, currency, status, description, created_at
`

// UpdateStatus transitions a pending transaction to the given status.
// Transactions are otherwise immutable: a non-pending row is never updated.
func (r *RepoPGS) UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateStatusQuery, status, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Description,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

// List returns transaction records newest first, applying the non-zero
// filters of arg.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var (
		conditions []string
		args       []interface{}
	)

	if arg.Owner != "" {
		args = append(args, arg.Owner)
		conditions = append(conditions, fmt.Sprintf("owner = $%d", len(args)))
	}

	if arg.WalletID != 0 {
		args = append(args, arg.WalletID)
		conditions = append(conditions, fmt.Sprintf("wallet_id = $%d", len(args)))
	}

	if len(arg.Types) > 0 {
		types := make([]string, len(arg.Types))
		for i, t := range arg.Types {
			types[i] = string(t)
		}

		args = append(args, pq.Array(types))
		conditions = append(conditions, fmt.Sprintf("type = ANY($%d)", len(args)))
	}

	query := "SELECT id, owner, wallet_id, type, amount, currency, status, description, created_at FROM transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	args = append(args, arg.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, arg.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.Owner,
			&t.WalletID,
			&t.Type,
			&t.Amount,
			&t.Currency,
			&t.Status,
			&t.Description,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
