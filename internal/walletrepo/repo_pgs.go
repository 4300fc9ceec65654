// Package walletrepo manages repository layer of wallets.
package walletrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/dbpkg"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    wallets (owner, balance, currency)
VALUES
    ($1, $2, $3)
RETURNING id, owner, balance, currency, created_at
`

// Create creates the wallet and then returns it. Uniqueness of the
// (owner, currency) pair is enforced by the wallets_owner_currency_key
// constraint, so two concurrent creations cannot both succeed.
func (r *RepoPGS) Create(ctx context.Context, owner, balance, currency string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, owner, balance, currency)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Owner,
		&w.Balance,
		&w.Currency,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "wallets_owner_currency_key" {
				return w, domain.ErrCurrencyAlreadyExists
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getQuery = `
SELECT
	id, owner, balance, currency, created_at
FROM wallets
WHERE id = $1
`

// Get returns the wallet with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Owner,
		&w.Balance,
		&w.Currency,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const addBalanceQuery = `
UPDATE wallets
SET balance = balance + $1
WHERE id = $2
RETURNING id, owner, balance, currency, created_at
`

// AddBalance changes the wallet's balance and returns the changed wallet.
// A negative delta that would drive the balance below zero trips the
// wallets_balance_check constraint, which re-validates sufficiency at commit
// time regardless of what any earlier read observed.
func (r *RepoPGS) AddBalance(ctx context.Context, delta string, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, delta, id)

	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.Owner,
		&w.Balance,
		&w.Currency,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "wallets_balance_check" {
				return w, domain.ErrInsufficientBalance
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const listQuery = `
SELECT
	id, owner, balance, currency, created_at
FROM wallets
WHERE owner = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the specified number of wallets for the given owner.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Wallet{}

	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.Owner, &w.Balance, &w.Currency, &w.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, w)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
