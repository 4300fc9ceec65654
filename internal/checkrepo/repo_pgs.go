// Package checkrepo manages repository layer of check deposits.
package checkrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/dbpkg"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates check deposit repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns check deposit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO check_deposits (
    owner, wallet_id, transaction_id, amount, check_number, routing_number,
    account_number, bank_name, payee_name, check_date, status,
    verification_method, hold_hours, risk_score
)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING
    id, owner, wallet_id, transaction_id, amount, check_number, routing_number,
    account_number, bank_name, payee_name, check_date, deposit_date, status,
    verification_method, hold_hours, risk_score, rejection_reason
`

// Create persists the check deposit and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.PersistCheckParams) (domain.CheckDeposit, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.WalletID,
		arg.TransactionID,
		arg.Amount,
		arg.CheckNumber,
		arg.RoutingNumber,
		arg.AccountNumber,
		arg.BankName,
		arg.PayeeName,
		arg.CheckDate,
		arg.Status,
		arg.VerificationMethod,
		arg.HoldHours,
		arg.RiskScore,
	)

	c, err := scanCheck(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "check_deposits_wallet_id_fkey" {
				return c, domain.ErrWalletNotFound
			}
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const getQuery = `
SELECT
    id, owner, wallet_id, transaction_id, amount, check_number, routing_number,
    account_number, bank_name, payee_name, check_date, deposit_date, status,
    verification_method, hold_hours, risk_score, rejection_reason
FROM check_deposits
WHERE id = $1
`

// Get returns the check deposit with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.CheckDeposit, error) {
	l := zerolog.Ctx(ctx)

	c, err := scanCheck(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return c, domain.ErrCheckNotFound
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const listQuery = `
SELECT
    id, owner, wallet_id, transaction_id, amount, check_number, routing_number,
    account_number, bank_name, payee_name, check_date, deposit_date, status,
    verification_method, hold_hours, risk_score, rejection_reason
FROM check_deposits
WHERE owner = $1
ORDER BY deposit_date DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns the owner's check deposits, newest first.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.CheckDeposit, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.CheckDeposit{}

	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateStatusQuery = `
UPDATE check_deposits
SET status = $1, rejection_reason = $2
WHERE id = $3
RETURNING
    id, owner, wallet_id, transaction_id, amount, check_number, routing_number,
    account_number, bank_name, payee_name, check_date, deposit_date, status,
    verification_method, hold_hours, risk_score, rejection_reason
`

// UpdateStatus moves the check to a new lifecycle status.
func (r *RepoPGS) UpdateStatus(ctx context.Context, id int64, status domain.CheckStatus, rejectionReason string) (domain.CheckDeposit, error) {
	l := zerolog.Ctx(ctx)

	c, err := scanCheck(r.db.QueryRowContext(ctx, updateStatusQuery, status, rejectionReason, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return c, domain.ErrCheckNotFound
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const countSinceQuery = `
SELECT count(*)
FROM check_deposits
WHERE owner = $1 AND deposit_date >= $2
`

// CountSince returns how many checks the owner deposited at or after the
// given time.
func (r *RepoPGS) CountSince(ctx context.Context, owner string, since time.Time) (int32, error) {
	l := zerolog.Ctx(ctx)

	var n int32
	if err := r.db.QueryRowContext(ctx, countSinceQuery, owner, since).Scan(&n); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return n, nil
}

const countRejectedSinceQuery = `
SELECT count(*)
FROM check_deposits
WHERE owner = $1 AND status = 'rejected' AND deposit_date >= $2
`

// CountRejectedSince returns how many of the owner's checks were rejected at
// or after the given time.
func (r *RepoPGS) CountRejectedSince(ctx context.Context, owner string, since time.Time) (int32, error) {
	l := zerolog.Ctx(ctx)

	var n int32
	if err := r.db.QueryRowContext(ctx, countRejectedSinceQuery, owner, since).Scan(&n); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCheck(s scanner) (domain.CheckDeposit, error) {
	var c domain.CheckDeposit

	err := s.Scan(
		&c.ID,
		&c.Owner,
		&c.WalletID,
		&c.TransactionID,
		&c.Amount,
		&c.CheckNumber,
		&c.RoutingNumber,
		&c.AccountNumber,
		&c.BankName,
		&c.PayeeName,
		&c.CheckDate,
		&c.DepositDate,
		&c.Status,
		&c.VerificationMethod,
		&c.HoldHours,
		&c.RiskScore,
		&c.RejectionReason,
	)

	return c, err
}
