// Package ledgerrepo provides the atomic commit primitive of the ledger.
//
// Every balance change in the system goes through Commit: wallet deposits and
// withdrawals, both legs of a transfer or exchange, immediate check postings
// and check-clearing adjustments. A commit applies all of its balance
// mutations, record inserts and status transitions inside one database
// transaction, or none of them.
package ledgerrepo

import (
	"context"
	"database/sql"
	"sort"

	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/internal/transactionrepo"
	"github.com/fintru/wallet-ledger/internal/walletrepo"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates ledger commit logic.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{conn: conn}
}

// Commit applies every balance mutation, inserts every transaction record and
// performs every status transition of arg as one atomic unit.
//
// Balance sufficiency is re-validated here, not at the caller's earlier read:
// the wallets_balance_check constraint rejects any mutation that would drive a
// balance below zero and the whole commit rolls back. Mutations are applied in
// ascending wallet id order so concurrent commits touching the same wallets
// cannot deadlock.
func (r *RepoPGS) Commit(ctx context.Context, arg domain.CommitParams) (domain.CommitResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.CommitResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	walletRepo := walletrepo.NewRepoPGS(tx)
	transactionRepo := transactionrepo.NewRepoPGS(tx)

	order := make([]int, len(arg.Mutations))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		return arg.Mutations[order[a]].WalletID < arg.Mutations[order[b]].WalletID
	})

	wallets := make([]domain.Wallet, len(arg.Mutations))

	for _, i := range order {
		m := arg.Mutations[i]

		wallets[i], err = walletRepo.AddBalance(ctx, m.Delta, m.WalletID)
		if err != nil {
			return result, err
		}
	}

	transactions := make([]domain.Transaction, 0, len(arg.Records))

	for _, rec := range arg.Records {
		t, err := transactionRepo.Create(ctx, rec)
		if err != nil {
			return result, err
		}

		transactions = append(transactions, t)
	}

	for _, u := range arg.StatusUpdates {
		if _, err := transactionRepo.UpdateStatus(ctx, u.TransactionID, u.Status); err != nil {
			return result, err
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	result.Wallets = wallets
	result.Transactions = transactions

	return result, nil
}
