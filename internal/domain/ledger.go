package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientBalance indicates that the wallet does not have sufficient balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// InsufficientBalanceError reports how much was available against what the
// operation required. It matches ErrInsufficientBalance under errors.Is.
type InsufficientBalanceError struct {
	Available string
	Required  string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, required %s", e.Available, e.Required)
}

// Is reports a match against the ErrInsufficientBalance sentinel.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// BalanceMutation is one balance change inside a ledger commit. Delta is a
// signed decimal string.
type BalanceMutation struct {
	WalletID int64
	Delta    string
}

// StatusUpdate transitions a pending transaction as part of a ledger commit.
type StatusUpdate struct {
	TransactionID int64
	Status        TransactionStatus
}

// CommitParams describes one atomic ledger commit: every balance mutation,
// transaction record and status transition is applied together or not at all.
type CommitParams struct {
	Mutations     []BalanceMutation
	Records       []CreateTransactionParams
	StatusUpdates []StatusUpdate
}

// CommitResult holds the wallets and transactions touched by a commit.
// Wallets are returned in the order of CommitParams.Mutations and
// Transactions in the order of CommitParams.Records.
type CommitResult struct {
	Wallets      []Wallet
	Transactions []Transaction
}
