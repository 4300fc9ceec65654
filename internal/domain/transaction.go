package domain

import (
	"errors"
	"time"
)

// ErrTransactionNotFound indicates that the transaction is not found.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrCurrencyMismatch indicates that the requested currency does not match the
// wallet currency.
var ErrCurrencyMismatch = errors.New("currency mismatch with wallet")

// TransactionType classifies how a transaction changed a wallet.
type TransactionType string

// All transaction types.
const (
	TransactionDeposit      TransactionType = "deposit"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionTransferIn   TransactionType = "transfer_in"
	TransactionTransferOut  TransactionType = "transfer_out"
	TransactionExchange     TransactionType = "exchange"
	TransactionCheckDeposit TransactionType = "check_deposit"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

// All transaction statuses. Committed transactions are immutable, except that
// a pending check-linked transaction moves to completed or failed when the
// check clears.
const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable append-only record of a wallet movement.
type Transaction struct {
	ID          int64             `json:"id"`
	Owner       string            `json:"owner"`
	WalletID    int64             `json:"wallet_id"`
	Type        TransactionType   `json:"type"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CreateTransactionParams is the input data to record a transaction.
type CreateTransactionParams struct {
	Owner       string            `json:"owner"`
	WalletID    int64             `json:"wallet_id"`
	Type        TransactionType   `json:"type"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
}

// ListTransactionsParams filters the transaction history. Zero values mean
// the filter is not applied. Results are ordered newest first.
type ListTransactionsParams struct {
	Owner    string
	WalletID int64
	Types    []TransactionType
	Limit    int32
	Offset   int32
}
