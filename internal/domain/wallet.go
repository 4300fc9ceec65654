// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrWalletNotFound indicates that the wallet is not found.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrCurrencyAlreadyExists indicates that the owner already holds a wallet
	// with the given currency.
	ErrCurrencyAlreadyExists = errors.New("wallet currency already exists")
	// ErrUnsupportedCurrency indicates that the currency is not in the
	// configured supported set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrWalletOwnerMismatch indicates that the wallet does not belong to the
	// requester.
	ErrWalletOwnerMismatch = errors.New("wallet does not belong to the user")
)

// Wallet holds user balance data for a specific currency. An owner holds at
// most one wallet per currency and its balance never goes below zero.
type Wallet struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
