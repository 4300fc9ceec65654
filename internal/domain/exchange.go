package domain

import "errors"

// ErrSameCurrency indicates an exchange between two wallets of the same
// currency, which is rejected as a no-op rather than silently accepted.
var ErrSameCurrency = errors.New("cannot exchange between wallets of the same currency")

// CreateExchangeParams is the input data for a currency exchange between two
// wallets of the same owner.
type CreateExchangeParams struct {
	FromWalletID int64  `json:"from_wallet_id"`
	ToWalletID   int64  `json:"to_wallet_id"`
	Amount       string `json:"amount"`
}

// ExchangeTxResult is the result of a committed exchange.
type ExchangeTxResult struct {
	FromTransaction Transaction `json:"from_transaction"`
	ToTransaction   Transaction `json:"to_transaction"`
	FromWallet      Wallet      `json:"from_wallet"`
	ToWallet        Wallet      `json:"to_wallet"`
	Rate            string      `json:"rate"`
}
