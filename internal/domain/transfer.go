package domain

import "errors"

var (
	// ErrSameWallet indicates a transfer where source and destination are the
	// same wallet.
	ErrSameWallet = errors.New("cannot transfer to the same wallet")
	// ErrRateUnavailable indicates that no conversion rate could be resolved
	// for the currency pair.
	ErrRateUnavailable = errors.New("exchange rate not available for this currency pair")
	// ErrConfirmationRequired indicates a cross-currency transfer that has not
	// been previewed or explicitly confirmed.
	ErrConfirmationRequired = errors.New("exchange rate confirmation required")
)

// CreateTransferParams is the input data for a transfer between two wallets.
// Confirmed acknowledges a previously previewed cross-currency rate; it is
// ignored for same-currency transfers.
type CreateTransferParams struct {
	FromWalletID int64  `json:"from_wallet_id"`
	ToWalletID   int64  `json:"to_wallet_id"`
	Amount       string `json:"amount"`
	Confirmed    bool   `json:"confirmed"`
}

// TransferPreview is a non-mutating computation of a prospective
// cross-currency transfer outcome. The rate is not pinned: the commit may
// apply a different rate than the one previewed.
type TransferPreview struct {
	FromAmount   string `json:"from_amount"`
	FromCurrency string `json:"from_currency"`
	ToAmount     string `json:"to_amount"`
	ToCurrency   string `json:"to_currency"`
	Rate         string `json:"rate"`
	Fees         string `json:"fees"`
}

// TransferTxResult is the result of a committed transfer.
type TransferTxResult struct {
	FromTransaction Transaction `json:"from_transaction"`
	ToTransaction   Transaction `json:"to_transaction"`
	FromWallet      Wallet      `json:"from_wallet"`
	ToWallet        Wallet      `json:"to_wallet"`
	Rate            string      `json:"rate,omitempty"`
}
