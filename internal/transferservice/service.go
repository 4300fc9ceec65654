// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
)

// Ledger provides the atomic commit primitive needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Ledger interface {
	Commit(ctx context.Context, arg domain.CommitParams) (domain.CommitResult, error)
}

// Wallets provides wallet read access needed by transfer service layer.
type Wallets interface {
	Get(ctx context.Context, id int64) (domain.Wallet, error)
}

// Rates resolves conversion rates for cross-currency transfers.
type Rates interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// TransactionRepo provides read access to the transaction history.
type TransactionRepo interface {
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	ledger       Ledger
	wallets      Wallets
	rates        Rates
	transactions TransactionRepo
}

// New returns transfer service struct to manage transfer business logic.
func New(ledger Ledger, wallets Wallets, rates Rates, transactions TransactionRepo) *Service {
	return &Service{
		ledger:       ledger,
		wallets:      wallets,
		rates:        rates,
		transactions: transactions,
	}
}

// validated holds the wallets and parsed amount of a valid transfer request.
type validated struct {
	amount decimal.Decimal
	from   domain.Wallet
	to     domain.Wallet
}

func (s *Service) validateRequest(ctx context.Context, fromOwner string, arg domain.CreateTransferParams) (validated, error) {
	l := zerolog.Ctx(ctx)

	var v validated

	amount, err := moneypkg.ParsePositive(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return v, err
	}

	if arg.FromWalletID == arg.ToWalletID {
		return v, domain.ErrSameWallet
	}

	fromWallet, err := s.wallets.Get(ctx, arg.FromWalletID)
	if err != nil {
		return v, err
	}

	if fromWallet.Owner != fromOwner {
		l.Info().Int64("wallet_id", fromWallet.ID).Msg("transfer from wallet not owned by requester")
		return v, domain.ErrWalletOwnerMismatch
	}

	balance, err := decimal.NewFromString(fromWallet.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return v, err
	}

	if balance.LessThan(amount) {
		return v, &domain.InsufficientBalanceError{
			Available: fromWallet.Balance,
			Required:  amount.String(),
		}
	}

	toWallet, err := s.wallets.Get(ctx, arg.ToWalletID)
	if err != nil {
		return v, err
	}

	v.amount = amount
	v.from = fromWallet
	v.to = toWallet

	return v, nil
}

// Preview computes the outcome of a prospective transfer without mutating any
// state: no balance changes and no transaction records, however many times it
// is called. The rate is informational only and is resolved again at commit.
func (s *Service) Preview(ctx context.Context, fromOwner string, arg domain.CreateTransferParams) (domain.TransferPreview, error) {
	v, err := s.validateRequest(ctx, fromOwner, arg)
	if err != nil {
		return domain.TransferPreview{}, err
	}

	rate := decimal.NewFromInt(1)

	if v.from.Currency != v.to.Currency {
		rate, err = s.rates.Rate(ctx, v.from.Currency, v.to.Currency)
		if err != nil {
			return domain.TransferPreview{}, err
		}
	}

	return domain.TransferPreview{
		FromAmount:   v.amount.String(),
		FromCurrency: v.from.Currency,
		ToAmount:     moneypkg.Convert(v.amount, rate).String(),
		ToCurrency:   v.to.Currency,
		Rate:         rate.String(),
		Fees:         "0",
	}, nil
}

// Transfer moves funds between two wallets, converting between currencies when
// they differ.
//
// A cross-currency transfer must be explicitly confirmed: an unconfirmed
// request fails with ErrConfirmationRequired and changes nothing, because the
// rate is not guaranteed stable between preview and confirm. On a confirmed
// request the rate is resolved afresh; it may differ from the previewed one.
func (s *Service) Transfer(ctx context.Context, fromOwner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	v, err := s.validateRequest(ctx, fromOwner, arg)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	if v.from.Currency == v.to.Currency {
		return s.commit(ctx, v, decimal.NewFromInt(1),
			fmt.Sprintf("Transfer to %s wallet", v.to.Currency),
			fmt.Sprintf("Transfer from %s wallet", v.from.Currency),
		)
	}

	if !arg.Confirmed {
		return domain.TransferTxResult{}, domain.ErrConfirmationRequired
	}

	rate, err := s.rates.Rate(ctx, v.from.Currency, v.to.Currency)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	return s.commit(ctx, v, rate,
		fmt.Sprintf("Transfer to %s wallet (Rate: 1 %s = %s %s)",
			v.to.Currency, v.from.Currency, rate.StringFixed(4), v.to.Currency),
		fmt.Sprintf("Transfer from %s wallet", v.from.Currency),
	)
}

func (s *Service) commit(ctx context.Context, v validated, rate decimal.Decimal, outDescription, inDescription string) (domain.TransferTxResult, error) {
	toAmount := moneypkg.Convert(v.amount, rate)

	// The incoming record is attributed to the destination wallet's owner,
	// not the requester.
	result, err := s.ledger.Commit(ctx, domain.CommitParams{
		Mutations: []domain.BalanceMutation{
			{WalletID: v.from.ID, Delta: moneypkg.Negate(v.amount.String())},
			{WalletID: v.to.ID, Delta: toAmount.String()},
		},
		Records: []domain.CreateTransactionParams{
			{
				Owner:       v.from.Owner,
				WalletID:    v.from.ID,
				Type:        domain.TransactionTransferOut,
				Amount:      v.amount.String(),
				Currency:    v.from.Currency,
				Status:      domain.TransactionCompleted,
				Description: outDescription,
			},
			{
				Owner:       v.to.Owner,
				WalletID:    v.to.ID,
				Type:        domain.TransactionTransferIn,
				Amount:      toAmount.String(),
				Currency:    v.to.Currency,
				Status:      domain.TransactionCompleted,
				Description: inDescription,
			},
		},
	})
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	res := domain.TransferTxResult{
		FromTransaction: result.Transactions[0],
		ToTransaction:   result.Transactions[1],
		FromWallet:      result.Wallets[0],
		ToWallet:        result.Wallets[1],
	}

	if v.from.Currency != v.to.Currency {
		res.Rate = rate.String()
	}

	return res, nil
}

// ListTransfers returns the owner's transfer history, newest first.
func (s *Service) ListTransfers(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Transaction, error) {
	return s.transactions.List(ctx, domain.ListTransactionsParams{
		Owner:  owner,
		Types:  []domain.TransactionType{domain.TransactionTransferIn, domain.TransactionTransferOut},
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	})
}
