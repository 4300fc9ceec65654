// Package exchangeservice manages business logic layer of currency exchanges.
package exchangeservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/currencypkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
)

// Ledger provides the atomic commit primitive needed by exchange service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package exchangeservice
type Ledger interface {
	Commit(ctx context.Context, arg domain.CommitParams) (domain.CommitResult, error)
}

// Wallets provides wallet read access needed by exchange service layer.
type Wallets interface {
	Get(ctx context.Context, id int64) (domain.Wallet, error)
}

// Rates resolves conversion rates.
type Rates interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Service facilitates exchange service layer logic.
//
// An exchange is the single-owner variant of a transfer: both wallets must
// belong to the requester, a rate is always required, and the commit happens
// immediately with no preview gate since both legs are owned by one party.
type Service struct {
	ledger     Ledger
	wallets    Wallets
	rates      Rates
	currencies currencypkg.Set
}

// New returns exchange service struct to manage exchange business logic.
func New(ledger Ledger, wallets Wallets, rates Rates, currencies currencypkg.Set) *Service {
	return &Service{
		ledger:     ledger,
		wallets:    wallets,
		rates:      rates,
		currencies: currencies,
	}
}

// Exchange converts funds between two wallets of the same owner.
// A same-currency pair is rejected as a no-op error.
func (s *Service) Exchange(ctx context.Context, owner string, arg domain.CreateExchangeParams) (domain.ExchangeTxResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := moneypkg.ParsePositive(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.ExchangeTxResult{}, err
	}

	if arg.FromWalletID == arg.ToWalletID {
		return domain.ExchangeTxResult{}, domain.ErrSameWallet
	}

	fromWallet, err := s.ownedWallet(ctx, owner, arg.FromWalletID)
	if err != nil {
		return domain.ExchangeTxResult{}, err
	}

	toWallet, err := s.ownedWallet(ctx, owner, arg.ToWalletID)
	if err != nil {
		return domain.ExchangeTxResult{}, err
	}

	if fromWallet.Currency == toWallet.Currency {
		return domain.ExchangeTxResult{}, domain.ErrSameCurrency
	}

	balance, err := decimal.NewFromString(fromWallet.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.ExchangeTxResult{}, err
	}

	if balance.LessThan(amount) {
		return domain.ExchangeTxResult{}, &domain.InsufficientBalanceError{
			Available: fromWallet.Balance,
			Required:  amount.String(),
		}
	}

	rate, err := s.rates.Rate(ctx, fromWallet.Currency, toWallet.Currency)
	if err != nil {
		return domain.ExchangeTxResult{}, err
	}

	converted := moneypkg.Convert(amount, rate)

	result, err := s.ledger.Commit(ctx, domain.CommitParams{
		Mutations: []domain.BalanceMutation{
			{WalletID: fromWallet.ID, Delta: moneypkg.Negate(amount.String())},
			{WalletID: toWallet.ID, Delta: converted.String()},
		},
		Records: []domain.CreateTransactionParams{
			{
				Owner:       owner,
				WalletID:    fromWallet.ID,
				Type:        domain.TransactionExchange,
				Amount:      amount.String(),
				Currency:    fromWallet.Currency,
				Status:      domain.TransactionCompleted,
				Description: fmt.Sprintf("Exchanged %s %s to %s", amount.String(), fromWallet.Currency, toWallet.Currency),
			},
			{
				Owner:       owner,
				WalletID:    toWallet.ID,
				Type:        domain.TransactionExchange,
				Amount:      converted.String(),
				Currency:    toWallet.Currency,
				Status:      domain.TransactionCompleted,
				Description: fmt.Sprintf("Received %s %s from %s", converted.String(), toWallet.Currency, fromWallet.Currency),
			},
		},
	})
	if err != nil {
		return domain.ExchangeTxResult{}, err
	}

	return domain.ExchangeTxResult{
		FromTransaction: result.Transactions[0],
		ToTransaction:   result.Transactions[1],
		FromWallet:      result.Wallets[0],
		ToWallet:        result.Wallets[1],
		Rate:            rate.String(),
	}, nil
}

func (s *Service) ownedWallet(ctx context.Context, owner string, id int64) (domain.Wallet, error) {
	wallet, err := s.wallets.Get(ctx, id)
	if err != nil {
		return domain.Wallet{}, err
	}

	if wallet.Owner != owner {
		zerolog.Ctx(ctx).Info().Int64("wallet_id", id).Msg("exchange wallet not owned by requester")
		return domain.Wallet{}, domain.ErrWalletOwnerMismatch
	}

	return wallet, nil
}

// Rates returns the resolvable rates between every ordered pair of supported
// currencies. Pairs the rate source cannot resolve are omitted.
func (s *Service) Rates(ctx context.Context) (map[string]map[string]string, error) {
	codes := s.currencies.List()
	table := make(map[string]map[string]string, len(codes))

	for _, from := range codes {
		row := make(map[string]string)

		for _, to := range codes {
			if from == to {
				continue
			}

			rate, err := s.rates.Rate(ctx, from, to)
			if err != nil {
				continue
			}

			row[to] = rate.String()
		}

		if len(row) > 0 {
			table[from] = row
		}
	}

	return table, nil
}
