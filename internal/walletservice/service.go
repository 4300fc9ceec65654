// Package walletservice manages business logic layer of wallets.
package walletservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/currencypkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
)

// Repo provides data access layer interface needed by wallet service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Repo interface {
	Create(ctx context.Context, owner, balance, currency string) (domain.Wallet, error)
	Get(ctx context.Context, id int64) (domain.Wallet, error)
	List(ctx context.Context, owner string, limit, offset int32) ([]domain.Wallet, error)
}

// Ledger provides the atomic commit primitive, the only way balances change.
type Ledger interface {
	Commit(ctx context.Context, arg domain.CommitParams) (domain.CommitResult, error)
}

// TransactionRepo provides read access to the transaction history.
type TransactionRepo interface {
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo         Repo
	ledger       Ledger
	transactions TransactionRepo
	currencies   currencypkg.Set
}

// New returns wallet service struct to manage wallet business logic.
func New(wr Repo, ledger Ledger, tr TransactionRepo, currencies currencypkg.Set) *Service {
	return &Service{
		repo:         wr,
		ledger:       ledger,
		transactions: tr,
		currencies:   currencies,
	}
}

// Create opens a wallet for the given owner and currency with a zero balance.
func (s *Service) Create(ctx context.Context, owner, currency string) (domain.Wallet, error) {
	if !s.currencies.IsSupported(currency) {
		return domain.Wallet{}, domain.ErrUnsupportedCurrency
	}

	wallet, err := s.repo.Create(ctx, owner, "0", currency)
	if err != nil {
		return wallet, err
	}

	return wallet, nil
}

// Get returns the wallet with the given id regardless of owner. Callers that
// act on behalf of a requester must use GetForOwner.
func (s *Service) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	return s.repo.Get(ctx, id)
}

// GetForOwner returns the wallet only if it belongs to the given owner.
func (s *Service) GetForOwner(ctx context.Context, owner string, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	wallet, err := s.repo.Get(ctx, id)
	if err != nil {
		return wallet, err
	}

	if wallet.Owner != owner {
		l.Info().Int64("wallet_id", id).Msg("wallet owner mismatch")
		return domain.Wallet{}, domain.ErrWalletOwnerMismatch
	}

	return wallet, nil
}

// List returns wallets that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Wallet, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	wallets, err := s.repo.List(ctx, owner, limit, offset)
	if err != nil {
		return nil, err
	}

	return wallets, nil
}

// Deposit credits the wallet and records a completed deposit transaction in
// one ledger commit.
func (s *Service) Deposit(ctx context.Context, owner string, walletID int64, amount string) (domain.Wallet, domain.Transaction, error) {
	amountDecimal, err := moneypkg.ParsePositive(amount)
	if err != nil {
		return domain.Wallet{}, domain.Transaction{}, err
	}

	wallet, err := s.GetForOwner(ctx, owner, walletID)
	if err != nil {
		return domain.Wallet{}, domain.Transaction{}, err
	}

	return s.commitSingle(ctx, wallet, amountDecimal.String(), domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionDeposit,
		Amount:      amountDecimal.String(),
		Currency:    wallet.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Deposit transaction",
	})
}

// Withdraw debits the wallet and records a completed withdrawal transaction
// in one ledger commit. Sufficiency is pre-checked here for a detailed error
// and re-validated by the commit itself to close the read-then-write race.
func (s *Service) Withdraw(ctx context.Context, owner string, walletID int64, amount string) (domain.Wallet, domain.Transaction, error) {
	amountDecimal, err := moneypkg.ParsePositive(amount)
	if err != nil {
		return domain.Wallet{}, domain.Transaction{}, err
	}

	wallet, err := s.GetForOwner(ctx, owner, walletID)
	if err != nil {
		return domain.Wallet{}, domain.Transaction{}, err
	}

	balance, err := decimal.NewFromString(wallet.Balance)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return domain.Wallet{}, domain.Transaction{}, err
	}

	if balance.LessThan(amountDecimal) {
		return domain.Wallet{}, domain.Transaction{}, &domain.InsufficientBalanceError{
			Available: wallet.Balance,
			Required:  amountDecimal.String(),
		}
	}

	return s.commitSingle(ctx, wallet, moneypkg.Negate(amountDecimal.String()), domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionWithdrawal,
		Amount:      amountDecimal.String(),
		Currency:    wallet.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Withdrawal transaction",
	})
}

func (s *Service) commitSingle(ctx context.Context, wallet domain.Wallet, delta string, record domain.CreateTransactionParams) (domain.Wallet, domain.Transaction, error) {
	result, err := s.ledger.Commit(ctx, domain.CommitParams{
		Mutations: []domain.BalanceMutation{{WalletID: wallet.ID, Delta: delta}},
		Records:   []domain.CreateTransactionParams{record},
	})
	if err != nil {
		return domain.Wallet{}, domain.Transaction{}, err
	}

	return result.Wallets[0], result.Transactions[0], nil
}

// ListTransactions returns the owner's transaction history, newest first,
// optionally restricted to one wallet.
func (s *Service) ListTransactions(ctx context.Context, owner string, walletID int64, pageSize, pageID int32) ([]domain.Transaction, error) {
	arg := domain.ListTransactionsParams{
		Owner:  owner,
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	}

	if walletID != 0 {
		if _, err := s.GetForOwner(ctx, owner, walletID); err != nil {
			return nil, err
		}

		arg.WalletID = walletID
	}

	return s.transactions.List(ctx, arg)
}
