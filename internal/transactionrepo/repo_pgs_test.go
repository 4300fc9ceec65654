package transactionrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/internal/walletrepo"
	"github.com/fintru/wallet-ledger/pkg/configpkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
	"github.com/fintru/wallet-ledger/pkg/randompkg"
)

var (
	testRepo       *RepoPGS
	testWalletRepo *walletrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)
	testWalletRepo = walletrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func seedWallet(t *testing.T) domain.Wallet {
	wallet, err := testWalletRepo.Create(context.Background(), randompkg.Owner(), "1000", "USD")
	require.NoError(t, err)

	return wallet
}

func createTransaction(t *testing.T, arg domain.CreateTransactionParams) domain.Transaction {
	txn, err := testRepo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, txn)

	require.Equal(t, arg.Owner, txn.Owner)
	require.Equal(t, arg.WalletID, txn.WalletID)
	require.Equal(t, arg.Type, txn.Type)
	require.Equal(t, arg.Amount, txn.Amount)
	require.Equal(t, arg.Currency, txn.Currency)
	require.Equal(t, arg.Status, txn.Status)
	require.Equal(t, arg.Description, txn.Description)

	require.NotZero(t, txn.ID)
	require.NotZero(t, txn.CreatedAt)

	return txn
}

func TestCreate(t *testing.T) {
	wallet := seedWallet(t)

	createTransaction(t, domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionDeposit,
		Amount:      "100",
		Currency:    wallet.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Deposit transaction",
	})
}

func TestCreateWalletNotFound(t *testing.T) {
	txn, err := testRepo.Create(context.Background(), domain.CreateTransactionParams{
		Owner:       randompkg.Owner(),
		WalletID:    -1,
		Type:        domain.TransactionDeposit,
		Amount:      "100",
		Currency:    "USD",
		Status:      domain.TransactionCompleted,
		Description: "Deposit transaction",
	})
	require.EqualError(t, err, domain.ErrWalletNotFound.Error())
	require.Empty(t, txn)
}

func TestCreateInvalidAmount(t *testing.T) {
	wallet := seedWallet(t)

	txn, err := testRepo.Create(context.Background(), domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionDeposit,
		Amount:      "0",
		Currency:    wallet.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Deposit transaction",
	})
	require.EqualError(t, err, moneypkg.ErrInvalidAmount.Error())
	require.Empty(t, txn)
}

func TestGet(t *testing.T) {
	wallet := seedWallet(t)

	want := createTransaction(t, domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionWithdrawal,
		Amount:      "50",
		Currency:    wallet.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Withdrawal transaction",
	})

	got, err := testRepo.Get(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestGetNotFound(t *testing.T) {
	got, err := testRepo.Get(context.Background(), -1)
	require.EqualError(t, err, domain.ErrTransactionNotFound.Error())
	require.Empty(t, got)
}

func TestUpdateStatus(t *testing.T) {
	wallet := seedWallet(t)

	pending := createTransaction(t, domain.CreateTransactionParams{
		Owner:       wallet.Owner,
		WalletID:    wallet.ID,
		Type:        domain.TransactionCheckDeposit,
		Amount:      "200",
		Currency:    wallet.Currency,
		Status:      domain.TransactionPending,
		Description: "Check deposit",
	})

	got, err := testRepo.UpdateStatus(context.Background(), pending.ID, domain.TransactionCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionCompleted, got.Status)

	// Committed transactions are immutable.
	_, err = testRepo.UpdateStatus(context.Background(), pending.ID, domain.TransactionFailed)
	require.EqualError(t, err, domain.ErrTransactionNotFound.Error())

	got, err = testRepo.Get(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionCompleted, got.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	got, err := testRepo.UpdateStatus(context.Background(), -1, domain.TransactionCompleted)
	require.EqualError(t, err, domain.ErrTransactionNotFound.Error())
	require.Empty(t, got)
}

func TestList(t *testing.T) {
	wallet1 := seedWallet(t)
	wallet2, err := testWalletRepo.Create(context.Background(), wallet1.Owner, "1000", "EUR")
	require.NoError(t, err)

	types := []domain.TransactionType{
		domain.TransactionDeposit,
		domain.TransactionWithdrawal,
		domain.TransactionTransferOut,
		domain.TransactionExchange,
	}

	seeded := make([]domain.Transaction, 0, len(types)+1)

	for _, transactionType := range types {
		seeded = append(seeded, createTransaction(t, domain.CreateTransactionParams{
			Owner:       wallet1.Owner,
			WalletID:    wallet1.ID,
			Type:        transactionType,
			Amount:      "10",
			Currency:    wallet1.Currency,
			Status:      domain.TransactionCompleted,
			Description: "Test transaction",
		}))
	}

	seeded = append(seeded, createTransaction(t, domain.CreateTransactionParams{
		Owner:       wallet1.Owner,
		WalletID:    wallet2.ID,
		Type:        domain.TransactionDeposit,
		Amount:      "10",
		Currency:    wallet2.Currency,
		Status:      domain.TransactionCompleted,
		Description: "Test transaction",
	}))

	// Newest first.
	newestFirst := make([]domain.Transaction, len(seeded))
	for i, txn := range seeded {
		newestFirst[len(seeded)-1-i] = txn
	}

	testCases := []struct {
		name string
		arg  domain.ListTransactionsParams
		want []domain.Transaction
	}{
		{
			name: "All for owner",
			arg: domain.ListTransactionsParams{
				Owner: wallet1.Owner,
				Limit: 100,
			},
			want: newestFirst,
		},
		{
			name: "Single wallet",
			arg: domain.ListTransactionsParams{
				Owner:    wallet1.Owner,
				WalletID: wallet2.ID,
				Limit:    100,
			},
			want: newestFirst[:1],
		},
		{
			name: "Type filter",
			arg: domain.ListTransactionsParams{
				Owner: wallet1.Owner,
				Types: []domain.TransactionType{
					domain.TransactionTransferOut,
					domain.TransactionExchange,
				},
				Limit: 100,
			},
			want: []domain.Transaction{seeded[3], seeded[2]},
		},
		{
			name: "Limit and offset",
			arg: domain.ListTransactionsParams{
				Owner:  wallet1.Owner,
				Limit:  2,
				Offset: 1,
			},
			want: newestFirst[1:3],
		},
		{
			name: "No matches",
			arg: domain.ListTransactionsParams{
				Owner: wallet1.Owner,
				Types: []domain.TransactionType{domain.TransactionCheckDeposit},
				Limit: 100,
			},
			want: []domain.Transaction{},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := testRepo.List(context.Background(), tc.arg)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
