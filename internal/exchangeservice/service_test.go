package exchangeservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/currencypkg"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
	"github.com/fintru/wallet-ledger/pkg/randompkg"
)

func wallet(id int64, owner, balance, currency string) domain.Wallet {
	return domain.Wallet{
		ID:        id,
		Owner:     owner,
		Balance:   balance,
		Currency:  currency,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestExchange(t *testing.T) {
	owner := randompkg.Owner()
	currencies := currencypkg.NewSet("USD,EUR,GBP")

	usdWallet := wallet(1, owner, "1000", "USD")
	eurWallet := wallet(2, owner, "500", "EUR")
	otherWallet := wallet(3, randompkg.Owner(), "1000", "EUR")
	secondUSDWallet := wallet(4, owner, "100", "USD")

	expectedParams := domain.CommitParams{
		Mutations: []domain.BalanceMutation{
			{WalletID: usdWallet.ID, Delta: "-100"},
			{WalletID: eurWallet.ID, Delta: "92"},
		},
		Records: []domain.CreateTransactionParams{
			{
				Owner:       owner,
				WalletID:    usdWallet.ID,
				Type:        domain.TransactionExchange,
				Amount:      "100",
				Currency:    "USD",
				Status:      domain.TransactionCompleted,
				Description: "Exchanged 100 USD to EUR",
			},
			{
				Owner:       owner,
				WalletID:    eurWallet.ID,
				Type:        domain.TransactionExchange,
				Amount:      "92",
				Currency:    "EUR",
				Status:      domain.TransactionCompleted,
				Description: "Received 92 EUR from USD",
			},
		},
	}

	expectedResult := domain.CommitResult{
		Wallets: []domain.Wallet{usdWallet, eurWallet},
		Transactions: []domain.Transaction{
			{ID: 1, WalletID: usdWallet.ID, Amount: "100"},
			{ID: 2, WalletID: eurWallet.ID, Amount: "92"},
		},
	}

	testCases := []struct {
		name          string
		arg           domain.CreateExchangeParams
		buildStubs    func(ledger *MockLedger, wallets *MockWallets, rates *MockRates)
		checkResponse func(res domain.ExchangeTxResult, err error)
	}{
		{
			name: "Invalid amount",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   eurWallet.ID,
				Amount:       "abc",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, moneypkg.ErrInvalidAmount.Error())
			},
		},
		{
			name: "Same wallet",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   usdWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrSameWallet.Error())
			},
		},
		{
			name: "Destination not owned by requester",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   otherWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(otherWallet.ID)).
					Times(1).
					Return(otherWallet, nil)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrWalletOwnerMismatch.Error())
			},
		},
		{
			name: "Same currency",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   secondUSDWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(secondUSDWallet.ID)).
					Times(1).
					Return(secondUSDWallet, nil)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrSameCurrency.Error())
			},
		},
		{
			name: "Insufficient balance",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   eurWallet.ID,
				Amount:       "5000",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				rates.EXPECT().Rate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(eurWallet.ID)).
					Times(1).
					Return(eurWallet, nil)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			},
		},
		{
			name: "Rate unavailable",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   eurWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(eurWallet.ID)).
					Times(1).
					Return(eurWallet, nil)
				rates.EXPECT().Rate(gomock.Any(), gomock.Eq("USD"), gomock.Eq("EUR")).
					Times(1).
					Return(decimal.Decimal{}, domain.ErrRateUnavailable)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrRateUnavailable.Error())
			},
		},
		{
			name: "Ledger err",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   eurWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(eurWallet.ID)).
					Times(1).
					Return(eurWallet, nil)
				rates.EXPECT().Rate(gomock.Any(), gomock.Eq("USD"), gomock.Eq("EUR")).
					Times(1).
					Return(decimal.RequireFromString("0.92"), nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.CommitResult{}, errorspkg.ErrInternal)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name: "OK",
			arg: domain.CreateExchangeParams{
				FromWalletID: usdWallet.ID,
				ToWalletID:   eurWallet.ID,
				Amount:       "100",
			},
			buildStubs: func(ledger *MockLedger, wallets *MockWallets, rates *MockRates) {
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(usdWallet.ID)).
					Times(1).
					Return(usdWallet, nil)
				wallets.EXPECT().Get(gomock.Any(), gomock.Eq(eurWallet.ID)).
					Times(1).
					Return(eurWallet, nil)
				rates.EXPECT().Rate(gomock.Any(), gomock.Eq("USD"), gomock.Eq("EUR")).
					Times(1).
					Return(decimal.RequireFromString("0.92"), nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(expectedParams)).
					Times(1).
					Return(expectedResult, nil)
			},
			checkResponse: func(res domain.ExchangeTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, "0.92", res.Rate)
				require.Equal(t, expectedResult.Transactions[0], res.FromTransaction)
				require.Equal(t, expectedResult.Transactions[1], res.ToTransaction)
				require.Equal(t, expectedResult.Wallets[0], res.FromWallet)
				require.Equal(t, expectedResult.Wallets[1], res.ToWallet)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ledger := NewMockLedger(ctrl)
			wallets := NewMockWallets(ctrl)
			rates := NewMockRates(ctrl)
			exchangeService := New(ledger, wallets, rates, currencies)

			tc.buildStubs(ledger, wallets, rates)

			tc.checkResponse(exchangeService.Exchange(context.Background(), owner, tc.arg))
		})
	}
}

func TestRates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := NewMockLedger(ctrl)
	wallets := NewMockWallets(ctrl)
	rates := NewMockRates(ctrl)
	exchangeService := New(ledger, wallets, rates, currencypkg.NewSet("USD,EUR"))

	rates.EXPECT().Rate(gomock.Any(), gomock.Eq("USD"), gomock.Eq("EUR")).
		Times(1).
		Return(decimal.RequireFromString("0.92"), nil)
	rates.EXPECT().Rate(gomock.Any(), gomock.Eq("EUR"), gomock.Eq("USD")).
		Times(1).
		Return(decimal.Decimal{}, domain.ErrRateUnavailable)

	table, err := exchangeService.Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]string{
		"USD": {"EUR": "0.92"},
	}, table)
}
