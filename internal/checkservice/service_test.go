package checkservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
	"github.com/fintru/wallet-ledger/pkg/randompkg"
)

// 021000021 passes the ABA checksum, 123456789 does not.
const (
	validRouting   = "021000021"
	invalidRouting = "123456789"
)

func TestValidRoutingNumber(t *testing.T) {
	testCases := []struct {
		name          string
		routingNumber string
		want          bool
	}{
		{name: "Valid", routingNumber: validRouting, want: true},
		{name: "Valid alternate", routingNumber: "011401533", want: true},
		{name: "Checksum failure", routingNumber: invalidRouting, want: false},
		{name: "Too short", routingNumber: "02100002", want: false},
		{name: "Too long", routingNumber: "0210000211", want: false},
		{name: "Non digit", routingNumber: "02100002a", want: false},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ValidRoutingNumber(tc.routingNumber))
		})
	}
}

func TestGeneratedRoutingNumbers(t *testing.T) {
	for i := 0; i < 100; i++ {
		rn := randompkg.RoutingNumber()
		require.True(t, ValidRoutingNumber(rn), "routing number %q failed checksum", rn)
	}
}

func newTestService(t *testing.T) (*Service, *MockRepo, *MockLedger, *MockWallets, time.Time) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := NewMockRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	wallets := NewMockWallets(ctrl)

	service := New(repo, ledger, wallets, DefaultConfig())

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	return service, repo, ledger, wallets, now
}

func TestAssess(t *testing.T) {
	testCases := []struct {
		name          string
		amount        string
		routingNumber string
		daily         int32
		weekly        int32
		rejected      int32
		want          domain.RiskAssessment
	}{
		{
			name:          "Low risk",
			amount:        "100",
			routingNumber: validRouting,
			want: domain.RiskAssessment{
				Score:              0,
				VerificationMethod: domain.VerificationStandard,
				Status:             domain.CheckProcessing,
				HoldHours:          48,
				Message:            "Check is being processed.",
			},
		},
		{
			name:          "High amount",
			amount:        "6000",
			routingNumber: validRouting,
			want: domain.RiskAssessment{
				Score:              20,
				VerificationMethod: domain.VerificationStandard,
				Status:             domain.CheckProcessing,
				HoldHours:          72,
				Message:            "Check is being processed.",
			},
		},
		{
			name:          "Very high amount",
			amount:        "12000",
			routingNumber: validRouting,
			want: domain.RiskAssessment{
				Score:              40,
				VerificationMethod: domain.VerificationEnhanced,
				Status:             domain.CheckPendingVerification,
				HoldHours:          120,
				Message:            "Additional verification required.",
			},
		},
		{
			name:          "Checksum failure",
			amount:        "100",
			routingNumber: invalidRouting,
			want: domain.RiskAssessment{
				Score:              25,
				VerificationMethod: domain.VerificationStandard,
				Status:             domain.CheckProcessing,
				HoldHours:          48,
				Message:            "Check is being processed.",
			},
		},
		{
			name:          "Velocity and rejection history",
			amount:        "100",
			routingNumber: validRouting,
			daily:         3,
			weekly:        10,
			rejected:      1,
			want: domain.RiskAssessment{
				Score:              65,
				VerificationMethod: domain.VerificationEnhanced,
				Status:             domain.CheckPendingVerification,
				HoldHours:          72,
				Message:            "Additional verification required.",
			},
		},
		{
			name:          "Score clamped at 100",
			amount:        "12000",
			routingNumber: invalidRouting,
			daily:         5,
			weekly:        20,
			rejected:      2,
			want: domain.RiskAssessment{
				Score:              100,
				VerificationMethod: domain.VerificationManual,
				Status:             domain.CheckPendingVerification,
				HoldHours:          120,
				Message:            "Check requires manual review due to high risk factors.",
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			service, repo, _, _, now := newTestService(t)
			owner := randompkg.Owner()

			repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-24*time.Hour))).
				Times(1).
				Return(tc.daily, nil)
			repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-7*24*time.Hour))).
				Times(1).
				Return(tc.weekly, nil)
			repo.EXPECT().CountRejectedSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-90*24*time.Hour))).
				Times(1).
				Return(tc.rejected, nil)

			got, err := service.Assess(context.Background(), owner, decimal.RequireFromString(tc.amount), tc.routingNumber)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDeposit(t *testing.T) {
	owner := randompkg.Owner()
	testWallet := domain.Wallet{ID: 1, Owner: owner, Balance: "1000", Currency: "USD"}
	checkDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	arg := domain.CreateCheckDepositParams{
		WalletID:      testWallet.ID,
		Amount:        "200",
		CheckNumber:   "1042",
		RoutingNumber: validRouting,
		AccountNumber: "000123456789",
		BankName:      "First National",
		PayeeName:     owner,
		CheckDate:     checkDate,
		ImageName:     "front.jpg",
	}

	t.Run("Invalid amount", func(t *testing.T) {
		service, _, _, _, _ := newTestService(t)

		badArg := arg
		badArg.Amount = "abc"

		_, _, err := service.Deposit(context.Background(), owner, badArg)
		require.EqualError(t, err, moneypkg.ErrInvalidAmount.Error())
	})

	t.Run("Invalid routing number", func(t *testing.T) {
		service, _, _, _, _ := newTestService(t)

		badArg := arg
		badArg.RoutingNumber = "12345"

		_, _, err := service.Deposit(context.Background(), owner, badArg)
		require.EqualError(t, err, domain.ErrInvalidRoutingNumber.Error())
	})

	t.Run("Wallet owner mismatch", func(t *testing.T) {
		service, _, _, wallets, _ := newTestService(t)

		wallets.EXPECT().Get(gomock.Any(), gomock.Eq(testWallet.ID)).
			Times(1).
			Return(domain.Wallet{ID: testWallet.ID, Owner: "someone else"}, nil)

		_, _, err := service.Deposit(context.Background(), owner, arg)
		require.EqualError(t, err, domain.ErrWalletOwnerMismatch.Error())
	})

	t.Run("Low risk posts immediately", func(t *testing.T) {
		service, repo, ledger, wallets, now := newTestService(t)

		wallets.EXPECT().Get(gomock.Any(), gomock.Eq(testWallet.ID)).
			Times(1).
			Return(testWallet, nil)

		repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-24*time.Hour))).
			Times(1).Return(int32(0), nil)
		repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-7*24*time.Hour))).
			Times(1).Return(int32(0), nil)
		repo.EXPECT().CountRejectedSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-90*24*time.Hour))).
			Times(1).Return(int32(0), nil)

		pendingRecord := domain.CommitParams{
			Records: []domain.CreateTransactionParams{{
				Owner:       owner,
				WalletID:    testWallet.ID,
				Type:        domain.TransactionCheckDeposit,
				Amount:      "200",
				Currency:    "USD",
				Status:      domain.TransactionPending,
				Description: "Check deposit - front.jpg",
			}},
		}

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(pendingRecord)).
			Times(1).
			Return(domain.CommitResult{
				Transactions: []domain.Transaction{{ID: 7, WalletID: testWallet.ID, Amount: "200"}},
			}, nil)

		persistParams := domain.PersistCheckParams{
			Owner:              owner,
			WalletID:           testWallet.ID,
			TransactionID:      7,
			Amount:             "200",
			CheckNumber:        arg.CheckNumber,
			RoutingNumber:      arg.RoutingNumber,
			AccountNumber:      arg.AccountNumber,
			BankName:           arg.BankName,
			PayeeName:          arg.PayeeName,
			CheckDate:          checkDate,
			Status:             domain.CheckProcessing,
			VerificationMethod: domain.VerificationStandard,
			HoldHours:          48,
			RiskScore:          0,
		}

		storedCheck := domain.CheckDeposit{
			ID:            11,
			Owner:         owner,
			WalletID:      testWallet.ID,
			TransactionID: 7,
			Amount:        "200",
			Status:        domain.CheckProcessing,
		}

		repo.EXPECT().Create(gomock.Any(), gomock.Eq(persistParams)).
			Times(1).
			Return(storedCheck, nil)

		posting := domain.CommitParams{
			Mutations: []domain.BalanceMutation{{WalletID: testWallet.ID, Delta: "200"}},
			StatusUpdates: []domain.StatusUpdate{
				{TransactionID: 7, Status: domain.TransactionCompleted},
			},
		}

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(posting)).
			Times(1).
			Return(domain.CommitResult{}, nil)

		check, assessment, err := service.Deposit(context.Background(), owner, arg)
		require.NoError(t, err)
		require.Equal(t, storedCheck, check)
		require.Equal(t, domain.CheckProcessing, assessment.Status)
		require.Equal(t, int32(0), assessment.Score)
	})

	t.Run("High risk holds funds", func(t *testing.T) {
		service, repo, ledger, wallets, now := newTestService(t)

		bigArg := arg
		bigArg.Amount = "12000"
		bigArg.ImageName = ""

		wallets.EXPECT().Get(gomock.Any(), gomock.Eq(testWallet.ID)).
			Times(1).
			Return(testWallet, nil)

		repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-24*time.Hour))).
			Times(1).Return(int32(0), nil)
		repo.EXPECT().CountSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-7*24*time.Hour))).
			Times(1).Return(int32(0), nil)
		repo.EXPECT().CountRejectedSince(gomock.Any(), gomock.Eq(owner), gomock.Eq(now.Add(-90*24*time.Hour))).
			Times(1).Return(int32(0), nil)

		pendingRecord := domain.CommitParams{
			Records: []domain.CreateTransactionParams{{
				Owner:       owner,
				WalletID:    testWallet.ID,
				Type:        domain.TransactionCheckDeposit,
				Amount:      "12000",
				Currency:    "USD",
				Status:      domain.TransactionPending,
				Description: "Check deposit",
			}},
		}

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(pendingRecord)).
			Times(1).
			Return(domain.CommitResult{
				Transactions: []domain.Transaction{{ID: 8, WalletID: testWallet.ID, Amount: "12000"}},
			}, nil)

		storedCheck := domain.CheckDeposit{
			ID:            12,
			Owner:         owner,
			WalletID:      testWallet.ID,
			TransactionID: 8,
			Amount:        "12000",
			Status:        domain.CheckPendingVerification,
		}

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			Times(1).
			Return(storedCheck, nil)

		check, assessment, err := service.Deposit(context.Background(), owner, bigArg)
		require.NoError(t, err)
		require.Equal(t, storedCheck, check)
		require.Equal(t, domain.CheckPendingVerification, assessment.Status)
		require.Equal(t, domain.VerificationEnhanced, assessment.VerificationMethod)
		require.Equal(t, int32(120), assessment.HoldHours)
	})
}

func TestResolve(t *testing.T) {
	owner := randompkg.Owner()

	heldCheck := domain.CheckDeposit{
		ID:            21,
		Owner:         owner,
		WalletID:      1,
		TransactionID: 7,
		Amount:        "200",
		CheckNumber:   "1042",
		Status:        domain.CheckPendingVerification,
	}

	postedCheck := heldCheck
	postedCheck.Status = domain.CheckProcessing

	t.Run("Not found", func(t *testing.T) {
		service, repo, _, _, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(int64(404))).
			Times(1).
			Return(domain.CheckDeposit{}, domain.ErrCheckNotFound)

		_, err := service.Resolve(context.Background(), 404, true, "")
		require.EqualError(t, err, domain.ErrCheckNotFound.Error())
	})

	t.Run("Already resolved", func(t *testing.T) {
		service, repo, _, _, _ := newTestService(t)

		resolved := heldCheck
		resolved.Status = domain.CheckCompleted

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(heldCheck.ID)).
			Times(1).
			Return(resolved, nil)

		_, err := service.Resolve(context.Background(), heldCheck.ID, true, "")
		require.EqualError(t, err, domain.ErrCheckAlreadyResolved.Error())
	})

	t.Run("Approve unposted check credits wallet", func(t *testing.T) {
		service, repo, ledger, _, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(heldCheck.ID)).
			Times(1).
			Return(heldCheck, nil)

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(domain.CommitParams{
			Mutations: []domain.BalanceMutation{{WalletID: heldCheck.WalletID, Delta: "200"}},
			StatusUpdates: []domain.StatusUpdate{
				{TransactionID: heldCheck.TransactionID, Status: domain.TransactionCompleted},
			},
		})).Times(1).Return(domain.CommitResult{}, nil)

		completed := heldCheck
		completed.Status = domain.CheckCompleted

		repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Eq(heldCheck.ID), gomock.Eq(domain.CheckCompleted), gomock.Eq("")).
			Times(1).
			Return(completed, nil)

		got, err := service.Resolve(context.Background(), heldCheck.ID, true, "")
		require.NoError(t, err)
		require.Equal(t, completed, got)
	})

	t.Run("Approve posted check skips credit", func(t *testing.T) {
		service, repo, _, _, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(postedCheck.ID)).
			Times(1).
			Return(postedCheck, nil)

		completed := postedCheck
		completed.Status = domain.CheckCompleted

		repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Eq(postedCheck.ID), gomock.Eq(domain.CheckCompleted), gomock.Eq("")).
			Times(1).
			Return(completed, nil)

		got, err := service.Resolve(context.Background(), postedCheck.ID, true, "")
		require.NoError(t, err)
		require.Equal(t, completed, got)
	})

	t.Run("Reject posted check reverses funds", func(t *testing.T) {
		service, repo, ledger, wallets, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(postedCheck.ID)).
			Times(1).
			Return(postedCheck, nil)

		wallets.EXPECT().Get(gomock.Any(), gomock.Eq(postedCheck.WalletID)).
			Times(1).
			Return(domain.Wallet{ID: postedCheck.WalletID, Owner: owner, Balance: "1200", Currency: "USD"}, nil)

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(domain.CommitParams{
			Mutations: []domain.BalanceMutation{{WalletID: postedCheck.WalletID, Delta: "-200"}},
			Records: []domain.CreateTransactionParams{{
				Owner:       owner,
				WalletID:    postedCheck.WalletID,
				Type:        domain.TransactionWithdrawal,
				Amount:      "200",
				Currency:    "USD",
				Status:      domain.TransactionCompleted,
				Description: "Check deposit reversal - check #1042",
			}},
		})).Times(1).Return(domain.CommitResult{}, nil)

		rejected := postedCheck
		rejected.Status = domain.CheckRejected
		rejected.RejectionReason = "signature mismatch"

		repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Eq(postedCheck.ID), gomock.Eq(domain.CheckRejected), gomock.Eq("signature mismatch")).
			Times(1).
			Return(rejected, nil)

		got, err := service.Resolve(context.Background(), postedCheck.ID, false, "signature mismatch")
		require.NoError(t, err)
		require.Equal(t, rejected, got)
	})

	t.Run("Reject unposted check fails transaction", func(t *testing.T) {
		service, repo, ledger, _, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(heldCheck.ID)).
			Times(1).
			Return(heldCheck, nil)

		ledger.EXPECT().Commit(gomock.Any(), gomock.Eq(domain.CommitParams{
			StatusUpdates: []domain.StatusUpdate{
				{TransactionID: heldCheck.TransactionID, Status: domain.TransactionFailed},
			},
		})).Times(1).Return(domain.CommitResult{}, nil)

		rejected := heldCheck
		rejected.Status = domain.CheckRejected

		repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Eq(heldCheck.ID), gomock.Eq(domain.CheckRejected), gomock.Eq("stale date")).
			Times(1).
			Return(rejected, nil)

		got, err := service.Resolve(context.Background(), heldCheck.ID, false, "stale date")
		require.NoError(t, err)
		require.Equal(t, rejected, got)
	})

	t.Run("Ledger err", func(t *testing.T) {
		service, repo, ledger, _, _ := newTestService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Eq(heldCheck.ID)).
			Times(1).
			Return(heldCheck, nil)

		ledger.EXPECT().Commit(gomock.Any(), gomock.Any()).
			Times(1).
			Return(domain.CommitResult{}, errorspkg.ErrInternal)

		_, err := service.Resolve(context.Background(), heldCheck.ID, true, "")
		require.EqualError(t, err, errorspkg.ErrInternal.Error())
	})
}
