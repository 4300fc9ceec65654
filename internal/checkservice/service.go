// Package checkservice manages business logic layer of check deposits.
package checkservice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
)

// Repo provides data access layer interface needed by check service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package checkservice
type Repo interface {
	Create(ctx context.Context, arg domain.PersistCheckParams) (domain.CheckDeposit, error)
	Get(ctx context.Context, id int64) (domain.CheckDeposit, error)
	List(ctx context.Context, owner string, limit, offset int32) ([]domain.CheckDeposit, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CheckStatus, rejectionReason string) (domain.CheckDeposit, error)
	CountSince(ctx context.Context, owner string, since time.Time) (int32, error)
	CountRejectedSince(ctx context.Context, owner string, since time.Time) (int32, error)
}

// Ledger provides the atomic commit primitive needed by check service layer.
type Ledger interface {
	Commit(ctx context.Context, arg domain.CommitParams) (domain.CommitResult, error)
}

// Wallets provides wallet read access needed by check service layer.
type Wallets interface {
	Get(ctx context.Context, id int64) (domain.Wallet, error)
}

// Config holds the risk thresholds of the check deposit engine.
type Config struct {
	HighAmount        decimal.Decimal
	VeryHighAmount    decimal.Decimal
	MaxDaily          int32
	MaxWeekly         int32
	StandardHoldHours int32
	HighHoldHours     int32
	VeryHighHoldHours int32
}

// DefaultConfig returns the default risk thresholds.
func DefaultConfig() Config {
	return Config{
		HighAmount:        decimal.NewFromInt(5_000),
		VeryHighAmount:    decimal.NewFromInt(10_000),
		MaxDaily:          3,
		MaxWeekly:         10,
		StandardHoldHours: 48,
		HighHoldHours:     72,
		VeryHighHoldHours: 120,
	}
}

// Service facilitates check deposit service layer logic.
type Service struct {
	repo    Repo
	ledger  Ledger
	wallets Wallets
	config  Config
	now     func() time.Time
}

// New returns check service struct to manage check deposit business logic.
func New(cr Repo, ledger Ledger, wallets Wallets, config Config) *Service {
	return &Service{
		repo:    cr,
		ledger:  ledger,
		wallets: wallets,
		config:  config,
		now:     time.Now,
	}
}

// routingWeights are the checksum weights applied to the 9 routing number digits.
var routingWeights = [9]int32{3, 7, 1, 3, 7, 1, 3, 7, 1}

// ValidRoutingNumber reports whether the 9 digit routing number passes the
// weighted checksum: the weighted digit sum must be divisible by 10.
func ValidRoutingNumber(routingNumber string) bool {
	if len(routingNumber) != 9 {
		return false
	}

	var sum int32

	for i := 0; i < 9; i++ {
		d := routingNumber[i]
		if d < '0' || d > '9' {
			return false
		}

		sum += int32(d-'0') * routingWeights[i]
	}

	return sum%10 == 0
}

// Assess risk-scores a check against the owner's recent deposit history and
// decides verification method, status and hold duration. It reads history but
// never mutates state.
func (s *Service) Assess(ctx context.Context, owner string, amount decimal.Decimal, routingNumber string) (domain.RiskAssessment, error) {
	now := s.now()

	var score int32

	switch {
	case amount.GreaterThanOrEqual(s.config.VeryHighAmount):
		score += 40
	case amount.GreaterThanOrEqual(s.config.HighAmount):
		score += 20
	}

	daily, err := s.repo.CountSince(ctx, owner, now.Add(-24*time.Hour))
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	if daily >= s.config.MaxDaily {
		score += 30
	}

	weekly, err := s.repo.CountSince(ctx, owner, now.Add(-7*24*time.Hour))
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	if weekly >= s.config.MaxWeekly {
		score += 20
	}

	if !ValidRoutingNumber(routingNumber) {
		score += 25
	}

	rejected, err := s.repo.CountRejectedSince(ctx, owner, now.Add(-90*24*time.Hour))
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	score += rejected * 15

	if score > 100 {
		score = 100
	}

	assessment := domain.RiskAssessment{
		Score:     score,
		HoldHours: s.holdHours(score, amount),
	}

	switch {
	case score >= 70:
		assessment.VerificationMethod = domain.VerificationManual
		assessment.Status = domain.CheckPendingVerification
		assessment.Message = "Check requires manual review due to high risk factors."
	case score >= 40:
		assessment.VerificationMethod = domain.VerificationEnhanced
		assessment.Status = domain.CheckPendingVerification
		assessment.Message = "Additional verification required."
	default:
		assessment.VerificationMethod = domain.VerificationStandard
		assessment.Status = domain.CheckProcessing
		assessment.Message = "Check is being processed."
	}

	return assessment, nil
}

func (s *Service) holdHours(score int32, amount decimal.Decimal) int32 {
	if score >= 70 || amount.GreaterThanOrEqual(s.config.VeryHighAmount) {
		return s.config.VeryHighHoldHours
	}

	if score >= 40 || amount.GreaterThanOrEqual(s.config.HighAmount) {
		return s.config.HighHoldHours
	}

	return s.config.StandardHoldHours
}

// Deposit risk-scores the check and records the deposit attempt.
//
// Low risk checks post to the wallet balance immediately; any other outcome
// stores the check and a pending transaction with the balance untouched until
// clearing resolves the check.
func (s *Service) Deposit(ctx context.Context, owner string, arg domain.CreateCheckDepositParams) (domain.CheckDeposit, domain.RiskAssessment, error) {
	l := zerolog.Ctx(ctx)

	amount, err := moneypkg.ParsePositive(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.CheckDeposit{}, domain.RiskAssessment{}, err
	}

	if len(arg.RoutingNumber) != 9 {
		return domain.CheckDeposit{}, domain.RiskAssessment{}, domain.ErrInvalidRoutingNumber
	}

	wallet, err := s.wallets.Get(ctx, arg.WalletID)
	if err != nil {
		return domain.CheckDeposit{}, domain.RiskAssessment{}, err
	}

	if wallet.Owner != owner {
		l.Info().Int64("wallet_id", wallet.ID).Msg("check deposit to wallet not owned by requester")
		return domain.CheckDeposit{}, domain.RiskAssessment{}, domain.ErrWalletOwnerMismatch
	}

	assessment, err := s.Assess(ctx, owner, amount, arg.RoutingNumber)
	if err != nil {
		return domain.CheckDeposit{}, domain.RiskAssessment{}, err
	}

	description := "Check deposit"
	if arg.ImageName != "" {
		description = fmt.Sprintf("Check deposit - %s", arg.ImageName)
	}

	// The deposit attempt is always recorded pending first; funds for low
	// risk checks post in a second commit that also completes the record, so
	// the balance and the transaction status can never disagree.
	recorded, err := s.ledger.Commit(ctx, domain.CommitParams{
		Records: []domain.CreateTransactionParams{{
			Owner:       owner,
			WalletID:    wallet.ID,
			Type:        domain.TransactionCheckDeposit,
			Amount:      amount.String(),
			Currency:    wallet.Currency,
			Status:      domain.TransactionPending,
			Description: description,
		}},
	})
	if err != nil {
		return domain.CheckDeposit{}, domain.RiskAssessment{}, err
	}

	transaction := recorded.Transactions[0]

	check, err := s.repo.Create(ctx, domain.PersistCheckParams{
		Owner:              owner,
		WalletID:           wallet.ID,
		TransactionID:      transaction.ID,
		Amount:             amount.String(),
		CheckNumber:        arg.CheckNumber,
		RoutingNumber:      arg.RoutingNumber,
		AccountNumber:      arg.AccountNumber,
		BankName:           arg.BankName,
		PayeeName:          arg.PayeeName,
		CheckDate:          arg.CheckDate,
		Status:             assessment.Status,
		VerificationMethod: assessment.VerificationMethod,
		HoldHours:          assessment.HoldHours,
		RiskScore:          assessment.Score,
	})
	if err != nil {
		return domain.CheckDeposit{}, domain.RiskAssessment{}, err
	}

	if assessment.Status == domain.CheckProcessing {
		_, err = s.ledger.Commit(ctx, domain.CommitParams{
			Mutations: []domain.BalanceMutation{{WalletID: wallet.ID, Delta: amount.String()}},
			StatusUpdates: []domain.StatusUpdate{
				{TransactionID: transaction.ID, Status: domain.TransactionCompleted},
			},
		})
		if err != nil {
			return domain.CheckDeposit{}, domain.RiskAssessment{}, err
		}
	}

	return check, assessment, nil
}

// Resolve applies the clearing outcome of a check: approved checks credit the
// wallet (unless funds already posted) and complete the linked transaction,
// rejected checks fail it. Balance adjustments go through the same atomic
// commit primitive as every other operation.
func (s *Service) Resolve(ctx context.Context, checkID int64, approve bool, reason string) (domain.CheckDeposit, error) {
	check, err := s.repo.Get(ctx, checkID)
	if err != nil {
		return domain.CheckDeposit{}, err
	}

	if check.Status == domain.CheckCompleted || check.Status == domain.CheckRejected {
		return domain.CheckDeposit{}, domain.ErrCheckAlreadyResolved
	}

	posted := check.Status == domain.CheckProcessing

	if approve {
		if !posted {
			_, err = s.ledger.Commit(ctx, domain.CommitParams{
				Mutations: []domain.BalanceMutation{{WalletID: check.WalletID, Delta: check.Amount}},
				StatusUpdates: []domain.StatusUpdate{
					{TransactionID: check.TransactionID, Status: domain.TransactionCompleted},
				},
			})
			if err != nil {
				return domain.CheckDeposit{}, err
			}
		}

		return s.repo.UpdateStatus(ctx, check.ID, domain.CheckCompleted, "")
	}

	if posted {
		wallet, err := s.wallets.Get(ctx, check.WalletID)
		if err != nil {
			return domain.CheckDeposit{}, err
		}

		// Funds already posted. Claw them back with an explicit reversal so
		// the history accounts for every balance change.
		_, err = s.ledger.Commit(ctx, domain.CommitParams{
			Mutations: []domain.BalanceMutation{{WalletID: check.WalletID, Delta: moneypkg.Negate(check.Amount)}},
			Records: []domain.CreateTransactionParams{{
				Owner:       check.Owner,
				WalletID:    check.WalletID,
				Type:        domain.TransactionWithdrawal,
				Amount:      check.Amount,
				Currency:    wallet.Currency,
				Status:      domain.TransactionCompleted,
				Description: fmt.Sprintf("Check deposit reversal - check #%s", check.CheckNumber),
			}},
		})
		if err != nil {
			return domain.CheckDeposit{}, err
		}
	} else {
		_, err = s.ledger.Commit(ctx, domain.CommitParams{
			StatusUpdates: []domain.StatusUpdate{
				{TransactionID: check.TransactionID, Status: domain.TransactionFailed},
			},
		})
		if err != nil {
			return domain.CheckDeposit{}, err
		}
	}

	return s.repo.UpdateStatus(ctx, check.ID, domain.CheckRejected, reason)
}

// List returns the owner's check deposits, newest first.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.CheckDeposit, error) {
	return s.repo.List(ctx, owner, pageSize, (pageID-1)*pageSize)
}
