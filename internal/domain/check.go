package domain

import (
	"errors"
	"time"
)

var (
	// ErrCheckNotFound indicates that the check deposit is not found.
	ErrCheckNotFound = errors.New("check deposit not found")
	// ErrCheckAlreadyResolved indicates a clearing attempt on a check that has
	// already completed or been rejected.
	ErrCheckAlreadyResolved = errors.New("check deposit already resolved")
	// ErrInvalidRoutingNumber indicates a routing number that is not 9 digits.
	ErrInvalidRoutingNumber = errors.New("routing number must be 9 digits")
)

// CheckStatus is the lifecycle state of a deposited check.
type CheckStatus string

// All check statuses.
const (
	CheckPendingVerification CheckStatus = "pending_verification"
	CheckVerified            CheckStatus = "verified"
	CheckProcessing          CheckStatus = "processing"
	CheckCompleted           CheckStatus = "completed"
	CheckRejected            CheckStatus = "rejected"
	CheckOnHold              CheckStatus = "on_hold"
)

// VerificationMethod is how a deposited check gets verified.
type VerificationMethod string

// All verification methods.
const (
	VerificationStandard VerificationMethod = "standard"
	VerificationEnhanced VerificationMethod = "enhanced"
	VerificationManual   VerificationMethod = "manual"
)

// CheckDeposit is a deposited check pending clearing, linked 1:1 to the
// transaction representing the deposit attempt.
type CheckDeposit struct {
	ID                 int64              `json:"id"`
	Owner              string             `json:"owner"`
	WalletID           int64              `json:"wallet_id"`
	TransactionID      int64              `json:"transaction_id"`
	Amount             string             `json:"amount"`
	CheckNumber        string             `json:"check_number"`
	RoutingNumber      string             `json:"routing_number"`
	AccountNumber      string             `json:"account_number"`
	BankName           string             `json:"bank_name"`
	PayeeName          string             `json:"payee_name"`
	CheckDate          time.Time          `json:"check_date"`
	DepositDate        time.Time          `json:"deposit_date"`
	Status             CheckStatus        `json:"status"`
	VerificationMethod VerificationMethod `json:"verification_method"`
	HoldHours          int32              `json:"hold_hours"`
	RiskScore          int32              `json:"risk_score"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
}

// CreateCheckDepositParams is the input data to deposit a check. ImageName is
// metadata only; the binary content is handled by the file intake collaborator.
type CreateCheckDepositParams struct {
	WalletID      int64     `json:"wallet_id"`
	Amount        string    `json:"amount"`
	CheckNumber   string    `json:"check_number"`
	RoutingNumber string    `json:"routing_number"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	PayeeName     string    `json:"payee_name"`
	CheckDate     time.Time `json:"check_date"`
	ImageName     string    `json:"image_name"`
}

// PersistCheckParams is the input data to persist a risk-assessed check,
// linked to the transaction representing the deposit attempt.
type PersistCheckParams struct {
	Owner              string
	WalletID           int64
	TransactionID      int64
	Amount             string
	CheckNumber        string
	RoutingNumber      string
	AccountNumber      string
	BankName           string
	PayeeName          string
	CheckDate          time.Time
	Status             CheckStatus
	VerificationMethod VerificationMethod
	HoldHours          int32
	RiskScore          int32
}

// RiskAssessment is the outcome of risk scoring a deposited check.
type RiskAssessment struct {
	Score              int32              `json:"risk_score"`
	VerificationMethod VerificationMethod `json:"verification_method"`
	Status             CheckStatus        `json:"status"`
	HoldHours          int32              `json:"hold_hours"`
	Message            string             `json:"message"`
}
