package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypePlatformFee      TransactionType = "platform_fee"
	TransactionTypeServiceFee       TransactionType = "service_fee"
	TransactionTypeContractorPayout TransactionType = "contractor_payout"
	TransactionTypeRefund           TransactionType = "refund"
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeEscrowHold       TransactionType = "escrow_hold"
	TransactionTypeEscrowRelease    TransactionType = "escrow_release"
)

// IsFee reports whether the platform keeps the transaction amount.
func (t TransactionType) IsFee() bool {
	return t == TransactionTypePlatformFee || t == TransactionTypeServiceFee
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// TransactionParty is the embedded user reference on both sides of a transaction.
type TransactionParty struct {
	ID       string `json:"_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Transaction is a wallet movement recorded by the payments backend.
type Transaction struct {
	ID          string            `json:"_id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	From        TransactionParty  `json:"from"`
	To          TransactionParty  `json:"to"`
	Offer       string            `json:"offer"`
	Job         string            `json:"job"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
