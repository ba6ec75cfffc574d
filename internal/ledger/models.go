package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	// EntrySignupBonus seeds a fresh account with the community grant.
	EntrySignupBonus EntryType = "signup_bonus"
	// EntryHold debits the payer when a proposal is accepted.
	EntryHold EntryType = "hold"
	// EntryRefund returns held hours to the payer on cancellation.
	EntryRefund EntryType = "refund"
	// EntryTransfer moves held hours to the non-cancelling party on a no-show.
	EntryTransfer EntryType = "transfer"
	// EntryEarn credits the earning party once both sides approve.
	EntryEarn EntryType = "earn"
)

// StartingBalance every new member receives, matching the community grant of
// three hours.
var StartingBalance = decimal.NewFromInt(3)

type Account struct {
	UserID uuid.UUID `gorm:"primary_key"`

	Balance decimal.Decimal `gorm:"type:numeric(8,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string {
	return "credit_accounts"
}

type Entry struct {
	ID     uuid.UUID `gorm:"primary_key" json:"id"`
	UserID uuid.UUID `gorm:"index" json:"user_id"`

	ProposalID *uuid.UUID `gorm:"index" json:"proposal_id,omitempty"`

	Type         EntryType       `json:"type"`
	Amount       decimal.Decimal `gorm:"type:numeric(8,2)" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(8,2)" json:"balance_after"`

	CreatedAt time.Time `json:"created_at"`
}

func (Entry) TableName() string {
	return "credit_entries"
}
