package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/metrics"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{
		repo: repo,
	}
}

// OpenAccount seeds a new member's account with the starting grant. Called
// once inside the signup transaction.
func (s *Service) OpenAccount(tx *gorm.DB, userID uuid.UUID) error {
	now := time.Now()
	account := Account{
		UserID:    userID,
		Balance:   StartingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateAccount(tx, &account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	entry := Entry{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         EntrySignupBonus,
		Amount:       StartingBalance,
		BalanceAfter: StartingBalance,
		CreatedAt:    now,
	}
	if err := s.repo.CreateEntry(tx, &entry); err != nil {
		return fmt.Errorf("create signup entry: %w", err)
	}

	return nil
}

func (s *Service) Balance(userID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.repo.GetAccount(userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get account %s: %w", userID, err)
	}

	return account.Balance, nil
}

func (s *Service) History(userID uuid.UUID, filters []Filter) ([]Entry, error) {
	return s.repo.GetEntries(userID, filters)
}

// Hold debits the payer for an accepted proposal. Fails when the account
// would go negative.
func (s *Service) Hold(tx *gorm.DB, payerID, proposalID uuid.UUID, hours int) error {
	amount := decimal.NewFromInt(int64(hours))
	return s.apply(tx, payerID, proposalID, EntryHold, amount.Neg())
}

// Refund returns previously held hours to the payer.
func (s *Service) Refund(tx *gorm.DB, payerID, proposalID uuid.UUID, hours int) error {
	return s.apply(tx, payerID, proposalID, EntryRefund, decimal.NewFromInt(int64(hours)))
}

// Transfer credits the held hours to the non-cancelling party after a
// no-show.
func (s *Service) Transfer(tx *gorm.DB, recipientID, proposalID uuid.UUID, hours int) error {
	return s.apply(tx, recipientID, proposalID, EntryTransfer, decimal.NewFromInt(int64(hours)))
}

// Earn releases the held hours to the earning party once both sides approve.
func (s *Service) Earn(tx *gorm.DB, earnerID, proposalID uuid.UUID, hours int) error {
	return s.apply(tx, earnerID, proposalID, EntryEarn, decimal.NewFromInt(int64(hours)))
}

func (s *Service) apply(tx *gorm.DB, userID, proposalID uuid.UUID, etype EntryType, amount decimal.Decimal) error {
	account, err := s.repo.GetAccountForUpdate(tx, userID)
	if err != nil {
		return fmt.Errorf("lock account %s: %w", userID, err)
	}

	balance := account.Balance.Add(amount)
	if balance.IsNegative() {
		return ErrInsufficientBalance
	}

	account.Balance = balance
	account.UpdatedAt = time.Now()
	if err := s.repo.SaveAccount(tx, account); err != nil {
		return fmt.Errorf("save account %s: %w", userID, err)
	}

	entry := Entry{
		ID:           uuid.New(),
		UserID:       userID,
		ProposalID:   &proposalID,
		Type:         etype,
		Amount:       amount,
		BalanceAfter: balance,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateEntry(tx, &entry); err != nil {
		return fmt.Errorf("create %s entry: %w", etype, err)
	}

	metrics.CollectCreditMoved(string(etype), amount.Abs().InexactFloat64())

	return nil
}
