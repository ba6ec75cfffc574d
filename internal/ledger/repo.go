package ledger

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) CreateAccount(tx *gorm.DB, account *Account) error {
	return tx.Create(&account).Error
}

// GetAccountForUpdate locks the account row for the rest of the transaction
// so two settlements on the same user cannot interleave.
func (r *Repo) GetAccountForUpdate(tx *gorm.DB, userID uuid.UUID) (*Account, error) {
	var account Account
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&account).
		Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *Repo) GetAccount(userID uuid.UUID) (*Account, error) {
	account := Account{UserID: userID}
	if err := r.db.Take(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *Repo) SaveAccount(tx *gorm.DB, account *Account) error {
	return tx.Save(&account).Error
}

func (r *Repo) CreateEntry(tx *gorm.DB, entry *Entry) error {
	return tx.Create(&entry).Error
}

func (r *Repo) GetEntries(userID uuid.UUID, filters []Filter) ([]Entry, error) {
	db := r.db.
		Model(&Entry{}).
		Where("user_id = ?", userID).
		Order("created_at desc")
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Entry
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}
