package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(m *Message) error {
	return r.db.Create(&m).Error
}

func (r *Repo) GetThread(proposalID uuid.UUID, offset, limit int) ([]Message, error) {
	var list []Message
	err := r.db.
		Where("proposal_id = ?", proposalID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// MarkRead stamps every unread message addressed to the reader in the thread.
func (r *Repo) MarkRead(proposalID, readerID uuid.UUID, at time.Time) error {
	return r.db.
		Model(&Message{}).
		Where("proposal_id = @proposal_id and receiver_id = @reader_id and read_at is null",
			sql.Named("proposal_id", proposalID),
			sql.Named("reader_id", readerID),
		).
		Update("read_at", at).
		Error
}

func (r *Repo) CountUnread(readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.
		Model(&Message{}).
		Where("receiver_id = ? and read_at is null", readerID).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
