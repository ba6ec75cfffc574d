package proposal

import (
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

type Filter interface {
	Apply(*gorm.DB) *gorm.DB
}

type PageFilter struct {
	Offset int
	Limit  int
}

func (f PageFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset(f.Offset).Limit(f.Limit)
}

type PostFilter struct {
	PostID string
}

func (f PostFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("post_id = ?", f.PostID)
}

// ParticipantFilter keeps proposals the user is involved in on either side.
type ParticipantFilter struct {
	UserID string
}

func (f ParticipantFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requester_id = ? or provider_id = ?", f.UserID, f.UserID)
}

type StatusFilter struct {
	Status lifecycle.Status
}

func (f StatusFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", f.Status)
}
