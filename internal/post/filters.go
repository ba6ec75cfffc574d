package post

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

type TypeFilter struct {
	Type lifecycle.PostType
}

func (f TypeFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("post_type = ?", f.Type)
}

type OwnerFilter struct {
	OwnerID string
}

func (f OwnerFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("posted_by_id = ?", f.OwnerID)
}

type SearchFilter struct {
	Query string
}

func (f SearchFilter) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + f.Query + "%"
	return db.Where("title ilike ? or description ilike ?", pattern, pattern)
}
