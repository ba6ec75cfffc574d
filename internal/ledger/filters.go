package ledger

import (
	"gorm.io/gorm"
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
	Type EntryType
}

func (f TypeFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", f.Type)
}

type ProposalFilter struct {
	ProposalID string
}

func (f ProposalFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("proposal_id = ?", f.ProposalID)
}
