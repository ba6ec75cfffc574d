package proposal

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) InTx(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *Repo) Create(p *Proposal) error {
	return r.db.Create(&p).Error
}

func (r *Repo) Update(tx *gorm.DB, p Proposal) error {
	return tx.Save(&p).Error
}

func (r *Repo) GetByID(id uuid.UUID) (*Proposal, error) {
	p := Proposal{ID: id}
	if err := r.db.Take(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *Repo) GetByFilters(filters []Filter) ([]Proposal, error) {
	db := r.db.Model(&Proposal{}).Order("created_at desc")
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Proposal
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

// GetByPostAndRequester returns every proposal the requester ever opened on
// the post. Liveness is decided in Go so the rule lives in one place.
func (r *Repo) GetByPostAndRequester(postID, requesterID uuid.UUID) ([]Proposal, error) {
	var list []Proposal
	err := r.db.
		Where("post_id = @post_id and requester_id = @requester_id",
			sql.Named("post_id", postID),
			sql.Named("requester_id", requesterID),
		).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// SumPendingPayerHours totals the hours the user has locked up as the payer
// of accepted, still-live proposals.
func (r *Repo) SumPendingPayerHours(userID uuid.UUID) (int, error) {
	var total sql.NullInt64
	err := r.db.
		Model(&Proposal{}).
		Select("coalesce(sum(timebank_hour), 0)").
		Where("status = @accepted and job_status = @none and ((post_type = @offer and requester_id = @user_id) or (post_type = @need and provider_id = @user_id))",
			sql.Named("accepted", lifecycle.StatusAccepted),
			sql.Named("none", lifecycle.JobStatusNone),
			sql.Named("offer", lifecycle.PostTypeOffer),
			sql.Named("need", lifecycle.PostTypeNeed),
			sql.Named("user_id", userID),
		).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}

	return int(total.Int64), nil
}
