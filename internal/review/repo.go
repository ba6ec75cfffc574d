package review

import (
	"database/sql"

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

func (r *Repo) Create(rev *Review) error {
	return r.db.Create(&rev).Error
}

func (r *Repo) GetByFilters(filters []Filter) ([]Review, error) {
	db := r.db.Model(&Review{}).Order("created_at desc")
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Review
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

func (r *Repo) Exists(proposalID, reviewerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.
		Model(&Review{}).
		Where("proposal_id = @proposal_id and reviewer_id = @reviewer_id",
			sql.Named("proposal_id", proposalID),
			sql.Named("reviewer_id", reviewerID),
		).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// AverageRating is nil when the user has no reviews yet.
func (r *Repo) AverageRating(revieweeID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.
		Model(&Review{}).
		Select("avg(rating)").
		Where("reviewee_id = ?", revieweeID).
		Scan(&avg).
		Error
	if err != nil {
		return nil, err
	}

	if !avg.Valid {
		return nil, nil
	}

	return &avg.Float64, nil
}
