package post

import (
	"database/sql"
	"errors"
	"fmt"
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

func (r *Repo) Create(post *Post) error {
	return r.db.Create(&post).Error
}

func (r *Repo) Update(post Post) error {
	return r.db.Save(&post).Error
}

func (r *Repo) GetByID(id uuid.UUID) (*Post, error) {
	post := Post{ID: id}
	if err := r.db.Take(&post).Error; err != nil {
		return nil, fmt.Errorf("get post by id #%s: %w", id, err)
	}

	return &post, nil
}

func (r *Repo) GetByFilters(filters []Filter) ([]Post, error) {
	db := r.db.Model(&Post{}).Order("created_at desc")
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Post
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

func (r *Repo) Delete(id uuid.UUID) error {
	return r.db.Delete(&Post{ID: id}).Error
}

// GetCurrentAIRequestsCount returns the number of summary requests by the
// user since the start of the month.
func (r *Repo) GetCurrentAIRequestsCount(userID uuid.UUID) (int64, error) {
	var count int64

	err := r.db.
		Model(&AIRequest{}).
		Where("user_id = @user_id and created_at >= @start_of_month",
			sql.Named("user_id", userID),
			sql.Named("start_of_month", beginningOfMonth(time.Now())),
		).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func beginningOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// AISummaryRequested reports whether the user already asked for this post.
func (r *Repo) AISummaryRequested(userID, postID uuid.UUID) (bool, error) {
	var req AIRequest
	err := r.db.
		Where(
			"user_id = @user_id and post_id = @post_id",
			sql.Named("user_id", userID),
			sql.Named("post_id", postID),
		).
		First(&req).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	return true, nil
}

func (r *Repo) CreateAIRequest(req *AIRequest) error {
	return r.db.Create(&req).Error
}

func (r *Repo) CreateAISummary(sum *AISummary) error {
	return r.db.Create(&sum).Error
}

func (r *Repo) GetSummary(postID uuid.UUID) (string, error) {
	var info AISummary
	err := r.db.
		Where("post_id = @post_id", sql.Named("post_id", postID)).
		First(&info).
		Error
	if err != nil {
		return "", err
	}

	return info.Summary, nil
}
