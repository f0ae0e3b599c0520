package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hoaxify/models"
)

type PostStore struct {
	db *gorm.DB
}

// FindOptions describes a filtered, sorted and optionally paginated scan.
// Limit <= 0 returns every matching row.
type FindOptions struct {
	Scopes []Scope
	Order  string
	Offset int
	Limit  int
}

// Create inserts the post as-is; associations are never written through it.
// An attachment already claimed by another post yields models.ErrNotFound.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	if err != nil && post.AttachmentID != nil && isDuplicateKey(err) {
		return fmt.Errorf("attachment %d taken by another post: %w", *post.AttachmentID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id uint64) (*models.Post, error) {
	post := models.Post{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Attachment").
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post", id)
	}
	return &post, nil
}

func (s *PostStore) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(scopes...).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (s *PostStore) Find(ctx context.Context, opts FindOptions) ([]models.Post, error) {
	tx := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Attachment").
		Scopes(opts.Scopes...)
	if opts.Order != "" {
		tx = tx.Order(opts.Order)
	}
	if opts.Limit > 0 {
		tx = tx.Offset(opts.Offset).Limit(opts.Limit)
	}
	result := []models.Post{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	return result, nil
}
