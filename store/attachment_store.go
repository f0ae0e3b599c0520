package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hoaxify/models"
)

type AttachmentStore struct {
	db *gorm.DB
}

func (s *AttachmentStore) Create(ctx context.Context, attachment *models.Attachment) error {
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (s *AttachmentStore) GetByID(ctx context.Context, id uint64) (*models.Attachment, error) {
	attachment := models.Attachment{}
	if err := s.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return nil, notFound(err, "attachment", id)
	}
	return &attachment, nil
}

// FindUnboundBefore returns attachments created before cutoff (unix ms) that
// were never bound to a post
func (s *AttachmentStore) FindUnboundBefore(ctx context.Context, cutoff int64) ([]models.Attachment, error) {
	result := []models.Attachment{}
	err := s.db.WithContext(ctx).
		Where("post_id IS NULL AND created_at < ?", cutoff).
		Order("id").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("find unbound attachments: %w", err)
	}
	return result, nil
}

// BindToPost sets post_id only while it is still null. Returns false when the
// row is gone or already bound.
func (s *AttachmentStore) BindToPost(ctx context.Context, attachmentID, postID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ? AND post_id IS NULL", attachmentID).
		Update("post_id", postID)
	if result.Error != nil {
		return false, fmt.Errorf("bind attachment %d: %w", attachmentID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// DeleteIfUnbound removes the row only while post_id is still null. Returns
// false when a post claimed the attachment first.
func (s *AttachmentStore) DeleteIfUnbound(ctx context.Context, id uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND post_id IS NULL", id).
		Delete(&models.Attachment{})
	if result.Error != nil {
		return false, fmt.Errorf("delete attachment %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
