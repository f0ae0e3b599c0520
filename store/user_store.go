package store

import (
	"context"

	"gorm.io/gorm"

	"hoaxify/models"
)

type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	user := models.User{}
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// ResolveUser maps a username to its id
func (s *UserStore) ResolveUser(ctx context.Context, username string) (uint64, error) {
	user := models.User{}
	err := s.db.WithContext(ctx).
		Select("id").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return 0, notFound(err, "user", username)
	}
	return user.ID, nil
}
