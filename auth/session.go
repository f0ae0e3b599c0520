package auth

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hoaxify/models"
)

const userIdKey = "id"

type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (*models.User, error)
}

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

// LoginUser writes the session key the identity service sets at login. It is
// the contract User reads back; this server never calls it on its own.
func (s *Session) LoginUser(userID uint64) error {
	s.Set(userIdKey, userID)
	return s.Save()
}

// User returns nil when nobody is logged in or the user no longer exists
func (s *Session) User(ctx context.Context, users UserLoader) *models.User {
	id, ok := s.Get(userIdKey).(uint64)
	if !ok || id == 0 {
		return nil
	}
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	return user
}
