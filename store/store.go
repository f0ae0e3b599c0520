package store

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"hoaxify/models"
)

const mysqlErrDuplicateEntry = 1062

// Scope narrows a query; scopes passed together are combined with AND
type Scope = func(*gorm.DB) *gorm.DB

// Stores groups the repositories that share one database handle. Inside
// Transaction the handle is the transaction, so every write made through the
// callback's Stores commits or rolls back together.
type Stores struct {
	db          *gorm.DB
	Posts       *PostStore
	Attachments *AttachmentStore
	Users       *UserStore
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		db:          db,
		Posts:       &PostStore{db: db},
		Attachments: &AttachmentStore{db: db},
		Users:       &UserStore{db: db},
	}
}

func (s *Stores) Transaction(ctx context.Context, fn func(tx *Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, models.ErrNotFound)
	}
	return fmt.Errorf("load %s %v: %w", what, id, err)
}

// isDuplicateKey reports a unique index violation, whether or not the dialect
// translated it into gorm.ErrDuplicatedKey
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
