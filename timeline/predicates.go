package timeline

import (
	"strings"

	"gorm.io/gorm"

	"hoaxify/store"
)

// Predicate restricts the posts a query sees. A nil Predicate matches every
// post, so optional dimensions can stay in the list unset.
type Predicate store.Scope

func IDLessThan(id uint64) Predicate {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.id < ?", id)
	}
}

func IDGreaterThan(id uint64) Predicate {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.id > ?", id)
	}
}

func AuthoredBy(userID uint64) Predicate {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", userID)
	}
}

// And drops nil predicates; gorm chains the remaining ones with AND
func And(predicates ...Predicate) []store.Scope {
	scopes := make([]store.Scope, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			scopes = append(scopes, p)
		}
	}
	return scopes
}

// Sort is an ORDER BY over one of the sortable post columns. The zero value
// leaves ordering to the store.
type Sort struct {
	Field string
	Desc  bool
}

var sortableColumns = map[string]string{
	"id":        "posts.id",
	"createdAt": "posts.created_at",
	"date":      "posts.created_at",
}

// ParseSort reads the "field,direction" form used by the HTTP API,
// e.g. "id,desc". Unknown fields give the zero Sort.
func ParseSort(s string) Sort {
	field, direction, _ := strings.Cut(strings.TrimSpace(s), ",")
	if _, ok := sortableColumns[field]; !ok {
		return Sort{}
	}
	return Sort{Field: field, Desc: strings.EqualFold(strings.TrimSpace(direction), "desc")}
}

func (s Sort) clause() string {
	column, ok := sortableColumns[s.Field]
	if !ok {
		return ""
	}
	if s.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}
