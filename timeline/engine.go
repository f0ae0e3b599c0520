package timeline

import (
	"context"

	"github.com/rs/zerolog"

	"hoaxify/config"
	"hoaxify/models"
	"hoaxify/store"
)

type Direction uint8

const (
	// DirectionUnset means older when an anchor is given, all otherwise
	DirectionUnset Direction = iota
	DirectionOlder
	DirectionNewer
)

// ParseDirection understands the API words: "before"/"older" and "after"/"newer"
func ParseDirection(s string) Direction {
	switch s {
	case "before", "older":
		return DirectionOlder
	case "after", "newer":
		return DirectionNewer
	}
	return DirectionUnset
}

// Query selects posts by author scope and cursor. Without an Anchor the
// query covers the whole timeline and Direction is ignored.
type Query struct {
	Username  string  // empty for the global timeline
	Anchor    *uint64 // post id the cursor starts from
	Direction Direction
	Page      PageRequest // older and all only
	Sort      Sort        // newer only
	Count     bool
}

// Result holds exactly one of Page, List or Count depending on the query
type Result struct {
	Page  *Page[models.Post]
	List  []models.Post
	Count int64
}

type UserResolver interface {
	ResolveUser(ctx context.Context, username string) (uint64, error)
}

type PostScanner interface {
	Count(ctx context.Context, scopes ...store.Scope) (int64, error)
	Find(ctx context.Context, opts store.FindOptions) ([]models.Post, error)
}

type Engine struct {
	posts  PostScanner
	users  UserResolver
	bounds config.Paging
	log    zerolog.Logger
}

func NewEngine(posts PostScanner, users UserResolver, bounds config.Paging, log zerolog.Logger) *Engine {
	return &Engine{
		posts:  posts,
		users:  users,
		bounds: bounds,
		log:    log.With().Str("component", "timeline").Logger(),
	}
}

func (e *Engine) Execute(ctx context.Context, q Query) (*Result, error) {
	direction := q.Direction
	if q.Anchor == nil {
		direction = DirectionUnset
	} else if direction == DirectionUnset {
		direction = DirectionOlder
	}

	// Author is resolved once, before any post is touched
	var authorPredicate Predicate
	if q.Username != "" {
		userID, err := e.users.ResolveUser(ctx, q.Username)
		if err != nil {
			return nil, err
		}
		authorPredicate = AuthoredBy(userID)
	}
	var idPredicate Predicate
	switch direction {
	case DirectionOlder:
		idPredicate = IDLessThan(*q.Anchor)
	case DirectionNewer:
		idPredicate = IDGreaterThan(*q.Anchor)
	}
	scopes := And(idPredicate, authorPredicate)

	if q.Count {
		count, err := e.posts.Count(ctx, scopes...)
		if err != nil {
			return nil, err
		}
		return &Result{Count: count}, nil
	}

	if direction == DirectionNewer {
		list, err := e.posts.Find(ctx, store.FindOptions{Scopes: scopes, Order: q.Sort.clause()})
		if err != nil {
			return nil, err
		}
		return &Result{List: list}, nil
	}

	request := q.Page.Normalize(e.bounds)
	total, err := e.posts.Count(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	content := []models.Post{}
	if int64(request.Offset()) < total {
		content, err = e.posts.Find(ctx, store.FindOptions{
			Scopes: scopes,
			Order:  "posts.id DESC",
			Offset: request.Offset(),
			Limit:  request.Size,
		})
		if err != nil {
			return nil, err
		}
	}
	e.log.Debug().
		Str("user", q.Username).
		Int("page", request.Number).
		Int("size", request.Size).
		Int64("total", total).
		Msg("timeline page")
	return &Result{Page: NewPage(content, request, total)}, nil
}

func (e *Engine) All(ctx context.Context, username string, page PageRequest) (*Page[models.Post], error) {
	result, err := e.Execute(ctx, Query{Username: username, Page: page})
	if err != nil {
		return nil, err
	}
	return result.Page, nil
}

func (e *Engine) OlderThan(ctx context.Context, id uint64, username string, page PageRequest) (*Page[models.Post], error) {
	result, err := e.Execute(ctx, Query{Username: username, Anchor: &id, Direction: DirectionOlder, Page: page})
	if err != nil {
		return nil, err
	}
	return result.Page, nil
}

func (e *Engine) NewerThan(ctx context.Context, id uint64, username string, sort Sort) ([]models.Post, error) {
	result, err := e.Execute(ctx, Query{Username: username, Anchor: &id, Direction: DirectionNewer, Sort: sort})
	if err != nil {
		return nil, err
	}
	return result.List, nil
}

func (e *Engine) CountNewerThan(ctx context.Context, id uint64, username string) (int64, error) {
	result, err := e.Execute(ctx, Query{Username: username, Anchor: &id, Direction: DirectionNewer, Count: true})
	if err != nil {
		return 0, err
	}
	return result.Count, nil
}
