package posts

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hoaxify/attachments"
	"hoaxify/models"
	"hoaxify/store"
	"hoaxify/timeline"
)

// Notifier is told about every post that was committed
type Notifier interface {
	PostCreated(post *models.Post)
}

type Service struct {
	stores   *store.Stores
	engine   *timeline.Engine
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewService wires the write path to the stores and the read path to the
// timeline engine. notifier may be nil.
func NewService(stores *store.Stores, engine *timeline.Engine, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		stores:   stores,
		engine:   engine,
		notifier: notifier,
		log:      log.With().Str("component", "posts").Logger(),
		now:      time.Now,
	}
}

// Create persists a post for authorID, binding the referenced attachment if
// any. Nothing is written unless every step succeeds.
func (s *Service) Create(ctx context.Context, authorID uint64, content string, attachmentRef *uint64) (*models.Post, error) {
	post := models.Post{
		CreatedAt: s.now().UnixMilli(),
		Content:   content,
		AuthorID:  authorID,
	}
	err := s.stores.Transaction(ctx, func(tx *store.Stores) error {
		binder := attachments.NewBinder(tx.Attachments)
		attachment, err := binder.Resolve(ctx, &post, attachmentRef)
		if err != nil {
			return err
		}
		if err = tx.Posts.Create(ctx, &post); err != nil {
			return err
		}
		return binder.Link(ctx, &post, attachment)
	})
	if err != nil {
		return nil, err
	}
	created, err := s.stores.Posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Uint64("post", created.ID).Uint64("author", authorID).Msg("post created")
	if s.notifier != nil {
		s.notifier.PostCreated(created)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, username string, page timeline.PageRequest) (*timeline.Page[models.Post], error) {
	return s.engine.All(ctx, username, page)
}

func (s *Service) OlderThan(ctx context.Context, id uint64, username string, page timeline.PageRequest) (*timeline.Page[models.Post], error) {
	return s.engine.OlderThan(ctx, id, username, page)
}

func (s *Service) NewerThan(ctx context.Context, id uint64, username string, sort timeline.Sort) ([]models.Post, error) {
	return s.engine.NewerThan(ctx, id, username, sort)
}

func (s *Service) CountNewerThan(ctx context.Context, id uint64, username string) (int64, error) {
	return s.engine.CountNewerThan(ctx, id, username)
}

// Query runs an arbitrary timeline query, as the HTTP layer builds them
func (s *Service) Query(ctx context.Context, q timeline.Query) (*timeline.Result, error) {
	return s.engine.Execute(ctx, q)
}
