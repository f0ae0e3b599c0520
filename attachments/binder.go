package attachments

import (
	"context"
	"fmt"

	"hoaxify/models"
)

type BindingStore interface {
	GetByID(ctx context.Context, id uint64) (*models.Attachment, error)
	BindToPost(ctx context.Context, attachmentID, postID uint64) (bool, error)
}

// Binder attaches an uploaded file to the post being created. It must be
// built over the same transaction the post is inserted in.
type Binder struct {
	store BindingStore
}

func NewBinder(store BindingStore) *Binder {
	return &Binder{store: store}
}

// Resolve loads the referenced attachment and stages its id on the post.
// A nil ref is a no-op. Attachments already bound to a post are treated the
// same as missing ones.
func (b *Binder) Resolve(ctx context.Context, post *models.Post, ref *uint64) (*models.Attachment, error) {
	if ref == nil {
		return nil, nil
	}
	attachment, err := b.store.GetByID(ctx, *ref)
	if err != nil {
		return nil, err
	}
	if attachment.IsBound() {
		return nil, fmt.Errorf("attachment %d already in use: %w", attachment.ID, models.ErrNotFound)
	}
	post.AttachmentID = &attachment.ID
	return attachment, nil
}

// Link writes the back-reference once the post has an id. Losing the race
// against the reclaimer or another post yields models.ErrNotFound.
func (b *Binder) Link(ctx context.Context, post *models.Post, attachment *models.Attachment) error {
	if attachment == nil {
		return nil
	}
	ok, err := b.store.BindToPost(ctx, attachment.ID, post.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("attachment %d no longer available: %w", attachment.ID, models.ErrNotFound)
	}
	postID := post.ID
	attachment.PostID = &postID
	post.Attachment = attachment
	return nil
}
