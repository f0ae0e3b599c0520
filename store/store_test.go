package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hoaxify/db/dbtest"
	"hoaxify/models"
)

func TestPostStore_CreateAndGet(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "user1")
	att := dbtest.CreateAttachment(t, db, models.Attachment{MimeType: "image/png"})

	post := models.Post{Content: "test content for the post", AuthorID: user.ID, AttachmentID: &att.ID, CreatedAt: 42}
	require.NoError(t, stores.Posts.Create(ctx, &post))
	require.NotZero(t, post.ID)

	inDB, err := stores.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), inDB.CreatedAt)
	assert.Equal(t, "user1", inDB.Author.Username)
	require.NotNil(t, inDB.Attachment)
	assert.Equal(t, att.ID, inDB.Attachment.ID)

	_, err = stores.Posts.GetByID(ctx, post.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostStore_FindAndCount(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	for i := 0; i < 6; i++ {
		author := alice.ID
		if i%2 == 1 {
			author = bob.ID
		}
		require.NoError(t, stores.Posts.Create(ctx, &models.Post{Content: "some post content", AuthorID: author}))
	}
	byBob := func(tx *gorm.DB) *gorm.DB { return tx.Where("author_id = ?", bob.ID) }

	count, err := stores.Posts.Count(ctx, byBob)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	posts, err := stores.Posts.Find(ctx, FindOptions{Scopes: []Scope{byBob}, Order: "id DESC", Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, uint64(4), posts[0].ID)
	assert.Equal(t, "bob", posts[0].Author.Username)

	all, err := stores.Posts.Find(ctx, FindOptions{Order: "id"})
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestAttachmentStore_ConditionalWrites(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	ctx := context.Background()
	att := dbtest.CreateAttachment(t, db, models.Attachment{})

	ok, err := stores.Attachments.BindToPost(ctx, att.ID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	// Bound once, never again
	ok, err = stores.Attachments.BindToPost(ctx, att.ID, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	// Bound rows survive the conditional delete
	ok, err = stores.Attachments.DeleteIfUnbound(ctx, att.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	inDB, err := stores.Attachments.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, inDB.PostID)
	assert.Equal(t, uint64(7), *inDB.PostID)

	free := dbtest.CreateAttachment(t, db, models.Attachment{})
	ok, err = stores.Attachments.DeleteIfUnbound(ctx, free.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = stores.Attachments.GetByID(ctx, free.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAttachmentStore_FindUnboundBefore(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	postID := uint64(1)
	old := dbtest.CreateAttachment(t, db, models.Attachment{CreatedAt: 1000})
	dbtest.CreateAttachment(t, db, models.Attachment{CreatedAt: 5000})
	dbtest.CreateAttachment(t, db, models.Attachment{CreatedAt: 1000, PostID: &postID})

	result, err := stores.Attachments.FindUnboundBefore(context.Background(), 2000)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, old.ID, result[0].ID)
}

func TestUserStore_ResolveUser(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	user := dbtest.CreateUser(t, db, "user1")

	id, err := stores.Users.ResolveUser(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = stores.Users.ResolveUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStores_TransactionRollback(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "user1")
	boom := errors.New("boom")

	err := stores.Transaction(ctx, func(tx *Stores) error {
		if err := tx.Posts.Create(ctx, &models.Post{Content: "rolled back content", AuthorID: user.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := stores.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostStore_CreateWithClaimedAttachment(t *testing.T) {
	db := dbtest.New(t)
	stores := New(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "user1")
	att := dbtest.CreateAttachment(t, db, models.Attachment{})

	first := models.Post{Content: "first post with the file", AuthorID: user.ID, AttachmentID: &att.ID}
	require.NoError(t, stores.Posts.Create(ctx, &first))

	second := models.Post{Content: "second post with the file", AuthorID: user.ID, AttachmentID: &att.ID}
	err := stores.Posts.Create(ctx, &second)
	assert.ErrorIs(t, err, models.ErrNotFound)

	count, err := stores.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, isDuplicateKey(&mysqldriver.MySQLError{Number: 1452}))
	assert.True(t, isDuplicateKey(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, isDuplicateKey(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	assert.False(t, isDuplicateKey(errors.New("boom")))
}
