package attachments

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoaxify/db/dbtest"
	"hoaxify/models"
	"hoaxify/storage"
	"hoaxify/store"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(3, 3, color.RGBA{G: 255, A: 255})
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestUploader(creator AttachmentCreator, blobs storage.BlobStorage) *Uploader {
	u := NewUploader(creator, blobs, 1024*1024, 16, zerolog.Nop())
	u.now = func() time.Time { return fixedNow }
	return u
}

func TestUploader_Image(t *testing.T) {
	db := dbtest.New(t)
	stores := store.New(db)
	blobs := newMemoryBlobs()
	data := pngBytes(t)

	attachment, err := newTestUploader(stores.Attachments, blobs).Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "image/png", attachment.MimeType)
	assert.Equal(t, int64(len(data)), attachment.Size)
	assert.Equal(t, fixedNow.UnixMilli(), attachment.CreatedAt)
	assert.Len(t, attachment.StorageName, 32)
	assert.Equal(t, attachment.StorageName+"_thumb.jpg", attachment.ThumbName)
	assert.True(t, blobs.has(attachment.StorageName))
	assert.True(t, blobs.has(attachment.ThumbName))

	stored, err := stores.Attachments.GetByID(context.Background(), attachment.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBound())
	assert.Equal(t, attachment.ThumbName, stored.ThumbName)
}

func TestUploader_PlainFile(t *testing.T) {
	db := dbtest.New(t)
	blobs := newMemoryBlobs()

	attachment, err := newTestUploader(store.New(db).Attachments, blobs).Upload(context.Background(), strings.NewReader("just some text"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(attachment.MimeType, "text/plain"))
	assert.Empty(t, attachment.ThumbName)
	assert.Equal(t, 1, blobs.count())
}

func TestUploader_Rejections(t *testing.T) {
	db := dbtest.New(t)
	attachmentStore := store.New(db).Attachments

	tests := []struct {
		name    string
		blobs   storage.BlobStorage
		content []byte
		wantErr error
	}{
		{"empty", newMemoryBlobs(), nil, ErrEmptyFile},
		{"too large", newMemoryBlobs(), bytes.Repeat([]byte("a"), 1024*1024+1), ErrTooLarge},
		{"disk full", &spaceLimitedBlobs{memoryBlobs: newMemoryBlobs(), free: 10}, []byte("more than ten bytes"), ErrInsufficientSpace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestUploader(attachmentStore, tt.blobs).Upload(context.Background(), bytes.NewReader(tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	var count int64
	require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)
}

type failingCreator struct{}

func (failingCreator) Create(ctx context.Context, attachment *models.Attachment) error {
	return errors.New("insert failed")
}

func TestUploader_InsertFailureRemovesBlobs(t *testing.T) {
	blobs := newMemoryBlobs()

	_, err := newTestUploader(failingCreator{}, blobs).Upload(context.Background(), bytes.NewReader(pngBytes(t)))
	assert.Error(t, err)
	assert.Zero(t, blobs.count())
	assert.Len(t, blobs.deleted, 2)
}
