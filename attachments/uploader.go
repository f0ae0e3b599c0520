package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"hoaxify/models"
	"hoaxify/storage"
	"hoaxify/utils"
)

var (
	ErrTooLarge          = errors.New("file too large")
	ErrEmptyFile         = errors.New("empty file")
	ErrInsufficientSpace = errors.New("insufficient storage space")
)

type AttachmentCreator interface {
	Create(ctx context.Context, attachment *models.Attachment) error
}

// Uploader stores a file ahead of the post it will belong to. The row is
// created unbound; the reclaimer removes it if no post claims it in time.
type Uploader struct {
	attachments AttachmentCreator
	blobs       storage.BlobStorage
	maxBytes    int64
	thumbSize   uint
	log         zerolog.Logger
	now         func() time.Time
}

func NewUploader(attachments AttachmentCreator, blobs storage.BlobStorage, maxBytes int64, thumbSize uint, log zerolog.Logger) *Uploader {
	return &Uploader{
		attachments: attachments,
		blobs:       blobs,
		maxBytes:    maxBytes,
		thumbSize:   thumbSize,
		log:         log.With().Str("component", "uploader").Logger(),
		now:         time.Now,
	}
}

func (u *Uploader) Upload(ctx context.Context, reader io.Reader) (*models.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(reader, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if reporter, ok := u.blobs.(storage.SpaceReporter); ok {
		free, err := reporter.FreeSpace()
		if err != nil {
			return nil, fmt.Errorf("check free space: %w", err)
		}
		if free < uint64(len(data)) {
			return nil, ErrInsufficientSpace
		}
	}

	attachment := &models.Attachment{
		CreatedAt:   u.now().UnixMilli(),
		StorageName: utils.RandName(),
		MimeType:    mimetype.Detect(data).String(),
	}
	if attachment.Size, err = u.blobs.Save(ctx, attachment.StorageName, bytes.NewReader(data), attachment.MimeType); err != nil {
		return nil, fmt.Errorf("save blob: %w", err)
	}
	if attachment.IsImage() {
		u.saveThumb(ctx, attachment, data)
	}
	if err = u.attachments.Create(ctx, attachment); err != nil {
		for _, name := range attachment.BlobNames() {
			if delErr := u.blobs.Delete(ctx, name); delErr != nil {
				u.log.Warn().Err(delErr).Str("blob", name).Msg("cleanup after failed insert")
			}
		}
		return nil, err
	}
	u.log.Debug().
		Uint64("attachment", attachment.ID).
		Str("mime", attachment.MimeType).
		Int64("size", attachment.Size).
		Msg("attachment uploaded")
	return attachment, nil
}

// saveThumb is best effort, an image that cannot be decoded is kept without one
func (u *Uploader) saveThumb(ctx context.Context, attachment *models.Attachment, data []byte) {
	thumb := bytes.Buffer{}
	if _, err := utils.CreateThumb(u.thumbSize, bytes.NewReader(data), &thumb); err != nil {
		u.log.Warn().Err(err).Str("blob", attachment.StorageName).Msg("create thumbnail")
		return
	}
	name := utils.ThumbName(attachment.StorageName)
	if _, err := u.blobs.Save(ctx, name, &thumb, "image/jpeg"); err != nil {
		u.log.Warn().Err(err).Str("blob", name).Msg("save thumbnail")
		return
	}
	attachment.ThumbName = name
}
