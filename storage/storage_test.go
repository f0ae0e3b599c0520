package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoaxify/config"
)

func TestDiskStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(filepath.Join(dir, "attachments"), zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	n, err := s.Save(ctx, "abc123", strings.NewReader("hello world"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	content, err := os.ReadFile(filepath.Join(dir, "attachments", "abc123"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	require.NoError(t, s.Delete(ctx, "abc123"))
	_, err = os.Stat(filepath.Join(dir, "attachments", "abc123"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Already gone
	assert.NoError(t, s.Delete(ctx, "abc123"))

	free, err := s.FreeSpace()
	require.NoError(t, err)
	assert.Positive(t, free)
}

func TestDiskStorage_RejectsPathNames(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape", "a/b", "."} {
		_, err = s.Save(context.Background(), name, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, s.Delete(context.Background(), name), ErrInvalidName, name)
	}
}

type fakeS3 struct {
	s3iface.S3API
	deleted []string
	err     error
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(input.Bucket)+":"+aws.StringValue(input.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func TestS3Storage_Delete(t *testing.T) {
	client := &fakeS3{}
	s := NewS3StorageWithClient(client, "hoaxes", "/prod/", "", zerolog.Nop())

	require.NoError(t, s.Delete(context.Background(), "abc"))
	assert.Equal(t, []string{"hoaxes:prod/abc"}, client.deleted)

	client.err = awserr.New(s3.ErrCodeNoSuchKey, "gone", nil)
	assert.NoError(t, s.Delete(context.Background(), "abc"))

	client.err = awserr.New("AccessDenied", "denied", nil)
	assert.Error(t, s.Delete(context.Background(), "abc"))
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(&config.Config{StorageType: "ftp"}, zerolog.Nop())
	assert.Error(t, err)
}
