package attachments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

var errBlobBackend = errors.New("blob backend unavailable")

// memoryBlobs is an in-memory BlobStorage that can be told to fail on names
type memoryBlobs struct {
	mutex   sync.Mutex
	blobs   map[string][]byte
	deleted []string
	failOn  map[string]bool
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: map[string][]byte{}, failOn: map[string]bool{}}
}

func (m *memoryBlobs) Save(ctx context.Context, name string, reader io.Reader, mimeType string) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.failOn[name] {
		return 0, errBlobBackend
	}
	buf := bytes.Buffer{}
	n, err := io.Copy(&buf, reader)
	if err != nil {
		return 0, err
	}
	m.blobs[name] = buf.Bytes()
	return n, nil
}

func (m *memoryBlobs) Delete(ctx context.Context, name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.failOn[name] {
		return errBlobBackend
	}
	delete(m.blobs, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *memoryBlobs) has(name string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.blobs[name]
	return ok
}

func (m *memoryBlobs) put(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.blobs[name] = []byte("blob " + name)
}

func (m *memoryBlobs) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.blobs)
}

// spaceLimitedBlobs also reports free space, like the disk backend
type spaceLimitedBlobs struct {
	*memoryBlobs
	free uint64
}

func (s *spaceLimitedBlobs) FreeSpace() (uint64, error) {
	return s.free, nil
}
