package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Mock is an in-memory Store for unit tests.
type Mock struct {
	mu      sync.Mutex
	objects map[string]mockObject
}

type mockObject struct {
	data        []byte
	contentType string
}

func NewMock() *Mock {
	return &Mock{objects: make(map[string]mockObject)}
}

func (m *Mock) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = mockObject{data: data, contentType: contentType}
	return nil
}

func (m *Mock) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.Lock()
	obj, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("blob: %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), ObjectInfo{
		Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType,
	}, nil
}

func (m *Mock) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Mock) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

var _ Store = (*Mock)(nil)
var _ Store = (*MinioStore)(nil)
