package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/db"
	"github.com/Mikedodunnit/Chatpdf/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.texts = append(m.texts, text)
	return m.result, m.err
}

// memHashStore is an in-memory hash store.
type memHashStore struct {
	data   map[string]map[string]string
	getErr error
	setErr error
}

func newMemHashStore() *memHashStore {
	return &memHashStore{data: make(map[string]map[string]string)}
}

func (m *memHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	fields, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return fields, nil
}

func (m *memHashStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = fields
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *memHashStore) {
	t.Helper()
	s := newMemHashStore()
	return New(inner, s, "text-embedding-ada-002", nil, zap.NewNop()), s
}
