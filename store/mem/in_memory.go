package mem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warriorguo/reteflow/store"
)

var (
	_ store.Store = &memStore{}
)

func NewMemStore() store.Store {
	return &memStore{
		buckets: make(map[string]map[string][]byte),
		// setup no error as default
		mockErrHandler: defaultNoErr,
	}
}

/**
 * NewMemStoreWithErrHandler injects a fault hook so tests can see how
 * callers behave when the archive misbehaves.
 */
func NewMemStoreWithErrHandler(errHandler func() error) store.Store {
	return &memStore{
		buckets:        make(map[string]map[string][]byte),
		mockErrHandler: errHandler,
	}
}

func defaultNoErr() error {
	return nil
}

/**
 * memStore keeps blobs in process memory, one bucket per prefix. It
 * backs tests and small single host deployments where losing run
 * history on restart is acceptable. NEVER use it where the archive
 * has to survive!
 */
type memStore struct {
	mu sync.Mutex

	mockErrHandler func() error

	buckets map[string]map[string][]byte
}

func (m *memStore) String() string {
	s := "\n----------\n"
	for prefix, bucket := range m.buckets {
		for key, value := range bucket {
			s += fmt.Sprintf("%s%s: %s\n", prefix, key, string(value))
		}
	}
	s += "----------\n"
	return s
}

func (m *memStore) Get(ctx context.Context, prefix, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.buckets[prefix][key], m.mockErrHandler()
}

func (m *memStore) Set(ctx context.Context, prefix, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, exists := m.buckets[prefix]
	if !exists {
		bucket = make(map[string][]byte)
		m.buckets[prefix] = bucket
	}
	bucket[key] = value
	return m.mockErrHandler()
}

func (m *memStore) Remove(ctx context.Context, prefix, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// deleting from an absent bucket is a no-op, matching the
	// interface promise that unknown keys remove cleanly
	delete(m.buckets[prefix], key)
	return m.mockErrHandler()
}

func (m *memStore) List(ctx context.Context, prefix string, iterator func(key string) bool) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.buckets[prefix]))
	for key := range m.buckets[prefix] {
		keys = append(keys, key)
	}
	m.mu.Unlock()

	// map iteration order is random, hand callers a stable listing
	sort.Strings(keys)
	for _, key := range keys {
		if !iterator(key) {
			break
		}
	}
	return m.mockErrHandler()
}
