package storage

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryBackend implements Backend using in-memory maps (not persistent).
// Iteration is sorted by key to match the bbolt backend.
type MemoryBackend struct {
	buckets map[string]*memoryStore
	mu      sync.RWMutex
}

type memoryStore struct {
	seq  uint64
	data map[string][]byte
}

// NewMemoryBackend creates a new in-memory storage backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		buckets: make(map[string]*memoryStore),
	}
}

// CreateBucket creates a new bucket
func (m *MemoryBackend) CreateBucket(name []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	nameStr := string(name)
	if _, exists := m.buckets[nameStr]; !exists {
		m.buckets[nameStr] = &memoryStore{data: make(map[string][]byte)}
	}

	return nil
}

// DeleteBucket deletes a bucket
func (m *MemoryBackend) DeleteBucket(name []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets, string(name))

	return nil
}

// BucketExists checks if a bucket exists
func (m *MemoryBackend) BucketExists(name []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.buckets[string(name)]

	return exists, nil
}

func (m *MemoryBackend) bucket(name []byte) (*memoryStore, error) {
	bkt, exists := m.buckets[string(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}
	return bkt, nil
}

// Put stores a key-value pair in a bucket
func (m *MemoryBackend) Put(bucket, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bkt, err := m.bucket(bucket)
	if err != nil {
		return err
	}

	// Copy value to prevent external modifications
	bkt.data[string(key)] = cloneBytes(value)

	return nil
}

// Get retrieves a value from a bucket
func (m *MemoryBackend) Get(bucket, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bkt, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}

	value, exists := bkt.data[string(key)]
	if !exists {
		return nil, nil
	}

	return cloneBytes(value), nil
}

// Delete removes a key from a bucket
func (m *MemoryBackend) Delete(bucket, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bkt, err := m.bucket(bucket)
	if err != nil {
		return err
	}

	delete(bkt.data, string(key))

	return nil
}

// Append stores value under the next sequence number of the bucket
func (m *MemoryBackend) Append(bucket, value []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bkt, err := m.bucket(bucket)
	if err != nil {
		return 0, err
	}

	bkt.seq++
	bkt.data[string(SequenceKey(bkt.seq))] = cloneBytes(value)

	return bkt.seq, nil
}

// ForEach iterates over all key-value pairs in a bucket in key order
func (m *MemoryBackend) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bkt, err := m.bucket(bucket)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(bkt.data))
	for k := range bkt.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), bkt.data[k]); err != nil {
			return err
		}
	}

	return nil
}

// Update executes a function within a "transaction" (memory backend doesn't need real transactions)
func (m *MemoryBackend) Update(fn func(tx Transaction) error) error {
	return fn(&memoryTransaction{backend: m})
}

// View executes a function within a read-only "transaction"
func (m *MemoryBackend) View(fn func(tx Transaction) error) error {
	return fn(&memoryTransaction{backend: m})
}

// Close is a no-op for memory backend
func (m *MemoryBackend) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// memoryTransaction wraps the memory backend for transaction interface
type memoryTransaction struct {
	backend *MemoryBackend
}

func (t *memoryTransaction) CreateBucket(name []byte) error {
	return t.backend.CreateBucket(name)
}

func (t *memoryTransaction) DeleteBucket(name []byte) error {
	return t.backend.DeleteBucket(name)
}

func (t *memoryTransaction) Bucket(name []byte) Bucket {
	exists, _ := t.backend.BucketExists(name)
	if !exists {
		return nil
	}

	return &memoryBucket{
		backend: t.backend,
		name:    cloneBytes(name),
	}
}

func (t *memoryTransaction) ForEachBucket(fn func(name []byte) error) error {
	t.backend.mu.RLock()
	names := make([]string, 0, len(t.backend.buckets))
	for name := range t.backend.buckets {
		names = append(names, name)
	}
	t.backend.mu.RUnlock()

	sort.Strings(names)
	for _, name := range names {
		if err := fn([]byte(name)); err != nil {
			return err
		}
	}

	return nil
}

// memoryBucket provides bucket operations for memory backend
type memoryBucket struct {
	backend *MemoryBackend
	name    []byte
}

func (b *memoryBucket) Put(key, value []byte) error {
	return b.backend.Put(b.name, key, value)
}

func (b *memoryBucket) Get(key []byte) []byte {
	value, _ := b.backend.Get(b.name, key)
	return value
}

func (b *memoryBucket) Delete(key []byte) error {
	return b.backend.Delete(b.name, key)
}

func (b *memoryBucket) Append(value []byte) (uint64, error) {
	return b.backend.Append(b.name, value)
}

func (b *memoryBucket) ForEach(fn func(k, v []byte) error) error {
	return b.backend.ForEach(b.name, fn)
}
