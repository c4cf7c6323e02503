package storage

import (
	"encoding/binary"
	"errors"
)

// ErrBucketNotFound is returned when an operation targets a missing bucket
var ErrBucketNotFound = errors.New("bucket not found")

// Backend defines a generic key-value storage interface with bucket support.
// All operations work with raw []byte; callers choose the serialization.
// Keys iterate in byte order, so sequence keys from Append iterate in insertion order.
type Backend interface {
	// Bucket operations
	CreateBucket(name []byte) error
	DeleteBucket(name []byte) error
	BucketExists(name []byte) (bool, error)

	// KV operations within buckets
	Put(bucket, key, value []byte) error
	Get(bucket, key []byte) ([]byte, error)
	Delete(bucket, key []byte) error

	// Append stores value under the bucket's next sequence number and returns it
	Append(bucket, value []byte) (uint64, error)

	// Iteration
	ForEach(bucket []byte, fn func(k, v []byte) error) error

	// Batch operations for transactions
	Update(fn func(tx Transaction) error) error
	View(fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
}

// DeleteString is a convenience wrapper that converts string keys to []byte
func DeleteString(b Backend, bucket []byte, key string) error {
	return b.Delete(bucket, []byte(key))
}

// SequenceKey encodes seq as a big-endian key so byte order matches numeric order
func SequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// ParseSequenceKey decodes a key produced by SequenceKey
func ParseSequenceKey(key []byte) (uint64, bool) {
	if len(key) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key), true
}

// Transaction provides transactional access to the backend
type Transaction interface {
	// Bucket operations
	CreateBucket(name []byte) error
	DeleteBucket(name []byte) error
	Bucket(name []byte) Bucket

	// ForEachBucket iterates over all bucket names in byte order
	ForEachBucket(fn func(name []byte) error) error
}

// Bucket provides access to a single bucket within a transaction
type Bucket interface {
	Put(key, value []byte) error
	Get(key []byte) []byte
	Delete(key []byte) error
	Append(value []byte) (uint64, error)
	ForEach(fn func(k, v []byte) error) error
}
