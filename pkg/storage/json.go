package storage

import (
	"encoding/json"
	"fmt"
)

// JSONStore wraps a Backend and provides JSON serialization convenience methods
type JSONStore struct {
	backend Backend
}

// NewJSONStore creates a new JSON store wrapper around a backend
func NewJSONStore(backend Backend) *JSONStore {
	return &JSONStore{backend: backend}
}

// Backend returns the underlying backend
func (j *JSONStore) Backend() Backend {
	return j.backend
}

// PutJSON stores a JSON-encoded value in a bucket
func (j *JSONStore) PutJSON(bucket, key []byte, v any) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return err
	}

	return j.backend.Put(bucket, key, data)
}

// GetJSON retrieves and JSON-decodes a value from a bucket.
// It reports whether the key was present.
func (j *JSONStore) GetJSON(bucket, key []byte, v any) (bool, error) {
	data, err := j.backend.Get(bucket, key)
	if err != nil {
		return false, err
	}

	if data == nil {
		return false, nil // Key not found, don't decode
	}

	return true, DecodeJSON(data, v)
}

// ForEachJSON iterates over a bucket in key order, decoding each value into a fresh T
func ForEachJSON[T any](j *JSONStore, bucket []byte, fn func(k []byte, v *T) error) error {
	return j.backend.ForEach(bucket, func(k, data []byte) error {
		v := new(T)
		if err := DecodeJSON(data, v); err != nil {
			return fmt.Errorf("key %x: %w", k, err)
		}
		return fn(k, v)
	})
}

// CreateBucket creates a new bucket
func (j *JSONStore) CreateBucket(name []byte) error {
	return j.backend.CreateBucket(name)
}

// DeleteBucket deletes a bucket
func (j *JSONStore) DeleteBucket(name []byte) error {
	return j.backend.DeleteBucket(name)
}

// Delete removes a key from a bucket
func (j *JSONStore) Delete(bucket, key []byte) error {
	return j.backend.Delete(bucket, key)
}

// Close closes the underlying backend
func (j *JSONStore) Close() error {
	return j.backend.Close()
}

// EncodeJSON marshals a value to JSON bytes
func EncodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return data, nil
}

// DecodeJSON unmarshals JSON bytes to a value
func DecodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	return nil
}
