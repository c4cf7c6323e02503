package sink

import (
	"errors"
	"fmt"
	"time"

	"pkg.jsn.cam/pointgen/pkg/storage"
)

// metaBucketName holds one JSON Dataset record per stored dataset
const metaBucketName = "_meta"

var metaBucket = []byte(metaBucketName)

// Dataset describes a point set persisted in a storage backend
type Dataset struct {
	Name      string    `json:"name"`
	Generator string    `json:"generator"`
	Size      int       `json:"size"`
	Seed      uint64    `json:"seed"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveDataset records ds in the metadata bucket, replacing any previous record
func SaveDataset(backend storage.Backend, ds Dataset) error {
	store := storage.NewJSONStore(backend)
	if err := store.CreateBucket(metaBucket); err != nil {
		return err
	}
	return store.PutJSON(metaBucket, []byte(ds.Name), ds)
}

// GetDataset returns the metadata for name
func GetDataset(backend storage.Backend, name string) (Dataset, error) {
	var ds Dataset

	exists, err := backend.BucketExists(metaBucket)
	if err != nil {
		return ds, err
	}
	if !exists {
		return ds, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}

	found, err := storage.NewJSONStore(backend).GetJSON(metaBucket, []byte(name), &ds)
	if err != nil {
		return ds, err
	}
	if !found {
		return ds, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	return ds, nil
}

// ListDatasets returns all recorded datasets ordered by name
func ListDatasets(backend storage.Backend) ([]Dataset, error) {
	exists, err := backend.BucketExists(metaBucket)
	if err != nil || !exists {
		return nil, err
	}

	var out []Dataset
	err = storage.ForEachJSON(storage.NewJSONStore(backend), metaBucket, func(_ []byte, ds *Dataset) error {
		out = append(out, *ds)
		return nil
	})
	return out, err
}

// ListBuckets returns the names of all point buckets, including ones
// without a metadata record
func ListBuckets(backend storage.Backend) ([]string, error) {
	var names []string
	err := backend.View(func(tx storage.Transaction) error {
		return tx.ForEachBucket(func(name []byte) error {
			if string(name) != metaBucketName {
				names = append(names, string(name))
			}
			return nil
		})
	})
	return names, err
}

// DropDataset removes a dataset's points and its metadata record.
// A bucket left without metadata can be dropped as well.
func DropDataset(backend storage.Backend, name string) error {
	if name == metaBucketName {
		return fmt.Errorf("%w: %s", ErrReservedDataset, name)
	}

	_, err := GetDataset(backend, name)
	if errors.Is(err, ErrDatasetNotFound) {
		exists, berr := backend.BucketExists([]byte(name))
		if berr != nil {
			return berr
		}
		if !exists {
			return err
		}
	} else if err != nil {
		return err
	}

	return removeDataset(backend, name)
}

// removeDataset deletes the point bucket and any metadata record for name
func removeDataset(backend storage.Backend, name string) error {
	if err := backend.DeleteBucket([]byte(name)); err != nil {
		return fmt.Errorf("drop dataset %s: %w", name, err)
	}

	exists, err := backend.BucketExists(metaBucket)
	if err != nil || !exists {
		return err
	}
	return storage.DeleteString(backend, metaBucket, name)
}
