package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketState = []byte("clustering_state")

// KVStore is a ports.KVStore backed by a single bbolt bucket
type KVStore struct {
	db *bbolt.DB
}

// NewKVStore opens (or creates) the database file at path
func NewKVStore(path string) (*KVStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &KVStore{db: db}, nil
}

// Get returns a copy of the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get([]byte(key))
		if data == nil {
			return nil
		}
		// bbolt memory is only valid inside the transaction
		value = append([]byte{}, data...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, found, nil
}

// Set stores value under key, replacing any previous value
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if value == nil {
			value = []byte{}
		}
		return tx.Bucket(bucketState).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close releases the database file lock
func (s *KVStore) Close() error {
	return s.db.Close()
}
