package reference

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const boltBucketName = "payment_references"

// BoltRegistry persists committed references in an embedded BoltDB file.
// Single-binary deployments get durability without an external database;
// TryCommit runs inside one write transaction, which is what makes the
// test-and-insert atomic.
type BoltRegistry struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the registry database at the given path and
// ensures the references bucket exists.
func NewBolt(path string) (*BoltRegistry, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt registry: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create references bucket: %w", err)
	}

	return &BoltRegistry{db: db}, nil
}

// Close releases the database file lock.
func (r *BoltRegistry) Close() error {
	return r.db.Close()
}

func (r *BoltRegistry) Contains(_ context.Context, reference string) (bool, error) {
	var found bool
	err := r.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(boltBucketName)).Get([]byte(reference)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return found, nil
}

func (r *BoltRegistry) TryCommit(_ context.Context, reference string) (bool, error) {
	committed := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBucketName))
		if b.Get([]byte(reference)) != nil {
			return nil
		}
		committed = true
		return b.Put([]byte(reference), []byte(time.Now().UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		return false, fmt.Errorf("commit reference: %w", err)
	}
	return committed, nil
}
