// Package emulator is a local stand-in for the relationship directory API.
// Entities persist in a bbolt file and are served over HTTP.
package emulator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/model"
)

// ErrNotFound is returned when an entity id is unknown.
var ErrNotFound = errors.New("record not found")

// BucketEntities holds entities keyed by id.
const BucketEntities = "entities"

// Store wraps the bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path and initializes buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketEntities)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketEntities, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create assigns a new id to e and stores it.
func (s *Store) Create(e model.Entity) (model.Entity, error) {
	e.ID = uuid.NewString()
	if e.Type == "" {
		e.Type = model.EntityTypeIndividual
	}
	data, err := json.Marshal(e)
	if err != nil {
		return model.Entity{}, fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketEntities)).Put([]byte(e.ID), data)
	})
	if err != nil {
		return model.Entity{}, err
	}
	return e, nil
}

// Get returns the entity with id.
func (s *Store) Get(id string) (model.Entity, error) {
	var e model.Entity
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketEntities)).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &e)
	})
	return e, err
}

// Delete removes the entity with id.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketEntities))
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Match returns entities matching every set field of q, in key order.
func (s *Store) Match(q model.MatchQuery) ([]model.Entity, error) {
	out := []model.Entity{}
	if q.Empty() {
		return out, nil
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketEntities)).ForEach(func(_, v []byte) error {
			var e model.Entity
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			if directory.Matches(e, q) {
				out = append(out, e)
			}
			return nil
		})
	})
	return out, err
}
