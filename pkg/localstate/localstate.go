// Package localstate persists the small per-user client state that survives
// restarts: the raw auth token and the last-selected business. Plain
// key/value entries, no schema versioning.
package localstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"
)

const (
	keyToken            = "token"
	keySelectedBusiness = "selected_business"
)

var bucketState = []byte("state")

// Store is a bbolt-backed key/value store for client state.
type Store struct {
	db *bolt.DB
}

// Open creates the state file (and parent directory) if missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("local state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the persisted raw token, or "" if none is stored.
func (s *Store) Token() (string, error) {
	return s.get(keyToken)
}

// PutToken stores the raw token; an empty value removes it.
func (s *Store) PutToken(raw string) error {
	if raw == "" {
		return s.delete(keyToken)
	}
	return s.put(keyToken, raw)
}

// DeleteToken removes the persisted token.
func (s *Store) DeleteToken() error {
	return s.delete(keyToken)
}

// SelectedBusiness returns the last-selected business id, or "".
func (s *Store) SelectedBusiness() (string, error) {
	return s.get(keySelectedBusiness)
}

// PutSelectedBusiness stores the last-selected business id.
func (s *Store) PutSelectedBusiness(id string) error {
	if id == "" {
		return s.delete(keySelectedBusiness)
	}
	return s.put(keySelectedBusiness, id)
}

func (s *Store) get(key string) (string, error) {
	var out string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketState).Get([]byte(key)); v != nil {
			out = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

func (s *Store) put(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
