package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/reportwatch/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketCategories = []byte("categories")
)

// openTimeout bounds the wait for the file lock held by another viewer
const openTimeout = time.Second

// categoryRecord is the stored value; the name is the key
type categoryRecord struct {
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates the database at path
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCategories); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketCategories, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// ListCategories returns every stored category in name order
func (s *BoltStore) ListCategories() ([]types.Category, error) {
	var categories []types.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCategories)
		return b.ForEach(func(k, v []byte) error {
			var rec categoryRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("category %s: %w", k, err)
			}
			categories = append(categories, types.Category{Name: string(k), Enabled: rec.Enabled})
			return nil
		})
	})
	return categories, err
}

func (s *BoltStore) GetCategory(name string) (types.Category, error) {
	var rec categoryRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCategories).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("category %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return types.Category{}, err
	}
	return types.Category{Name: name, Enabled: rec.Enabled}, nil
}

// SaveCategory upserts a category
func (s *BoltStore) SaveCategory(c types.Category) error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(categoryRecord{Enabled: c.Enabled, UpdatedAt: time.Now()})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketCategories).Put([]byte(c.Name), data)
	})
}

func (s *BoltStore) DeleteCategory(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCategories).Delete([]byte(name))
	})
}
