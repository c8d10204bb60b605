package storage

import (
	"errors"

	"github.com/cuemby/reportwatch/pkg/types"
)

// ErrNotFound is returned when a category has never been stored
var ErrNotFound = errors.New("not found")

// Store persists category display flags between runs
type Store interface {
	ListCategories() ([]types.Category, error)
	GetCategory(name string) (types.Category, error)
	SaveCategory(c types.Category) error
	DeleteCategory(name string) error
	Close() error
}
