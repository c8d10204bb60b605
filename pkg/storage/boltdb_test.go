package storage

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "categories.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestCategoryCRUD(t *testing.T) {
	store, _ := newTestStore(t)

	categories, err := store.ListCategories()
	require.NoError(t, err)
	assert.Empty(t, categories)

	require.NoError(t, store.SaveCategory(types.Category{Name: "MIGRANT_ARRIVAL", Enabled: true}))
	require.NoError(t, store.SaveCategory(types.Category{Name: "BIRTH_ANIMAL", Enabled: false}))

	c, err := store.GetCategory("BIRTH_ANIMAL")
	require.NoError(t, err)
	assert.False(t, c.Enabled)

	require.NoError(t, store.SaveCategory(types.Category{Name: "BIRTH_ANIMAL", Enabled: true}))
	c, err = store.GetCategory("BIRTH_ANIMAL")
	require.NoError(t, err)
	assert.True(t, c.Enabled)

	categories, err = store.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []types.Category{
		{Name: "BIRTH_ANIMAL", Enabled: true},
		{Name: "MIGRANT_ARRIVAL", Enabled: true},
	}, categories)

	require.NoError(t, store.DeleteCategory("BIRTH_ANIMAL"))
	_, err = store.GetCategory("BIRTH_ANIMAL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveCategoryRequiresName(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveCategory(types.Category{}))
}

func TestStoreSurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.SaveCategory(types.Category{Name: "CAVE_COLLAPSE", Enabled: false}))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	c, err := reopened.GetCategory("CAVE_COLLAPSE")
	require.NoError(t, err)
	assert.False(t, c.Enabled)
}

func TestPersisterSeedsAndSaves(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveCategory(types.Category{Name: "BIRTH_ANIMAL", Enabled: false}))

	seed, err := store.ListCategories()
	require.NoError(t, err)
	reg := registry.New(seed...)
	reg.Observe(NewPersister(store))

	assert.False(t, reg.IsEnabled("BIRTH_ANIMAL"))

	reg.Add("CARAVAN_ARRIVAL", true)
	require.True(t, reg.SetEnabledByName("BIRTH_ANIMAL", true))

	categories, err := store.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []types.Category{
		{Name: "BIRTH_ANIMAL", Enabled: true},
		{Name: "CARAVAN_ARRIVAL", Enabled: true},
	}, categories)
}
