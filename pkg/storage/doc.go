/*
Package storage persists category display flags in a BoltDB file so that a
category the user disabled stays disabled across reconnects and restarts.

Categories live in a single "categories" bucket keyed by name; values are
JSON records holding the enabled flag and the time of the last change.
BoltDB keeps keys sorted, so ListCategories returns categories in the same
order the registry uses.

A Persister is a registry.Observer that writes every added or toggled
category through to the store:

	store, err := storage.NewBoltStore(cfg.StorePath())
	if err != nil {
		return err
	}
	defer store.Close()

	seed, err := store.ListCategories()
	if err != nil {
		return err
	}
	reg := registry.New(seed...)
	reg.Observe(storage.NewPersister(store))

BoltDB takes an exclusive file lock, so two viewers sharing a data directory
cannot both open the store; NewBoltStore gives up after one second.
*/
package storage
