package storage

import (
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/rs/zerolog"
)

// Persister writes registry changes through to a Store
type Persister struct {
	store  Store
	logger zerolog.Logger
}

var _ registry.Observer = (*Persister)(nil)

// NewPersister creates a registry observer that saves every added or
// updated category
func NewPersister(store Store) *Persister {
	return &Persister{
		store:  store,
		logger: log.WithComponent("storage"),
	}
}

func (p *Persister) CategoryAdded(_ int, c types.Category) {
	p.save(c)
}

func (p *Persister) CategoryUpdated(_ int, c types.Category) {
	p.save(c)
}

func (p *Persister) MembershipChanged() {}

func (p *Persister) save(c types.Category) {
	if err := p.store.SaveCategory(c); err != nil {
		p.logger.Error().Err(err).Str("category", c.Name).Msg("Failed to save category")
	}
}
