package crate

import (
	"fmt"
	"sort"
)

// Catalog is the set of compiled crates keyed by crate id. It is built once
// and never mutated, so it is safe to share between goroutines.
type Catalog struct {
	crates map[string]*Crate
	ids    []string
}

// NewCatalog compiles every config. Duplicate ids are an error; use
// MergeConfigs to layer sources first.
func NewCatalog(configs []Config) (*Catalog, error) {
	c := &Catalog{crates: make(map[string]*Crate, len(configs))}
	for _, cfg := range configs {
		if _, dup := c.crates[cfg.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate crate %s", cfg.ID)
		}
		compiled, err := Compile(cfg)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.crates[cfg.ID] = compiled
		c.ids = append(c.ids, cfg.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// MergeConfigs combines config sources; a crate in a later source replaces
// one with the same id from an earlier source.
func MergeConfigs(sources ...[]Config) []Config {
	index := map[string]int{}
	var out []Config
	for _, src := range sources {
		for _, cfg := range src {
			if i, ok := index[cfg.ID]; ok {
				out[i] = cfg
				continue
			}
			index[cfg.ID] = len(out)
			out = append(out, cfg)
		}
	}
	return out
}

// Get returns a compiled crate.
func (c *Catalog) Get(id string) (*Crate, error) {
	cr, ok := c.crates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCrate, id)
	}
	return cr, nil
}

// IDs returns the crate ids in sorted order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Len returns the number of crates.
func (c *Catalog) Len() int { return len(c.ids) }

// EstimateDropRarity returns each item's drop probability for display.
func (c *Catalog) EstimateDropRarity(crateID string) (map[uint64]float64, error) {
	cr, err := c.Get(crateID)
	if err != nil {
		return nil, err
	}
	return cr.Rarity(), nil
}
