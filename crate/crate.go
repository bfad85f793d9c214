// Package crate holds supply crate configurations, their drop odds and the
// deterministic reveal order of opened crates.
//
// Crates are opened on chain; the contract draws the items and emits the
// randomness it used. Nothing here draws real outcomes. The package replays
// the already-decided set in a seed-determined order for the reveal
// animation and reports the published odds for display.
package crate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

// PlaceholderImage is shown for dropped items missing from the crate config.
const PlaceholderImage = "items/unknown.png"

var ErrUnknownCrate = errors.New("unknown crate")

// Item is one entry of a crate's pool.
type Item struct {
	ID     uint64 `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Weight int64  `json:"weight" yaml:"weight"`
	Rarity string `json:"rarity,omitempty" yaml:"rarity,omitempty"`
	Image  string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Config is a crate SKU and its weighted item pool.
type Config struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Items []Item `json:"items" yaml:"items"`
}

// Validate checks ids and weights.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("crate config is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("crate id is required")
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("crate %s: no items", c.ID)
	}
	seen := make(map[uint64]bool, len(c.Items))
	for _, it := range c.Items {
		if seen[it.ID] {
			return fmt.Errorf("crate %s: duplicate item %d", c.ID, it.ID)
		}
		seen[it.ID] = true
		if it.Weight <= 0 {
			return fmt.Errorf("crate %s: item %d weight must be positive", c.ID, it.ID)
		}
	}
	return nil
}

// Crate is a compiled, read-only crate configuration.
type Crate struct {
	id     string
	name   string
	items  []Item
	byID   map[uint64]int
	table  *AliasTable
	rarity map[uint64]float64
}

// Compile validates cfg and precomputes its alias table and rarity map.
func Compile(cfg Config) (*Crate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	items := append([]Item(nil), cfg.Items...)
	weights := make([]int64, len(items))
	byID := make(map[uint64]int, len(items))
	for i, it := range items {
		weights[i] = it.Weight
		byID[it.ID] = i
	}
	table, err := NewAliasTable(weights)
	if err != nil {
		return nil, fmt.Errorf("crate %s: %w", cfg.ID, err)
	}
	probs := table.Probabilities()
	rarity := make(map[uint64]float64, len(items))
	for i, it := range items {
		rarity[it.ID] = probs[i]
	}
	return &Crate{
		id:     cfg.ID,
		name:   cfg.Name,
		items:  items,
		byID:   byID,
		table:  table,
		rarity: rarity,
	}, nil
}

func (c *Crate) ID() string   { return c.id }
func (c *Crate) Name() string { return c.name }

// Items returns the pool in configuration order.
func (c *Crate) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Item looks up a pool entry by id.
func (c *Crate) Item(id uint64) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// AliasTable returns the precomputed sampling table.
func (c *Crate) AliasTable() *AliasTable { return c.table }

// Rarity returns the drop probability of every item, in [0, 1].
func (c *Crate) Rarity() map[uint64]float64 {
	out := make(map[uint64]float64, len(c.rarity))
	for id, p := range c.rarity {
		out[id] = p
	}
	return out
}

// Sample draws one item by weight. Only used to simulate published odds.
func (c *Crate) Sample(src Source) Item {
	return c.items[c.table.Sample(src)]
}

// Carousel returns the full pool in the order produced by sh.
func (c *Crate) Carousel(sh Shuffler) []Item {
	out := c.Items()
	sh.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Drop is one revealed item.
type Drop struct {
	Position int    `json:"position"`
	ItemID   uint64 `json:"itemId"`
	Known    bool   `json:"known"`
	Item     *Item  `json:"item,omitempty"`
	Image    string `json:"image"`
}

// Reveal is the reconstructed reveal sequence of one crate opening.
type Reveal struct {
	CrateID      string   `json:"crateId"`
	Order        []uint64 `json:"order"`
	Drops        []Drop   `json:"drops"`
	UnknownItems []uint64 `json:"unknownItems,omitempty"`
}

// Err reports ids the crate config does not know about.
func (r *Reveal) Err() error {
	if len(r.UnknownItems) == 0 {
		return nil
	}
	return &UnknownItemError{CrateID: r.CrateID, ItemIDs: append([]uint64(nil), r.UnknownItems...)}
}

// UnknownItemError signals dropped ids missing from the client-side config,
// which means chain and config disagree.
type UnknownItemError struct {
	CrateID string
	ItemIDs []uint64
}

func (e *UnknownItemError) Error() string {
	ids := make([]string, len(e.ItemIDs))
	for i, id := range e.ItemIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("crate %s: unknown items %s", e.CrateID, strings.Join(ids, ","))
}

// Reveal orders dropped items by seed and attaches their config. Unknown ids
// stay in the sequence with placeholder art.
func (c *Crate) Reveal(seed *uint256.Int, dropped []uint64) (*Reveal, error) {
	order, err := ReconstructDrops(seed, dropped)
	if err != nil {
		return nil, err
	}
	r := &Reveal{CrateID: c.id, Order: order, Drops: make([]Drop, len(order))}
	unknown := map[uint64]bool{}
	for i, id := range order {
		d := Drop{Position: i, ItemID: id, Image: PlaceholderImage}
		if it, ok := c.Item(id); ok {
			it := it
			d.Known = true
			d.Item = &it
			if it.Image != "" {
				d.Image = it.Image
			}
		} else if !unknown[id] {
			unknown[id] = true
			r.UnknownItems = append(r.UnknownItems, id)
		}
		r.Drops[i] = d
	}
	sort.Slice(r.UnknownItems, func(i, j int) bool { return r.UnknownItems[i] < r.UnknownItems[j] })
	return r, nil
}
