package crate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store persists crate configs by id to crates.json under the data dir.
type Store struct {
	mu      sync.RWMutex
	crates  map[string]*Config
	dataDir string
}

func NewStore(dataDir string) *Store {
	if dataDir == "" {
		dataDir = "data"
	}
	s := &Store{
		crates:  make(map[string]*Config),
		dataDir: dataDir,
	}
	s.load()
	return s
}

func (s *Store) path() string {
	return filepath.Join(s.dataDir, "crates.json")
}

func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path())
	if err != nil {
		return
	}
	var list []*Config
	if err := json.Unmarshal(data, &list); err != nil {
		return
	}
	for _, c := range list {
		if c != nil && c.ID != "" {
			s.crates[c.ID] = c
		}
	}
}

// saveLocked writes the store to disk. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	list := make([]*Config, 0, len(s.crates))
	for _, c := range s.crates {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

// Register validates and stores a config, replacing any with the same id.
func (s *Store) Register(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cp := cfg.clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crates[cp.ID] = &cp
	return s.saveLocked()
}

// Get returns a copy of the config for id, or nil.
func (s *Store) Get(id string) *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.crates[id]
	if !ok {
		return nil
	}
	cp := c.clone()
	return &cp
}

// List returns every stored config sorted by id.
func (s *Store) List() []Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Config, 0, len(s.crates))
	for _, c := range s.crates {
		out = append(out, c.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Config) clone() Config {
	cp := *c
	cp.Items = append([]Item(nil), c.Items...)
	return cp
}
