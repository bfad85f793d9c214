package reveal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is a completed reveal kept for audit and idempotent replay.
// Seed is the decimal randomness the order was derived from.
type Record struct {
	RevealID     string    `json:"revealId"`
	CrateID      string    `json:"crateId"`
	TxHash       string    `json:"txHash,omitempty"`
	Seed         string    `json:"seed"`
	ItemIDs      []uint64  `json:"itemIds"`
	Order        []uint64  `json:"order"`
	UnknownItems []uint64  `json:"unknownItems,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store appends reveal records to reveals.json under the data dir.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

func NewStore(dataDir string) *Store {
	if dataDir == "" {
		dataDir = "data"
	}
	return &Store{dataDir: dataDir}
}

func (s *Store) path() string {
	return filepath.Join(s.dataDir, "reveals.json")
}

// readLocked returns the stored records. A missing file is an empty list.
func (s *Store) readLocked() ([]*Record, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Append stores r, filling RevealID and CreatedAt when unset.
func (s *Store) Append(r *Record) error {
	if r == nil {
		return errors.New("reveal: nil record")
	}
	fill(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.readLocked()
	if err != nil {
		return err
	}
	return s.writeLocked(append(list, r))
}

// AppendIfAbsent stores r unless a record with the same TxHash exists. It
// returns the stored record and whether r was the one written. Lookup and
// write happen under one lock, so concurrent callers for a transaction all
// get the same record back.
func (s *Store) AppendIfAbsent(r *Record) (*Record, bool, error) {
	if r == nil {
		return nil, false, errors.New("reveal: nil record")
	}
	fill(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.readLocked()
	if err != nil {
		return nil, false, err
	}
	if prev := latest(list, r.TxHash); prev != nil {
		return prev, false, nil
	}
	if err := s.writeLocked(append(list, r)); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func fill(r *Record) {
	if r.RevealID == "" {
		r.RevealID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.TxHash = normalizeHash(r.TxHash)
}

// writeLocked replaces the file contents. Caller must hold s.mu.
func (s *Store) writeLocked(list []*Record) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

func latest(list []*Record, txHash string) *Record {
	if txHash == "" {
		return nil
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].TxHash == txHash {
			return list[i]
		}
	}
	return nil
}

// GetByTxHash returns the latest record for a transaction, or nil.
func (s *Store) GetByTxHash(txHash string) (*Record, error) {
	txHash = normalizeHash(txHash)
	if txHash == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	return latest(list, txHash), nil
}

// List returns all records oldest first.
func (s *Store) List() ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func normalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
