package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/Ashenafi-pixel/nft-experience-server/crate"
	"github.com/Ashenafi-pixel/nft-experience-server/reveal"
)

type crateSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// handleCrateList implements GET /api/crates.
func (s *Server) handleCrateList(w http.ResponseWriter, r *http.Request) {
	out := make([]crateSummary, 0, s.catalog.Len())
	for _, id := range s.catalog.IDs() {
		cr, err := s.catalog.Get(id)
		if err != nil {
			continue
		}
		out = append(out, crateSummary{ID: id, Name: cr.Name(), Items: len(cr.Items())})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"crates": out})
}

type rarityEntry struct {
	ItemID      uint64  `json:"itemId"`
	Name        string  `json:"name"`
	Rarity      string  `json:"rarity,omitempty"`
	Weight      int64   `json:"weight"`
	Probability float64 `json:"probability"`
	Percent     float64 `json:"percent"`
}

// handleCrateRarity implements GET /api/crates/{id}/rarity.
func (s *Server) handleCrateRarity(w http.ResponseWriter, r *http.Request) {
	cr, ok := s.lookupCrate(w, r.PathValue("id"))
	if !ok {
		return
	}
	rarity := cr.Rarity()
	items := cr.Items()
	out := make([]rarityEntry, len(items))
	for i, it := range items {
		p := rarity[it.ID]
		out[i] = rarityEntry{
			ItemID:      it.ID,
			Name:        it.Name,
			Rarity:      it.Rarity,
			Weight:      it.Weight,
			Probability: p,
			Percent:     math.Round(p*10000) / 100,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"crateId":     cr.ID(),
		"totalWeight": cr.AliasTable().Total(),
		"items":       out,
	})
}

// handleCrateCarousel implements GET /api/crates/{id}/carousel?seed=.
// Without a seed the reel is shuffled from system randomness.
func (s *Server) handleCrateCarousel(w http.ResponseWriter, r *http.Request) {
	cr, ok := s.lookupCrate(w, r.PathValue("id"))
	if !ok {
		return
	}
	var sh crate.Shuffler = crate.RandomShuffler{}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := crate.ParseSeed(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeMissingRandomness)
			return
		}
		if sh, err = crate.NewSeededShuffler(seed); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeMissingRandomness)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"crateId": cr.ID(), "items": cr.Carousel(sh)})
}

type revealRequest struct {
	Seed    string   `json:"seed"`
	ItemIDs []uint64 `json:"itemIds"`
	TxHash  string   `json:"txHash"`
}

type revealResponse struct {
	RevealID string `json:"revealId"`
	TxHash   string `json:"txHash,omitempty"`
	Seed     string `json:"seed"`
	Replayed bool   `json:"replayed,omitempty"`
	*crate.Reveal
}

// handleCrateReveal implements POST /api/crates/{id}/reveal.
func (s *Server) handleCrateReveal(w http.ResponseWriter, r *http.Request) {
	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", codeInvalidBody)
		return
	}
	seed, err := crate.ParseSeed(req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeMissingRandomness)
		return
	}
	s.reveal(w, r.PathValue("id"), seed, req.ItemIDs, req.TxHash)
}

type revealLogRequest struct {
	Log json.RawMessage `json:"log"`
}

// handleRevealLog implements POST /api/crates/reveal-log: the client posts
// the CratesOpened log from its receipt and gets the ordered reveal back.
func (s *Server) handleRevealLog(w http.ResponseWriter, r *http.Request) {
	var req revealLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Log) == 0 {
		writeError(w, http.StatusBadRequest, "log required", codeInvalidBody)
		return
	}
	var l types.Log
	if err := json.Unmarshal(req.Log, &l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid log: "+err.Error(), codeInvalidEvent)
		return
	}
	opened, err := s.events.Decode(&l)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeInvalidEvent)
		return
	}
	s.reveal(w, opened.CrateID.Dec(), opened.Randomness, opened.ItemIDs, opened.TxHash.Hex())
}

// reveal orders dropped items for a crate, replaying the stored reveal when
// the transaction was already revealed.
func (s *Server) reveal(w http.ResponseWriter, crateID string, seed *uint256.Int, itemIDs []uint64, txHash string) {
	cr, ok := s.lookupCrate(w, crateID)
	if !ok {
		return
	}
	rev, err := cr.Reveal(seed, itemIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeMissingRandomness)
		return
	}
	rec, created, err := s.reveals.AppendIfAbsent(&reveal.Record{
		CrateID:      cr.ID(),
		TxHash:       txHash,
		Seed:         seed.Dec(),
		ItemIDs:      slices.Clone(itemIDs),
		Order:        rev.Order,
		UnknownItems: rev.UnknownItems,
	})
	if err != nil {
		log.Error("Reveal store write failed", "crate", cr.ID(), "tx", txHash, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record reveal", codeInternal)
		return
	}
	if !created {
		s.replay(w, cr, rec, seed, itemIDs)
		return
	}
	if uerr := rev.Err(); uerr != nil {
		log.Warn("Reveal contains items missing from crate config", "crate", cr.ID(), "tx", rec.TxHash, "err", uerr)
	}
	writeJSON(w, http.StatusOK, revealResponse{RevealID: rec.RevealID, TxHash: rec.TxHash, Seed: rec.Seed, Reveal: rev})
}

func (s *Server) replay(w http.ResponseWriter, cr *crate.Crate, prev *reveal.Record, seed *uint256.Int, itemIDs []uint64) {
	if prev.CrateID != cr.ID() || prev.Seed != seed.Dec() || !crate.SameDrops(prev.ItemIDs, itemIDs) {
		writeError(w, http.StatusConflict, "transaction already revealed with different inputs", codeConflict)
		return
	}
	rev, err := cr.Reveal(seed, prev.ItemIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeMissingRandomness)
		return
	}
	if !slices.Equal(rev.Order, prev.Order) {
		// Order depends only on seed and ids.
		log.Error("Stored reveal order differs from recomputed order", "reveal", prev.RevealID, "tx", prev.TxHash)
	}
	writeJSON(w, http.StatusOK, revealResponse{RevealID: prev.RevealID, TxHash: prev.TxHash, Seed: prev.Seed, Replayed: true, Reveal: rev})
}

func (s *Server) lookupCrate(w http.ResponseWriter, id string) (*crate.Crate, bool) {
	cr, err := s.catalog.Get(strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, crate.ErrUnknownCrate) {
			writeError(w, http.StatusNotFound, err.Error(), codeUnknownCrate)
		} else {
			writeError(w, http.StatusInternalServerError, err.Error(), codeInternal)
		}
		return nil, false
	}
	return cr, true
}
