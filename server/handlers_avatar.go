package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Ashenafi-pixel/nft-experience-server/dna"
	"github.com/Ashenafi-pixel/nft-experience-server/layers"
	"github.com/Ashenafi-pixel/nft-experience-server/metadata"
)

type decodeRequest struct {
	DNA string `json:"dna"`
}

type decodeResponse struct {
	DNA    string          `json:"dna"`
	Traits dna.TraitRecord `json:"traits"`
}

// handleDecodeDNA implements POST /api/dna/decode.
func (s *Server) handleDecodeDNA(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", codeInvalidBody)
		return
	}
	d, err := dna.ParseDNA(req.DNA)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidDNA)
		return
	}
	writeJSON(w, http.StatusOK, decodeResponse{DNA: d.Hex(), Traits: dna.Decode(d)})
}

type composeRequest struct {
	DNA       string                `json:"dna"`
	Overrides []layers.ItemOverride `json:"overrides"`
	Mode      string                `json:"mode"`
}

type avatarResponse struct {
	TokenID string            `json:"tokenId,omitempty"`
	DNA     string            `json:"dna"`
	Traits  dna.TraitRecord   `json:"traits"`
	Plan    layers.RenderPlan `json:"plan"`
}

// handleCompose implements POST /api/avatar/compose.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", codeInvalidBody)
		return
	}
	d, err := dna.ParseDNA(req.DNA)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidDNA)
		return
	}
	for _, o := range req.Overrides {
		if !layers.Overridable(o.Category) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("category %q does not take item overrides", o.Category), codeInvalidOverride)
			return
		}
	}
	traits := dna.Decode(d)
	plan := s.composer.Compose(traits, req.Overrides, layers.ParseRenderMode(req.Mode))
	writeJSON(w, http.StatusOK, avatarResponse{DNA: d.Hex(), Traits: traits, Plan: plan})
}

// handleTokenAvatar implements GET /api/avatars/{tokenId}?mode=.
func (s *Server) handleTokenAvatar(w http.ResponseWriter, r *http.Request) {
	tokenID := strings.TrimSpace(r.PathValue("tokenId"))
	raw, status, err := s.tokens.GetDNA(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, metadata.ErrTokenNotFound) || status == http.StatusNotFound {
			writeError(w, http.StatusNotFound, err.Error(), codeTokenNotFound)
			return
		}
		log.Warn("Token metadata lookup failed", "token", tokenID, "status", status, "err", err)
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
		return
	}
	d, err := dna.ParseDNA(raw)
	if err != nil {
		log.Warn("Token metadata returned malformed DNA", "token", tokenID, "dna", raw)
		writeError(w, http.StatusBadGateway, err.Error(), codeInvalidDNA)
		return
	}
	traits := dna.Decode(d)
	plan := s.composer.Compose(traits, nil, layers.ParseRenderMode(r.URL.Query().Get("mode")))
	writeJSON(w, http.StatusOK, avatarResponse{TokenID: tokenID, DNA: d.Hex(), Traits: traits, Plan: plan})
}
