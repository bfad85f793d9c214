package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Ashenafi-pixel/nft-experience-server/config"
	"github.com/Ashenafi-pixel/nft-experience-server/crate"
	"github.com/Ashenafi-pixel/nft-experience-server/eventlog"
	"github.com/Ashenafi-pixel/nft-experience-server/layers"
	"github.com/Ashenafi-pixel/nft-experience-server/metadata"
	"github.com/Ashenafi-pixel/nft-experience-server/reveal"
)

// TokenSource resolves a token id to its DNA string.
type TokenSource interface {
	GetDNA(ctx context.Context, tokenID string) (string, int, error)
}

type Server struct {
	cfg      *config.Config
	catalog  *crate.Catalog
	composer layers.Composer
	reveals  *reveal.Store
	tokens   TokenSource
	events   *eventlog.Decoder
}

func New(cfg *config.Config, catalog *crate.Catalog) (*Server, error) {
	if catalog == nil {
		return nil, fmt.Errorf("server: nil crate catalog")
	}
	events, err := eventlog.NewDecoder(cfg.CrateContract)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		catalog:  catalog,
		composer: layers.Composer{AssetBase: cfg.AssetBaseURL},
		reveals:  reveal.NewStore(cfg.DataDir),
		tokens:   metadata.NewClient(cfg.MetadataURL),
		events:   events,
	}, nil
}

// WithTokenSource replaces the metadata client.
func (s *Server) WithTokenSource(t TokenSource) *Server {
	s.tokens = t
	return s
}

// Handler returns the routed API with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	// Avatars
	mux.HandleFunc("POST /api/dna/decode", s.handleDecodeDNA)
	mux.HandleFunc("POST /api/avatar/compose", s.handleCompose)
	mux.HandleFunc("GET /api/avatars/{tokenId}", s.handleTokenAvatar)
	// Crates
	mux.HandleFunc("GET /api/crates", s.handleCrateList)
	mux.HandleFunc("GET /api/crates/{id}/rarity", s.handleCrateRarity)
	mux.HandleFunc("GET /api/crates/{id}/carousel", s.handleCrateCarousel)
	mux.HandleFunc("POST /api/crates/{id}/reveal", s.handleCrateReveal)
	mux.HandleFunc("POST /api/crates/reveal-log", s.handleRevealLog)
	return cors(requestLogger(mux))
}

func (s *Server) Run() error {
	port := s.cfg.Port
	if port <= 0 {
		port = 8081
	}
	addr := ":" + strconv.Itoa(port)
	log.Info("NFT experience server listening", "addr", addr, "crates", s.catalog.Len(), "metadata", s.cfg.MetadataURL)
	return http.ListenAndServe(addr, s.Handler())
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method and path for each request (no body or secrets).
func requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("HTTP request", "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "nftx"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
