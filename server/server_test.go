package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/Ashenafi-pixel/nft-experience-server/config"
	"github.com/Ashenafi-pixel/nft-experience-server/crate"
	"github.com/Ashenafi-pixel/nft-experience-server/dna"
	"github.com/Ashenafi-pixel/nft-experience-server/eventlog"
	"github.com/Ashenafi-pixel/nft-experience-server/layers"
	"github.com/Ashenafi-pixel/nft-experience-server/metadata"
)

type stubTokens map[string]string

func (s stubTokens) GetDNA(_ context.Context, id string) (string, int, error) {
	if id == "boom" {
		return "", http.StatusInternalServerError, errors.New("metadata: boom")
	}
	d, ok := s[id]
	if !ok {
		return "", http.StatusNotFound, fmt.Errorf("metadata: %w: %s", metadata.ErrTokenNotFound, id)
	}
	return d, http.StatusOK, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	catalog, err := crate.NewCatalog([]crate.Config{
		{ID: "genesis", Name: "Genesis Supply Crate", Items: []crate.Item{
			{ID: 12, Name: "Plasma Blade", Weight: 70, Rarity: "common", Image: "items/12.png"},
			{ID: 40, Name: "Void Visor", Weight: 8, Rarity: "rare", Image: "items/40.png"},
		}},
		{ID: "7", Name: "Battle Pass Crate", Items: []crate.Item{
			{ID: 101, Name: "Ion Cape", Weight: 1},
			{ID: 102, Name: "Ion Boots", Weight: 3},
		}},
	})
	require.NoError(t, err)
	cfg := &config.Config{Port: 8081, DataDir: t.TempDir(), MetadataURL: "http://127.0.0.1:1"}
	srv, err := New(cfg, catalog)
	require.NoError(t, err)
	token := dna.Encode(map[dna.Slot]dna.Gene{dna.SlotBackground: 17, dna.SlotHead: 5, dna.SlotOutfit: 27})
	srv.WithTokenSource(stubTokens{"1": token.Hex(), "2": "not-dna"})
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, code, decode[APIError](t, rec).Code)
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodOptions, "/api/crates", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDecodeDNA(t *testing.T) {
	h := newTestServer(t)
	d := dna.Encode(map[dna.Slot]dna.Gene{dna.SlotBackground: 17, dna.SlotSkin: 0, dna.SlotWeapon: 9})
	rec := do(t, h, http.MethodPost, "/api/dna/decode", map[string]string{"dna": d.Dec()})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[decodeResponse](t, rec)
	require.Equal(t, "Nebula", got.Traits.Background.Name)
	require.Equal(t, "Plasma", got.Traits.Skin.Name)
	require.Equal(t, uint8(9), got.Traits.Dynamic.Weapon)

	requireAPIError(t, do(t, h, http.MethodPost, "/api/dna/decode", map[string]string{"dna": "zz"}), http.StatusBadRequest, codeInvalidDNA)
	requireAPIError(t, do(t, h, http.MethodPost, "/api/dna/decode", "{"), http.StatusBadRequest, codeInvalidBody)
}

func TestCompose(t *testing.T) {
	h := newTestServer(t)
	d := dna.Encode(map[dna.Slot]dna.Gene{dna.SlotBackground: 17, dna.SlotHead: 5, dna.SlotOutfit: 27})
	rec := do(t, h, http.MethodPost, "/api/avatar/compose", composeRequest{
		DNA:       d.Hex(),
		Overrides: []layers.ItemOverride{{Category: layers.Weapon, ItemID: 3}, {Category: layers.FaceArmor, ItemID: 4}},
		Mode:      "2d",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[avatarResponse](t, rec)
	require.Equal(t, layers.Flat, got.Plan.Mode)
	cats := got.Plan.Categories()
	require.Contains(t, cats, layers.FaceArmor)
	require.NotContains(t, cats, layers.Head)
	for i := 1; i < len(cats); i++ {
		require.Less(t, layers.Priority(cats[i-1]), layers.Priority(cats[i]))
	}

	rec = do(t, h, http.MethodPost, "/api/avatar/compose", composeRequest{
		DNA:       d.Hex(),
		Overrides: []layers.ItemOverride{{Category: layers.Skin, ItemID: 1}},
	})
	requireAPIError(t, rec, http.StatusBadRequest, codeInvalidOverride)
}

func TestTokenAvatar(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/avatars/1?mode=pixel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[avatarResponse](t, rec)
	require.Equal(t, "1", got.TokenID)
	require.Equal(t, "Crown", got.Traits.Head.Name)
	require.Equal(t, layers.Pixel, got.Plan.Mode)
	require.NotEmpty(t, got.Plan.Layers)

	requireAPIError(t, do(t, h, http.MethodGet, "/api/avatars/404", nil), http.StatusNotFound, codeTokenNotFound)
	requireAPIError(t, do(t, h, http.MethodGet, "/api/avatars/boom", nil), http.StatusBadGateway, codeUpstream)
	requireAPIError(t, do(t, h, http.MethodGet, "/api/avatars/2", nil), http.StatusBadGateway, codeInvalidDNA)
}

func TestCrateListAndRarity(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/crates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct{ Crates []crateSummary }](t, rec)
	require.Equal(t, []crateSummary{{ID: "7", Name: "Battle Pass Crate", Items: 2}, {ID: "genesis", Name: "Genesis Supply Crate", Items: 2}}, list.Crates)

	rec = do(t, h, http.MethodGet, "/api/crates/genesis/rarity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rarity := decode[struct {
		TotalWeight int64         `json:"totalWeight"`
		Items       []rarityEntry `json:"items"`
	}](t, rec)
	require.Equal(t, int64(78), rarity.TotalWeight)
	require.Len(t, rarity.Items, 2)
	require.Equal(t, 89.74, rarity.Items[0].Percent)
	require.Equal(t, 10.26, rarity.Items[1].Percent)
	require.InDelta(t, 8.0/78.0, rarity.Items[1].Probability, 1e-12)

	requireAPIError(t, do(t, h, http.MethodGet, "/api/crates/nope/rarity", nil), http.StatusNotFound, codeUnknownCrate)
}

func TestCrateCarousel(t *testing.T) {
	h := newTestServer(t)
	type reel struct{ Items []crate.Item }
	a := decode[reel](t, do(t, h, http.MethodGet, "/api/crates/genesis/carousel?seed=0x2a", nil))
	b := decode[reel](t, do(t, h, http.MethodGet, "/api/crates/genesis/carousel?seed=42", nil))
	require.Equal(t, a, b)
	require.Len(t, a.Items, 2)

	rec := do(t, h, http.MethodGet, "/api/crates/genesis/carousel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[reel](t, rec).Items, 2)

	requireAPIError(t, do(t, h, http.MethodGet, "/api/crates/genesis/carousel?seed=xyz", nil), http.StatusBadRequest, codeMissingRandomness)
}

func TestCrateReveal(t *testing.T) {
	h := newTestServer(t)
	req := revealRequest{Seed: "0xc0ffee", ItemIDs: []uint64{12, 12, 40, 12, 40}, TxHash: "0xAA"}
	rec := do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[revealResponse](t, rec)
	want, err := crate.ReconstructDrops(uint256.NewInt(0xc0ffee), req.ItemIDs)
	require.NoError(t, err)
	require.Equal(t, want, first.Order)
	require.Equal(t, "12648430", first.Seed)
	require.Equal(t, "0xaa", first.TxHash)
	require.False(t, first.Replayed)
	require.Empty(t, first.UnknownItems)

	rec = do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[revealResponse](t, rec)
	require.True(t, again.Replayed)
	require.Equal(t, first.RevealID, again.RevealID)
	require.Equal(t, first.Order, again.Order)

	req.Seed = "1"
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req), http.StatusConflict, codeConflict)

	req.Seed = "0xc0ffee"
	req.ItemIDs = []uint64{12, 12, 40, 12}
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req), http.StatusConflict, codeConflict)
}

func TestCrateReveal_ReplayIgnoresIDOrder(t *testing.T) {
	h := newTestServer(t)
	req := revealRequest{Seed: "42", ItemIDs: []uint64{40, 12, 12}, TxHash: "0xbb"}
	first := decode[revealResponse](t, do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req))

	req.ItemIDs = []uint64{12, 40, 12}
	rec := do(t, h, http.MethodPost, "/api/crates/genesis/reveal", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	again := decode[revealResponse](t, rec)
	require.True(t, again.Replayed)
	require.Equal(t, first.RevealID, again.RevealID)
	require.Equal(t, first.Order, again.Order)
}

func TestCrateReveal_ConcurrentSameTx(t *testing.T) {
	h := newTestServer(t)
	req := revealRequest{Seed: "9", ItemIDs: []uint64{12, 40}, TxHash: "0xcc"}
	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/crates/genesis/reveal", &buf))
			var got revealResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err == nil {
				ids[i] = got.RevealID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		require.NotEmpty(t, id)
		require.Equal(t, ids[0], id)
	}
}

func TestCrateReveal_Errors(t *testing.T) {
	h := newTestServer(t)
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/genesis/reveal", revealRequest{ItemIDs: []uint64{12}}), http.StatusBadRequest, codeMissingRandomness)
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/nope/reveal", revealRequest{Seed: "1", ItemIDs: []uint64{12}}), http.StatusNotFound, codeUnknownCrate)
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/genesis/reveal", "[]"), http.StatusBadRequest, codeInvalidBody)
}

func TestCrateReveal_UnknownItems(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/crates/genesis/reveal", revealRequest{Seed: "5", ItemIDs: []uint64{12, 999}})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[revealResponse](t, rec)
	require.Equal(t, []uint64{999}, got.UnknownItems)
	require.Len(t, got.Drops, 2)
	for _, d := range got.Drops {
		if d.ItemID == 999 {
			require.False(t, d.Known)
			require.Equal(t, crate.PlaceholderImage, d.Image)
		}
	}
}

func TestRevealLog(t *testing.T) {
	h := newTestServer(t)
	dec, err := eventlog.NewDecoder("")
	require.NoError(t, err)
	opened := &eventlog.Opened{
		Player:     common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		CrateID:    uint256.NewInt(7),
		Randomness: uint256.NewInt(424242),
		ItemIDs:    []uint64{101, 102, 102},
		TxHash:     common.HexToHash("0xbeef"),
	}
	l, err := dec.Encode(opened)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/crates/reveal-log", map[string]interface{}{"log": l})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[revealResponse](t, rec)
	want, err := crate.ReconstructDrops(opened.Randomness, opened.ItemIDs)
	require.NoError(t, err)
	require.Equal(t, "7", got.CrateID)
	require.Equal(t, want, got.Order)
	require.Equal(t, "424242", got.Seed)

	l.Topics[0] = common.HexToHash("0x01")
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/reveal-log", map[string]interface{}{"log": l}), http.StatusUnprocessableEntity, codeInvalidEvent)
	requireAPIError(t, do(t, h, http.MethodPost, "/api/crates/reveal-log", map[string]interface{}{}), http.StatusBadRequest, codeInvalidBody)
}
