package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tokens/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("id") {
		case "1":
			json.NewEncoder(w).Encode(map[string]string{"dna": "0x1105"})
		case "2":
			json.NewEncoder(w).Encode(map[string]string{})
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetDNA(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL + "/")

	dna, status, err := c.GetDNA(context.Background(), "1")
	if err != nil || status != http.StatusOK || dna != "0x1105" {
		t.Fatalf("GetDNA(1) = %q, %d, %v", dna, status, err)
	}
}

func TestGetDNA_Errors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	_, status, err := c.GetDNA(ctx, "999")
	if status != http.StatusNotFound || !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("missing token: status %d err %v", status, err)
	}
	_, status, err = c.GetDNA(ctx, "500")
	if status != http.StatusInternalServerError || err == nil || err.Error() != "metadata: boom" {
		t.Errorf("upstream error: status %d err %v", status, err)
	}
	_, _, err = c.GetDNA(ctx, "2")
	if err == nil {
		t.Error("empty dna should error")
	}
	_, status, err = c.GetDNA(ctx, " ")
	if err == nil || status != 0 {
		t.Error("blank token id should error before calling upstream")
	}
}

func TestGetDNA_Unreachable(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)
	srv.Close()
	if _, status, err := c.GetDNA(context.Background(), "1"); err == nil || status != 0 {
		t.Errorf("closed server: status %d err %v", status, err)
	}
}
