// Package metadata reads token data from the NFT metadata service.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrTokenNotFound = errors.New("token not found")

// Client calls the metadata service token API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetDNA returns the DNA string of a token along with the upstream status.
func (c *Client) GetDNA(ctx context.Context, tokenID string) (string, int, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return "", 0, errors.New("metadata: token id required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tokens/"+url.PathEscape(tokenID), nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var data struct {
		DNA   string `json:"dna"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &data)
	if resp.StatusCode == http.StatusNotFound {
		return "", resp.StatusCode, fmt.Errorf("metadata: %w: %s", ErrTokenNotFound, tokenID)
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("metadata: %s", data.Error)
	}
	if data.DNA == "" {
		return "", resp.StatusCode, fmt.Errorf("metadata: token %s has no dna", tokenID)
	}
	return data.DNA, resp.StatusCode, nil
}
