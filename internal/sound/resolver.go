// Package sound resolves sound-effect names to playable clip URLs using the
// myinstants.com search API.
package sound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.myinstants.com"

// ErrNotFound is returned when no clip matches the requested name.
var ErrNotFound = errors.New("sound: no matching clip")

type Resolver struct {
	httpClient *http.Client
	baseURL    string
}

func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

type searchResponse struct {
	Results []struct {
		Name  string `json:"name"`
		Sound string `json:"sound"`
	} `json:"results"`
}

// Resolve returns the clip URL for the first search hit on name.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/instants/?name=%s", r.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sound search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sound search returned %s: %s", resp.Status, body)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode sound search response: %w", err)
	}

	for _, hit := range out.Results {
		if hit.Sound != "" {
			return hit.Sound, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}
