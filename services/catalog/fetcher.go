package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cineday/models"
)

// DefaultSourceURL is the fixed remote catalog endpoint.
const DefaultSourceURL = "https://data.cineday.example.org/catalog.json"

const fetchTimeout = 30 * time.Second

var (
	// ErrTransport covers connection failures and request timeouts.
	ErrTransport = errors.New("catalog: transport error")
	// ErrDecode covers payloads that are not the expected catalog shape.
	ErrDecode = errors.New("catalog: malformed payload")
)

// HTTPStatusError reports a non-2xx response from the catalog source.
type HTTPStatusError struct {
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d", e.Status)
}

// Fetcher retrieves the remote catalog: a single GET with a fixed timeout.
// There are no retries at this layer — a failed fetch means the coordinator
// falls back to the cached snapshot.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the given source URL. An empty URL falls
// back to DefaultSourceURL.
func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = DefaultSourceURL
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads and decodes the catalog. Failures are one of ErrTransport,
// *HTTPStatusError or ErrDecode.
func (f *Fetcher) Fetch(ctx context.Context) (*models.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{Status: resp.StatusCode}
	}

	var cat models.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &cat, nil
}
