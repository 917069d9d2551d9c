package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cartshare/internal/domain"
)

const geocoderProvider = "geocoder"

// GeocoderClient wraps the external distance-matrix provider. Any
// failure, transport, quota or unresolvable address, comes back as a
// *domain.UpstreamError and never takes the process down.
type GeocoderClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGeocoderClient(baseURL, apiKey string, timeout time.Duration) *GeocoderClient {
	return &GeocoderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance resolves the driving distance between two addresses in km.
func (g *GeocoderClient) Distance(ctx context.Context, origin, destination string) (float64, error) {
	query := url.Values{}
	query.Set("origins", origin)
	query.Set("destinations", destination)
	if g.apiKey != "" {
		query.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, &domain.UpstreamError{Provider: geocoderProvider, Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, &domain.UpstreamError{Provider: geocoderProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &domain.UpstreamError{
			Provider:   geocoderProvider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response status"),
		}
	}

	var body distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, &domain.UpstreamError{Provider: geocoderProvider, Err: err}
	}

	if body.Status != "OK" {
		return 0, &domain.UpstreamError{
			Provider: geocoderProvider,
			Err:      fmt.Errorf("provider status %q", body.Status),
		}
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return 0, &domain.UpstreamError{
			Provider: geocoderProvider,
			Err:      fmt.Errorf("empty distance matrix for %q -> %q", origin, destination),
		}
	}

	element := body.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, &domain.UpstreamError{
			Provider: geocoderProvider,
			Err:      fmt.Errorf("element status %q (bad address?)", element.Status),
		}
	}

	return float64(element.Distance.Value) / 1000.0, nil
}
