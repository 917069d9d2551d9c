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

const pricesProvider = "prices"

// PriceClient calls the external price-lookup provider. It is always
// consulted through the price cache, never directly by handlers.
type PriceClient struct {
	baseURL string
	client  *http.Client
}

func NewPriceClient(baseURL string, timeout time.Duration) *PriceClient {
	return &PriceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type priceLookupResponse struct {
	Results []domain.PriceResult `json:"results"`
}

func (p *PriceClient) Lookup(ctx context.Context, city string, barcodes []string) ([]domain.PriceResult, error) {
	query := url.Values{}
	query.Set("city", city)
	for _, barcode := range barcodes {
		query.Add("barcode", barcode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/prices?"+query.Encode(), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: pricesProvider, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: pricesProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Provider:   pricesProvider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response status"),
		}
	}

	var body priceLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Provider: pricesProvider, Err: err}
	}

	return body.Results, nil
}
