package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
)

const defaultRateAPIBaseURL = "https://api.exchangerate-api.com/v4/latest"

// apiRateSource pulls rates from the public exchangerate-api endpoint.
// One request returns every rate for a base currency.
type apiRateSource struct {
	baseURL string
	client  *http.Client
}

// NewAPIRateSource creates a live rate source. baseURL defaults to the
// public endpoint when empty.
func NewAPIRateSource(baseURL string) RateSource {
	if baseURL == "" {
		baseURL = defaultRateAPIBaseURL
	}
	return &apiRateSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *apiRateSource) GetAllRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for code, rate := range body.Rates {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return rates, nil
}

func (s *apiRateSource) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rates, err := s.GetAllRates(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := rates[to]
	if !ok || rate.Sign() <= 0 {
		return decimal.Zero, domain.ErrRateUnavailable
	}
	return rate, nil
}
