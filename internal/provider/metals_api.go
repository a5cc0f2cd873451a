package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"metalpriceservice/internal/rates"
)

var _ RatesSource = (*MetalsAPIProvider)(nil)

// MetalsAPIName identifies Metals-API in provider errors and cache keys.
const MetalsAPIName = "metals_api"

// MetalsAPIProvider fetches rates from the metals-api.com "latest" endpoint.
type MetalsAPIProvider struct {
	baseURL string
	symbols []string
	client  *http.Client
}

// NewMetalsAPIProvider creates a new MetalsAPIProvider. An empty symbols list
// asks the API for every code it knows.
func NewMetalsAPIProvider(baseURL string, symbols []string, timeoutSec int) *MetalsAPIProvider {
	if baseURL == "" {
		baseURL = "https://metals-api.com/api"
	}
	return &MetalsAPIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		symbols: symbols,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type metalsAPIResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Error     *metalsAPIError    `json:"error,omitempty"`
}

type metalsAPIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (p *MetalsAPIProvider) latestURL(apiKey string, base rates.Code) string {
	q := url.Values{}
	q.Set("access_key", apiKey)
	q.Set("base", string(base))
	if len(p.symbols) > 0 {
		q.Set("symbols", strings.Join(p.symbols, ","))
	}
	return p.baseURL + "/latest?" + q.Encode()
}

// FetchRates retrieves the latest snapshot for base.
func (p *MetalsAPIProvider) FetchRates(ctx context.Context, apiKey string, base rates.Code) (rates.Snapshot, error) {
	if apiKey == "" {
		return rates.Snapshot{}, ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.latestURL(apiKey, base), http.NoBody)
	if err != nil {
		return rates.Snapshot{}, newProviderError(MetalsAPIName, err, fmt.Sprintf("metals API request creation failed: %v", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return rates.Snapshot{}, newProviderError(MetalsAPIName, err, fmt.Sprintf("metals API request failed: %v", err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return rates.Snapshot{}, newProviderError(MetalsAPIName, nil,
			fmt.Sprintf("metals API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result metalsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return rates.Snapshot{}, newProviderError(MetalsAPIName, err, fmt.Sprintf("failed to decode metals API response: %v", err))
	}

	if !result.Success {
		msg := "metals API request was not successful"
		if result.Error != nil && result.Error.Info != "" {
			msg = result.Error.Info
		} else if result.Error != nil && result.Error.Type != "" {
			msg = fmt.Sprintf("metals API error %d: %s", result.Error.Code, result.Error.Type)
		}
		return rates.Snapshot{}, newProviderError(MetalsAPIName, nil, msg)
	}
	if len(result.Rates) == 0 {
		return rates.Snapshot{}, newProviderError(MetalsAPIName, nil, "metals API response contained no rates")
	}

	snapshotBase := rates.Code(result.Base)
	if snapshotBase == "" {
		snapshotBase = base
	}
	ts := result.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}

	converted := make(map[rates.Code]float64, len(result.Rates))
	for code, r := range result.Rates {
		converted[rates.Code(code)] = r
	}
	return rates.NewSnapshot(snapshotBase, converted, ts), nil
}
