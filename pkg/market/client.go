package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

// Client fetches OHLC series and quotes from the OXEN market data gateway.
// Quotes are cached briefly since comparison requests hit the same symbols
// repeatedly within one conversation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	quoteCache *cache.Cache
}

var _ Fetcher = &Client{}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		quoteCache: cache.New(30*time.Second, 1*time.Minute),
	}
}

type seriesResponse struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

// GetSeries fetches the OHLC series for one asset.
func (c *Client) GetSeries(ctx context.Context, req SeriesRequest) ([]Candle, error) {
	endpoint := fmt.Sprintf("%s/v1/series?symbol=%s&asset_type=%s&days=%d",
		c.baseURL, url.QueryEscape(req.Symbol), url.QueryEscape(req.AssetType), req.Days)

	var res seriesResponse
	if err := c.getJSON(ctx, endpoint, &res); err != nil {
		return nil, fmt.Errorf("fetch series %s: %w", req.Symbol, err)
	}
	if len(res.Candles) == 0 {
		return nil, fmt.Errorf("fetch series %s: empty series", req.Symbol)
	}
	return res.Candles, nil
}

// GetQuote fetches the latest snapshot for one asset, serving from the quote
// cache when fresh.
func (c *Client) GetQuote(ctx context.Context, symbol, assetType string) (*Quote, error) {
	cacheKey := symbol + "/" + assetType
	if x, found := c.quoteCache.Get(cacheKey); found {
		return x.(*Quote), nil
	}

	endpoint := fmt.Sprintf("%s/v1/quote?symbol=%s&asset_type=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(assetType))

	var quote Quote
	if err := c.getJSON(ctx, endpoint, &quote); err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	c.quoteCache.Set(cacheKey, &quote, cache.DefaultExpiration)
	return &quote, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
