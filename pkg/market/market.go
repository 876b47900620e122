package market

import (
	"context"
	"time"
)

// Candle is one OHLC time-series point.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is the latest snapshot for one asset.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	AssetType string  `json:"asset_type"`
	LastPrice float64 `json:"last_price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// SeriesRequest identifies one time series to fetch.
type SeriesRequest struct {
	Symbol    string
	AssetType string
	Days      int
}

// Fetcher is the market data contract the pipeline consumes. Implementations
// must respect the context deadline: one unresponsive data source must not
// stall a whole response.
type Fetcher interface {
	GetSeries(ctx context.Context, req SeriesRequest) ([]Candle, error)
	GetQuote(ctx context.Context, symbol, assetType string) (*Quote, error)
}

// TimeframeDays converts the analyzer's timeframe labels to day counts.
func TimeframeDays(timeframe string) int {
	switch timeframe {
	case "1d":
		return 1
	case "7d":
		return 7
	case "90d":
		return 90
	case "1y":
		return 365
	default:
		return 30
	}
}
