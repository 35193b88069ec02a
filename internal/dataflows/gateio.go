package dataflows

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GateClient fetches spot ticker prices from Gate.io.
type GateClient struct {
	client *resty.Client
}

// NewGateClient creates a new Gate.io spot client.
func NewGateClient(timeout time.Duration) *GateClient {
	client := resty.New()
	client.SetBaseURL("https://api.gateio.ws/api/v4")
	client.SetTimeout(timeout)

	return &GateClient{client: client}
}

type gateTicker struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
}

// SpotPrices lists all tradable pairs and filters down to the allow-list.
// Returned keys drop the underscore ("BTC_USDT" → "BTCUSDT").
func (c *GateClient) SpotPrices(pairs []string) (map[string]float64, error) {
	resp, err := c.client.R().Get("/spot/tickers")
	if err != nil {
		return nil, fmt.Errorf("fetch spot tickers: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("spot ticker API error %d", resp.StatusCode())
	}

	var tickers []gateTicker
	if err := json.Unmarshal(resp.Body(), &tickers); err != nil {
		return nil, fmt.Errorf("parse spot tickers: %w", err)
	}

	return filterSpotPrices(tickers, pairs), nil
}

func filterSpotPrices(tickers []gateTicker, pairs []string) map[string]float64 {
	wanted := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		wanted[p] = true
	}

	prices := make(map[string]float64, len(pairs))
	for _, t := range tickers {
		if !wanted[t.CurrencyPair] {
			continue
		}
		prices[strings.ReplaceAll(t.CurrencyPair, "_", "")] = ParseFloat(t.Last)
	}
	return prices
}
