package dataflows

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"
)

// QuotePayload is the raw per-symbol field set from the quote provider.
// Values are accessed by upstream field name; absent or non-numeric fields
// read as missing rather than zero.
type QuotePayload map[string]any

// Float returns a numeric field from the payload.
func (p QuotePayload) Float(field string) (float64, bool) {
	switch v := p[field].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// String returns a text field from the payload.
func (p QuotePayload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

// YahooClient fetches batched equity quotes, including the pre/post/overnight
// session fields the monitor selects from.
type YahooClient struct {
	client *resty.Client
}

// NewYahooClient creates a new Yahoo quote client.
func NewYahooClient(timeout time.Duration) *YahooClient {
	client := resty.New()
	client.SetBaseURL("https://query1.finance.yahoo.com")
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; stock-tools/1.0)")

	return &YahooClient{client: client}
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
		Error  any              `json:"error"`
	} `json:"quoteResponse"`
}

// BatchQuote fetches quotes for all symbols in one call. Symbols missing from
// the response are simply absent from the returned mapping.
func (c *YahooClient) BatchQuote(symbols []string) (map[string]QuotePayload, error) {
	if len(symbols) == 0 {
		return map[string]QuotePayload{}, nil
	}

	resp, err := c.client.R().
		SetQueryParams(map[string]string{
			"symbols":        strings.Join(symbols, ","),
			"overnightPrice": "true",
		}).
		Get("/v7/finance/quote")
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("quote API error %d", resp.StatusCode())
	}

	var parsed yahooQuoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse quote response: %w", err)
	}

	result := make(map[string]QuotePayload, len(parsed.QuoteResponse.Result))
	for _, raw := range parsed.QuoteResponse.Result {
		sym, _ := raw["symbol"].(string)
		if sym == "" {
			continue
		}
		result[NormalizeSymbol(sym)] = QuotePayload(raw)
	}
	return result, nil
}

type quoteEntry struct {
	ts      time.Time
	payload QuotePayload
}

// QuoteCache memoizes BatchQuote results per symbol with a fixed TTL. An
// upstream failure degrades to empty payloads for the stale symbols while
// already-cached entries stay valid; callers treat an empty payload as
// "unknown", never as an error.
type QuoteCache struct {
	ttl   time.Duration
	fetch func([]string) (map[string]QuotePayload, error)
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]quoteEntry
}

// NewQuoteCache wraps a batch fetch with TTL memoization.
func NewQuoteCache(ttl time.Duration, fetch func([]string) (map[string]QuotePayload, error)) *QuoteCache {
	return &QuoteCache{
		ttl:     ttl,
		fetch:   fetch,
		now:     time.Now,
		entries: make(map[string]quoteEntry),
	}
}

// Get returns a payload for every requested symbol, batching all stale or
// missing symbols into a single upstream call.
func (qc *QuoteCache) Get(symbols []string) map[string]QuotePayload {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	now := qc.now()
	var stale []string
	for _, sym := range symbols {
		entry, ok := qc.entries[sym]
		if !ok || now.Sub(entry.ts) > qc.ttl {
			stale = append(stale, sym)
		}
	}

	if len(stale) > 0 {
		fetched, err := qc.fetch(stale)
		if err != nil {
			log.Warn().Err(err).Strs("symbols", stale).Msg("quote fetch failed")
			fetched = map[string]QuotePayload{}
		}
		for _, sym := range stale {
			payload := fetched[sym]
			if payload == nil {
				payload = QuotePayload{}
			}
			qc.entries[sym] = quoteEntry{ts: now, payload: payload}
		}
	}

	result := make(map[string]QuotePayload, len(symbols))
	for _, sym := range symbols {
		if entry, ok := qc.entries[sym]; ok {
			result[sym] = entry.payload
		} else {
			result[sym] = QuotePayload{}
		}
	}
	return result
}
