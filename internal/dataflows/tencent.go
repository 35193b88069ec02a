package dataflows

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// hkPrefix is the provider-specific symbol prefix for delayed HK quotes.
const hkPrefix = "r_hk"

// Positional offsets into the provider's response array. The payload is a
// bare string slice; anything past these offsets is ignored.
const (
	hkFieldName    = 1
	hkFieldPrice   = 3
	hkFieldPercent = 32
)

// HKQuote is one normalized Hong Kong stock quote.
type HKQuote struct {
	Symbol        string
	Name          string
	Price         float64
	ChangePercent float64
}

// TencentClient fetches batched HK quotes from the qt.gtimg.cn endpoint. The
// response body is GBK-encoded JSON mapping prefixed codes to positional
// string arrays.
type TencentClient struct {
	client *resty.Client
}

// NewTencentClient creates a new Tencent quote client.
func NewTencentClient(timeout time.Duration) *TencentClient {
	client := resty.New()
	client.SetBaseURL("http://qt.gtimg.cn")
	client.SetTimeout(timeout)
	client.SetHeader("Referer", "http://gu.qq.com")

	return &TencentClient{client: client}
}

// BatchQuote fetches quotes for the given bare HK codes (no prefix). Missing
// or malformed entries degrade to zero values rather than failing the batch.
func (c *TencentClient) BatchQuote(codes []string) ([]HKQuote, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	prefixed := make([]string, len(codes))
	for i, code := range codes {
		prefixed[i] = hkPrefix + code
	}

	resp, err := c.client.R().
		SetQueryParams(map[string]string{
			"q":   strings.Join(prefixed, ","),
			"fmt": "json",
		}).
		Get("/q")
	if err != nil {
		return nil, fmt.Errorf("fetch hk quotes: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hk quote API error %d", resp.StatusCode())
	}

	body, err := simplifiedchinese.GBK.NewDecoder().Bytes(resp.Body())
	if err != nil {
		// Some gateways already return UTF-8; fall back to the raw bytes.
		body = resp.Body()
	}

	return parseHKQuotes(body)
}

func parseHKQuotes(body []byte) ([]HKQuote, error) {
	var raw map[string][]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse hk quote response: %w", err)
	}

	quotes := make([]HKQuote, 0, len(raw))
	for key, row := range raw {
		if !strings.HasPrefix(key, hkPrefix) {
			continue
		}
		quotes = append(quotes, HKQuote{
			Symbol:        strings.TrimPrefix(key, hkPrefix),
			Name:          rowString(row, hkFieldName),
			Price:         ParseFloat(rowString(row, hkFieldPrice)),
			ChangePercent: ParseFloat(rowString(row, hkFieldPercent)),
		})
	}
	return quotes, nil
}

// rowString reads a positional slot with explicit bounds and type checks,
// treating anything out of range as absent.
func rowString(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}
