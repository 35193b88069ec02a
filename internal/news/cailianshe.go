package news

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ClsClient is the Chinese Cailianshe flash-news adapter.
type ClsClient struct {
	client *resty.Client
}

// NewClsClient creates the Chinese feed adapter.
func NewClsClient(timeout time.Duration) *ClsClient {
	client := resty.New()
	client.SetBaseURL("https://www.cls.cn")
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	return &ClsClient{client: client}
}

type clsResponse struct {
	Data struct {
		RollData []clsItem `json:"roll_data"`
	} `json:"data"`
}

type clsItem struct {
	CTime   int64  `json:"ctime"`
	Level   string `json:"level"`
	Content string `json:"content"`
}

// Fetch returns at most count items from the telegraph roll.
func (c *ClsClient) Fetch(count int) ([]Item, error) {
	resp, err := c.client.R().
		SetQueryParams(map[string]string{
			"app":          "CailianpressWeb",
			"os":           "web",
			"refresh_type": "1",
			"rn":           "100",
			"sv":           "8.4.6",
		}).
		Get("/nodeapi/telegraphList")
	if err != nil {
		return nil, fmt.Errorf("fetch chinese flash: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("chinese flash API error %d", resp.StatusCode())
	}

	var parsed clsResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse chinese flash: %w", err)
	}

	return normalizeClsItems(parsed.Data.RollData, count), nil
}

func normalizeClsItems(raw []clsItem, count int) []Item {
	if len(raw) > count {
		raw = raw[:count]
	}
	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		text := StripMarkup(entry.Content)
		if text == "" {
			continue
		}
		items = append(items, Item{
			Time:       time.Unix(entry.CTime, 0).In(Shanghai),
			Importance: mapImportanceCN(entry.Level),
			Text:       text,
		})
	}
	return items
}

func mapImportanceCN(level string) Importance {
	switch level {
	case "A":
		return ImportanceHigh
	case "B":
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}
