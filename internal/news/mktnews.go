package news

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"
)

// MktNewsClient is the English flash-news adapter. Items are translated to
// Chinese through a persisted cache keyed by the exact source string.
type MktNewsClient struct {
	client     *resty.Client
	translator *Translator
	cache      *TranslationCache
}

// NewMktNewsClient creates the English feed adapter.
func NewMktNewsClient(timeout time.Duration, cache *TranslationCache) *MktNewsClient {
	client := resty.New()
	client.SetBaseURL("https://static.mktnews.net")
	client.SetTimeout(timeout)

	return &MktNewsClient{
		client:     client,
		translator: NewTranslator(timeout),
		cache:      cache,
	}
}

type mktNewsItem struct {
	Time      string `json:"time"`
	Important int    `json:"important"`
	Data      struct {
		Content string `json:"content"`
	} `json:"data"`
}

// Fetch returns at most count items, newest first as delivered by the feed.
func (c *MktNewsClient) Fetch(count int) ([]Item, error) {
	resp, err := c.client.R().
		// Cache-busting timestamp, same trick the web client uses.
		SetQueryParam("t", strconv.FormatInt(time.Now().UnixMilli(), 10)).
		Get("/json/flash/en.json")
	if err != nil {
		return nil, fmt.Errorf("fetch english flash: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("english flash API error %d", resp.StatusCode())
	}

	var raw []mktNewsItem
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("parse english flash: %w", err)
	}
	if len(raw) > count {
		raw = raw[:count]
	}

	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		ts, err := time.Parse(time.RFC3339, entry.Time)
		if err != nil {
			continue
		}
		text := StripMarkup(entry.Data.Content)
		if text == "" {
			continue
		}
		items = append(items, Item{
			Time:       ts.In(Shanghai),
			Importance: mapImportanceEN(entry.Important),
			Text:       c.translate(text),
		})
	}

	if err := c.cache.Save(); err != nil {
		log.Warn().Err(err).Msg("save translation cache failed")
	}
	return items, nil
}

// translate returns the cached rendering, translating and caching on a miss.
// Translation failures fall back to the original text without caching it.
func (c *MktNewsClient) translate(text string) string {
	if cached, ok := c.cache.Get(text); ok {
		return cached
	}
	translated, err := c.translator.Translate(text)
	if err != nil {
		log.Warn().Err(err).Msg("translation failed")
		return text
	}
	c.cache.Put(text, translated)
	return translated
}

func mapImportanceEN(important int) Importance {
	switch {
	case important >= 2:
		return ImportanceHigh
	case important == 1:
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}
