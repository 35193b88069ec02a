package news

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Translator translates English news text to Chinese through the public
// Google translate endpoint.
type Translator struct {
	client *resty.Client
}

// NewTranslator creates a new translator.
func NewTranslator(timeout time.Duration) *Translator {
	client := resty.New()
	client.SetBaseURL("https://translate.googleapis.com")
	client.SetTimeout(timeout)

	return &Translator{client: client}
}

// Translate returns the Chinese rendering of text. Callers fall back to the
// original text on error.
func (t *Translator) Translate(text string) (string, error) {
	resp, err := t.client.R().
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "en",
			"tl":     "zh-CN",
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("translate API error %d", resp.StatusCode())
	}

	return parseTranslateResponse(resp.Body())
}

// parseTranslateResponse joins the sentence segments of the gtx response:
// [[["译文","source",...],...],...].
func parseTranslateResponse(body []byte) (string, error) {
	var parsed []any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}
	if len(parsed) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	segments, ok := parsed[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		pair, ok := seg.([]any)
		if !ok || len(pair) == 0 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translate response held no text")
	}
	return sb.String(), nil
}
