package export

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"

	"github.com/Tim0thy1/stock-tools/internal/session"
)

const flashPageSize = 50

// FlashItem is one flash-news record from the Futu feed. Time is a unix
// second delivered as a string upstream.
type FlashItem struct {
	ID         json.Number `json:"id"`
	Time       json.Number `json:"time"`
	Title      string      `json:"title"`
	Brief      string      `json:"brief"`
	Summary    string      `json:"summary"`
	Content    string      `json:"content"`
	SourceName string      `json:"sourceName"`
	DetailURL  string      `json:"detailUrl"`
}

type flashListResponse struct {
	Data struct {
		Data struct {
			News    []FlashItem `json:"news"`
			SeqMark string      `json:"seqMark"`
			HasMore bool        `json:"hasMore"`
		} `json:"data"`
	} `json:"data"`
}

// FlashNewsExporter pages through the Futu flash feed and writes yesterday's
// items to CSV with US-Eastern timestamps.
type FlashNewsExporter struct {
	client *resty.Client
	outDir string
	now    func() time.Time
	// sleep between pages, overridable in tests.
	sleep func(time.Duration)
}

// NewFlashNewsExporter creates an exporter writing into outDir.
func NewFlashNewsExporter(outDir string, timeout time.Duration) *FlashNewsExporter {
	client := resty.New()
	client.SetBaseURL("https://news.futunn.com")
	client.SetTimeout(timeout)
	client.SetHeaders(map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		"Referer":    "https://news.futunn.com/",
		"Accept":     "application/json, text/plain, */*",
	})

	return &FlashNewsExporter{
		client: client,
		outDir: outDir,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Export fetches the window and writes the CSV, reporting the output path.
func (e *FlashNewsExporter) Export() (string, error) {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	start, end := windowBounds(e.now())
	log.Info().Time("start", start).Time("end", end).Msg("fetching flash news window")

	items, err := e.fetchWindow(start, end)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no flash news inside the window")
	}

	rows := [][]string{{"id", "time_us_eastern", "title", "summary", "source", "url"}}
	for _, item := range items {
		rows = append(rows, flashRow(item))
	}

	path := filepath.Join(e.outDir, fmt.Sprintf("futu_flash_news_%s.csv", start.Format("2006-01-02")))
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// windowBounds returns yesterday 00:00 through today 00:00 in local time.
func windowBounds(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return end.AddDate(0, 0, -1), end
}

// fetchWindow pages backward through the feed until it passes the window
// start. Paging is cursor-based: each response carries the mark for the next
// older page.
func (e *FlashNewsExporter) fetchWindow(start, end time.Time) ([]FlashItem, error) {
	var kept []FlashItem
	seqMark := ""

	for {
		page, err := e.fetchPage(seqMark)
		if err != nil {
			return kept, err
		}
		items := page.Data.Data.News
		if len(items) == 0 {
			return kept, nil
		}

		kept = append(kept, filterWindow(items, start, end)...)

		oldest := itemTime(items[len(items)-1])
		log.Info().Int("kept", len(kept)).Time("oldest", oldest).Msg("flash news page fetched")
		if oldest.Before(start) || !page.Data.Data.HasMore {
			return kept, nil
		}

		seqMark = page.Data.Data.SeqMark
		// Pace the paging like a browser session would.
		e.sleep(1200*time.Millisecond + time.Duration(rand.Int63n(800))*time.Millisecond)
	}
}

func (e *FlashNewsExporter) fetchPage(seqMark string) (*flashListResponse, error) {
	req := e.client.R().
		SetQueryParam("pageSize", strconv.Itoa(flashPageSize)).
		SetQueryParam("_t", strconv.FormatInt(e.now().UnixMilli(), 10))
	if seqMark != "" {
		req.SetQueryParam("seqMark", seqMark)
	}

	resp, err := req.Get("/news-site-api/main/get-flash-list")
	if err != nil {
		return nil, fmt.Errorf("fetch flash list: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("flash list API error %d", resp.StatusCode())
	}

	var parsed flashListResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse flash list: %w", err)
	}
	return &parsed, nil
}

// filterWindow keeps items with start <= time < end.
func filterWindow(items []FlashItem, start, end time.Time) []FlashItem {
	var kept []FlashItem
	for _, item := range items {
		ts := itemTime(item)
		if !ts.Before(start) && ts.Before(end) {
			kept = append(kept, item)
		}
	}
	return kept
}

func itemTime(item FlashItem) time.Time {
	sec, err := item.Time.Int64()
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// flashRow mirrors the title/summary fallback chains of the feed: some items
// only carry a brief or a content body.
func flashRow(item FlashItem) []string {
	title := firstNonEmpty(item.Title, item.Brief, item.Summary, item.Content)
	summary := firstNonEmpty(item.Summary, item.Brief, truncateRunes(item.Content, 120))

	url := item.DetailURL
	if url == "" {
		url = "https://news.futunn.com/post/" + item.ID.String()
	}

	return []string{
		item.ID.String(),
		itemTime(item).In(session.NewYork).Format("2006-01-02 15:04:05 MST"),
		title,
		summary,
		item.SourceName,
		url,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
