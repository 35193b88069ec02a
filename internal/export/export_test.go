package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestWindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 45, 0, time.UTC)
	start, end := windowBounds(now)

	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestFilterWindow(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(2000, 0)

	items := []FlashItem{
		{ID: "1", Time: "999"},  // before window
		{ID: "2", Time: "1000"}, // inclusive start
		{ID: "3", Time: "1500"},
		{ID: "4", Time: "2000"}, // exclusive end
		{ID: "5", Time: "bogus"},
	}

	kept := filterWindow(items, start, end)
	if len(kept) != 2 {
		t.Fatalf("kept %d items, want 2", len(kept))
	}
	if kept[0].ID.String() != "2" || kept[1].ID.String() != "3" {
		t.Errorf("kept = %v, %v", kept[0].ID, kept[1].ID)
	}
}

func TestExpiriesWithin(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	expiries := []int64{
		now.AddDate(0, 0, -7).Unix(),  // past
		now.AddDate(0, 0, 7).Unix(),   // near
		now.AddDate(0, 0, 179).Unix(), // inside horizon
		now.AddDate(0, 0, 181).Unix(), // beyond horizon
	}

	kept := expiriesWithin(expiries, now, 180)
	if len(kept) != 2 {
		t.Fatalf("kept %d expiries, want 2", len(kept))
	}
	if kept[0] != expiries[1] || kept[1] != expiries[2] {
		t.Errorf("kept = %v", kept)
	}
}

func TestFilterCalls(t *testing.T) {
	calls := []OptionContract{
		{Strike: 60},  // below 70% band
		{Strike: 70},  // boundary, kept
		{Strike: 100}, // at the money
		{Strike: 130}, // boundary, kept
		{Strike: 131}, // above band
	}

	kept := filterCalls(calls, 100)
	if len(kept) != 3 {
		t.Fatalf("kept %d calls, want 3", len(kept))
	}
	if kept[0].Strike != 70 || kept[2].Strike != 130 {
		t.Errorf("band boundaries not inclusive: %v", kept)
	}

	if got := filterCalls(calls, 0); got != nil {
		t.Error("zero spot must keep nothing")
	}
}

func TestCSVFloat(t *testing.T) {
	if got := csvFloat(1.23456); got != "1.2346" {
		t.Errorf("csvFloat = %q", got)
	}
	nan := 0.0
	nan /= nan
	if got := csvFloat(nan); got != "" {
		t.Errorf("NaN cell = %q, want blank", got)
	}
}

func TestHistoryRows(t *testing.T) {
	bars := make([]Bar, 40)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = Bar{
			Time: base.AddDate(0, 0, i), Open: price, High: price + 1,
			Low: price - 1, Close: price, Volume: 1000,
		}
	}

	rows := historyRows("AAPL", bars)
	if len(rows) != len(bars) {
		t.Fatalf("row count = %d, want %d", len(rows), len(bars))
	}
	if len(rows[0]) != len(historyHeader()) {
		t.Fatalf("row width = %d, header width = %d", len(rows[0]), len(historyHeader()))
	}
	if rows[0][0] != "AAPL" {
		t.Errorf("symbol column = %q", rows[0][0])
	}
	// ma5 warm-up on the first bar is blank, populated by bar 5.
	maCol := len(historyHeader()) - len(maPeriods)
	if rows[0][maCol] != "" {
		t.Errorf("ma5 warm-up cell = %q, want blank", rows[0][maCol])
	}
	if rows[4][maCol] == "" {
		t.Error("ma5 must be populated from the fifth bar")
	}
}

func TestFlashRowFallbacks(t *testing.T) {
	item := FlashItem{
		ID:      "42",
		Time:    "1717209000",
		Brief:   "简讯内容",
		Content: "完整正文",
	}

	row := flashRow(item)
	if row[0] != "42" {
		t.Errorf("id = %q", row[0])
	}
	if row[2] != "简讯内容" {
		t.Errorf("title fallback = %q, want brief", row[2])
	}
	if row[3] != "简讯内容" {
		t.Errorf("summary fallback = %q, want brief", row[3])
	}
	if row[5] != "https://news.futunn.com/post/42" {
		t.Errorf("url fallback = %q", row[5])
	}
	if !strings.Contains(row[1], "E") { // EST or EDT
		t.Errorf("timestamp %q not rendered in the eastern zone", row[1])
	}
}

func TestFlashListResponseParse(t *testing.T) {
	body := []byte(`{"data":{"data":{"news":[{"id":7001,"time":"1717209000","title":"盘前快讯","sourceName":"futu"}],"seqMark":"abc123","hasMore":true}}}`)

	var parsed flashListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	inner := parsed.Data.Data
	if len(inner.News) != 1 {
		t.Fatalf("news count = %d", len(inner.News))
	}
	if inner.News[0].ID.String() != "7001" {
		t.Errorf("numeric id = %q", inner.News[0].ID)
	}
	if inner.SeqMark != "abc123" || !inner.HasMore {
		t.Errorf("cursor fields: seqMark=%q hasMore=%v", inner.SeqMark, inner.HasMore)
	}
}
