package news

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Fed holds rates", "Fed holds rates"},
		{"tags", "<b>Fed</b> holds <a href=\"x\">rates</a>", "Fed holds rates"},
		{"whitespace", "  Fed \n holds\t rates ", "Fed holds rates"},
		{"nested", "<div><p>Oil up</p><p>2%</p></div>", "Oil up 2%"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapImportanceEN(t *testing.T) {
	tests := []struct {
		important int
		want      Importance
	}{
		{0, ImportanceLow},
		{1, ImportanceMedium},
		{2, ImportanceHigh},
		{3, ImportanceHigh},
		{-1, ImportanceLow},
	}
	for _, tt := range tests {
		if got := mapImportanceEN(tt.important); got != tt.want {
			t.Errorf("mapImportanceEN(%d) = %v, want %v", tt.important, got, tt.want)
		}
	}
}

func TestMapImportanceCN(t *testing.T) {
	tests := []struct {
		level string
		want  Importance
	}{
		{"A", ImportanceHigh},
		{"B", ImportanceMedium},
		{"C", ImportanceLow},
		{"", ImportanceLow},
	}
	for _, tt := range tests {
		if got := mapImportanceCN(tt.level); got != tt.want {
			t.Errorf("mapImportanceCN(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNormalizeClsItems(t *testing.T) {
	raw := []clsItem{
		{CTime: 1717209000, Level: "A", Content: "<p>央行公告</p>"},
		{CTime: 1717208000, Level: "B", Content: "财报快讯"},
		{CTime: 1717207000, Level: "", Content: "  "},
		{CTime: 1717206000, Level: "C", Content: "普通消息"},
	}

	items := normalizeClsItems(raw, 10)
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dropping blank content, got %d", len(items))
	}
	if items[0].Importance != ImportanceHigh {
		t.Errorf("first item importance = %v, want High", items[0].Importance)
	}
	if items[0].Text != "央行公告" {
		t.Errorf("first item text = %q", items[0].Text)
	}
	if got := items[0].Time.In(Shanghai); !got.Equal(time.Unix(1717209000, 0)) {
		t.Errorf("first item time = %v", got)
	}
	if items[0].Time.Location().String() != Shanghai.String() {
		t.Errorf("time zone = %v, want %v", items[0].Time.Location(), Shanghai)
	}

	limited := normalizeClsItems(raw, 2)
	if len(limited) != 2 {
		t.Errorf("count limit not applied, got %d items", len(limited))
	}
}

func TestParseTranslateResponse(t *testing.T) {
	body := []byte(`[[["美联储维持利率不变","Fed holds rates",null,null,3],["。","." ,null,null,3]],null,"en"]`)
	got, err := parseTranslateResponse(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got != "美联储维持利率不变。" {
		t.Errorf("translated = %q", got)
	}

	if _, err := parseTranslateResponse([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := parseTranslateResponse([]byte(`[]`)); err == nil {
		t.Error("expected error for empty response")
	}
	if _, err := parseTranslateResponse([]byte(`[[]]`)); err == nil {
		t.Error("expected error when no text segments present")
	}
}

func TestTranslationCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news_cache.json")
	if err := os.WriteFile(path, []byte(`{"Fed holds rates":"美联储维持利率不变"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cache := LoadTranslationCache(path)
	if got, ok := cache.Get("Fed holds rates"); !ok || got != "美联储维持利率不变" {
		t.Fatalf("prior entry missing, got %q ok=%v", got, ok)
	}

	cache.Put("Oil up 2%", "油价上涨2%")
	if err := cache.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded := LoadTranslationCache(path)
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after save, got %d", reloaded.Len())
	}
	if got, _ := reloaded.Get("Fed holds rates"); got != "美联储维持利率不变" {
		t.Errorf("prior entry lost on save: %q", got)
	}
	if got, _ := reloaded.Get("Oil up 2%"); got != "油价上涨2%" {
		t.Errorf("new entry lost on save: %q", got)
	}
}

func TestTranslationCacheMissingFile(t *testing.T) {
	cache := LoadTranslationCache(filepath.Join(t.TempDir(), "absent.json"))
	if cache.Len() != 0 {
		t.Errorf("missing file should yield empty cache, got %d entries", cache.Len())
	}
	// Nothing added, save must not create a file.
	if err := cache.Save(); err != nil {
		t.Fatalf("save on clean cache failed: %v", err)
	}
}

func TestTranslationCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0644); err != nil {
		t.Fatal(err)
	}
	cache := LoadTranslationCache(path)
	if cache.Len() != 0 {
		t.Errorf("corrupt file should yield empty cache, got %d entries", cache.Len())
	}
}

func TestNewFetcherSelection(t *testing.T) {
	cache := LoadTranslationCache("")
	if _, ok := NewFetcher("c", time.Second, cache).(*ClsClient); !ok {
		t.Error("source c should select the Chinese feed")
	}
	if _, ok := NewFetcher("e", time.Second, cache).(*MktNewsClient); !ok {
		t.Error("source e should select the English feed")
	}
	if _, ok := NewFetcher("", time.Second, cache).(*MktNewsClient); !ok {
		t.Error("unknown source should default to the English feed")
	}
}
