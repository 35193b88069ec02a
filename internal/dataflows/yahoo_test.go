package dataflows

import (
	"errors"
	"testing"
	"time"
)

type fakeQuoteSource struct {
	calls    int
	batches  [][]string
	payloads map[string]QuotePayload
	err      error
}

func (f *fakeQuoteSource) fetch(symbols []string) (map[string]QuotePayload, error) {
	f.calls++
	f.batches = append(f.batches, append([]string(nil), symbols...))
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]QuotePayload)
	for _, sym := range symbols {
		if p, ok := f.payloads[sym]; ok {
			result[sym] = p
		}
	}
	return result, nil
}

func newTestCache(src *fakeQuoteSource, clock *time.Time) *QuoteCache {
	qc := NewQuoteCache(30*time.Second, src.fetch)
	qc.now = func() time.Time { return *clock }
	return qc
}

func TestQuoteCacheWithinTTL(t *testing.T) {
	src := &fakeQuoteSource{payloads: map[string]QuotePayload{
		"AAPL": {"regularMarketPrice": 190.0},
	}}
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	qc := newTestCache(src, &clock)

	first := qc.Get([]string{"AAPL"})
	clock = clock.Add(10 * time.Second)
	second := qc.Get([]string{"AAPL"})

	if src.calls != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", src.calls)
	}
	if v, ok := first["AAPL"].Float("regularMarketPrice"); !ok || v != 190.0 {
		t.Fatalf("first payload = %v", first["AAPL"])
	}
	if v, ok := second["AAPL"].Float("regularMarketPrice"); !ok || v != 190.0 {
		t.Fatalf("second payload = %v", second["AAPL"])
	}
}

func TestQuoteCacheExpiry(t *testing.T) {
	src := &fakeQuoteSource{payloads: map[string]QuotePayload{
		"AAPL": {"regularMarketPrice": 190.0},
	}}
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	qc := newTestCache(src, &clock)

	qc.Get([]string{"AAPL"})
	clock = clock.Add(31 * time.Second)
	qc.Get([]string{"AAPL"})

	if src.calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", src.calls)
	}
}

func TestQuoteCacheMixedBatch(t *testing.T) {
	src := &fakeQuoteSource{payloads: map[string]QuotePayload{
		"AAPL": {"regularMarketPrice": 190.0},
		"TSLA": {"regularMarketPrice": 240.0},
	}}
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	qc := newTestCache(src, &clock)

	qc.Get([]string{"AAPL"})
	clock = clock.Add(10 * time.Second)
	result := qc.Get([]string{"AAPL", "TSLA"})

	if src.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", src.calls)
	}
	// Only the missing symbol goes upstream; the fresh one is served from cache.
	last := src.batches[len(src.batches)-1]
	if len(last) != 1 || last[0] != "TSLA" {
		t.Fatalf("second batch = %v, want [TSLA]", last)
	}
	if _, ok := result["AAPL"].Float("regularMarketPrice"); !ok {
		t.Error("fresh symbol must still be returned")
	}
	if _, ok := result["TSLA"].Float("regularMarketPrice"); !ok {
		t.Error("stale symbol must be fetched")
	}
}

func TestQuoteCacheUpstreamFailure(t *testing.T) {
	src := &fakeQuoteSource{payloads: map[string]QuotePayload{
		"AAPL": {"regularMarketPrice": 190.0},
	}}
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	qc := newTestCache(src, &clock)

	qc.Get([]string{"AAPL"})

	src.err = errors.New("network down")
	clock = clock.Add(10 * time.Second)
	result := qc.Get([]string{"AAPL", "TSLA"})

	// The cached entry stays valid, the failed symbol degrades to empty.
	if _, ok := result["AAPL"].Float("regularMarketPrice"); !ok {
		t.Error("cached symbol must survive an upstream failure")
	}
	if len(result["TSLA"]) != 0 {
		t.Errorf("failed symbol should be empty payload, got %v", result["TSLA"])
	}

	// The empty payload is cached for a TTL; no hammering the upstream.
	calls := src.calls
	clock = clock.Add(5 * time.Second)
	qc.Get([]string{"TSLA"})
	if src.calls != calls {
		t.Errorf("empty payload must be served from cache within TTL")
	}
}

func TestQuotePayloadFloat(t *testing.T) {
	p := QuotePayload{"regularMarketPrice": 12.5, "shortName": "Apple Inc."}
	if v, ok := p.Float("regularMarketPrice"); !ok || v != 12.5 {
		t.Errorf("Float = %v, %v", v, ok)
	}
	if _, ok := p.Float("shortName"); ok {
		t.Error("string field must not read as a number")
	}
	if _, ok := p.Float("missing"); ok {
		t.Error("absent field must read as missing")
	}
}
