package news

import "time"

// NewFetcher selects the feed adapter for a configured source. Anything other
// than "c" gets the English feed.
func NewFetcher(source string, timeout time.Duration, cache *TranslationCache) Fetcher {
	if source == "c" || source == "cn" {
		return NewClsClient(timeout)
	}
	return NewMktNewsClient(timeout, cache)
}
