package news

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/phuslu/log"
)

// TranslationCache is a persisted source-text → translated-text mapping. It
// is keyed by the exact untranslated string and is the only monitor state
// surviving process restarts.
type TranslationCache struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	dirty   bool
}

// LoadTranslationCache reads the cache file. A missing or corrupt file
// yields an empty cache, never an error.
func LoadTranslationCache(path string) *TranslationCache {
	cache := &TranslationCache{
		path:    path,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("translation cache corrupt, starting empty")
		cache.entries = make(map[string]string)
	}
	return cache
}

// Get looks up a translation.
func (c *TranslationCache) Get(source string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[source]
	return v, ok
}

// Put records a translation and marks the cache for saving.
func (c *TranslationCache) Put(source, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = translated
	c.dirty = true
}

// Len reports the number of cached translations.
func (c *TranslationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache back to disk if anything was added since the last
// save.
func (c *TranslationCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty || c.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
