package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings for the monitor and the exporters.
type Config struct {
	WatchlistFile        string
	NewsSource           string // "en" or "cn"
	TranslationCacheFile string
	DataDir              string
	LogFile              string
	LogLevel             string

	StockInterval time.Duration
	NewsInterval  time.Duration
	LoopInterval  time.Duration

	QuoteTTL    time.Duration
	HTTPTimeout time.Duration

	CryptoPairs []string
	// CryptoPositions maps a pair to a compact "cost*size" spec. A negative
	// cost marks a short position.
	CryptoPositions map[string]string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		WatchlistFile:        "stocks.txt",
		NewsSource:           "cn",
		TranslationCacheFile: "news_translation_cache.json",
		DataDir:              filepath.Join(currentDir, "data"),
		LogFile:              "stock-tools.log",
		LogLevel:             "info",

		StockInterval: 100 * time.Second,
		NewsInterval:  300 * time.Second,
		LoopInterval:  60 * time.Second,

		QuoteTTL:    30 * time.Second,
		HTTPTimeout: 10 * time.Second,

		CryptoPairs: []string{"BTC_USDT", "ETH_USDT", "BNB_USDT"},
		CryptoPositions: map[string]string{
			"BTCUSDT": "0*0.0264",
			"ETHUSDT": "0*0.936",
			"BNBUSDT": "0*0",
		},
	}
}

// LoadEnv overlays the config from a .env file (if present) and the process
// environment.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()

	setString(&c.WatchlistFile, "STOCK_FILE")
	setString(&c.NewsSource, "NEWS_SOURCE")
	setString(&c.TranslationCacheFile, "NEWS_CACHE_FILE")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.LogLevel, "LOG_LEVEL")

	setDuration(&c.StockInterval, "STOCK_REFRESH_INTERVAL")
	setDuration(&c.NewsInterval, "NEWS_REFRESH_INTERVAL")
	setDuration(&c.LoopInterval, "MAIN_LOOP_INTERVAL")

	// Positions come as "BTCUSDT=-92264*0.0168,ETHUSDT=0*0.936".
	if v := os.Getenv("CRYPTO_POSITIONS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
			if len(kv) != 2 || kv[0] == "" {
				continue
			}
			c.CryptoPositions[strings.ToUpper(kv[0])] = kv[1]
		}
	}
}

// EnsureDirectories creates the data directory tree.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Join(c.DataDir, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
