// Package monitor runs the multiplexed terminal refresh loop over quotes,
// crypto prices and flash news.
package monitor

import (
	"io"
	"os"
	"time"

	"github.com/phuslu/log"

	"github.com/Tim0thy1/stock-tools/internal/board"
	"github.com/Tim0thy1/stock-tools/internal/config"
	"github.com/Tim0thy1/stock-tools/internal/dataflows"
	"github.com/Tim0thy1/stock-tools/internal/news"
	"github.com/Tim0thy1/stock-tools/internal/position"
	"github.com/Tim0thy1/stock-tools/internal/session"
	"github.com/Tim0thy1/stock-tools/internal/watchlist"
)

// News item counts for the compact and expanded views.
const (
	newsCountNormal   = 5
	newsCountExpanded = 10
)

// HKQuoteSource supplies foreign-market quotes.
type HKQuoteSource interface {
	BatchQuote(codes []string) ([]dataflows.HKQuote, error)
}

// SpotPriceSource supplies crypto spot prices.
type SpotPriceSource interface {
	SpotPrices(pairs []string) (map[string]float64, error)
}

// Monitor owns the refresh loop state. Crypto refreshes every cycle; stocks
// and news refresh on their own longer intervals, on a forced refresh, or
// whenever their cached table is still empty.
type Monitor struct {
	cfg          *config.Config
	quotes       *dataflows.QuoteCache
	hk           HKQuoteSource
	gate         SpotPriceSource
	news         news.Fetcher
	cryptoLedger position.Ledger

	out  io.Writer
	cmds chan Command

	// Overridable in tests.
	now      func() time.Time
	tickUnit time.Duration

	lastStockRefresh time.Time
	lastNewsRefresh  time.Time

	wl           watchlist.List
	phase        session.Phase
	usRows       []board.Row
	hkRows       []board.Row
	cryptoLines  []string
	newsItems    []news.Item
	showMoreNews bool
}

// New wires a monitor from its data sources.
func New(cfg *config.Config, quotes *dataflows.QuoteCache, hk HKQuoteSource, gate SpotPriceSource, fetcher news.Fetcher, cryptoLedger position.Ledger) *Monitor {
	return &Monitor{
		cfg:          cfg,
		quotes:       quotes,
		hk:           hk,
		gate:         gate,
		news:         fetcher,
		cryptoLedger: cryptoLedger,
		out:          os.Stdout,
		cmds:         make(chan Command, 8),
		now:          time.Now,
		tickUnit:     time.Second,
	}
}

// Run drives the loop until the quit key. The terminal stays in raw mode for
// the whole run, so the renderer emits carriage-return line endings itself.
func (m *Monitor) Run() error {
	restore, err := RawMode()
	if err != nil {
		return err
	}
	defer restore()

	go ListenKeys(os.Stdin, m.cmds)

	forced := false
	for {
		m.tick(forced)
		m.render()

		stop, next := m.sleepLoop(forced)
		if stop {
			return nil
		}
		forced = next
	}
}

// tick refreshes each data source that is due. force bypasses the stock and
// news interval gates; crypto has no gate. The phase tag is recomputed every
// tick so the header never straddles a session boundary.
func (m *Monitor) tick(force bool) {
	now := m.now()
	m.phase = session.Detect(now.In(session.NewYork))

	prices, err := m.gate.SpotPrices(m.cfg.CryptoPairs)
	if err != nil {
		log.Warn().Err(err).Msg("crypto fetch failed")
		prices = nil
	}
	m.cryptoLines = board.BuildCrypto(prices, m.cryptoLedger, m.cfg.CryptoPairs)

	if m.stocksDue(now, force) {
		m.refreshStocks(now)
	}
	if m.newsDue(now, force) {
		m.refreshNews(now)
	}
}

// stocksDue gates the equity boards. Empty boards retry every tick, so a
// refresh that came back with nothing does not sit idle for a full interval.
func (m *Monitor) stocksDue(now time.Time, force bool) bool {
	empty := len(m.usRows) == 0 && len(m.hkRows) == 0
	return shouldRefresh(m.lastStockRefresh, m.cfg.StockInterval, now, force) || empty
}

// newsDue gates the news list with the same empty-retries policy.
func (m *Monitor) newsDue(now time.Time, force bool) bool {
	return shouldRefresh(m.lastNewsRefresh, m.cfg.NewsInterval, now, force) || len(m.newsItems) == 0
}

// shouldRefresh gates a source on its interval. A zero last time means the
// source has never been fetched.
func shouldRefresh(last time.Time, interval time.Duration, now time.Time, force bool) bool {
	return force || last.IsZero() || now.Sub(last) > interval
}

// refreshStocks reloads the watchlist and both equity boards. The watchlist
// is re-read every refresh so edits to the file show up without a restart.
func (m *Monitor) refreshStocks(now time.Time) {
	wl, err := watchlist.Load(m.cfg.WatchlistFile)
	if err != nil {
		log.Warn().Err(err).Str("path", m.cfg.WatchlistFile).Msg("watchlist load failed")
	} else {
		m.wl = wl
	}

	payloads := m.quotes.Get(m.wl.Domestic)
	m.usRows = board.BuildUS(payloads, m.wl, m.phase)

	if len(m.wl.Foreign) > 0 {
		hkQuotes, err := m.hk.BatchQuote(m.wl.Foreign)
		if err != nil {
			log.Warn().Err(err).Msg("hk quote fetch failed")
		} else {
			m.hkRows = board.BuildHK(hkQuotes, m.wl)
		}
	} else {
		m.hkRows = nil
	}

	m.lastStockRefresh = now
}

// refreshNews fetches the current item count. A failed fetch keeps whatever
// is already on screen.
func (m *Monitor) refreshNews(now time.Time) {
	items, err := m.news.Fetch(m.newsCount())
	if err != nil {
		log.Warn().Err(err).Msg("news fetch failed")
		return
	}
	m.newsItems = items
	m.lastNewsRefresh = now
}

func (m *Monitor) newsCount() int {
	if m.showMoreNews {
		return newsCountExpanded
	}
	return newsCountNormal
}

// sleepLoop waits out the loop interval in small units so commands interrupt
// promptly. It reports whether to stop and whether the next cycle is a forced
// refresh. At the halfway point an expanded news view collapses back to the
// compact count, but only on cycles the user did not trigger themselves.
func (m *Monitor) sleepLoop(forced bool) (stop, nextForced bool) {
	ticks := int(m.cfg.LoopInterval / m.tickUnit)
	if ticks < 1 {
		ticks = 1
	}
	half := ticks / 2

	for i := 0; i < ticks; i++ {
		select {
		case cmd := <-m.cmds:
			switch cmd {
			case CmdStop:
				return true, false
			case CmdForceRefresh:
				return false, true
			case CmdToggleNewsCount:
				m.showMoreNews = !m.showMoreNews
				m.lastNewsRefresh = time.Time{}
				return false, false
			}
		case <-time.After(m.tickUnit):
			// The already-fetched items stay cached; the next paint simply
			// caps at the compact count.
			if i == half && m.showMoreNews && !forced {
				m.showMoreNews = false
			}
		}
	}
	return false, false
}
