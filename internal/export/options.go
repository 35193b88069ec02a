// Package export writes daily CSV snapshots of price history, indicators,
// option chains and flash news for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/Tim0thy1/stock-tools/internal/dataflows"
	"github.com/Tim0thy1/stock-tools/internal/signals"
)

// Strike filter band around spot for the filtered option CSV.
var (
	strikeBandLow  = decimal.NewFromFloat(0.7)
	strikeBandHigh = decimal.NewFromFloat(1.3)
)

// maxExpiryDays bounds how far out option expiries are pulled.
const maxExpiryDays = 180

// historyWindows pairs each bar interval with its lookback. Intraday history
// is capped near 60 days by the upstream.
var historyWindows = []struct {
	Interval datetime.Interval
	Days     int
}{
	{datetime.OneDay, 180},
	{datetime.ThirtyMins, 59},
	{datetime.SixtyMins, 59},
}

// Bar is one OHLCV bar in chronological order.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// OptionContract is one row of an option chain.
type OptionContract struct {
	Symbol            string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	InTheMoney        bool    `json:"inTheMoney"`
	Expiration        int64   `json:"expiration"`
}

type optionChainResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Quote           struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []OptionContract `json:"calls"`
				Puts           []OptionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// OptionsExporter writes history-with-indicators and option-chain CSVs.
type OptionsExporter struct {
	chains *resty.Client
	outDir string
	now    func() time.Time
}

// NewOptionsExporter creates an exporter writing into outDir.
func NewOptionsExporter(outDir string, timeout time.Duration) *OptionsExporter {
	client := resty.New()
	client.SetBaseURL("https://query2.finance.yahoo.com")
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; stock-tools/1.0)")

	return &OptionsExporter{
		chains: client,
		outDir: outDir,
		now:    time.Now,
	}
}

// Export writes all CSVs for the given symbols. Per-symbol failures are
// logged and skipped so one bad ticker does not sink the batch.
func (e *OptionsExporter) Export(symbols []string) error {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	date := e.now().Format("2006-01-02")

	for _, window := range historyWindows {
		rows := [][]string{historyHeader()}
		for _, symbol := range symbols {
			symbol = dataflows.NormalizeSymbol(symbol)
			bars, err := fetchHistory(symbol, window.Interval, window.Days)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Str("interval", string(window.Interval)).Msg("history fetch failed")
				continue
			}
			rows = append(rows, historyRows(symbol, bars)...)
			log.Info().Str("symbol", symbol).Str("interval", string(window.Interval)).Int("bars", len(bars)).Msg("history fetched")
		}
		path := filepath.Join(e.outDir, fmt.Sprintf("all_stocks_data_%s_%s.csv", date, window.Interval))
		if err := writeCSV(path, rows); err != nil {
			return err
		}
	}

	rawRows := [][]string{optionHeader()}
	filteredRows := [][]string{optionHeader()}
	for _, symbol := range symbols {
		symbol = dataflows.NormalizeSymbol(symbol)
		raw, filtered, err := e.fetchOptionChains(symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("option chain fetch failed")
			continue
		}
		rawRows = append(rawRows, raw...)
		filteredRows = append(filteredRows, filtered...)
	}
	if err := writeCSV(filepath.Join(e.outDir, fmt.Sprintf("all_options_raw_%s.csv", date)), rawRows); err != nil {
		return err
	}
	return writeCSV(filepath.Join(e.outDir, fmt.Sprintf("all_options_filtered_%s.csv", date)), filteredRows)
}

// fetchHistory pulls bars for one symbol, oldest first.
func fetchHistory(symbol string, interval datetime.Interval, days int) ([]Bar, error) {
	var bars []Bar
	err := dataflows.WithRetry(dataflows.DefaultRetryConfig(), func() error {
		end := time.Now()
		start := end.AddDate(0, 0, -days)
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: interval,
		}

		iter := chart.Get(params)
		bars = bars[:0]
		for iter.Next() {
			b := iter.Bar()
			bars = append(bars, Bar{
				Time:   time.Unix(int64(b.Timestamp), 0),
				Open:   b.Open.InexactFloat64(),
				High:   b.High.InexactFloat64(),
				Low:    b.Low.InexactFloat64(),
				Close:  b.Close.InexactFloat64(),
				Volume: int64(b.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("chart for %s: %w", symbol, err)
		}
		return nil
	})
	return bars, err
}

// maPeriods are the moving averages exported per bar.
var maPeriods = []int{5, 10, 20, 30, 60, 120}

func historyHeader() []string {
	header := []string{
		"symbol", "time", "open", "high", "low", "close", "volume",
		"macd", "macd_signal", "macd_hist", "rsi14", "kdj_k", "kdj_d", "kdj_j", "pct_change",
	}
	for _, p := range maPeriods {
		header = append(header, fmt.Sprintf("ma%d", p))
	}
	return header
}

// historyRows computes the indicator columns over the full series and emits
// one CSV row per bar.
func historyRows(symbol string, bars []Bar) [][]string {
	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	macd, signal, hist := signals.MACD(closes)
	rsi := signals.RSI(closes, 14)
	k, d, j := signals.KDJ(highs, lows, closes)
	pct := signals.PctChange(closes)
	mas := make([][]float64, len(maPeriods))
	for i, p := range maPeriods {
		mas[i] = signals.SMA(closes, p)
	}

	rows := make([][]string, 0, n)
	for i, b := range bars {
		row := []string{
			symbol,
			b.Time.Format("2006-01-02 15:04:05"),
			csvFloat(b.Open), csvFloat(b.High), csvFloat(b.Low), csvFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
			csvFloat(macd[i]), csvFloat(signal[i]), csvFloat(hist[i]),
			csvFloat(rsi[i]), csvFloat(k[i]), csvFloat(d[i]), csvFloat(j[i]),
			csvFloat(pct[i]),
		}
		for _, ma := range mas {
			row = append(row, csvFloat(ma[i]))
		}
		rows = append(rows, row)
	}
	return rows
}

// fetchOptionChains pulls every expiry within the horizon and returns the raw
// rows plus the calls filtered to the strike band around spot.
func (e *OptionsExporter) fetchOptionChains(symbol string) (raw, filtered [][]string, err error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("spot quote for %s: %w", symbol, err)
	}
	spot := q.RegularMarketPrice

	base, err := e.fetchChain(symbol, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(base.OptionChain.Result) == 0 {
		return nil, nil, fmt.Errorf("no option chain for %s", symbol)
	}

	expiries := expiriesWithin(base.OptionChain.Result[0].ExpirationDates, e.now(), maxExpiryDays)
	for _, expiry := range expiries {
		chainResp, err := e.fetchChain(symbol, expiry)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Int64("expiry", expiry).Msg("expiry fetch failed")
			continue
		}
		for _, result := range chainResp.OptionChain.Result {
			for _, opt := range result.Options {
				for _, c := range opt.Calls {
					raw = append(raw, optionRow(symbol, "call", spot, c))
				}
				for _, p := range opt.Puts {
					raw = append(raw, optionRow(symbol, "put", spot, p))
				}
				for _, c := range filterCalls(opt.Calls, spot) {
					filtered = append(filtered, optionRow(symbol, "call", spot, c))
				}
			}
		}
	}
	return raw, filtered, nil
}

func (e *OptionsExporter) fetchChain(symbol string, expiry int64) (*optionChainResponse, error) {
	req := e.chains.R()
	if expiry > 0 {
		req.SetQueryParam("date", strconv.FormatInt(expiry, 10))
	}
	resp, err := req.Get("/v7/finance/options/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch option chain for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("option chain API error %d for %s", resp.StatusCode(), symbol)
	}

	var parsed optionChainResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse option chain for %s: %w", symbol, err)
	}
	return &parsed, nil
}

// expiriesWithin keeps the expiry timestamps inside the day horizon.
func expiriesWithin(expiries []int64, now time.Time, days int) []int64 {
	cutoff := now.AddDate(0, 0, days).Unix()
	var kept []int64
	for _, e := range expiries {
		if e >= now.Unix() && e <= cutoff {
			kept = append(kept, e)
		}
	}
	return kept
}

// filterCalls keeps the calls whose strike sits inside the band around spot.
// Decimal comparison avoids float edge cases at the band boundaries.
func filterCalls(calls []OptionContract, spot float64) []OptionContract {
	if spot <= 0 {
		return nil
	}
	spotDec := decimal.NewFromFloat(spot)
	low := spotDec.Mul(strikeBandLow)
	high := spotDec.Mul(strikeBandHigh)

	var kept []OptionContract
	for _, c := range calls {
		strike := decimal.NewFromFloat(c.Strike)
		if strike.GreaterThanOrEqual(low) && strike.LessThanOrEqual(high) {
			kept = append(kept, c)
		}
	}
	return kept
}

func optionHeader() []string {
	return []string{
		"symbol", "type", "contract", "expiration", "strike", "spot",
		"last_price", "bid", "ask", "volume", "open_interest", "implied_volatility", "in_the_money",
	}
}

func optionRow(symbol, optType string, spot float64, c OptionContract) []string {
	return []string{
		symbol,
		optType,
		c.Symbol,
		time.Unix(c.Expiration, 0).UTC().Format("2006-01-02"),
		csvFloat(c.Strike),
		csvFloat(spot),
		csvFloat(c.LastPrice),
		csvFloat(c.Bid),
		csvFloat(c.Ask),
		strconv.FormatInt(c.Volume, 10),
		strconv.FormatInt(c.OpenInterest, 10),
		csvFloat(c.ImpliedVolatility),
		strconv.FormatBool(c.InTheMoney),
	}
}

// csvFloat renders a value, leaving the cell blank for NaN warm-up positions.
func csvFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", len(rows)-1).Msg("csv written")
	return nil
}
