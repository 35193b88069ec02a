// Package board turns raw quotes into the sorted display rows of the monitor.
package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Tim0thy1/stock-tools/internal/dataflows"
	"github.com/Tim0thy1/stock-tools/internal/position"
	"github.com/Tim0thy1/stock-tools/internal/session"
	"github.com/Tim0thy1/stock-tools/internal/watchlist"
)

// Missing is the cell value for a field no session pair could supply.
const Missing = "N/A"

// Row is one rendered quote line. Price and Change are pre-formatted so the
// renderer only does layout.
type Row struct {
	Symbol   string
	Name     string
	Priority int
	Price    string
	Change   string

	changePct float64
	hasChange bool
}

// markPrefix returns the glyph column for a watchlist mark. Unmarked rows get
// a two-space placeholder so symbols stay aligned.
func markPrefix(m watchlist.Mark) string {
	switch m {
	case watchlist.MarkUrgent:
		return "🚀"
	case watchlist.MarkHighlighted:
		return "⚡"
	default:
		return "  "
	}
}

// BuildUS assembles the US-equity rows. For each symbol the phase's canonical
// field pair is tried first, then the fallback pairs in order; a pair is taken
// as a unit, so the change percent always comes from the same session as the
// price. Symbols with no usable pair still get a row with N/A cells.
func BuildUS(payloads map[string]dataflows.QuotePayload, wl watchlist.List, phase session.Phase) []Row {
	pairs := append([]session.FieldPair{phase.Fields()}, phase.Fallback()...)

	rows := make([]Row, 0, len(wl.Domestic))
	for _, sym := range wl.Domestic {
		payload := payloads[sym]
		row := Row{
			Symbol:   markPrefix(wl.Marks[sym]) + sym,
			Priority: wl.Marks[sym].Priority(),
			Price:    Missing,
			Change:   Missing,
		}
		if name, ok := payload.String("shortName"); ok {
			row.Name = name
		}

		for _, pair := range pairs {
			price, ok := payload.Float(pair.Price)
			if !ok {
				continue
			}
			row.Price = fmt.Sprintf("%.2f", price)
			change, _ := payload.Float(pair.Change)
			row.changePct = change
			row.hasChange = true
			row.Change = fmt.Sprintf("%+.2f%%", change)

			if pos, held := wl.Positions[sym]; held {
				pnl, _ := pos.PnL(price)
				row.Change += fmt.Sprintf(" (%+.2f)", pnl)
			}
			break
		}
		rows = append(rows, row)
	}

	sortRows(rows)
	return rows
}

// BuildHK assembles the HK rows from the delimited-feed quotes, ordered by
// percent change alone. Marks keep their glyph but do not affect the order.
func BuildHK(quotes []dataflows.HKQuote, wl watchlist.List) []Row {
	rows := make([]Row, 0, len(quotes))
	for _, q := range quotes {
		row := Row{
			Symbol:    markPrefix(wl.Marks[q.Symbol]) + q.Symbol,
			Name:      q.Name,
			Priority:  wl.Marks[q.Symbol].Priority(),
			Price:     Missing,
			Change:    fmt.Sprintf("%+.2f%%", q.ChangePercent),
			changePct: q.ChangePercent,
			hasChange: true,
		}
		if q.Price > 0 {
			row.Price = fmt.Sprintf("%.2f", q.Price)
			if pos, held := wl.Positions[q.Symbol]; held {
				pnl, _ := pos.PnL(q.Price)
				row.Change += fmt.Sprintf(" (%+.2f)", pnl)
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].changePct > rows[j].changePct
	})
	return rows
}

// sortRows orders the domestic board by mark priority, then by percent
// change, both descending. Rows without a change value sink below those with
// one.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Priority != rows[j].Priority {
			return rows[i].Priority > rows[j].Priority
		}
		if rows[i].hasChange != rows[j].hasChange {
			return rows[i].hasChange
		}
		return rows[i].changePct > rows[j].changePct
	})
}

// BuildCrypto formats one line per configured pair in configuration order.
// Pairs missing from the price map report the failure inline instead of
// dropping the line.
func BuildCrypto(prices map[string]float64, ledger position.Ledger, pairs []string) []string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		display := strings.ReplaceAll(pair, "_", "")
		price, ok := prices[display]
		if !ok {
			lines = append(lines, fmt.Sprintf("%s: fetch failed", display))
			continue
		}

		line := fmt.Sprintf("%s: %.2f", display, price)
		// A zero cost basis shows the bare price; the equity boards still
		// annotate zero-cost entries.
		if pos, held := ledger[display]; held && pos.Cost != 0 {
			pnl, roi := pos.PnL(price)
			side := "long"
			if pos.Short() {
				side = "short"
			}
			line += fmt.Sprintf("  %s %.4f  PnL %+.2f (%+.2f%%)", side, pos.Size, pnl, roi)
		}
		lines = append(lines, line)
	}
	return lines
}
