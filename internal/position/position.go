// Package position tracks cost-basis/size entries and computes unrealized P&L.
package position

import (
	"math"
	"strconv"
	"strings"
)

// Position is a single holding. A negative Cost marks a short position; Size
// is shares or units, post-leverage for derivatives.
type Position struct {
	Cost float64
	Size float64
}

// Short reports whether the position was opened short.
func (p Position) Short() bool {
	return p.Cost < 0
}

// PnL returns the unrealized profit/loss and ROI percent at the given price.
// ROI is 0 when the position carries no margin (zero cost or size), so a
// zero-cost entry still reports its full price move as profit.
func (p Position) PnL(price float64) (pnl, roiPct float64) {
	if p.Cost < 0 {
		pnl = (math.Abs(p.Cost) - price) * p.Size
	} else {
		pnl = (price - p.Cost) * p.Size
	}
	margin := math.Abs(p.Cost) * p.Size
	if margin != 0 {
		roiPct = pnl / margin * 100
	}
	return pnl, roiPct
}

// Parse reads the compact "cost*size" spec. It reports false for anything
// that does not match the pattern; malformed numbers are not an error.
func Parse(spec string) (Position, bool) {
	parts := strings.SplitN(spec, "*", 2)
	if len(parts) != 2 {
		return Position{}, false
	}
	cost, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Position{}, false
	}
	size, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Position{}, false
	}
	return Position{Cost: cost, Size: size}, true
}

// Ledger maps an instrument symbol to its position.
type Ledger map[string]Position

// ParseLedger builds a ledger from symbol → "cost*size" specs, skipping
// entries that do not parse.
func ParseLedger(specs map[string]string) Ledger {
	ledger := make(Ledger, len(specs))
	for sym, spec := range specs {
		if pos, ok := Parse(spec); ok {
			ledger[strings.ToUpper(sym)] = pos
		}
	}
	return ledger
}
