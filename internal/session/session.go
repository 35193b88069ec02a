// Package session maps US exchange wall-clock time to a trading phase and the
// quote fields active during that phase.
package session

import "time"

// NewYork is the exchange time zone. Callers convert the current instant with
// time.Now().In(session.NewYork) before calling Detect.
var NewYork = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// No tzdata on the host. EST without DST is the closest we can get.
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Phase is a named trading-hours segment.
type Phase int

const (
	PreMarket Phase = iota
	Regular
	PostMarket
	Overnight
)

func (p Phase) String() string {
	switch p {
	case PreMarket:
		return "pre-market"
	case Regular:
		return "regular"
	case PostMarket:
		return "post-market"
	default:
		return "overnight"
	}
}

// FieldPair names the upstream price field and its matching percent-change
// field. The two are always consumed as a unit.
type FieldPair struct {
	Price  string
	Change string
}

var phaseFields = [...]FieldPair{
	PreMarket:  {"preMarketPrice", "preMarketChangePercent"},
	Regular:    {"regularMarketPrice", "regularMarketChangePercent"},
	PostMarket: {"postMarketPrice", "postMarketChangePercent"},
	Overnight:  {"overnightMarketPrice", "overnightMarketChangePercent"},
}

// Fields returns the canonical field pair for the phase.
func (p Phase) Fields() FieldPair {
	return phaseFields[p]
}

// fallbackOrder lists, per phase, the other phases to probe when the
// canonical field is absent, ordered by temporal adjacency.
var fallbackOrder = [...][3]Phase{
	PreMarket:  {Overnight, Regular, PostMarket},
	Regular:    {PreMarket, PostMarket, Overnight},
	PostMarket: {Regular, PreMarket, Overnight},
	Overnight:  {PostMarket, Regular, PreMarket},
}

// Fallback returns the field pairs to probe, in priority order, when the
// phase's own pair is missing from a payload.
func (p Phase) Fallback() []FieldPair {
	order := fallbackOrder[p]
	pairs := make([]FieldPair, len(order))
	for i, ph := range order {
		pairs[i] = ph.Fields()
	}
	return pairs
}

// Detect classifies an exchange-local instant. Boundaries are closed-open:
// pre-market [04:00, 09:30), regular [09:30, 16:00), post-market
// [16:00, 20:00), overnight elsewhere (wrapping midnight).
func Detect(now time.Time) Phase {
	minutes := now.Hour()*60 + now.Minute()
	switch {
	case minutes >= 4*60 && minutes < 9*60+30:
		return PreMarket
	case minutes >= 9*60+30 && minutes < 16*60:
		return Regular
	case minutes >= 16*60 && minutes < 20*60:
		return PostMarket
	default:
		return Overnight
	}
}
