package position

import (
	"math"
	"testing"
)

func TestPnLLong(t *testing.T) {
	p := Position{Cost: 50, Size: 3}
	pnl, roi := p.PnL(60)
	if pnl != 30.0 {
		t.Errorf("pnl = %v, want 30.0", pnl)
	}
	if roi != 20.0 {
		t.Errorf("roi = %v, want 20.0", roi)
	}
}

func TestPnLShort(t *testing.T) {
	// Short profits when price falls below the absolute cost basis.
	p := Position{Cost: -100, Size: 2}
	pnl, roi := p.PnL(80)
	if pnl != 40.0 {
		t.Errorf("pnl = %v, want 40.0", pnl)
	}
	if roi <= 0 {
		t.Errorf("roi = %v, want > 0", roi)
	}
	if !p.Short() {
		t.Error("expected short position")
	}
}

func TestPnLZeroCost(t *testing.T) {
	// A zero-cost entry still has a P&L; its margin is zero so ROI pins to 0.
	pnl, roi := (Position{Cost: 0, Size: 5}).PnL(10)
	if pnl != 50.0 {
		t.Errorf("pnl = %v, want 50.0", pnl)
	}
	if roi != 0 {
		t.Errorf("roi = %v, want 0", roi)
	}
}

func TestPnLZeroSize(t *testing.T) {
	pnl, roi := (Position{Cost: 10, Size: 0}).PnL(25)
	if pnl != 0 || roi != 0 {
		t.Errorf("pnl, roi = %v, %v; want 0, 0", pnl, roi)
	}
}

func TestPnLZeroMarginGuard(t *testing.T) {
	// Margin math must never divide by zero even for odd inputs.
	p := Position{Cost: 1e-9, Size: 1e-9}
	_, roi := p.PnL(5)
	if math.IsInf(roi, 0) || math.IsNaN(roi) {
		t.Fatalf("roi must stay finite, got %v", roi)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		spec string
		want Position
		ok   bool
	}{
		{"150.5*10", Position{150.5, 10}, true},
		{"-92264*0.0168", Position{-92264, 0.0168}, true},
		{"0*0", Position{0, 0}, true},
		{"abc*def", Position{}, false},
		{"100", Position{}, false},
		{"", Position{}, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.spec)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Parse(%q) = %+v, %v; want %+v, %v", tc.spec, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseLedger(t *testing.T) {
	ledger := ParseLedger(map[string]string{
		"btcusdt": "-92264*0.0168",
		"ETHUSDT": "bad",
	})
	if len(ledger) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ledger))
	}
	pos, ok := ledger["BTCUSDT"]
	if !ok || !pos.Short() {
		t.Fatalf("expected upper-cased short BTCUSDT entry, got %+v", ledger)
	}
}
