// Package watchlist parses the line-oriented symbol file driving the monitor.
//
// Each line is "<symbol> [1|2] [cost*size]". Symbols starting with a digit are
// foreign-market (HK) codes; everything else is a domestic ticker.
package watchlist

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/Tim0thy1/stock-tools/internal/position"
)

// Mark is the display-priority flag on a watchlist entry.
type Mark int

const (
	MarkNone Mark = iota
	MarkHighlighted
	MarkUrgent
)

// Priority orders marks for display sorting: urgent > highlighted > none.
func (m Mark) Priority() int {
	switch m {
	case MarkUrgent:
		return 3
	case MarkHighlighted:
		return 2
	default:
		return 1
	}
}

// List is one load of the watchlist file.
type List struct {
	Domestic  []string
	Foreign   []string
	Marks     map[string]Mark
	Positions position.Ledger
}

// Load reads the watchlist. A missing file yields an empty list, not an
// error; malformed tokens are skipped per entry.
func Load(path string) (List, error) {
	list := List{
		Marks:     make(map[string]Mark),
		Positions: make(position.Ledger),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return list, nil
		}
		return list, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		sym := strings.ToUpper(parts[0])
		if unicode.IsDigit(rune(sym[0])) {
			list.Foreign = append(list.Foreign, sym)
		} else {
			list.Domestic = append(list.Domestic, sym)
		}

		if len(parts) > 1 {
			switch parts[1] {
			case "1":
				list.Marks[sym] = MarkUrgent
			case "2":
				list.Marks[sym] = MarkHighlighted
			}
		}

		// cost*size may sit at token 3 or, if that slot holds something
		// else, token 4.
		if len(parts) > 2 {
			if pos, ok := position.Parse(parts[2]); ok {
				list.Positions[sym] = pos
			} else if len(parts) > 3 {
				if pos, ok := position.Parse(parts[3]); ok {
					list.Positions[sym] = pos
				}
			}
		}
	}

	return list, scanner.Err()
}
