package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Tim0thy1/stock-tools/internal/board"
	"github.com/Tim0thy1/stock-tools/internal/news"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// clearScreen moves the cursor home after wiping, so each frame repaints in
// place.
const clearScreen = "\x1b[2J\x1b[H"

const (
	symbolWidth = 14
	nameWidth   = 16
	priceWidth  = 10
	changeWidth = 14
)

// render paints one full frame. The terminal is in raw mode, so lines are
// joined with explicit carriage returns.
func (m *Monitor) render() {
	var lines []string

	now := m.now().In(news.Shanghai)
	header := fmt.Sprintf("📈 Market Monitor  %s  [%s]", now.Format("01-02 15:04:05"), m.phase)
	lines = append(lines, titleStyle.Render(header), "")

	lines = append(lines, m.renderNews()...)
	lines = append(lines, m.renderUS()...)
	lines = append(lines, m.renderHK()...)
	lines = append(lines, m.renderCrypto()...)

	lines = append(lines, dimStyle.Render("press q quit | w refresh | m toggle news"))

	fmt.Fprint(m.out, clearScreen+strings.Join(lines, "\r\n")+"\r\n")
}

func (m *Monitor) renderNews() []string {
	lines := []string{sectionStyle.Render("📰 Flash News")}
	if len(m.newsItems) == 0 {
		lines = append(lines, dimStyle.Render("  no news yet"))
	}
	count := m.newsCount()
	for i, item := range m.newsItems {
		if i >= count {
			break
		}
		line := fmt.Sprintf("  [%s] %s", item.Time.Format("01-02 15:04"), item.Text)
		switch item.Importance {
		case news.ImportanceHigh:
			line = urgentStyle.Render(line)
		case news.ImportanceMedium:
			line = highlightStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return append(lines, "")
}

// renderUS lays the rows out in two columns, filling the left column first.
func (m *Monitor) renderUS() []string {
	lines := []string{sectionStyle.Render("🇺🇸 US Stocks")}
	if len(m.usRows) == 0 {
		return append(lines, dimStyle.Render("  none"), "")
	}

	cells := make([]string, len(m.usRows))
	for i, row := range m.usRows {
		cells[i] = formatRow(row)
	}

	mid := (len(cells) + 1) / 2
	for i := 0; i < mid; i++ {
		line := cells[i]
		if i+mid < len(cells) {
			line += cells[i+mid]
		}
		lines = append(lines, line)
	}
	return append(lines, "")
}

func (m *Monitor) renderHK() []string {
	if len(m.hkRows) == 0 {
		return nil
	}
	lines := []string{sectionStyle.Render("🇭🇰 HK Stocks")}
	for _, row := range m.hkRows {
		lines = append(lines, formatRow(row))
	}
	return append(lines, "")
}

func (m *Monitor) renderCrypto() []string {
	lines := []string{sectionStyle.Render("🪙 Crypto")}
	for _, line := range m.cryptoLines {
		lines = append(lines, "  "+line)
	}
	return append(lines, "")
}

// formatRow pads with display widths, not byte lengths, so CJK names and the
// mark glyphs keep the columns aligned. The change cell is padded before
// styling so the escape codes do not throw off the column math.
func formatRow(row board.Row) string {
	line := runewidth.FillRight(row.Symbol, symbolWidth) +
		runewidth.FillRight(runewidth.Truncate(row.Name, nameWidth-1, "…"), nameWidth) +
		runewidth.FillRight(row.Price, priceWidth)

	change := runewidth.FillRight(row.Change, changeWidth)
	switch {
	case strings.HasPrefix(row.Change, "+"):
		change = upStyle.Render(change)
	case strings.HasPrefix(row.Change, "-"):
		change = downStyle.Render(change)
	}
	return line + change
}
