package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"GEWatch/internal/model"
)

// FormatPrice renders a price with thousands separators.
func FormatPrice(v float64) string {
	return humanize.Comma(int64(v))
}

// FormatDelta renders a signed delta: explicit + on gains, plain 0 when
// unchanged.
func FormatDelta(v float64) string {
	n := int64(v)
	if n > 0 {
		return "+" + humanize.Comma(n)
	}
	return humanize.Comma(n)
}

// FormatUpdate formats one item's refresh result for the terminal.
func FormatUpdate(u model.ItemUpdate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("--%s--\n", u.Name))
	if u.Stale {
		b.WriteString(fmt.Sprintf("  Buy:  %s (stale)\n", FormatPrice(u.High)))
		b.WriteString(fmt.Sprintf("  Sell: %s (stale)", FormatPrice(u.Low)))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  Buy:  %s (%s)\n", FormatPrice(u.High), FormatDelta(u.DeltaHigh)))
	b.WriteString(fmt.Sprintf("  Sell: %s (%s)", FormatPrice(u.Low), FormatDelta(u.DeltaLow)))
	return b.String()
}

// FormatReport formats a full refresh cycle.
func FormatReport(updates []model.ItemUpdate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("=== GEWatch %s ===\n", time.Now().Format("2006-01-02 15:04:05")))
	if len(updates) == 0 {
		b.WriteString("no items tracked")
		return b.String()
	}
	for _, u := range updates {
		b.WriteString(FormatUpdate(u))
		if !u.Stale {
			b.WriteString(fmt.Sprintf("  [%s]", model.Classify(u.DeltaHigh, u.DeltaLow)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
