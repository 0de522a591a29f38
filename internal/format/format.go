// Package format renders prices, counts and ratios for display.
package format

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Currency formats v as whole US dollars: 200000 -> "$200,000", -1234.5 -> "-$1,235".
func Currency(v float64) string {
	rounded := math.Round(v)
	if rounded == 0 {
		return "$0"
	}
	if rounded < 0 {
		return "-$" + humanize.FormatFloat("#,###.", -rounded)
	}
	return "$" + humanize.FormatFloat("#,###.", rounded)
}

// Number formats v with thousands separators and exactly decimals fraction digits.
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", decimals), v)
}

// Percentage formats a ratio: 0.912 -> "91.2%" with one decimal.
func Percentage(ratio float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return humanize.FormatFloat("#."+strings.Repeat("#", decimals), ratio*100) + "%"
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Thousands renders a price bucket edge the way distribution labels do: 163000 -> "163k".
func Thousands(v float64) string {
	return humanize.Comma(int64(v/1000)) + "k"
}
