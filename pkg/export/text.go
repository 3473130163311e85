package export

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// formatNumber renders a number without trailing zeros: 3, 2.5, 1500.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupedNumber renders a number with thousands separators, keeping any
// fractional digits the value has: 1,878 or 1,878.5.
func groupedNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	plain := formatNumber(v)
	decimals := 0
	if i := strings.IndexByte(plain, '.'); i >= 0 {
		decimals = len(plain) - i - 1
	}
	return printer.Sprintf("%.*f", decimals, v)
}

// humanizeKey turns a metadata key into a label: "search_date" becomes
// "Search Date".
func humanizeKey(key string) string {
	return titler.String(strings.ReplaceAll(key, "_", " "))
}
