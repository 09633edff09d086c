// Package format renders amounts and dates the way Brazilian users read
// them.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	CurrencySymbol = "R$"
	DateLayout     = "02/01/2006"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Currency formats d as "R$ 1.234,56"; negatives as "-R$ 1.234,56".
func Currency(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsNegative() {
		return "-" + Currency(d.Neg())
	}
	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	return CurrencySymbol + " " + groupThousands(whole) + "," + cents
}

// groupThousands inserts "." between groups of three digits. The printer
// handles anything that fits an int64; larger amounts are grouped by hand.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprintf("%d", n)
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Signed prefixes the currency with "+ " or "- ". Amounts are magnitudes;
// the sign comes from outflow.
func Signed(d decimal.Decimal, outflow bool) string {
	sign := "+ "
	if outflow {
		sign = "- "
	}
	return sign + Currency(d.Abs())
}

// Percent formats a whole percentage, e.g. "70%".
func Percent(p int) string {
	return printer.Sprintf("%d%%", p)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Date renders a backend date as dd/mm/yyyy. Empty input renders "-" and
// anything unparseable is returned unchanged.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}
