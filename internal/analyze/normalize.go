package analyze

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyRunes  = strings.NewReplacer("$", "", "€", "", " ", "", " ", "", " ", "", "\t", "")
	decimalCommaRe = regexp.MustCompile(`^-?\d+,\d{2}$`)
	digitsRe       = regexp.MustCompile(`\d+`)
)

// ParseMoney parses a currency-formatted string into whole currency units.
// It strips currency symbols and every whitespace variant (regular,
// non-breaking, narrow non-breaking), then disambiguates the comma:
// a lone comma followed by exactly two digits is a decimal separator
// ("3 120,00 $" is 3120), anything else treats commas as thousands
// separators ("1,234.56" is 1235, rounded). Returns ok=false for empty
// or non-numeric input; never panics.
func ParseMoney(raw string) (int64, bool) {
	s := currencyRunes.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	if decimalCommaRe.MatchString(s) {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.Round(0)
	if !v.IsInteger() || v.IsNegative() {
		return 0, false
	}
	return v.IntPart(), true
}

// ParseInt parses a plain count (units, floors) with the same whitespace
// and symbol stripping as ParseMoney but no decimal handling: the first
// run of digits wins. Returns ok=false when no digits are present.
func ParseInt(raw string) (int64, bool) {
	s := currencyRunes.Replace(strings.TrimSpace(raw))
	digits := digitsRe.FindString(s)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
