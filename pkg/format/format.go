// Package format renders timestamps and discount labels the way the card
// displays them.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	dateLayout = "02.01.2006"
	timeLayout = "15:04"
)

var numeral = regexp.MustCompile(`\d{1,3}`)

// Date renders t as DD.MM.YYYY in t's own location.
func Date(t time.Time) string {
	return t.Format(dateLayout)
}

// Time renders t as HH:MM.
func Time(t time.Time) string {
	return t.Format(timeLayout)
}

// DateTime renders t as "DD.MM.YYYY klo HH:MM".
func DateTime(t time.Time) string {
	return Date(t) + " klo " + Time(t)
}

// ParseDate parses a DD.MM.YYYY string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DiscountNumeral returns the first run of one to three digits in s, or ""
// when s carries none.
func DiscountNumeral(s string) string {
	return numeral.FindString(s)
}

// DiscountPercent is the clamped magnitude behind Discount. ok is false when
// raw has no numeral.
func DiscountPercent(raw string) (n int, ok bool) {
	m := DiscountNumeral(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = -n
	}
	if n > 100 {
		n = 100
	}
	return n, true
}

// Discount turns user input such as "30", "-30" or "150%" into the "-{n} %"
// label, clamping n to [0,100]. An empty result means "no change".
func Discount(raw string) string {
	n, ok := DiscountPercent(raw)
	if !ok {
		return ""
	}
	return DiscountLabel(n)
}

// DiscountLabel renders an already clamped percent.
func DiscountLabel(n int) string {
	return fmt.Sprintf("-%d %%", n)
}
