package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	ErrBadDate   = errors.New("unparseable date")
	ErrBadAmount = errors.New("unparseable amount")
)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts day.month.year, ISO year-month-day and US month/day/year.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[4] == '-' {
		// ISO timestamps from some exports carry a time part.
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// ParseAmount parses plain (1234.56), US-grouped (1,234.56) and European
// (1.234,56 €) amounts. ok is false when s carries no amount at all.
func ParseAmount(s string) (amount decimal.Decimal, ok bool, err error) {
	clean := strings.NewReplacer(
		"€", "", "$", "", "EUR", "", "USD", "",
		" ", "", "\u00a0", "", "'", "",
	).Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, false, nil
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 <= 2 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return d, true, nil
}

// CardLast4 returns the trailing four digits of a possibly masked card identifier.
func CardLast4(cardNo string) string {
	digits := make([]byte, 0, len(cardNo))
	for i := 0; i < len(cardNo); i++ {
		if cardNo[i] >= '0' && cardNo[i] <= '9' {
			digits = append(digits, cardNo[i])
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}
