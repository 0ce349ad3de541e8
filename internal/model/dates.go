package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event dates arrive as free text in "Month Day, Year" form ("November 17,
// 1986"). Parsing is lenient about commas and spacing but never silently
// substitutes a default: callers that cannot place an undated event must
// decide what to do with it and say so.

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParseDate parses a "Month Day, Year" string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) < 3 {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrValidation, s)
	}
	month, ok := monthsByName[strings.ToLower(fields[0])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month in %q", ErrValidation, s)
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day in %q", ErrValidation, s)
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1 {
		return time.Time{}, fmt.Errorf("%w: year in %q", ErrValidation, s)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t back into the wire form, "November 17, 1986".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d, %d", t.Month().String(), t.Day(), t.Year())
}
