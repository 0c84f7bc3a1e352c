package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrUnrecognizedDate = errors.New("unrecognized date format")

// dayMonthYearRegex matches DD/MM/YYYY (leading zeros optional).
var dayMonthYearRegex = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// isoLayouts are the year-first layouts that start with YYYY-MM-DD.
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// fallbackLayouts are tried in order once the DD/MM/YYYY fast path does not apply.
// Slash-separated day-first input never reaches this list.
var fallbackLayouts = append(append([]string{}, isoLayouts...),
	"2006/01/02",
	"2006.01.02",
	"02-01-2006",
	"02.01.2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
)

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsDayMonthYear reports whether s is written as DD/MM/YYYY.
func IsDayMonthYear(s string) bool {
	return dayMonthYearRegex.MatchString(strings.TrimSpace(s))
}

// ParseFlexible parses a free-text date. DD/MM/YYYY input is always read day
// first; everything else goes through the fallback layouts.
func ParseFlexible(s string) (time.Time, error) {
	return parse(s, fallbackLayouts)
}

// ParseStrict accepts only DD/MM/YYYY (leading zeros optional) and the ISO
// layouts starting with YYYY-MM-DD.
func ParseStrict(s string) (time.Time, error) {
	return parse(s, isoLayouts)
}

func parse(s string, layouts []string) (time.Time, error) {
	s = whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnrecognizedDate)
	}

	if dayMonthYearRegex.MatchString(s) {
		t, err := time.Parse("2/1/2006", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, s)
		}
		return DateOnly(t), nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, s)
}

// MonthBounds returns the first and last calendar day of the month.
func MonthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func DaysInMonth(month, year int) int {
	_, end := MonthBounds(month, year)
	return end.Day()
}

// WeekOfMonth returns the 1-based occurrence bucket of t's weekday within its
// month, so the second Saturday of any month is always in week 2.
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// HasFifthWeek reports whether the month reaches week bucket 5.
func HasFifthWeek(month, year int) bool {
	start, end := MonthBounds(month, year)
	return WeekOfMonth(end)-WeekOfMonth(start)+1 >= 5
}

// InRange reports whether d lies within [from, to], inclusive.
func InRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseMonth accepts an English month name, a three-letter abbreviation or a
// number between 1 and 12.
func ParseMonth(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("month is empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return n, nil
	}
	if n, ok := monthNames[s]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}
