package dateutil

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFlexible(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"05/03/2024", date(2024, time.March, 5)},
		{"5/3/2024", date(2024, time.March, 5)},
		{" 12/01/2024 ", date(2024, time.January, 12)},
		{"31/12/2023", date(2023, time.December, 31)},
		{"2024-03-05", date(2024, time.March, 5)},
		{"2024-03-05T10:30:00Z", date(2024, time.March, 5)},
		{"2024-03-05 08:00:00", date(2024, time.March, 5)},
		{"2024/03/05", date(2024, time.March, 5)},
		{"05-03-2024", date(2024, time.March, 5)},
		{"05.03.2024", date(2024, time.March, 5)},
		{"5 March 2024", date(2024, time.March, 5)},
		{"Mar 5, 2024", date(2024, time.March, 5)},
	}
	for _, c := range cases {
		got, err := ParseFlexible(c.input)
		if err != nil {
			t.Errorf("ParseFlexible(%q) returned error: %v", c.input, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseFlexible(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseFlexible_DayFirstForSmallDays(t *testing.T) {
	// 03/04/2024 must be 3 April, never 4 March.
	got, err := ParseFlexible("03/04/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month() != time.April || got.Day() != 3 {
		t.Errorf("ParseFlexible(03/04/2024) = %v, want 2024-04-03", got)
	}
}

func TestParseFlexible_Invalid(t *testing.T) {
	invalid := []string{"", "   ", "not a date", "32/01/2024", "2024-13-01", "12/31/2024"}
	for _, s := range invalid {
		if _, err := ParseFlexible(s); !errors.Is(err, ErrUnrecognizedDate) {
			t.Errorf("ParseFlexible(%q) error = %v, want ErrUnrecognizedDate", s, err)
		}
	}
}

func TestParseStrict(t *testing.T) {
	accepted := map[string]time.Time{
		"05/03/2024":                date(2024, time.March, 5),
		"5/3/2024":                  date(2024, time.March, 5),
		"2024-03-05":                date(2024, time.March, 5),
		"2024-03-05T10:30:00+07:00": date(2024, time.March, 5),
		"2024-03-05 08:00":          date(2024, time.March, 5),
	}
	for input, want := range accepted {
		got, err := ParseStrict(input)
		if err != nil {
			t.Errorf("ParseStrict(%q) returned error: %v", input, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseStrict(%q) = %v, want %v", input, got, want)
		}
	}

	rejected := []string{"2024/03/05", "05-03-2024", "05.03.2024", "5 March 2024", "Mar 5, 2024"}
	for _, s := range rejected {
		if _, err := ParseStrict(s); !errors.Is(err, ErrUnrecognizedDate) {
			t.Errorf("ParseStrict(%q) error = %v, want ErrUnrecognizedDate", s, err)
		}
	}
}

func TestWeekOfMonth(t *testing.T) {
	cases := []struct {
		day  int
		want int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {21, 3}, {22, 4}, {28, 4}, {29, 5}, {31, 5},
	}
	for _, c := range cases {
		if got := WeekOfMonth(date(2024, time.March, c.day)); got != c.want {
			t.Errorf("WeekOfMonth(day %d) = %d, want %d", c.day, got, c.want)
		}
	}
}

func TestHasFifthWeek(t *testing.T) {
	cases := []struct {
		month, year int
		want        bool
	}{
		{2, 2023, false},
		{2, 2024, true},
		{2, 2026, false},
		{3, 2024, true},
		{4, 2024, true},
		{12, 2024, true},
	}
	for _, c := range cases {
		if got := HasFifthWeek(c.month, c.year); got != c.want {
			t.Errorf("HasFifthWeek(%d, %d) = %v, want %v", c.month, c.year, got, c.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		month, year, want int
	}{
		{1, 2024, 31}, {2, 2024, 29}, {2, 2023, 28}, {4, 2024, 30}, {12, 2024, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.month, c.year); got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.month, c.year, got, c.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	valid := map[string]int{"March": 3, "march": 3, "MAR": 3, "3": 3, "03": 3, "December": 12, "sept": 9}
	for input, want := range valid {
		got, err := ParseMonth(input)
		if err != nil || got != want {
			t.Errorf("ParseMonth(%q) = %d, %v; want %d", input, got, err, want)
		}
	}
	for _, input := range []string{"", "0", "13", "Marchy"} {
		if _, err := ParseMonth(input); err == nil {
			t.Errorf("ParseMonth(%q) expected error", input)
		}
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(3); got != "March" {
		t.Errorf("MonthName(3) = %q, want March", got)
	}
	if got := MonthName(0); got != "" {
		t.Errorf("MonthName(0) = %q, want empty", got)
	}
}
