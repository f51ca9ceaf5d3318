// Package timeutil holds the calendar and range helpers shared by every
// handler. All business dates are civil dates in Bangkok time (UTC+7, no DST),
// regardless of the host's local timezone.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
	MonthLayout = "2006-01"
)

// Bangkok is a fixed +07:00 zone. It needs no tzdata on the host.
var Bangkok = time.FixedZone("ICT", 7*3600)

// Now returns the current instant in Bangkok time.
func Now() time.Time {
	return time.Now().In(Bangkok)
}

// DateString formats t as YYYY-MM-DD in Bangkok time.
func DateString(t time.Time) string {
	return t.In(Bangkok).Format(DateLayout)
}

// TimeString formats t as HH:MM:SS in Bangkok time.
func TimeString(t time.Time) string {
	return t.In(Bangkok).Format(ClockLayout)
}

// DateTime returns the date and clock strings for t.
func DateTime(t time.Time) (string, string) {
	return DateString(t), TimeString(t)
}

// ParseDate parses a YYYY-MM-DD string as midnight Bangkok time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), Bangkok)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight of its Bangkok civil date.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Bangkok)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Bangkok)
}

// WeekStart returns the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := StartOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	d := StartOfDay(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, Bangkok)
}

// DayRange returns [t, t] as date strings.
func DayRange(t time.Time) (string, string) {
	d := DateString(t)
	return d, d
}

// WeekRange returns Monday..Sunday of the week containing t.
func WeekRange(t time.Time) (string, string) {
	mon := WeekStart(t)
	return DateString(mon), DateString(mon.AddDate(0, 0, 6))
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (string, string) {
	first := MonthStart(t)
	return DateString(first), DateString(first.AddDate(0, 1, -1))
}

// ColumnLetter converts a 1-based column index to its A1 letters (1=A, 27=AA).
func ColumnLetter(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// A1 builds a range like 'Tab'!A2:L for the given tab and cell reference.
// An empty cells string addresses the whole tab.
func A1(tab, cells string) string {
	quoted := "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
