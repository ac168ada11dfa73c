// Package ooxmldate converts the W3CDTF date strings found in package properties to time.Time
// and renders them for display.
package ooxmldate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnparseable = errors.New("unparseable date")
	ErrUnknownUnit = errors.New("unknown display unit")
)

// layouts are tried in order, the first match wins. Fractional seconds are accepted
// after the seconds field by time.Parse even though the layouts don't mention them.
var layouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse returns the instant described by s, in UTC.
// Values without zone designator are taken to be UTC already.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
}

// Unit selects how an instant is rendered.
type Unit int

const (
	UnitRaw Unit = iota
	UnitDate
	UnitTime
	UnitDateTime
	UnitYear
	UnitMonth
	UnitDay
	UnitHour
	UnitMinute
	UnitSecond
	UnitISODate
	UnitISOTime
	UnitISODateTime
	unitCount
)

var unitNames = [...]string{
	"raw", "date", "time", "date+time", "year", "month", "day",
	"hour", "minute", "second", "ISO date", "ISO time", "ISO date+time",
}

func (u Unit) String() string {
	if u < 0 || u >= unitCount {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// Valid reports whether u is one of the defined units.
func (u Unit) Valid() bool {
	return u >= 0 && u < unitCount
}

// UnitLabels returns the names of all units joined by "|", in index order.
func UnitLabels() string {
	return strings.Join(unitNames[:], "|")
}

// Format converts t to loc and renders it according to u.
// Locale dependent units use the patterns of l. UnitRaw renders like UnitDateTime.
func Format(t time.Time, u Unit, loc *time.Location, l Locale) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	switch u {
	case UnitRaw, UnitDateTime:
		return t.Format(l.Date + " " + l.Time), nil
	case UnitDate:
		return t.Format(l.Date), nil
	case UnitTime:
		return t.Format(l.Time), nil
	case UnitYear:
		return fmt.Sprintf("%04d", t.Year()), nil
	case UnitMonth:
		return fmt.Sprintf("%02d", int(t.Month())), nil
	case UnitDay:
		return fmt.Sprintf("%02d", t.Day()), nil
	case UnitHour:
		return fmt.Sprintf("%02d", t.Hour()), nil
	case UnitMinute:
		return fmt.Sprintf("%02d", t.Minute()), nil
	case UnitSecond:
		return fmt.Sprintf("%02d", t.Second()), nil
	case UnitISODate:
		return t.Format("2006-01-02"), nil
	case UnitISOTime:
		return t.Format("15:04:05"), nil
	case UnitISODateTime:
		return t.Format("2006-01-02 15:04:05"), nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownUnit, int(u))
}

// fileTimeEpochOffset is the number of 100ns intervals between 1601-01-01 and 1970-01-01.
const fileTimeEpochOffset = 116444736000000000

// FileTime returns t as a Windows FILETIME value: 100ns intervals since 1601-01-01 UTC.
func FileTime(t time.Time) int64 {
	return t.Unix()*10_000_000 + int64(t.Nanosecond())/100 + fileTimeEpochOffset
}
