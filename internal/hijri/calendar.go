package hijri

import (
	"fmt"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// Field selects a Hijri calendar field.
type Field int

const (
	FieldYear Field = iota
	FieldMonth
	FieldDayOfMonth
)

func (f Field) String() string {
	switch f {
	case FieldYear:
		return "year"
	case FieldMonth:
		return "month"
	case FieldDayOfMonth:
		return "day of month"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Calendar is an instant viewed through the Hijri calendar. Setting a
// field moves the instant to the matching Gregorian day and keeps the
// clock time and location. A Calendar must come from CalendarAt or
// CalendarOf; the zero value has no table and Set returns ErrNoConverter.
type Calendar struct {
	conv *Converter
	t    time.Time
	date Date
}

// CalendarAt returns the Hijri view of t.
func (c *Converter) CalendarAt(t time.Time) (Calendar, error) {
	d, err := c.ToHijri(t)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{conv: c, t: t, date: d}, nil
}

// CalendarOf returns midnight of a Hijri date in loc. A nil loc means UTC.
func (c *Converter) CalendarOf(d Date, loc *time.Location) (Calendar, error) {
	g, err := c.HijriToGregorian(d)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{conv: c, t: g.Time(loc), date: d}, nil
}

// Get returns a field value. FieldMonth is zero-based.
func (cal Calendar) Get(f Field) int {
	switch f {
	case FieldYear:
		return cal.date.Year
	case FieldMonth:
		return int(cal.date.Month)
	case FieldDayOfMonth:
		return cal.date.Day
	}
	return 0
}

// Set returns a copy of cal with field f replaced. The other two fields
// are kept, so the combination must exist in the table; it is never
// clamped. FieldMonth is zero-based.
func (cal Calendar) Set(f Field, value int) (Calendar, error) {
	if cal.conv == nil {
		return cal, ErrNoConverter
	}
	d := cal.date
	switch f {
	case FieldYear:
		d.Year = value
	case FieldMonth:
		d.Month = Month(value)
	case FieldDayOfMonth:
		d.Day = value
	default:
		return cal, fmt.Errorf("hijri: unsupported field %v", f)
	}

	fields, err := cal.conv.ToGregorian(d.Year, int(d.Month), d.Day)
	if err != nil {
		return cal, err
	}
	g := fields.Date()
	h, m, s := cal.t.Clock()
	t := time.Date(g.Year, g.Month, g.Day, h, m, s, cal.t.Nanosecond(), cal.t.Location())
	return Calendar{conv: cal.conv, t: t, date: d}, nil
}

// Date returns the Hijri date.
func (cal Calendar) Date() Date { return cal.date }

// Time returns the instant.
func (cal Calendar) Time() time.Time { return cal.t }

// Gregorian returns the Gregorian calendar date of the instant.
func (cal Calendar) Gregorian() gregorian.Date { return gregorian.FromTime(cal.t) }

// LengthOfMonth returns the number of days in the current Hijri month, or
// 0 for a zero Calendar.
func (cal Calendar) LengthOfMonth() int {
	if cal.conv == nil {
		return 0
	}
	n, _ := cal.conv.DaysInMonth(cal.date.Year, int(cal.date.Month)+1)
	return n
}

// LengthOfYear returns the number of days in the current Hijri year, or 0
// for a zero Calendar.
func (cal Calendar) LengthOfYear() int {
	if cal.conv == nil {
		return 0
	}
	n, _ := cal.conv.DaysInYear(cal.date.Year)
	return n
}
