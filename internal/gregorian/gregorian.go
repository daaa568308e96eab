// Package gregorian converts between the proleptic Gregorian calendar and a
// linear count of days.
//
// Day counts are epoch days: the number of days relative to 1970-01-01. The
// conversion is closed form and does not depend on the time package, so it is
// exact for every proleptic year including year zero and negative years.
package gregorian

import (
	"fmt"
	"strconv"
	"time"
)

// EpochDay is a signed count of days relative to 1970-01-01.
type EpochDay int64

const (
	// DaysPerCycle is the number of days in a 400 year Gregorian cycle.
	DaysPerCycle = 146097

	// Days0000To1970 is the number of days from 0000-01-01 to 1970-01-01.
	Days0000To1970 = (DaysPerCycle * 5) - (30*365 + 7)
)

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian
// calendar.
func IsLeapYear(year int64) bool {
	return year&3 == 0 && (year%100 != 0 || year%400 == 0)
}

// leapDaysBefore returns the number of leap days in the years before year,
// counted from year zero. Negative years count backwards.
func leapDaysBefore(y int64) int64 {
	if y >= 0 {
		return (y+3)/4 - (y+99)/100 + (y+399)/400
	}
	return -(y/-4 - y/-100 + y/-400)
}

// DayFromDate returns the epoch day of the given date. month is 1-based.
// The date is not validated; use Date.Valid for that.
func DayFromDate(year, month, day int) EpochDay {
	y := int64(year)
	m := int64(month)
	total := 365 * y
	total += leapDaysBefore(y)
	total += (367*m - 362) / 12
	total += int64(day) - 1
	if m > 2 {
		total--
		if !IsLeapYear(y) {
			total--
		}
	}
	return EpochDay(total - Days0000To1970)
}

// DateFromDay returns the proleptic Gregorian date for an epoch day.
//
// The computation works on a March based year so that the leap day falls at
// the end of each four year cycle.
func DateFromDay(epochDay EpochDay) Date {
	zeroDay := int64(epochDay) + Days0000To1970
	zeroDay -= 60 // 0000-03-01
	var adjust int64
	if zeroDay < 0 {
		adjustCycles := (zeroDay+1)/DaysPerCycle - 1
		adjust = adjustCycles * 400
		zeroDay += -adjustCycles * DaysPerCycle
	}
	yearEst := (400*zeroDay + 591) / DaysPerCycle
	doyEst := zeroDay - (365*yearEst + yearEst/4 - yearEst/100 + yearEst/400)
	if doyEst < 0 {
		yearEst--
		doyEst = zeroDay - (365*yearEst + yearEst/4 - yearEst/100 + yearEst/400)
	}
	yearEst += adjust
	marchDoy0 := doyEst

	marchMonth0 := (marchDoy0*5 + 2) / 153
	month := (marchMonth0+2)%12 + 1
	dom := marchDoy0 - (marchMonth0*306+5)/10 + 1
	yearEst += marchMonth0 / 10

	return Date{Year: int(yearEst), Month: time.Month(month), Day: int(dom)}
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(int64(year)) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// Date is a proleptic Gregorian calendar date. Month is 1-based.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for year, month and day without validation.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Valid reports whether the month and day are in range for the year.
func (d Date) Valid() bool {
	if d.Month < time.January || d.Month > time.December {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// EpochDay returns the epoch day of d.
func (d Date) EpochDay() EpochDay {
	return DayFromDate(d.Year, int(d.Month), d.Day)
}

// Time returns midnight at the start of d in loc. A nil loc means UTC.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateFromDay(d.EpochDay() + EpochDay(n))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	// 1970-01-01 was a Thursday.
	w := (int64(d.EpochDay()) + 4) % 7
	if w < 0 {
		w += 7
	}
	return time.Weekday(w)
}

// String formats d as yyyy-mm-dd.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses a strict yyyy-mm-dd string and validates the result.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("date %q must be yyyy-mm-dd", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return Date{}, fmt.Errorf("date %q: invalid year: %w", s, err)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return Date{}, fmt.Errorf("date %q: invalid month: %w", s, err)
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return Date{}, fmt.Errorf("date %q: invalid day: %w", s, err)
	}
	d := Date{Year: year, Month: time.Month(month), Day: day}
	if !d.Valid() {
		return Date{}, fmt.Errorf("date %q is not a valid calendar date", s)
	}
	return d, nil
}
