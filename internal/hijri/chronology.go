package hijri

import (
	"fmt"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// Date is a Hijri date as produced by the converters.
//
// Month is ZERO-based (Muharram = 0) while Day is ONE-based. The mix
// matches the calendar-field convention consumers of the converter expect;
// queries that take a month count (MonthLength, DayFromHijri) are one-based.
type Date struct {
	Year  int
	Month Month
	Day   int
}

// String formats d as yyyy-mm-dd with a one-based month.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month)+1, d.Day)
}

// Chronology converts between Hijri dates and epoch days over an Index.
type Chronology struct {
	idx *Index
}

// NewChronology wraps a built index.
func NewChronology(idx *Index) *Chronology {
	return &Chronology{idx: idx}
}

// Index returns the underlying index.
func (c *Chronology) Index() *Index {
	return c.idx
}

func (c *Chronology) checkYear(year int) error {
	if year < c.idx.minYear || year > c.idx.maxYear {
		return rangeError(FieldNameYear, int64(year))
	}
	return nil
}

func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return rangeError(FieldNameMonth, int64(month))
	}
	return nil
}

// DayFromHijri returns the epoch day of a Hijri date. month is one-based.
func (c *Chronology) DayFromHijri(year, month, day int) (gregorian.EpochDay, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	if err := c.checkYear(year); err != nil {
		return 0, err
	}
	epochMonth := c.idx.yearToEpochMonth(year) + month - 1
	if epochMonth < 0 || epochMonth >= c.idx.months() {
		return 0, rangeError(FieldNameYear, int64(year))
	}
	if day < 1 || day > c.idx.epochMonthLength(epochMonth) {
		return 0, rangeError(FieldNameDay, int64(day))
	}
	return c.idx.offsets[epochMonth] + gregorian.EpochDay(day-1), nil
}

// HijriFromDay returns the Hijri date of an epoch day in
// [MinEpochDay, MaxEpochDay). The result's Month is zero-based.
func (c *Chronology) HijriFromDay(epochDay gregorian.EpochDay) (Date, error) {
	if epochDay < c.MinEpochDay() || epochDay >= c.MaxEpochDay() {
		return Date{}, rangeError(FieldNameEpochDay, int64(epochDay))
	}
	epochMonth := c.idx.searchMonth(epochDay)
	return Date{
		Year:  c.idx.epochMonthToYear(epochMonth),
		Month: Month(c.idx.epochMonthToMonth(epochMonth)),
		Day:   int(epochDay-c.idx.offsets[epochMonth]) + 1,
	}, nil
}

// MinYear is the first supported year.
func (c *Chronology) MinYear() int { return c.idx.minYear }

// MaxYear is the last supported year.
func (c *Chronology) MaxYear() int { return c.idx.maxYear }

// MinEpochDay is 1 Muharram of MinYear.
func (c *Chronology) MinEpochDay() gregorian.EpochDay { return c.idx.offsets[0] }

// MaxEpochDay is the first day after the last supported month.
func (c *Chronology) MaxEpochDay() gregorian.EpochDay { return c.idx.offsets[c.idx.months()] }

func (c *Chronology) MinMonthLength() int { return c.idx.minMonthLength }
func (c *Chronology) MaxMonthLength() int { return c.idx.maxMonthLength }
func (c *Chronology) MinYearLength() int  { return c.idx.minYearLength }
func (c *Chronology) MaxYearLength() int  { return c.idx.maxYearLength }

// MonthLength returns the number of days in a one-based month of year.
func (c *Chronology) MonthLength(year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	if err := c.checkYear(year); err != nil {
		return 0, err
	}
	return c.idx.epochMonthLength(c.idx.yearToEpochMonth(year) + month - 1), nil
}

// DayOfYear returns the number of days in year before the first day of
// the one-based month, so month 1 yields 0.
func (c *Chronology) DayOfYear(year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	if err := c.checkYear(year); err != nil {
		return 0, err
	}
	return c.dayOfYear(year, month), nil
}

// dayOfYear accepts month 13, which is the first month of the next year
// (or the sentinel for MaxYear).
func (c *Chronology) dayOfYear(year, month int) int {
	first := c.idx.yearToEpochMonth(year)
	return int(c.idx.offsets[first+month-1] - c.idx.offsets[first])
}

// YearLength returns the number of days in year.
func (c *Chronology) YearLength(year int) (int, error) {
	if err := c.checkYear(year); err != nil {
		return 0, err
	}
	return c.dayOfYear(year, 13), nil
}

// IsLeapYear reports whether year is longer than 354 days. Years outside
// the table are never leap years.
func (c *Chronology) IsLeapYear(year int) bool {
	n, err := c.YearLength(year)
	return err == nil && n > 354
}
