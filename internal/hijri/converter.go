package hijri

import (
	"log/slog"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// Fields is a Gregorian date with a ZERO-based month (January = 0), the
// shape ToGregorian hands back to calendar-field consumers.
type Fields struct {
	Year  int
	Month int
	Day   int
}

// Date returns f as a gregorian.Date with a one-based month.
func (f Fields) Date() gregorian.Date {
	return gregorian.NewDate(f.Year, time.Month(f.Month+1), f.Day)
}

func fieldsOf(d gregorian.Date) Fields {
	return Fields{Year: d.Year, Month: int(d.Month) - 1, Day: d.Day}
}

// Converter converts between Gregorian and Hijri dates using one table.
// It is immutable and safe for concurrent use.
type Converter struct {
	table  *Table
	chrono *Chronology
}

// Option configures New.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger New reports to. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New builds the epoch-month index for t and returns a converter over it.
func New(t *Table, opts ...Option) (*Converter, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	idx, err := BuildIndex(t)
	if err != nil {
		return nil, err
	}
	c := &Converter{table: t, chrono: NewChronology(idx)}

	o.logger.Debug("hijri index built",
		slog.String("version", t.Version),
		slog.Int("min_year", c.MinimumYear()),
		slog.Int("max_year", c.MaximumYear()),
		slog.Int("months", idx.months()),
	)
	return c, nil
}

// Table returns the table the converter was built from.
func (c *Converter) Table() *Table { return c.table }

// Chronology returns the underlying Hijri day converter.
func (c *Converter) Chronology() *Chronology { return c.chrono }

// ToHijri converts the calendar date of t, taken in t's location.
func (c *Converter) ToHijri(t time.Time) (Date, error) {
	return c.GregorianToHijri(gregorian.FromTime(t))
}

// GregorianToHijri converts a proleptic Gregorian date.
func (c *Converter) GregorianToHijri(d gregorian.Date) (Date, error) {
	if !d.Valid() {
		if d.Month < time.January || d.Month > time.December {
			return Date{}, rangeError(FieldNameMonth, int64(d.Month))
		}
		return Date{}, rangeError(FieldNameDay, int64(d.Day))
	}
	return c.chrono.HijriFromDay(d.EpochDay())
}

// ToGregorian converts a Hijri date given with a ZERO-based month and
// returns the Gregorian fields, also with a zero-based month.
func (c *Converter) ToGregorian(year, month, day int) (Fields, error) {
	if month < 0 || month > 11 {
		return Fields{}, rangeError(FieldNameMonth, int64(month))
	}
	g, err := c.HijriToGregorian(Date{Year: year, Month: Month(month), Day: day})
	if err != nil {
		return Fields{}, err
	}
	return fieldsOf(g), nil
}

// HijriToGregorian converts a Hijri date to a proleptic Gregorian date.
func (c *Converter) HijriToGregorian(d Date) (gregorian.Date, error) {
	if !d.Month.Valid() {
		return gregorian.Date{}, rangeError(FieldNameMonth, int64(d.Month))
	}
	day, err := c.chrono.DayFromHijri(d.Year, int(d.Month)+1, d.Day)
	if err != nil {
		return gregorian.Date{}, err
	}
	return gregorian.DateFromDay(day), nil
}

// DaysInMonth returns the length of a ONE-based month of year.
func (c *Converter) DaysInMonth(year, month int) (int, error) {
	return c.chrono.MonthLength(year, month)
}

// DaysInYear returns the length of year.
func (c *Converter) DaysInYear(year int) (int, error) {
	return c.chrono.YearLength(year)
}

// IsLeapYear reports whether year has more than 354 days.
func (c *Converter) IsLeapYear(year int) bool {
	return c.chrono.IsLeapYear(year)
}

// MinimumYear is the first year the table covers.
func (c *Converter) MinimumYear() int { return c.chrono.MinYear() }

// MaximumYear is the last year the table covers.
func (c *Converter) MaximumYear() int { return c.chrono.MaxYear() }

// Bounds returns the first supported Gregorian date and the last one.
func (c *Converter) Bounds() (first, last gregorian.Date) {
	return gregorian.DateFromDay(c.chrono.MinEpochDay()), gregorian.DateFromDay(c.chrono.MaxEpochDay() - 1)
}
