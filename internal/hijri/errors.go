package hijri

import (
	"errors"
	"fmt"
)

// ErrInvariant marks an internal defect in a built index. It never results
// from bad user input; a valid table cannot produce it.
var ErrInvariant = errors.New("hijri: index invariant violated")

// ErrNoConverter is returned by a Calendar that was not built by
// CalendarAt or CalendarOf.
var ErrNoConverter = errors.New("hijri: calendar has no converter")

// ConfigError reports a malformed month-length table. It is returned while
// loading or building, never from a conversion.
type ConfigError struct {
	Key string // offending key or year, empty when the table as a whole is wrong
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	msg := "hijri: invalid table"
	if e.Key != "" {
		msg += fmt.Sprintf(" at %q", e.Key)
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Msg: fmt.Sprintf(format, args...)}
}

// Range error fields.
const (
	FieldNameYear     = "year"
	FieldNameMonth    = "month"
	FieldNameDay      = "day"
	FieldNameEpochDay = "epoch day"
)

// RangeError reports a conversion input outside the supported calendar.
// Value is the caller's value, unclamped.
type RangeError struct {
	Field string
	Value int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("hijri: invalid %s: %d", e.Field, e.Value)
}

func rangeError(field string, value int64) *RangeError {
	return &RangeError{Field: field, Value: value}
}

// IsRangeError reports whether err is or wraps a *RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}
