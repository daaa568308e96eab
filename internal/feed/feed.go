// Package feed renders Hijri month starts as an iCalendar feed.
package feed

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

const (
	prodID   = "-//ummalqura-api//Hijri Months//EN"
	uidHost  = "ummalqura-api"
	calScale = "GREGORIAN"
	method   = "PUBLISH"

	// MaxYears bounds one feed request.
	MaxYears = 20
)

// Year builds a feed with one all-day event on the first day of each month
// of a Hijri year.
func Year(conv *hijri.Converter, year int, names hijri.MonthNames, now time.Time) (*ical.Calendar, error) {
	return Years(conv, year, year, names, now)
}

// Years builds a feed covering the Hijri years from..to inclusive.
func Years(conv *hijri.Converter, from, to int, names hijri.MonthNames, now time.Time) (*ical.Calendar, error) {
	if to < from {
		return nil, fmt.Errorf("feed: year range %d-%d is reversed", from, to)
	}
	if to-from+1 > MaxYears {
		return nil, fmt.Errorf("feed: %d years requested, limit is %d", to-from+1, MaxYears)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropCalendarScale, calScale)
	cal.Props.SetText(ical.PropMethod, method)
	cal.Props.Set(calendarNameProp(from, to))

	stamp := now.UTC()
	for y := from; y <= to; y++ {
		for m := hijri.Muharram; m <= hijri.ThulHijjah; m++ {
			event, err := monthStart(conv, y, m, names, stamp)
			if err != nil {
				return nil, err
			}
			cal.Children = append(cal.Children, event.Component)
		}
	}
	return cal, nil
}

// calendarNameProp builds X-WR-CALNAME without a VALUE parameter; clients
// that read it expect the bare form.
func calendarNameProp(from, to int) *ical.Prop {
	p := ical.NewProp("X-WR-CALNAME")
	p.Value = calendarName(from, to)
	return p
}

func calendarName(from, to int) string {
	if from == to {
		return fmt.Sprintf("Umm al-Qura %d AH", from)
	}
	return fmt.Sprintf("Umm al-Qura %d-%d AH", from, to)
}

func monthStart(conv *hijri.Converter, year int, month hijri.Month, names hijri.MonthNames, stamp time.Time) (*ical.Event, error) {
	first, err := conv.HijriToGregorian(hijri.Date{Year: year, Month: month, Day: 1})
	if err != nil {
		return nil, err
	}
	length, err := conv.DaysInMonth(year, int(month)+1)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("%04d-%02d@%s", year, int(month)+1, uidHost))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("1 %s %d", names.Name(month), year))
	event.Props.SetText(ical.PropDescription, fmt.Sprintf("%s %d has %d days", names.Name(month), year, length))

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDate(first.Time(nil))
	event.Props.Set(start)

	end := ical.NewProp(ical.PropDateTimeEnd)
	end.SetDate(first.AddDays(1).Time(nil))
	event.Props.Set(end)

	return event, nil
}

// Encode writes cal in iCalendar format.
func Encode(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
