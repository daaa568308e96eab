package api

import (
	"github.com/zapponejosh/ummalqura-api/internal/database"
	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

// HijriDate is a Hijri date as served over HTTP. Month is 1-based;
// MonthIndex is the same month counted from zero.
type HijriDate struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	MonthIndex  int    `json:"month_index"`
	Day         int    `json:"day"`
	MonthName   string `json:"month_name"`
	MonthLength int    `json:"month_length"`
	Formatted   string `json:"formatted"`
}

func newHijriDate(d hijri.Date, monthLength int, names hijri.MonthNames) HijriDate {
	return HijriDate{
		Year:        d.Year,
		Month:       int(d.Month) + 1,
		MonthIndex:  int(d.Month),
		Day:         d.Day,
		MonthName:   names.Name(d.Month),
		MonthLength: monthLength,
		Formatted:   d.String(),
	}
}

// ConversionResponse pairs a Gregorian date with its Hijri date.
type ConversionResponse struct {
	Gregorian string    `json:"gregorian"`
	Weekday   string    `json:"weekday"`
	Hijri     HijriDate `json:"hijri"`
}

// RangeResponse is the body of the range endpoint.
type RangeResponse struct {
	Start string               `json:"start"`
	End   string               `json:"end"`
	Count int                  `json:"count"`
	Days  []ConversionResponse `json:"days"`
}

// MonthResponse describes one month of a Hijri year.
type MonthResponse struct {
	Month      int    `json:"month"`
	MonthIndex int    `json:"month_index"`
	Name       string `json:"name"`
	Days       int    `json:"days"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// YearResponse describes a Hijri year.
type YearResponse struct {
	Year   int             `json:"year"`
	Days   int             `json:"days"`
	Leap   bool            `json:"leap"`
	Months []MonthResponse `json:"months"`
}

// CalendarInfoResponse describes the loaded table and its bounds.
type CalendarInfoResponse struct {
	Version        string `json:"version"`
	ID             string `json:"id,omitempty"`
	Type           string `json:"type,omitempty"`
	ISOStart       string `json:"iso_start"`
	MinYear        int    `json:"min_year"`
	MaxYear        int    `json:"max_year"`
	FirstDate      string `json:"first_date"`
	LastDate       string `json:"last_date"`
	MinMonthLength int    `json:"min_month_length"`
	MaxMonthLength int    `json:"max_month_length"`
	MinYearLength  int    `json:"min_year_length"`
	MaxYearLength  int    `json:"max_year_length"`
	Checksum       string `json:"checksum"`
}

// TableListResponse lists stored tables and the one being served.
type TableListResponse struct {
	Active string                 `json:"active"`
	Tables []database.TableRecord `json:"tables"`
}
